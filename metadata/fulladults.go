// Package metadata implements the elder-side blob records component
// (C4): placement, fan-out dispatch, response correlation, full-adult
// accounting, and republish on churn (spec.md §4.4).
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package metadata

import (
	"sync"

	"github.com/xornet-io/vault/cluster/meta"
)

// FullAdults is the set of adults known to have exhausted local
// capacity (spec.md §3). It is logically shared across elder
// handlers; single-writer/many-reader discipline, guarded by an
// RWMutex so no lock is held across I/O suspension.
type FullAdults struct {
	mu  sync.RWMutex
	set map[meta.XorName]struct{}
}

func NewFullAdults() *FullAdults {
	return &FullAdults{set: make(map[meta.XorName]struct{})}
}

func (f *FullAdults) Insert(name meta.XorName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set[name] = struct{}{}
}

// RemoveIfPresent removes name if present; silent otherwise
// (spec.md §4.4.5).
func (f *FullAdults) RemoveIfPresent(name meta.XorName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.set, name)
}

func (f *FullAdults) Contains(name meta.XorName) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.set[name]
	return ok
}

func (f *FullAdults) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.set)
}

// Snapshot returns an immutable copy of the current set.
func (f *FullAdults) Snapshot() []meta.XorName {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]meta.XorName, 0, len(f.set))
	for n := range f.set {
		out = append(out, n)
	}
	return out
}

// RetainMembersOnly drops entries absent from members.
func (f *FullAdults) RetainMembersOnly(members []meta.XorName) {
	keep := make(map[meta.XorName]struct{}, len(members))
	for _, m := range members {
		keep[m] = struct{}{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for n := range f.set {
		if _, ok := keep[n]; !ok {
			delete(f.set, n)
		}
	}
}

// MatchingPrefix returns the subset of names matching prefix, used by
// GetDataOf on section split (spec.md §4.4.6).
func (f *FullAdults) MatchingPrefix(prefix meta.Prefix) []meta.XorName {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []meta.XorName
	for n := range f.set {
		if prefix.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// Merge unions other into the set (spec.md §4.4.6 update).
func (f *FullAdults) Merge(other []meta.XorName) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range other {
		f.set[n] = struct{}{}
	}
}
