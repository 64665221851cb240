// Package liveness implements the adult liveness tracker (C3):
// per-operation fan-out bookkeeping and the neighbour-relative
// responsiveness heuristic from spec.md §4.3.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package liveness

import (
	"sort"
	"sync"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/cmn/nlog"
)

// Tunables, defaulted per spec.md §4.3. A Tracker may be constructed
// with different values (e.g. loaded from cmn/config) for testing.
const (
	DefaultNeighbourCount           = 2
	DefaultMinPendingOps            = 10
	DefaultPendingOpToleranceRatio  = 0.1
)

type opKind int

const (
	opRead opKind = iota
	opWrite
)

type operation struct {
	kind    opKind
	address meta.BlobAddress
	origin  *meta.EndUser // nil only possible for section-initiated writes
	targets map[meta.XorName]struct{}
}

func (op *operation) targetSlice() []meta.XorName {
	out := make([]meta.XorName, 0, len(op.targets))
	for t := range op.targets {
		out = append(out, t)
	}
	return out
}

// Unresponsive is one entry of FindUnresponsiveAdults' result.
type Unresponsive struct {
	Name         meta.XorName
	PendingCount int
}

// Tracker owns the three maps described in spec.md §3: ops,
// pending_ops, and closest_adults. Single-owner, synchronous access;
// the mutex exists only to make the zero-concurrency assumption
// explicit and catch accidental concurrent use, not to allow it.
type Tracker struct {
	neighbourCount int
	minPendingOps  int
	toleranceRatio float64

	mu            sync.Mutex
	ops           map[meta.MessageId]*operation
	pendingOps    map[meta.XorName]int
	closestAdults map[meta.XorName][]meta.XorName
}

// New constructs a Tracker with spec.md's default tunables.
func New() *Tracker {
	return NewWithTunables(DefaultNeighbourCount, DefaultMinPendingOps, DefaultPendingOpToleranceRatio)
}

// NewWithTunables allows the defaults above to be overridden, e.g.
// from cmn/config.
func NewWithTunables(neighbourCount, minPendingOps int, toleranceRatio float64) *Tracker {
	return &Tracker{
		neighbourCount: neighbourCount,
		minPendingOps:  minPendingOps,
		toleranceRatio: toleranceRatio,
		ops:            make(map[meta.MessageId]*operation),
		pendingOps:     make(map[meta.XorName]int),
		closestAdults:  make(map[meta.XorName][]meta.XorName),
	}
}

// NewWrite inserts a write operation iff msgID is not already
// tracked. Returns whether the insert happened - idempotency on
// msgID is load-bearing: duplicate routing deliveries must not
// double-count (spec.md §4.3, §9 "Op map vs. routing retries").
func (t *Tracker) NewWrite(msgID meta.MessageId, origin *meta.EndUser, addr meta.BlobAddress, targets []meta.XorName) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insert(msgID, &operation{kind: opWrite, address: addr, origin: origin, targets: toSet(targets)})
}

// NewRead is NewWrite's read-side counterpart.
func (t *Tracker) NewRead(msgID meta.MessageId, addr meta.BlobAddress, origin meta.EndUser, targets []meta.XorName) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	o := origin
	return t.insert(msgID, &operation{kind: opRead, address: addr, origin: &o, targets: toSet(targets)})
}

func (t *Tracker) insert(msgID meta.MessageId, op *operation) bool {
	if _, exists := t.ops[msgID]; exists {
		return false
	}
	t.ops[msgID] = op
	t.incrementPendingOp(op.targetSlice())
	return true
}

func toSet(targets []meta.XorName) map[meta.XorName]struct{} {
	s := make(map[meta.XorName]struct{}, len(targets))
	for _, n := range targets {
		s[n] = struct{}{}
	}
	return s
}

func (t *Tracker) incrementPendingOp(targets []meta.XorName) {
	recompute := false
	for _, n := range targets {
		t.pendingOps[n]++
		if _, tracked := t.closestAdults[n]; !tracked {
			t.closestAdults[n] = nil
			recompute = true
		}
	}
	if recompute {
		t.recomputeClosestAdultsLocked()
	}
}

// RecordAdultWriteLiveness looks up the op, removes src as a target,
// and - if the op was a Write - returns its address and origin.
func (t *Tracker) RecordAdultWriteLiveness(msgID meta.MessageId, src meta.XorName) (meta.BlobAddress, *meta.EndUser, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	op, existed := t.ops[msgID]
	var addr meta.BlobAddress
	var origin *meta.EndUser
	var ok bool
	if existed && op.kind == opWrite {
		addr, origin, ok = op.address, op.origin, true
	}
	t.removeTargetLocked(msgID, src)
	return addr, origin, ok
}

// RecordAdultReadLiveness is RecordAdultWriteLiveness's read-side
// counterpart. wasSuccess is accepted per spec.md §4.3's signature but
// does not change the bookkeeping itself - it is the caller's (C4's)
// business to decide what to do with a success/failure distinction
// once liveness has been recorded.
func (t *Tracker) RecordAdultReadLiveness(msgID meta.MessageId, src meta.XorName, wasSuccess bool) (meta.BlobAddress, meta.EndUser, bool) {
	_ = wasSuccess
	t.mu.Lock()
	defer t.mu.Unlock()
	op, existed := t.ops[msgID]
	var addr meta.BlobAddress
	var origin meta.EndUser
	var ok bool
	if existed && op.kind == opRead {
		addr, ok = op.address, true
		if op.origin != nil {
			origin = *op.origin
		}
	}
	t.removeTargetLocked(msgID, src)
	return addr, origin, ok
}

// RemoveTarget decrements pending_ops[name] (saturating at zero),
// removes name from the op's targets, and drops the op entirely once
// its targets are empty.
func (t *Tracker) RemoveTarget(msgID meta.MessageId, name meta.XorName) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeTargetLocked(msgID, name)
}

func (t *Tracker) removeTargetLocked(msgID meta.MessageId, name meta.XorName) {
	if count, ok := t.pendingOps[name]; ok && count > 0 {
		t.pendingOps[name] = count - 1
	}
	op, ok := t.ops[msgID]
	if !ok {
		return
	}
	delete(op.targets, name)
	if len(op.targets) == 0 {
		delete(t.ops, msgID)
	}
}

// RetainMembersOnly drops every tracked adult absent from
// currentMembers: from pending_ops and closest_adults, and from every
// live op's targets (which may complete those ops).
func (t *Tracker) RetainMembersOnly(currentMembers []meta.XorName) {
	t.mu.Lock()
	defer t.mu.Unlock()

	members := toSet(currentMembers)
	var stale []meta.XorName
	for name := range t.closestAdults {
		if _, ok := members[name]; !ok {
			stale = append(stale, name)
		}
	}

	for _, name := range stale {
		delete(t.pendingOps, name)
		delete(t.closestAdults, name)
		for msgID := range t.ops {
			t.removeTargetLocked(msgID, name)
		}
	}
	t.recomputeClosestAdultsLocked()
}

// RecomputeClosestAdults recomputes, for every tracked adult, the
// NeighbourCount nearest other tracked adults by XOR-distance,
// ascending, ties broken by the total order on Names.
func (t *Tracker) RecomputeClosestAdults() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recomputeClosestAdultsLocked()
}

func (t *Tracker) recomputeClosestAdultsLocked() {
	adults := make([]meta.XorName, 0, len(t.closestAdults))
	for a := range t.closestAdults {
		adults = append(adults, a)
	}
	for _, a := range adults {
		others := make([]meta.XorName, 0, len(adults)-1)
		for _, b := range adults {
			if b != a {
				others = append(others, b)
			}
		}
		sort.Slice(others, func(i, j int) bool {
			switch meta.CmpDistance(a, others[i], others[j]) {
			case -1:
				return true
			case 1:
				return false
			default:
				return others[i].Less(others[j])
			}
		})
		if len(others) > t.neighbourCount {
			others = others[:t.neighbourCount]
		}
		t.closestAdults[a] = others
	}
}

// FindUnresponsiveAdults implements the dual threshold from spec.md
// §4.3: report adult a iff pending_ops[a] > M, the max pending_ops
// among a's neighbours > M, and pending_ops[a]*ρ > that max.
func (t *Tracker) FindUnresponsiveAdults() []Unresponsive {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []Unresponsive
	for a, neighbours := range t.closestAdults {
		maxNeighbour := 0
		for _, n := range neighbours {
			if p := t.pendingOps[n]; p > maxNeighbour {
				maxNeighbour = p
			}
		}
		p := t.pendingOps[a]
		if p > t.minPendingOps && maxNeighbour > t.minPendingOps && float64(p)*t.toleranceRatio > float64(maxNeighbour) {
			nlog.Infof("liveness: pending ops for %s: %d neighbour max: %d", a, p, maxNeighbour)
			out = append(out, Unresponsive{Name: a, PendingCount: p})
		}
	}
	return out
}

// PendingOps exposes the current count for a single adult, used by
// the metrics package to keep a gauge in sync.
func (t *Tracker) PendingOps(name meta.XorName) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingOps[name]
}

// TrackedAdults returns every adult currently known to the tracker
// (the key-set of ClosestAdults), for metrics enumeration.
func (t *Tracker) TrackedAdults() []meta.XorName {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]meta.XorName, 0, len(t.closestAdults))
	for a := range t.closestAdults {
		out = append(out, a)
	}
	return out
}
