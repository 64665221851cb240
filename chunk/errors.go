package chunk

import "errors"

// Sentinel errors surfaced by the store (spec.md §4.1, §7). Callers
// compare with errors.Is; wrapping via pkg/errors elsewhere in the
// package preserves these as the comparable root cause.
var (
	// ErrDataExists is returned by Put when the address is already
	// occupied. The chunk handler (C2) normalizes this to success.
	ErrDataExists = errors.New("chunk: data already exists")
	// ErrNoSuchKey is returned by Get when the address is not stored.
	ErrNoSuchKey = errors.New("chunk: no such key")
)
