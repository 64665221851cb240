// Package debug holds cheap runtime assertions that compile out of
// hot paths in spirit but, for this module's size, are simply kept
// inexpensive. Mirrors the teacher's `cmn/debug` call shape
// (`debug.AssertNoErr`, `debug.Assert`) used throughout `xact/xs`.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package debug

import "fmt"

// Assert panics with msg if cond is false. Reserved for invariants
// that must never be false if the rest of the package is correct -
// never used to validate external/client input.
func Assert(cond bool, msg string) {
	if !cond {
		panic("assertion failed: " + msg)
	}
}

// Assertf is Assert with a formatted message.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}

// AssertNoErr panics if err is non-nil. Used at call sites where an
// error can only originate from a bug (e.g. encoding a value this
// package itself produced).
func AssertNoErr(err error) {
	if err != nil {
		panic("assertion failed: unexpected error: " + err.Error())
	}
}
