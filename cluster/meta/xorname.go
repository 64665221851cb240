// Package meta holds the address-space primitives shared by the
// elder and adult sides: XorName, Prefix, BlobAddress, MessageId,
// EndUser and Blob. None of it talks to the network; it is pure data
// plus the comparators the rest of the module needs.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package meta

import (
	"bytes"
	"encoding/hex"
)

// NameSize is the width of the XOR address space, in bytes (256 bits).
const NameSize = 32

// XorName is a 256-bit identifier in the XOR-distance name space.
type XorName [NameSize]byte

// String renders the name as a short hex prefix, good enough for logs.
func (n XorName) String() string {
	return hex.EncodeToString(n[:])[:12]
}

// Full renders the complete hex encoding (used for on-disk paths,
// where truncated names would collide).
func (n XorName) Full() string { return hex.EncodeToString(n[:]) }

// Less gives XorName a total order, used to break distance ties.
func (n XorName) Less(o XorName) bool { return bytes.Compare(n[:], o[:]) < 0 }

func (n XorName) Equal(o XorName) bool { return n == o }

// distance computes a XOR b, treated as a big-endian 256-bit unsigned
// integer for comparison purposes by the caller.
func distance(a, b XorName) XorName {
	var d XorName
	for i := range a {
		d[i] = a[i] ^ b[i]
	}
	return d
}

// cmpBytes compares two fixed-size byte arrays as big-endian unsigned
// integers: -1 if a<b, 0 if equal, 1 if a>b.
func cmpBytes(a, b XorName) int { return bytes.Compare(a[:], b[:]) }

// CmpDistance compares distance(from,x) to distance(from,y): -1 if x
// is strictly closer, 1 if y is strictly closer, 0 if equidistant.
func CmpDistance(from, x, y XorName) int {
	dx := distance(from, x)
	dy := distance(from, y)
	return cmpBytes(dx, dy)
}
