// Package cos ("common os/string/byte utilities") holds small,
// dependency-free helpers shared by every other package in the module.
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package cos

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
)

// ChecksumType enumerates the hash algorithms a stored blob may be
// checksummed with. Only one is implemented today; the type exists so
// an on-disk index record is self-describing if that ever changes.
type ChecksumType string

const (
	ChecksumNone   ChecksumType = ""
	ChecksumXXHash ChecksumType = "xxhash"
)

// BytesToStr renders a byte count the way operators expect in logs.
func BytesToStr(b int64) string {
	switch {
	case b >= GiB:
		return itoaFrac(b, GiB) + "GiB"
	case b >= MiB:
		return itoaFrac(b, MiB) + "MiB"
	case b >= KiB:
		return itoaFrac(b, KiB) + "KiB"
	default:
		return itoa(b) + "B"
	}
}

func itoaFrac(b, unit int64) string {
	whole := b / unit
	frac := (b % unit) * 10 / unit
	return itoa(whole) + "." + itoa(frac)
}

func itoa(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
