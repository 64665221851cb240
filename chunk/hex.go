package chunk

import "encoding/hex"

// hexDecode decodes a hex string into dst, returning the number of
// bytes written.
func hexDecode(dst []byte, src string) (int, error) {
	return hex.Decode(dst, []byte(src))
}
