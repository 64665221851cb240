//go:build !linux

package chunk

// freeBytes has no portable implementation outside linux and reports
// 0, so NewStore skips its startup free-space log line.
func freeBytes(string) (uint64, error) { return 0, nil }
