//go:build linux

package chunk

import "golang.org/x/sys/unix"

// freeBytes reports free space on the filesystem backing path.
// NewStore calls it once at open and only logs the result; the
// used-space counter behind UsedSpaceRatio does not depend on it.
func freeBytes(path string) (uint64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return st.Bfree * uint64(st.Bsize), nil
}
