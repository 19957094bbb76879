//go:build unix

package size

import (
	"os"
	"syscall"
)

// Apparent is the file's content length in bytes.
func Apparent(info os.FileInfo) int64 {
	return info.Size()
}

// DiskUsage is the number of bytes actually allocated on disk. st_blocks
// counts 512-byte units regardless of the filesystem block size, so sparse
// files report less than their apparent size.
func DiskUsage(info os.FileInfo) int64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return st.Blocks * 512
	}
	return info.Size()
}
