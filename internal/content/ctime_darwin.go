//go:build darwin

package content

import (
	"os"
	"syscall"
	"time"
)

func createdTime(fi os.FileInfo) time.Time {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Unix())
	}
	return fi.ModTime()
}
