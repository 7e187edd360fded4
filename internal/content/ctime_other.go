//go:build !linux && !darwin

package content

import (
	"os"
	"time"
)

func createdTime(fi os.FileInfo) time.Time {
	return fi.ModTime()
}
