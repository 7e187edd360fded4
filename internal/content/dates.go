package content

import (
	"os"
	"strings"
	"time"
)

// Epoch is used for dates that cannot be determined.
var Epoch = time.Unix(0, 0)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate converts a front matter value to a time. Accepted forms are a
// YAML timestamp, "YYYY-MM-DD", "YYYY-MM-DD HH:MM", "YYYY-MM-DD HH:MM:SS"
// and RFC 3339. ok is false for anything else.
func ParseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		s := strings.TrimSpace(d)
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, true
			}
		}
	}
	return Epoch, false
}

// dateFromFilename infers a date from a YYYYMMDD stem, dashes ignored.
func dateFromFilename(stem string) (time.Time, bool) {
	t, err := time.ParseInLocation("20060102", strings.ReplaceAll(stem, "-", ""), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// fileTimes returns the creation and modification times of path. Platforms
// without a creation time report the inode change time or mtime.
func fileTimes(path string) (created, modified time.Time) {
	fi, err := os.Stat(path)
	if err != nil {
		return Epoch, Epoch
	}
	return createdTime(fi), fi.ModTime()
}
