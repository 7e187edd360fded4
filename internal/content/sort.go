package content

import (
	"cmp"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
)

// Compare orders items for listing. It returns a negative number when a
// sorts before b.
//
// Different post types follow registration order. A negative front matter
// order on either side sorts by (order, path). Date archives list newest
// first. Everything else groups by source directory with the index document
// first, then (order, path).
func Compare(a, b *Item) int {
	if a.PostTypeIndex != b.PostTypeIndex {
		return cmp.Compare(a.PostTypeIndex, b.PostTypeIndex)
	}
	if a.Order() < 0 || b.Order() < 0 {
		return compareOrderPath(a, b)
	}
	if a.ArchiveType == config.ArchiveDate {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return ComparePaths(a.SrcPath, b.SrcPath)
	}
	if c := ComparePaths(a.SrcDir, b.SrcDir); c != 0 {
		return c
	}
	if a.IsIndex() != b.IsIndex() {
		if a.IsIndex() {
			return -1
		}
		return 1
	}
	return compareOrderPath(a, b)
}

func compareOrderPath(a, b *Item) int {
	if c := cmp.Compare(a.Order(), b.Order()); c != 0 {
		return c
	}
	return ComparePaths(a.SrcPath, b.SrcPath)
}

// ComparePaths compares slash separated paths one component at a time, so
// "a/b" sorts before "a-b" and "a/z" before "ab".
func ComparePaths(a, b string) int {
	pa := strings.Split(a, "/")
	pb := strings.Split(b, "/")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := strings.Compare(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(pa), len(pb))
}
