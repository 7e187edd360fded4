// Package urlpath converts between output destination paths and site URLs and
// holds the small name-cleaning rules shared by content items and archives.
//
// Destination paths are slash separated and relative to the public directory
// (for example "post/2024/index.html"). URLs are site-relative, start with a
// slash, are percent-encoded and lower-cased.
package urlpath

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// IndexFile is the file name that maps a directory URL to a destination file.
const IndexFile = "index.html"

// URLFromDestPath returns the site-relative URL for a destination path.
//
// "index.html" maps to "/", "a/b/index.html" to "/a/b/", a final segment with a
// dot is kept literally ("feed.xml" -> "/feed.xml") and anything else gains a
// trailing slash.
func URLFromDestPath(destPath string) string {
	trimmed := strings.Trim(filepath.ToSlash(destPath), "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	last := parts[len(parts)-1]

	var raw string
	switch {
	case last == IndexFile:
		if len(parts) == 1 {
			return "/"
		}
		raw = "/" + strings.Join(parts[:len(parts)-1], "/") + "/"
	case strings.Contains(last, "."):
		raw = "/" + strings.Join(parts, "/")
	default:
		raw = "/" + strings.Join(parts, "/") + "/"
	}
	return strings.ToLower(Escape(raw))
}

// DestPathFromURL is the inverse of URLFromDestPath: leading and trailing
// slashes are stripped, "index.html" is appended when the last segment has no
// dot, and the result is percent-decoded.
func DestPathFromURL(u string) string {
	trimmed := strings.Trim(u, "/")
	if trimmed == "" {
		return IndexFile
	}
	parts := strings.Split(trimmed, "/")
	if !strings.Contains(parts[len(parts)-1], ".") {
		trimmed += "/" + IndexFile
	}
	if decoded, err := url.PathUnescape(trimmed); err == nil {
		return decoded
	}
	return trimmed
}

// Escape percent-encodes every segment of a slash separated path.
func Escape(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// CleanName strips a leading ordering prefix of the form "_{token}_".
//
//	_10_sample -> sample
//	__sample   -> _sample
//	_sample    -> _sample (no second delimiter)
//	_sample_   -> _sample_ (nothing after the prefix)
func CleanName(name string) string {
	if !strings.HasPrefix(name, "_") {
		return name
	}
	if strings.HasPrefix(name, "__") {
		return name[1:]
	}
	parts := strings.Split(name, "_")
	if len(parts) <= 2 {
		return name
	}
	prefix := "_" + parts[1] + "_"
	if suffix := name[len(prefix):]; suffix != "" {
		return suffix
	}
	return name
}

// ToSlug lower-cases s and replaces spaces with hyphens. Nothing else is
// normalized; other characters pass through and are escaped at URL time.
func ToSlug(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, " ", "-"))
}

// AbsURL joins a site base URL and a site-relative URL. An empty base yields
// the relative URL itself.
func AbsURL(siteURL, relURL string) string {
	base := strings.TrimRight(siteURL, "/") + "/"
	return base + strings.TrimLeft(relURL, "/")
}

// NormalizePath converts p to slash form in Unicode NFC so that files created
// on filesystems storing decomposed names produce the same ids and URLs.
func NormalizePath(p string) string {
	return norm.NFC.String(filepath.ToSlash(p))
}
