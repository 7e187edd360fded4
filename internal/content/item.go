package content

import (
	"fmt"
	"strings"
	"time"

	"git.home.luguber.info/inful/siteforge/internal/config"
)

// IndexName is the file stem that marks a directory's index document.
const IndexName = "index"

// Item is one source document (a "single"): its parsed metadata, derived
// fields and, after URL resolution, its destination.
type Item struct {
	// ID is the canonical identity, "/docs/{post_type}/{relative path}".
	ID         string
	AbsSrcPath string
	// SrcPath is relative to the docs directory, slash separated and NFC.
	SrcPath  string
	SrcDir   string
	Filename string
	Ext      string

	PostType      string
	PostTypeIndex int
	ArchiveType   config.ArchiveType

	Meta        map[string]any
	Body        []byte
	Fingerprint string

	Date      time.Time
	Modified  time.Time
	Status    string
	IsDraft   bool
	IsExpired bool
	IsFuture  bool

	Title   string
	Name    string
	Slug    string
	Content string
	Summary string
	Image   *Image
	FileID  string
	Aliases []string

	RelURL   string
	AbsURL   string
	URL      string
	DestPath string
	DestDir  string

	HTML string
	// ShouldRender and ShouldOutput are cleared when an archive node takes
	// over this item's page (section index documents).
	ShouldRender bool
	ShouldOutput bool

	// ArchiveIDs lists the archive nodes this item belongs to, in the order
	// it was attached to them.
	ArchiveIDs []string

	Prev *Item
	Next *Item

	// Links and BackLinks hold site-relative URLs of pages this item links
	// to and the items linking here. Filled by the backlink plugin.
	Links     []string
	BackLinks []*Item
}

// Image is the descriptor built from the front matter image mapping.
type Image struct {
	Src    string
	URL    string
	RelURL string
	AbsURL string
	// OldPath is the local source file, NewPath the destination relative to
	// the public directory when the image is copied into thumb/.
	OldPath string
	NewPath string
	Extras  map[string]any
}

func (i *Item) String() string {
	return fmt.Sprintf("Item(src=%q)", i.ID)
}

// IsIndex reports whether the document is its directory's index file.
func (i *Item) IsIndex() bool {
	return i.Filename == IndexName
}

// IsRoot reports whether the document sits directly in its post type
// directory, "/docs/{post_type}/{file}".
func (i *Item) IsRoot() bool {
	return !strings.Contains(i.SrcDir, "/")
}

// Order is the numeric front matter "order" value, zero when absent.
func (i *Item) Order() float64 {
	switch v := i.Meta["order"].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// MetaString returns a front matter value rendered as a string.
func (i *Item) MetaString(key string) (string, bool) {
	v, ok := i.Meta[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// MetaList returns a front matter value as a list of strings. A scalar
// becomes a one-element list.
func (i *Item) MetaList(key string) []string {
	switch v := i.Meta[key].(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if e != nil {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	case []string:
		return v
	default:
		return []string{fmt.Sprint(v)}
	}
}

// AddArchive records membership in an archive node once.
func (i *Item) AddArchive(id string) {
	for _, existing := range i.ArchiveIDs {
		if existing == id {
			return
		}
	}
	i.ArchiveIDs = append(i.ArchiveIDs, id)
}
