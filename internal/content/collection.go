package content

import (
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// Collection holds every content item of a build in listing order.
type Collection struct {
	Items []*Item

	snap     config.Snapshot
	byFileID map[string]*Item
	byID     map[string]*Item
}

// NewCollection wraps already constructed items. It is mainly useful for tests
// and plugins that synthesize content.
func NewCollection(snap config.Snapshot, items []*Item) *Collection {
	return &Collection{Items: items, snap: snap}
}

// Snapshot returns the configuration the collection was loaded with.
func (c *Collection) Snapshot() config.Snapshot { return c.snap }

// Load enumerates source documents. In draft mode the collection holds only
// the previewed document; otherwise every post type directory is walked in
// registration order.
func Load(snap config.Snapshot) (*Collection, error) {
	c := &Collection{snap: snap}
	if snap.Mode == config.ModeDraft {
		item, err := draftItem(snap)
		if err != nil {
			return nil, err
		}
		c.Items = []*Item{item}
		return c, nil
	}

	for idx, pt := range snap.PostTypes {
		root := filepath.Join(snap.Dirs.Docs, pt.Name)
		var paths []string
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(snap.Dirs.Docs, p)
			if err != nil {
				return err
			}
			if validDocument(snap, filepath.ToSlash(rel)) {
				paths = append(paths, p)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read post type directory").
				WithContext("post_type", pt.Name).
				WithContext("dir", root).Build()
		}
		slices.SortFunc(paths, func(a, b string) int {
			return ComparePaths(filepath.ToSlash(a), filepath.ToSlash(b))
		})
		for _, p := range paths {
			c.Items = append(c.Items, newItem(snap, p, idx, pt))
		}
	}
	return c, nil
}

// validDocument reports whether rel (relative to the docs directory) has an
// accepted extension and matches no exclude pattern. Patterns are matched
// against the relative path and the base name.
func validDocument(snap config.Snapshot, rel string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(rel), "."))
	if !snap.DocExtAllowed(ext) {
		return false
	}
	base := path.Base(rel)
	for _, pattern := range snap.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return false
		}
		if ok, _ := path.Match(pattern, base); ok {
			return false
		}
	}
	return true
}

func newItem(snap config.Snapshot, absPath string, ptIndex int, pt config.PostType) *Item {
	rel, err := filepath.Rel(snap.Dirs.Docs, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Join(pt.Name, filepath.Base(absPath))
	}
	rel = urlpath.NormalizePath(rel)
	ext := path.Ext(rel)
	return &Item{
		ID:            "/docs/" + rel,
		AbsSrcPath:    absPath,
		SrcPath:       rel,
		SrcDir:        path.Dir(rel),
		Filename:      strings.TrimSuffix(path.Base(rel), ext),
		Ext:           strings.ToLower(strings.TrimPrefix(ext, ".")),
		PostType:      pt.Name,
		PostTypeIndex: ptIndex,
		ArchiveType:   pt.ArchiveType,
		Meta:          map[string]any{},
		ShouldRender:  true,
		ShouldOutput:  true,
	}
}

// draftItem builds the single item previewed in draft mode. A path inside the
// docs directory keeps its post type; anything else is treated as a document
// of the first post type.
func draftItem(snap config.Snapshot) (*Item, error) {
	if snap.DraftPath == "" || len(snap.PostTypes) == 0 {
		return nil, foundationerrors.ContentError("draft mode needs a document and a post type").
			WithContext("source", snap.DraftPath).Build()
	}
	abs, err := filepath.Abs(snap.DraftPath)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "invalid draft path").
			WithContext("source", snap.DraftPath).Build()
	}
	idx, pt := 0, snap.PostTypes[0]
	if rel, err := filepath.Rel(snap.Dirs.Docs, abs); err == nil && !strings.HasPrefix(rel, "..") {
		first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
		if i := snap.PostTypes.Index(first); i >= 0 {
			idx, pt = i, snap.PostTypes[i]
		}
	}
	return newItem(snap, abs, idx, pt), nil
}

// Setup runs item setup across a bounded worker pool. Items whose setup fails
// are dropped and their errors are combined into the returned error; the
// remaining items stay usable. Drafts are dropped afterwards unless serve_all
// is set or the build previews a single draft.
func (c *Collection) Setup(env Env) error {
	var (
		mu   sync.Mutex
		errs error
		ok   = make([]bool, len(c.Items))
	)
	env.Snapshot = c.snap
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, item := range c.Items {
		g.Go(func() error {
			if err := item.Setup(env); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	keep := c.Items[:0]
	for i, item := range c.Items {
		if !ok[i] {
			continue
		}
		if item.IsDraft && !c.snap.ServeAll && c.snap.Mode != config.ModeDraft {
			env.logger().Debug("skipping draft", logfields.Path(item.ID))
			continue
		}
		keep = append(keep, item)
	}
	clear(c.Items[len(keep):])
	c.Items = keep
	return errs
}

// Sort orders items with Compare. The sort is stable.
func (c *Collection) Sort() {
	slices.SortStableFunc(c.Items, Compare)
}

// LinkSiblings assigns Prev and Next along the current order.
func (c *Collection) LinkSiblings() {
	for i, item := range c.Items {
		item.Prev, item.Next = nil, nil
		if i > 0 {
			item.Prev = c.Items[i-1]
		}
		if i+1 < len(c.Items) {
			item.Next = c.Items[i+1]
		}
	}
}

// IndexFileIDs builds the file_id and id lookup tables. A file_id shared by
// two items is fatal and names both sources.
func (c *Collection) IndexFileIDs() error {
	c.byFileID = make(map[string]*Item, len(c.Items))
	c.byID = make(map[string]*Item, len(c.Items))
	for _, item := range c.Items {
		if prev, dup := c.byFileID[item.FileID]; dup {
			return foundationerrors.ContentError("duplicate file_id").
				WithContext("file_id", item.FileID).
				WithContext("first", prev.AbsSrcPath).
				WithContext("second", item.AbsSrcPath).
				Fatal().Build()
		}
		c.byFileID[item.FileID] = item
		c.byID[item.ID] = item
	}
	return nil
}

// Get returns the item with the given id ("/docs/...").
func (c *Collection) Get(id string) (*Item, bool) {
	if c.byID == nil {
		for _, item := range c.Items {
			if item.ID == id {
				return item, true
			}
		}
		return nil, false
	}
	item, ok := c.byID[id]
	return item, ok
}

// GetByFileID returns the item carrying file_id. Unknown ids are logged.
func (c *Collection) GetByFileID(fileID string) (*Item, bool) {
	item, ok := c.byFileID[fileID]
	if !ok {
		slog.Warn("file_id not found", slog.String("file_id", fileID))
	}
	return item, ok
}

// Select keeps every step-th item between start and end. Zero
// values mean the defaults and negative bounds count from the end.
func (c *Collection) Select(start, end, step int) {
	n := len(c.Items)
	if step <= 0 {
		step = 1
	}
	if end == 0 {
		end = n
	}
	start, end = sliceBound(start, n), sliceBound(end, n)
	var out []*Item
	for i := start; i < end; i += step {
		out = append(out, c.Items[i])
	}
	c.Items = out
}

func sliceBound(i, n int) int {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}
