package content

import (
	"log/slog"
	"os"
	"path"
	"strings"
	"time"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/frontmatter"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/markdown"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// DraftStatuses are status values (or post type names) that mark a document
// as unpublished.
var DraftStatuses = []string{"auto-draft", "draft", "future", "inherit", "pending", "private", "trash"}

// Converter turns a markdown body into HTML.
type Converter interface {
	ToHTML(source []byte) (string, error)
}

// ContentHook may replace the raw document before conversion. Returning
// handled=true skips markdown conversion.
type ContentHook interface {
	OnGetContent(item *Item, doc string) (string, bool)
}

// ModifiedDates supplies a last-modified time for a source file.
type ModifiedDates interface {
	LastModified(absPath string) (time.Time, bool)
}

// Env carries the collaborators used while setting up items.
type Env struct {
	Snapshot  config.Snapshot
	Converter Converter
	Hooks     ContentHook
	Dates     ModifiedDates
	Logger    *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Setup reads the document and computes every derived field. A malformed
// front matter block is a content error naming the source.
func (i *Item) Setup(env Env) error {
	snap := env.Snapshot
	logger := env.logger()

	raw, err := os.ReadFile(i.AbsSrcPath)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read document").
			WithContext("source", i.AbsSrcPath).Fatal().Build()
	}
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return foundationerrors.ContentError("malformed front matter").
			WithCause(err).
			WithContext("source", i.AbsSrcPath).Build()
	}
	i.Meta = doc.Meta
	i.Body = doc.Body
	i.Fingerprint = mdfp.CalculateFingerprintFromParts(string(doc.Raw), string(doc.Body))

	i.setupDates(env, logger)
	i.Status = "publish"
	if s, ok := i.MetaString("status"); ok {
		i.Status = s
	}
	i.IsExpired = i.expired(snap.Now, logger)
	i.IsFuture = i.Date.After(snap.Now)
	i.IsDraft = i.draft()

	i.Title = i.title()
	i.Name = i.Title
	ptSlug := i.PostType
	if pt, ok := snap.PostTypes.Get(i.PostType); ok && pt.Slug != "" {
		ptSlug = pt.Slug
	}
	i.Slug = i.slug(ptSlug)

	i.Content, err = i.content(env)
	if err != nil {
		return foundationerrors.ContentError("failed to convert document").
			WithCause(err).
			WithContext("source", i.AbsSrcPath).Build()
	}
	if s, ok := i.MetaString("summary"); ok {
		i.Summary = Summarize(s)
	} else {
		i.Summary = Summarize(i.Content)
	}
	i.Image = i.buildImage(snap, logger)

	i.FileID = i.SrcPath
	if id, ok := i.MetaString("file_id"); ok && id != "" {
		i.FileID = id
	}
	i.Aliases = i.MetaList("aliases")
	return nil
}

func (i *Item) setupDates(env Env, logger *slog.Logger) {
	created, modified := fileTimes(i.AbsSrcPath)

	date := created
	if t, ok := dateFromFilename(i.Filename); ok {
		date = t
	}
	if v, ok := i.Meta["date"]; ok {
		t, valid := ParseDate(v)
		if !valid {
			logger.Warn("invalid date value", logfields.Path(i.ID), slog.Any("date", v))
		}
		date = t
	}

	if env.Dates != nil {
		if t, ok := env.Dates.LastModified(i.AbsSrcPath); ok {
			modified = t
		}
	}
	if v, ok := i.Meta["modified"]; ok {
		t, valid := ParseDate(v)
		if !valid {
			logger.Warn("invalid modified value", logfields.Path(i.ID), slog.Any("modified", v))
		}
		modified = t
	}
	if modified.Before(date) {
		modified = date
	}
	i.Date, i.Modified = date, modified
}

func (i *Item) expired(now time.Time, logger *slog.Logger) bool {
	v, ok := i.Meta["expire"]
	if !ok || v == nil {
		return false
	}
	t, valid := ParseDate(v)
	if !valid {
		logger.Warn("invalid expire value", logfields.Path(i.ID), slog.Any("expire", v))
	}
	return !t.After(now)
}

func (i *Item) draft() bool {
	if v, ok := i.Meta["draft"]; ok && v != nil {
		switch d := v.(type) {
		case bool:
			return d
		case string:
			return d != "" && !strings.EqualFold(d, "false")
		case int:
			return d != 0
		default:
			return true
		}
	}
	if i.IsExpired || i.IsFuture {
		return true
	}
	for _, s := range DraftStatuses {
		if i.PostType == s || i.Status == s {
			return true
		}
	}
	return false
}

func (i *Item) title() string {
	title, _ := i.MetaString("title")
	if title == "" {
		title = urlpath.CleanName(i.Filename)
	}
	if i.IsIndex() && title == IndexName {
		title = urlpath.CleanName(path.Base(i.SrcDir))
	}
	return title
}

func (i *Item) slug(postTypeSlug string) string {
	slug, ok := i.MetaString("slug")
	if !ok {
		if i.IsIndex() && i.IsRoot() {
			slug = postTypeSlug
		} else {
			slug = i.Name
		}
	}
	return urlpath.ToSlug(slug)
}

func (i *Item) content(env Env) (string, error) {
	if len(i.Body) == 0 {
		return "", nil
	}
	doc := string(i.Body)
	if env.Hooks != nil {
		if out, handled := env.Hooks.OnGetContent(i, doc); handled {
			return out, nil
		}
	}
	if markdown.IsMarkdown(i.Ext) && env.Converter != nil {
		return env.Converter.ToHTML([]byte(doc))
	}
	return doc, nil
}
