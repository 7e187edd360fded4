// Package permalink expands post type permalink templates into site-relative
// URLs.
//
// A template may contain strftime fields (%Y %m %d %H %M %S), {slug},
// {filename} and dynamic archive placeholders {name_all}, {name_top} and
// {name_last}, where name is a post type or taxonomy. A placeholder without a
// suffix means _all.
package permalink

import (
	"regexp"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/urlpath"
)

// ArchiveChains resolves the slug chain of the first archive in memberOf whose
// root name is rootName. The chain runs from the topmost archive below the
// root-name node down to the member archive. matched is false when no archive
// in memberOf belongs to rootName; a match on the root-name node itself yields
// an empty chain.
type ArchiveChains interface {
	SlugChain(memberOf []string, rootName string) (slugs []string, matched bool)
}

// Input is the per-item data a permalink needs.
type Input struct {
	// Source identifies the item in error messages.
	Source    string
	Permalink string
	Date      time.Time
	Slug      string
	// Filename is the source file stem and SrcDir its directory relative to
	// the docs directory ("post/dir1").
	Filename string
	SrcDir   string

	PostTypeSlug string
	AddPrefix    bool

	// MemberOf lists the archive ids the item belongs to.
	MemberOf []string
	// Roots holds every post type and taxonomy name a dynamic placeholder
	// may refer to.
	Roots map[string]bool
}

// Mode selects which part of an archive chain a dynamic placeholder keeps.
type Mode string

const (
	ModeAll  Mode = "all"
	ModeTop  Mode = "top"
	ModeLast Mode = "last"
)

var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// Expand returns the escaped, lower-cased URL for in.
func Expand(in Input, chains ArchiveChains) (string, error) {
	link := "/" + strings.Trim(in.Permalink, "/") + "/"
	if in.AddPrefix {
		link = "/" + in.PostTypeSlug + link
	}
	link = strftime.Format(link, in.Date)

	if in.Filename == "index" && !strings.Contains(in.SrcDir, "/") {
		link = strings.ReplaceAll(link, "/{slug}/", "/")
		link = strings.ReplaceAll(link, "/{filename}/", "/")
	} else {
		link = strings.ReplaceAll(link, "{slug}", in.Slug)
		link = strings.ReplaceAll(link, "{filename}", filenameSlug(in))
	}

	var err error
	link = placeholderRe.ReplaceAllStringFunc(link, func(token string) string {
		if err != nil {
			return ""
		}
		name, mode := ParsePlaceholder(token)
		if !in.Roots[name] {
			err = foundationerrors.ConfigError("permalink refers to an unknown post type or taxonomy").
				WithContext("source", in.Source).
				WithContext("placeholder", token).
				Fatal().Build()
			return ""
		}
		var slugs []string
		matched := false
		if chains != nil {
			slugs, matched = chains.SlugChain(in.MemberOf, name)
		}
		if !matched {
			return "no-" + name
		}
		return strings.Join(pick(slugs, mode), "/")
	})
	if err != nil {
		return "", err
	}

	link = collapseSlashes(link)
	link = collapseTrailingDuplicate(link)
	return strings.ToLower(urlpath.Escape(link)), nil
}

// ParsePlaceholder splits "{tag_top}" into ("tag", ModeTop).
func ParsePlaceholder(token string) (string, Mode) {
	name := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
	for _, m := range []Mode{ModeTop, ModeLast, ModeAll} {
		if base, ok := strings.CutSuffix(name, "_"+string(m)); ok {
			return base, m
		}
	}
	return name, ModeAll
}

func pick(slugs []string, mode Mode) []string {
	if len(slugs) == 0 {
		return nil
	}
	switch mode {
	case ModeTop:
		return slugs[:1]
	case ModeLast:
		return slugs[len(slugs)-1:]
	default:
		return slugs
	}
}

// filenameSlug is the {filename} value: the cleaned file stem, or the
// directory name for index documents.
func filenameSlug(in Input) string {
	name := in.Filename
	if strings.EqualFold(name, "index") {
		if i := strings.LastIndex(in.SrcDir, "/"); i >= 0 {
			name = in.SrcDir[i+1:]
		} else {
			name = in.PostTypeSlug
		}
	}
	return urlpath.ToSlug(urlpath.CleanName(name))
}

func collapseSlashes(s string) string {
	for strings.Contains(s, "//") {
		s = strings.ReplaceAll(s, "//", "/")
	}
	return s
}

// collapseTrailingDuplicate folds "/a/b/b/" into "/a/b/", which happens when
// {filename} of an index document repeats its section.
func collapseTrailingDuplicate(s string) string {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	if n := len(parts); n >= 2 && parts[n-1] == parts[n-2] && parts[n-1] != "" {
		parts = parts[:n-1]
	}
	if len(parts) == 1 && parts[0] == "" {
		return "/"
	}
	return "/" + strings.Join(parts, "/") + "/"
}

// Explicit normalizes a front matter url override. It is taken as already
// site-relative: a leading slash is ensured and a trailing slash is added
// unless the last segment names a file.
func Explicit(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	last := u[strings.LastIndex(u, "/")+1:]
	if !strings.HasSuffix(u, "/") && !strings.Contains(last, ".") {
		u += "/"
	}
	return strings.ToLower(u)
}
