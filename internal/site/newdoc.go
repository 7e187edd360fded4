package site

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/frontmatter"
	"git.home.luguber.info/inful/siteforge/internal/theme"
)

// newDocTokens are expanded with the creation time inside the front matter
// of a document template.
var newDocTokens = []string{"%Y", "%m", "%d", "%H", "%M", "%S"}

// NewDocument creates a document of postType from the theme template
// new_{postType}.*. Inside the template's front matter the date tokens and
// {path} are expanded, and a "file:" line sets the destination relative to
// the docs directory. Without a template only an empty title and the
// creation date are written. The created file path is returned; an existing
// file is never overwritten.
func NewDocument(snap config.Snapshot, themes *theme.Themes, postType, pathArg string, now time.Time) (string, error) {
	if postType == "" || strings.ContainsAny(postType, `/\`) {
		return "", foundationerrors.ValidationError("invalid post type name").
			WithContext("post_type", postType).Build()
	}

	var (
		body string
		dest string
	)
	if tpl, ok := themes.FindPrefix("new_" + postType + "."); ok {
		raw, err := os.ReadFile(tpl)
		if err != nil {
			return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read document template").
				WithContext("template", tpl).Build()
		}
		body, dest = expandNewDocument(string(raw), pathArg, now)
	} else {
		out, err := frontmatter.Compose([]frontmatter.Field{
			{Key: "title", Value: ""},
			{Key: "date", Value: now},
		}, nil, frontmatter.Style{Newline: "\n"})
		if err != nil {
			return "", foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "failed to compose front matter").Build()
		}
		body = string(out)
	}
	if dest == "" {
		dest = filepath.Join(postType, strftime.Format("%Y%m%d-%H%M%S", now)+".md")
	}
	return writeNewDocument(snap.Dirs.Docs, dest, body)
}

// expandNewDocument rewrites the front matter of a document template. Lines
// starting with # are left alone.
func expandNewDocument(doc, pathArg string, now time.Time) (body, dest string) {
	lines := strings.Split(doc, "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\r") != "---" {
		return doc, ""
	}
	out := make([]string, 0, len(lines))
	out = append(out, lines[0])
	inFront := true
	for _, line := range lines[1:] {
		if !inFront {
			out = append(out, line)
			continue
		}
		if strings.TrimRight(line, "\r") == "---" {
			inFront = false
			out = append(out, line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			out = append(out, line)
			continue
		}
		for _, tok := range newDocTokens {
			line = strings.ReplaceAll(line, tok, strftime.Format(tok, now))
		}
		line = strings.ReplaceAll(line, "{path}", pathArg)
		if value, ok := strings.CutPrefix(line, "file:"); ok {
			value = strings.Trim(strings.TrimSpace(value), `/\"'`)
			dest = filepath.FromSlash(value)
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), dest
}

func writeNewDocument(docsDir, rel, body string) (string, error) {
	cleanRel := filepath.Clean(rel)
	if cleanRel == "." || filepath.IsAbs(cleanRel) || strings.HasPrefix(cleanRel, "..") {
		return "", foundationerrors.ValidationError("document path must stay inside the docs directory").
			WithContext("path", rel).Build()
	}
	fullPath := filepath.Join(docsDir, cleanRel)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create document directory").
			WithContext("path", fullPath).Build()
	}
	// #nosec G304 -- fullPath is validated to stay under docsDir.
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", foundationerrors.ValidationError("document already exists").
				WithContext("path", fullPath).Build()
		}
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create document").
			WithContext("path", fullPath).Build()
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(body); err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "write document").
			WithContext("path", fullPath).Build()
	}
	return fullPath, nil
}
