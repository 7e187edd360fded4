package site

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// ResolvePostTypes returns the post types a build uses. Declared post types
// are kept when their directory exists under docs; undeclared directories
// are appended in name order with default settings. Without a home page
// template the first post type serves the site root: it loses its URL
// prefix and gets a section archive if it had none.
func ResolvePostTypes(snap config.Snapshot, hasHome bool, logger *slog.Logger) config.PostTypes {
	if logger == nil {
		logger = slog.Default()
	}
	var out config.PostTypes
	for _, pt := range snap.PostTypes {
		if isDir(filepath.Join(snap.Dirs.Docs, pt.Name)) {
			out = append(out, pt)
			continue
		}
		logger.Debug("post type directory missing", logfields.PostType(pt.Name))
	}

	entries, err := os.ReadDir(snap.Dirs.Docs)
	if err != nil {
		logger.Warn("docs directory not readable", logfields.Path(snap.Dirs.Docs), logfields.Error(err))
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || out.Index(name) >= 0 {
			continue
		}
		pt := config.NewPostType(name)
		config.ApplyPostTypeDefaults(&pt)
		logger.Debug("discovered post type", logfields.PostType(name))
		out = append(out, pt)
	}

	if !hasHome && len(out) > 0 {
		out[0].AddPrefixToURL = false
		if out[0].ArchiveType == config.ArchiveNone {
			out[0].ArchiveType = config.ArchiveSection
		}
	}
	return out
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
