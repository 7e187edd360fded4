package content

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// ThumbDir is the public subdirectory local images are copied into.
const ThumbDir = "thumb"

// buildImage resolves the front matter image descriptor. Remote images pass
// through, images under the static directory keep their URL and other local
// images are scheduled for copying to thumb/{YYYY}/{MM}/{name}.
func (i *Item) buildImage(snap config.Snapshot, logger *slog.Logger) *Image {
	raw, ok := i.Meta["image"].(map[string]any)
	if !ok {
		return nil
	}
	src, _ := raw["src"].(string)
	if src == "" {
		return nil
	}

	img := &Image{Src: src, Extras: map[string]any{}}
	for k, v := range raw {
		if k != "src" {
			img.Extras[k] = v
		}
	}

	if strings.HasPrefix(src, "http") {
		img.URL, img.AbsURL = src, src
		return img
	}

	var local string
	if strings.HasPrefix(src, "/") {
		local = filepath.Join(snap.Dirs.Base, filepath.FromSlash(strings.Trim(src, "/")))
	} else {
		local = filepath.Join(filepath.Dir(i.AbsSrcPath), filepath.FromSlash(src))
	}
	if _, err := os.Stat(local); err != nil {
		logger.Warn("image not found", logfields.Path(i.ID), slog.String("image", local))
		return nil
	}
	img.OldPath = local

	staticPrefix := "/" + staticRel(snap)
	if staticPrefix != "/" && strings.HasPrefix(src, staticPrefix+"/") {
		img.RelURL = strings.TrimPrefix(src, staticPrefix)
	} else {
		img.NewPath = path.Join(ThumbDir,
			fmt.Sprintf("%04d", i.Date.Year()),
			fmt.Sprintf("%02d", int(i.Date.Month())),
			filepath.Base(local))
		img.RelURL = "/" + img.NewPath
	}

	img.AbsURL = snap.Site.SiteURL + img.RelURL
	if snap.UseAbsURL {
		img.URL = img.AbsURL
	} else {
		img.URL = img.RelURL
	}
	img.Src = img.URL
	return img
}

func staticRel(snap config.Snapshot) string {
	rel, err := filepath.Rel(snap.Dirs.Base, snap.Dirs.Static)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}
