package site

import (
	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/output"
)

// Clean targets.
const (
	CleanPublic = "public"
	CleanCache  = "cache"
	CleanAll    = "all"
)

// Clean empties the public directory, the cache directory or both, keeping
// the directories themselves. It returns the directories it emptied.
func Clean(snap config.Snapshot, target string) ([]string, error) {
	var dirs []string
	switch target {
	case CleanPublic:
		dirs = []string{snap.Dirs.Public}
	case CleanCache:
		dirs = []string{snap.Dirs.Cache}
	case CleanAll:
		dirs = []string{snap.Dirs.Public, snap.Dirs.Cache}
	default:
		return nil, foundationerrors.ValidationError("unknown clean target").
			WithContext("target", target).
			WithContext("valid", "public, cache, all").Build()
	}
	for _, d := range dirs {
		if err := output.Clean(d); err != nil {
			return nil, err
		}
	}
	return dirs, nil
}
