// Package gitdates looks up when files were last changed in git history.
package gitdates

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// Dates answers last-commit times for files of one repository.
type Dates struct {
	repo *git.Repository
	root string

	mu    sync.Mutex
	cache map[string]entry
}

type entry struct {
	when time.Time
	ok   bool
}

// Open finds the repository containing dir.
func Open(dir string) (*Dates, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	return &Dates{repo: repo, root: root, cache: map[string]entry{}}, nil
}

// Root returns the repository's work tree directory.
func (d *Dates) Root() string { return d.root }

// LastModified returns the committer time of the newest commit touching
// absPath. Files outside the work tree or never committed report false.
func (d *Dates) LastModified(absPath string) (time.Time, bool) {
	rel, ok := d.rel(absPath)
	if !ok {
		return time.Time{}, false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if e, ok := d.cache[rel]; ok {
		return e.when, e.ok
	}
	e := d.lookup(rel)
	d.cache[rel] = e
	return e.when, e.ok
}

func (d *Dates) rel(absPath string) (string, bool) {
	p := absPath
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		p = resolved
	}
	rel, err := filepath.Rel(d.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (d *Dates) lookup(rel string) entry {
	iter, err := d.repo.Log(&git.LogOptions{FileName: &rel})
	if err != nil {
		return entry{}
	}
	defer iter.Close()

	var e entry
	err = iter.ForEach(func(c *object.Commit) error {
		e = entry{when: c.Committer.When, ok: true}
		return storer.ErrStop
	})
	if err != nil && !errors.Is(err, storer.ErrStop) {
		return entry{}
	}
	return e
}
