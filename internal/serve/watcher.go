package serve

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// DebounceWindow is the quiet period after the last change before a rebuild.
const DebounceWindow = 300 * time.Millisecond

// debouncer coalesces bursts of triggers into one signal on C.
type debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
	C      chan struct{}
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, C: make(chan struct{}, 1)}
}

func (d *debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer) fire() {
	select {
	case d.C <- struct{}{}:
	default:
	}
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// watcher follows a set of paths recursively and reports relevant changes.
type watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
}

func newWatcher(paths []string, logger *slog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to create file watcher").Build()
	}
	w := &watcher{fs: fw, logger: logger}
	for _, p := range paths {
		if p == "" {
			continue
		}
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !fi.IsDir() {
			if err := fw.Add(p); err != nil {
				logger.Warn("watch add failed", logfields.Path(p), logfields.Error(err))
			}
			continue
		}
		w.addRecursive(p)
	}
	return w, nil
}

func (w *watcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.fs.Add(p); err != nil {
				w.logger.Warn("watch add failed", logfields.Path(p), logfields.Error(err))
			}
		}
		return nil
	})
}

// run forwards relevant events to trigger until ctx is done.
func (w *watcher) run(ctx context.Context, trigger func()) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ignoreEvent(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					w.addRecursive(ev.Name)
				}
			}
			w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			trigger()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (w *watcher) Close() error { return w.fs.Close() }

// ignoreEvent filters hidden files, editor swap files and OS metadata.
func ignoreEvent(p string) bool {
	base := filepath.Base(p)
	switch {
	case strings.HasPrefix(base, "."):
		return true
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return true
	case strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#"):
		return true
	case base == "Thumbs.db":
		return true
	}
	return false
}
