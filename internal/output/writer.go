package output

import (
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/inful/mdfp"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// Writer writes files below the public directory. Files whose fingerprint
// matches the previous build and that still exist are left untouched.
type Writer struct {
	public string
	prev   map[string]string

	mu      sync.Mutex
	written map[string]string

	wrote   atomic.Int64
	skipped atomic.Int64
	bytes   atomic.Int64

	logger *slog.Logger
}

// NewWriter returns a writer for publicDir. previous maps destination paths
// to the fingerprints recorded by the last build; it may be nil.
func NewWriter(publicDir string, previous map[string]string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if previous == nil {
		previous = map[string]string{}
	}
	return &Writer{public: publicDir, prev: previous, written: map[string]string{}, logger: logger}
}

// Fingerprint returns the fingerprint recorded for data.
func Fingerprint(data []byte) string {
	return mdfp.CalculateFingerprintFromParts("", string(data))
}

// Path returns the absolute file path of dest. dest must stay inside the
// public directory.
func (w *Writer) Path(dest string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(dest, "/")))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", foundationerrors.OutputError("destination escapes public directory").
			WithContext("dest_path", dest).Build()
	}
	return filepath.Join(w.public, clean), nil
}

// Write stores data at dest.
func (w *Writer) Write(dest string, data []byte) error {
	abs, err := w.Path(dest)
	if err != nil {
		return err
	}
	fp := Fingerprint(data)
	if w.unchanged(dest, abs, fp) {
		w.record(dest, fp)
		w.skipped.Add(1)
		return nil
	}
	if err := writeAtomic(abs, data); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryOutput, "failed to write output").
			WithContext("dest_path", dest).Build()
	}
	w.record(dest, fp)
	w.wrote.Add(1)
	w.bytes.Add(int64(len(data)))
	w.logger.Debug("Wrote output", logfields.DestPath(dest))
	return nil
}

// Copy copies the file src to dest.
func (w *Writer) Copy(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read asset").
			WithContext("source", src).
			WithContext("dest_path", dest).Build()
	}
	return w.Write(dest, data)
}

func (w *Writer) unchanged(dest, abs, fp string) bool {
	if w.prev[dest] != fp {
		return false
	}
	_, err := os.Stat(abs)
	return err == nil
}

func (w *Writer) record(dest, fp string) {
	w.mu.Lock()
	w.written[dest] = fp
	w.mu.Unlock()
}

// writeAtomic writes through a temp file in the target directory so readers
// never observe a partial page.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// Fingerprints returns the fingerprint of every path handled by this writer.
func (w *Writer) Fingerprints() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.written)
}

// Stats reports files written, files skipped as unchanged and bytes written.
func (w *Writer) Stats() (written, skipped int, bytes int64) {
	return int(w.wrote.Load()), int(w.skipped.Load()), w.bytes.Load()
}

// PruneStale removes files of the previous build that this build did not
// produce. It returns the removed destination paths.
func (w *Writer) PruneStale() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	var removed []string
	for dest := range w.prev {
		if _, ok := w.written[dest]; ok {
			continue
		}
		abs, err := w.Path(dest)
		if err != nil {
			continue
		}
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return removed, foundationerrors.WrapError(err, foundationerrors.CategoryOutput, "failed to remove stale output").
				WithContext("dest_path", dest).Build()
		}
		removed = append(removed, dest)
	}
	return removed, nil
}

// Asset is a file copied verbatim into the public directory.
type Asset struct {
	Src  string
	Dest string
}

// ListTree lists every regular file below srcDir as an asset under
// destPrefix. A missing srcDir lists nothing.
func ListTree(srcDir, destPrefix string) ([]Asset, error) {
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return nil, nil
	}
	var out []Asset
	err := filepath.WalkDir(srcDir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		out = append(out, Asset{Src: p, Dest: filepath.ToSlash(filepath.Join(destPrefix, rel))})
		return nil
	})
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to list directory").
			WithContext("source", srcDir).Build()
	}
	return out, nil
}

// ClaimAssets claims the destination of every asset, owned by its source file.
func ClaimAssets(claims *DestTable, assets []Asset) error {
	for _, a := range assets {
		if err := claims.Claim(a.Dest, a.Src); err != nil {
			return err
		}
	}
	return nil
}

// CopyAssets copies assets into the public directory.
func (w *Writer) CopyAssets(assets []Asset) error {
	for _, a := range assets {
		if err := w.Copy(a.Src, a.Dest); err != nil {
			return err
		}
	}
	return nil
}

// Clean removes everything inside dir and keeps dir itself.
func Clean(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read directory").
			WithContext("path", dir).Build()
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to clean directory").
				WithContext("path", dir).Build()
		}
	}
	return nil
}
