// Package output writes rendered pages and assets to the public directory.
package output

import (
	"slices"
	"sync"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
)

// DestTable records which page owns each destination path. Every content
// page, archive page, alias and extra page claims its path before anything
// is written, so a conflict aborts the build with both owners named.
//
// A table lives for one build.
type DestTable struct {
	mu       sync.Mutex
	owners   map[string]string
	order    []string
	recorder metrics.Recorder
}

// NewDestTable returns an empty table. rec may be nil.
func NewDestTable(rec metrics.Recorder) *DestTable {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &DestTable{owners: map[string]string{}, recorder: rec}
}

// Claim assigns destPath to owner. Claiming a path twice for the same owner
// is a no-op; a different owner is a fatal duplicate_dest_path error.
func (d *DestTable) Claim(destPath, owner string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if first, ok := d.owners[destPath]; ok {
		if first == owner {
			return nil
		}
		d.recorder.IncDuplicateDest()
		return foundationerrors.OutputError("duplicate_dest_path").
			WithContext("first", first).
			WithContext("second", owner).
			WithContext("dest_path", destPath).
			Fatal().Build()
	}
	d.owners[destPath] = owner
	d.order = append(d.order, destPath)
	return nil
}

// Owner returns the owner of destPath.
func (d *DestTable) Owner(destPath string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.owners[destPath]
	return o, ok
}

// Len returns the number of claimed paths.
func (d *DestTable) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.order)
}

// Paths returns the claimed paths in claim order.
func (d *DestTable) Paths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.order)
}
