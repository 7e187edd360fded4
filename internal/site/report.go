package site

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/version"
)

// Report file names written into the cache directory after each build.
const (
	ReportJSON = "build-report.json"
	ReportText = "build-report.txt"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// BuildReport captures high-level metrics about a site generation run.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Mode            config.Mode
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion
	Warnings        []error // non-fatal issues
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageResult
	StageCounts     map[StageName]StageCount
	Outcome         BuildOutcome

	Singles      int // items that survived setup
	ArchiveNodes int
	Pages        map[metrics.PageKind]int
	FilesWritten int
	FilesSkipped int
	FilesRemoved int
	BytesWritten int64

	ConfigHash string
	Version    string
}

// NewBuildReport constructs a new BuildReport.
func NewBuildReport(buildID string, mode config.Mode, start time.Time) *BuildReport {
	return &BuildReport{
		SchemaVersion:   1,
		BuildID:         buildID,
		Mode:            mode,
		Start:           start,
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[StageName]StageResult),
		StageCounts:     make(map[StageName]StageCount),
		Pages:           make(map[metrics.PageKind]int),
		Version:         version.Version,
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// Duration is the wall time between Start and End.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Warn records a non-fatal issue that did not originate from a stage error.
func (r *BuildReport) Warn(msg string) {
	r.Warnings = append(r.Warnings, errors.New(msg))
}

// RenderedPages is the total number of pages rendered across all kinds.
func (r *BuildReport) RenderedPages() int {
	n := 0
	for _, v := range r.Pages {
		n += v
	}
	return n
}

// RecordStageResult counts res for stage and forwards it to recorder.
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	switch res {
	case ResultSuccess:
		sc.Success++
	case ResultWarning:
		sc.Warning++
	case ResultFatal:
		sc.Fatal++
	case ResultCanceled:
		sc.Canceled++
	}
	r.StageCounts[stage] = sc
	if res != ResultSuccess {
		if r.StageErrorKinds == nil {
			r.StageErrorKinds = make(map[StageName]StageResult)
		}
		r.StageErrorKinds[stage] = res
	}
	if recorder != nil {
		recorder.IncStageResult(string(stage), res)
	}
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	return fmt.Sprintf("build=%s mode=%s duration=%s singles=%d archives=%d pages=%d written=%d skipped=%d removed=%d size=%s errors=%d warnings=%d outcome=%s",
		r.BuildID, r.Mode, r.Duration().Truncate(time.Millisecond), r.Singles, r.ArchiveNodes,
		r.RenderedPages(), r.FilesWritten, r.FilesSkipped, r.FilesRemoved,
		humanize.Bytes(uint64(max(r.BytesWritten, 0))), len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == ResultCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Err returns the first fatal error, or nil when the build did not fail.
func (r *BuildReport) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Persist writes the report atomically into the provided root directory.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(root, ReportJSON), jb); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}
	if err := writeAtomic(filepath.Join(root, ReportText), []byte(r.Summary()+"\n")); err != nil {
		return fmt.Errorf("write report summary: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// SanitizedCopy returns a copy with error fields converted to strings for JSON friendliness.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}
	pages := make(map[string]int, len(r.Pages))
	for k, v := range r.Pages {
		pages[string(k)] = v
	}
	durations := r.StageDurations
	if durations == nil {
		durations = map[string]time.Duration{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:   r.SchemaVersion,
		BuildID:         r.BuildID,
		Mode:            string(r.Mode),
		Start:           r.Start,
		End:             r.End,
		Errors:          make([]string, len(r.Errors)),
		Warnings:        make([]string, len(r.Warnings)),
		StageDurations:  durations,
		StageErrorKinds: sek,
		StageCounts:     stageCounts,
		Outcome:         string(r.Outcome),
		Singles:         r.Singles,
		ArchiveNodes:    r.ArchiveNodes,
		Pages:           pages,
		FilesWritten:    r.FilesWritten,
		FilesSkipped:    r.FilesSkipped,
		FilesRemoved:    r.FilesRemoved,
		BytesWritten:    r.BytesWritten,
		ConfigHash:      r.ConfigHash,
		Version:         r.Version,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion   int                      `json:"schema_version"`
	BuildID         string                   `json:"build_id"`
	Mode            string                   `json:"mode"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Errors          []string                 `json:"errors"`
	Warnings        []string                 `json:"warnings"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds"`
	StageCounts     map[string]StageCount    `json:"stage_counts"`
	Outcome         string                   `json:"outcome"`
	Singles         int                      `json:"singles"`
	ArchiveNodes    int                      `json:"archive_nodes"`
	Pages           map[string]int           `json:"pages"`
	FilesWritten    int                      `json:"files_written"`
	FilesSkipped    int                      `json:"files_skipped"`
	FilesRemoved    int                      `json:"files_removed"`
	BytesWritten    int64                    `json:"bytes_written"`
	ConfigHash      string                   `json:"config_hash,omitempty"`
	Version         string                   `json:"version,omitempty"`
}
