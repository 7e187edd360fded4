package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// PageKind labels rendered pages.
type PageKind string

const (
	PageSingle  PageKind = "single"
	PageArchive PageKind = "archive"
	PageExtra   PageKind = "extra"
	PageAlias   PageKind = "alias"
)

// Recorder defines observability hooks for build and stage metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	AddPagesRendered(kind PageKind, n int)
	AddFilesSkipped(n int)
	IncDuplicateDest()
	SetArchiveNodes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) AddPagesRendered(PageKind, int)             {}
func (NoopRecorder) AddFilesSkipped(int)                        {}
func (NoopRecorder) IncDuplicateDest()                          {}
func (NoopRecorder) SetArchiveNodes(int)                        {}
