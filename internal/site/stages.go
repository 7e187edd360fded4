package site

import (
	"context"
	"fmt"
	"slices"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
)

// Stage is one step of a build.
type Stage func(ctx context.Context, bs *BuildState) error

type StageName string

const (
	StagePrepare  StageName = "prepare"
	StageLoad     StageName = "load_content"
	StageSetup    StageName = "setup_singles"
	StageSort     StageName = "sort_singles"
	StageArchives StageName = "setup_archives"
	StageURLs     StageName = "resolve_urls"
	StageRender   StageName = "render"
	StageOutput   StageName = "output"
)

// StageResult is the outcome of one stage run.
type StageResult = metrics.ResultLabel

const (
	ResultSuccess  = metrics.ResultSuccess
	ResultWarning  = metrics.ResultWarning
	ResultFatal    = metrics.ResultFatal
	ResultCanceled = metrics.ResultCanceled
)

// StageError records why a stage did not succeed. Kind is never
// ResultSuccess.
type StageError struct {
	Kind  StageResult
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s %s: %v", e.Stage, e.Kind, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

// Warn marks err as non-fatal: the build records it and continues.
func Warn(stage StageName, err error) *StageError {
	return &StageError{Kind: ResultWarning, Stage: stage, Err: err}
}

// StageDef names a stage and the modes it runs in.
type StageDef struct {
	Name StageName
	Run  Stage
	// Modes limits the stage to the listed modes; empty means all.
	Modes []config.Mode
}

// buildPlan is the stage order of every build. Draft previews have no
// archives.
var buildPlan = []StageDef{
	{Name: StagePrepare, Run: stagePrepare},
	{Name: StageLoad, Run: stageLoad},
	{Name: StageSetup, Run: stageSetup},
	{Name: StageSort, Run: stageSort},
	{Name: StageArchives, Run: stageArchives, Modes: []config.Mode{config.ModeBuild, config.ModeServe}},
	{Name: StageURLs, Run: stageURLs},
	{Name: StageRender, Run: stageRender},
	{Name: StageOutput, Run: stageOutput},
}

// plan returns the stages of defs that apply to mode.
func plan(defs []StageDef, mode config.Mode) []StageDef {
	out := make([]StageDef, 0, len(defs))
	for _, d := range defs {
		if len(d.Modes) == 0 || slices.Contains(d.Modes, mode) {
			out = append(out, d)
		}
	}
	return out
}
