package site

import (
	"context"
	"errors"
	"time"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
)

// runStages runs stages in order and stops at the first fatal or canceled
// stage. Warnings are recorded and the build continues.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			se := &StageError{Kind: ResultCanceled, Stage: st.Name, Err: err}
			bs.Report.Errors = append(bs.Report.Errors, se)
			bs.Report.RecordStageResult(st.Name, ResultCanceled, bs.recorder)
			return se
		}

		start := time.Now()
		err := st.Run(ctx, bs)
		elapsed := time.Since(start)
		bs.Report.StageDurations[string(st.Name)] = elapsed
		bs.recorder.ObserveStageDuration(string(st.Name), elapsed)
		bs.logger.Debug("Stage finished", logfields.Stage(string(st.Name)), logfields.DurationMS(float64(elapsed.Microseconds())/1000))

		se := stageError(st.Name, err)
		if se == nil {
			bs.Report.RecordStageResult(st.Name, ResultSuccess, bs.recorder)
			continue
		}
		bs.Report.RecordStageResult(st.Name, se.Kind, bs.recorder)
		if se.Kind == ResultWarning {
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			bs.logger.Warn("Stage completed with warnings", logfields.Stage(string(st.Name)), logfields.Error(se.Err))
			continue
		}
		bs.Report.Errors = append(bs.Report.Errors, se)
		return se
	}
	return nil
}

// stageError classifies err. A StageError keeps its kind, context errors
// mean canceled, classified warnings stay warnings and the rest is fatal.
func stageError(stage StageName, err error) *StageError {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	kind := ResultFatal
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		kind = ResultCanceled
	case foundationerrors.HasSeverity(err, foundationerrors.SeverityWarning):
		kind = ResultWarning
	}
	return &StageError{Kind: kind, Stage: stage, Err: err}
}
