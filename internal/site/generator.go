package site

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/siteforge/internal/archive"
	"git.home.luguber.info/inful/siteforge/internal/buildcache"
	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/content"
	"git.home.luguber.info/inful/siteforge/internal/gitdates"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/markdown"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/output"
	"git.home.luguber.info/inful/siteforge/internal/plugin"
	"git.home.luguber.info/inful/siteforge/internal/plugin/builtin"
	"git.home.luguber.info/inful/siteforge/internal/theme"
)

// Generator runs site builds for one configuration. It holds no per-build
// state, so a serve loop can call Build repeatedly.
type Generator struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	registry *plugin.Registry
	now      func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for every build.
func WithLogger(l *slog.Logger) Option { return func(g *Generator) { g.logger = l } }

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(g *Generator) { g.recorder = r } }

// WithRegistry replaces the built-in plugin registry.
func WithRegistry(r *plugin.Registry) Option { return func(g *Generator) { g.registry = r } }

// WithClock sets the clock used for draft and expiry decisions.
func WithClock(now func() time.Time) Option { return func(g *Generator) { g.now = now } }

// New returns a generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	if g.registry == nil {
		g.registry = builtin.Registry()
	}
	return g
}

// Config returns the configuration the generator builds from.
func (g *Generator) Config() *config.Config { return g.cfg }

// BuildOptions selects the kind of build.
type BuildOptions struct {
	Mode config.Mode
	// DraftPath is the document previewed in draft mode.
	DraftPath string
	// Clean empties the public directory before writing.
	Clean bool
}

// BuildState is the mutable state of one build. It is created fresh for
// every build and shared by the stages.
type BuildState struct {
	Snapshot config.Snapshot
	BuildID  string
	Options  BuildOptions
	Report   *BuildReport

	Themes  *theme.Themes
	Items   *content.Collection
	Tree    *archive.Tree
	Dests   *output.DestTable
	Writer  *output.Writer
	Plugins *plugin.Enabled
	Hooks   *plugin.Hooks

	Extras  []ExtraPage
	Aliases []output.Alias
	Thumbs  []output.Asset
	Assets  []output.Asset

	converter *markdown.Renderer
	dates     *gitdates.Dates
	cache     *buildcache.Store

	ctx      context.Context
	registry *plugin.Registry
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Build runs one build. The returned report is never nil; the error is the
// first fatal stage error.
func (g *Generator) Build(ctx context.Context, opts BuildOptions) (*BuildReport, error) {
	if opts.Mode == "" {
		opts.Mode = config.ModeBuild
	}
	start := g.now()
	snap := g.cfg.Snapshot(opts.Mode, start)
	if opts.Mode == config.ModeDraft {
		snap = snap.WithDraftPath(opts.DraftPath)
	}

	buildID := uuid.NewString()
	report := NewBuildReport(buildID, opts.Mode, start)
	report.ConfigHash = snap.Hash
	for _, w := range g.cfg.Warnings {
		report.Warn(w)
	}

	bs := &BuildState{
		Snapshot: snap,
		BuildID:  buildID,
		Options:  opts,
		Report:   report,
		Hooks:    &plugin.Hooks{},
		ctx:      ctx,
		registry: g.registry,
		logger:   g.logger.With(logfields.BuildID(buildID), logfields.Mode(string(opts.Mode))),
		recorder: g.recorder,
	}
	defer bs.close()

	bs.logger.Info("Build started")
	err := runStages(ctx, bs, plan(buildPlan, opts.Mode))
	g.finish(ctx, bs)
	return report, err
}

// finish closes out the report, records it and notifies plugins.
func (g *Generator) finish(ctx context.Context, bs *BuildState) {
	r := bs.Report
	if bs.Writer != nil {
		r.FilesWritten, r.FilesSkipped, r.BytesWritten = bs.Writer.Stats()
		g.recorder.AddFilesSkipped(r.FilesSkipped)
	}
	r.Finish()
	r.DeriveOutcome()
	g.recorder.ObserveBuildDuration(r.Duration())
	g.recorder.IncBuildOutcome(string(r.Outcome))

	ctx = context.WithoutCancel(ctx)
	if bs.cache != nil {
		var outputs map[string]string
		if r.Outcome == OutcomeSuccess || r.Outcome == OutcomeWarning {
			outputs = bs.Writer.Fingerprints()
		}
		err := bs.cache.RecordBuild(ctx, buildcache.Build{
			ID:         r.BuildID,
			Started:    r.Start,
			Duration:   r.Duration(),
			Mode:       string(r.Mode),
			Outcome:    string(r.Outcome),
			ConfigHash: r.ConfigHash,
			Singles:    r.Singles,
			Archives:   r.ArchiveNodes,
			Written:    r.FilesWritten,
			Skipped:    r.FilesSkipped,
			Warnings:   len(r.Warnings),
		}, outputs)
		if err != nil {
			bs.logger.Warn("Failed to record build", logfields.Error(err))
		}
	}

	if err := bs.Hooks.End(ctx, bs.summary()); err != nil {
		bs.logger.Warn("End hooks failed", logfields.Error(err))
	}

	if bs.Options.Mode == config.ModeBuild {
		if err := r.Persist(bs.Snapshot.Dirs.Cache); err != nil {
			bs.logger.Warn("Failed to persist build report", logfields.Error(err))
		}
	}

	level := slog.LevelInfo
	if r.Outcome == OutcomeFailed {
		level = slog.LevelError
	}
	bs.logger.Log(ctx, level, "Build finished", slog.String("summary", r.Summary()))
}

func (bs *BuildState) summary() plugin.BuildSummary {
	r := bs.Report
	s := plugin.BuildSummary{
		BuildID:   r.BuildID,
		Mode:      string(r.Mode),
		Outcome:   string(r.Outcome),
		SiteURL:   bs.Snapshot.Site.SiteURL,
		Started:   r.Start,
		Duration:  r.Duration(),
		Singles:   r.Singles,
		Archives:  r.ArchiveNodes,
		Written:   r.FilesWritten,
		Skipped:   r.FilesSkipped,
		Warnings:  len(r.Warnings),
		ConfigSHA: r.ConfigHash,
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Error())
	}
	return s
}

func (bs *BuildState) close() {
	if bs.Plugins != nil {
		if err := bs.Plugins.Close(); err != nil {
			bs.logger.Warn("Plugin cleanup failed", logfields.Error(err))
		}
	}
	if bs.cache != nil {
		if err := bs.cache.Close(); err != nil {
			bs.logger.Warn("Failed to close build cache", logfields.Error(err))
		}
	}
}

// warn logs msg and records it in the report.
func (bs *BuildState) warn(msg string, attrs ...any) {
	bs.logger.Warn(msg, attrs...)
	bs.Report.Warn(msg)
}
