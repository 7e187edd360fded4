package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/siteforge/internal/config"
	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
	"git.home.luguber.info/inful/siteforge/internal/logfields"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/serve"
	"git.home.luguber.info/inful/siteforge/internal/site"
)

// ServeCmd builds the whole site into a temporary directory and serves it.
type ServeCmd struct {
	Port int  `short:"p" help:"Port to listen on (defaults to serve.port)"`
	All  bool `help:"Include drafts"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.loadConfig(root.Config)
	if err != nil {
		return err
	}
	if s.All {
		cfg.ServeAll = true
	}
	snap := cfg.Snapshot(config.ModeServe, nowFunc())
	watch := []string{snap.Dirs.Docs, snap.Dirs.Themes, snap.Dirs.Static, root.Config}
	return runPreview(g, cfg, s.Port, site.BuildOptions{Mode: config.ModeServe}, watch)
}

// DraftCmd previews one document rendered at the site root.
type DraftCmd struct {
	Path string `arg:"" help:"Document to preview" type:"existingfile"`
	Port int    `short:"p" help:"Port to listen on (defaults to serve.port)"`
}

func (d *DraftCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.loadConfig(root.Config)
	if err != nil {
		return err
	}
	return runPreview(g, cfg, d.Port, site.BuildOptions{Mode: config.ModeDraft, DraftPath: d.Path}, []string{d.Path})
}

// runPreview points the public directory at a temporary directory, serves it
// and removes it on exit.
func runPreview(g *Global, cfg *config.Config, port int, opts site.BuildOptions, watch []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := g.logger()

	if port == 0 {
		port = cfg.Serve.Port
	}
	tmp, err := os.MkdirTemp("", "siteforge_")
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "create temp output").Build()
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			logger.Warn("failed to remove temp output", logfields.Path(tmp), logfields.Error(err))
		} else {
			logger.Info("removed temp output directory", logfields.Path(tmp))
		}
	}()
	cfg.Directory.Public = tmp
	cfg.Site.SiteURL = "http://127.0.0.1:" + strconv.Itoa(port)
	opts.Clean = true

	var reg *prom.Registry
	serveOpts := serve.Options{
		Addr:         net.JoinHostPort("127.0.0.1", strconv.Itoa(port)),
		Public:       tmp,
		Watch:        watch,
		RebuildEvery: cfg.Serve.RebuildEvery(),
		Logger:       logger,
	}
	if cfg.Serve.Metrics {
		reg = prom.NewRegistry()
		serveOpts.Metrics = metrics.HTTPHandler(reg)
	}
	gen := g.newGenerator(cfg, reg)
	build := func(ctx context.Context) (*site.BuildReport, error) {
		report, err := gen.Build(ctx, opts)
		fmt.Println(report.Summary())
		return report, err
	}
	return serve.New(build, serveOpts).Run(ctx)
}
