package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/siteforge/internal/config"
	"git.home.luguber.info/inful/siteforge/internal/metrics"
	"git.home.luguber.info/inful/siteforge/internal/site"
)

// LogLevelEnv overrides the log level of the configuration file.
const LogLevelEnv = "SITEFORGE_LOG_LEVEL"

// Global carries state shared by all subcommands.
type Global struct {
	Logger *slog.Logger
	level  *slog.LevelVar
	pinned bool
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"siteforge.yml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Build the site into the public directory"`
	Serve ServeCmd `cmd:"" help:"Build into a temporary directory and serve it with live reload"`
	Draft DraftCmd `cmd:"" help:"Preview a single document with live reload"`
	Init  InitCmd  `cmd:"" help:"Initialize a new project"`
	New   NewCmd   `cmd:"" help:"Create a new document from the theme's template"`
	Clean CleanCmd `cmd:"" help:"Remove generated output or the build cache"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	g.level = new(slog.LevelVar)
	switch {
	case c.Verbose:
		g.level.Set(slog.LevelDebug)
		g.pinned = true
	case os.Getenv(LogLevelEnv) != "":
		g.level.Set(slogLevel(config.NormalizeLogLevel(os.Getenv(LogLevelEnv))))
		g.pinned = true
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: g.level}))
	slog.SetDefault(g.Logger)
	return nil
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the configuration and applies its log level unless the
// command line or environment already chose one.
func (g *Global) loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if !g.pinned && g.level != nil && cfg.LogLevel != "" {
		g.level.Set(slogLevel(cfg.LogLevel))
	}
	for _, w := range cfg.Warnings {
		g.logger().Warn(w)
	}
	return cfg, nil
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// newGenerator wires a generator. A non-nil registry enables Prometheus
// metrics for its builds.
func (g *Global) newGenerator(cfg *config.Config, reg *prom.Registry) *site.Generator {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if reg != nil {
		recorder = metrics.NewPrometheusRecorder(reg)
	}
	return site.New(cfg, site.WithLogger(g.logger()), site.WithRecorder(recorder))
}

// projectDir returns the directory holding the configuration file.
func projectDir(configPath string) string {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return filepath.Dir(configPath)
	}
	return filepath.Dir(abs)
}
