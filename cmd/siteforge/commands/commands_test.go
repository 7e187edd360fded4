package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/siteforge/internal/config"
)

func parseCLI(t *testing.T, args ...string) (*kong.Context, *CLI, *Global) {
	t.Helper()
	cli := &CLI{}
	g := &Global{}
	parser, err := kong.New(cli, kong.Name("siteforge"), kong.Bind(g), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli, g
}

func TestParseCommands(t *testing.T) {
	ctx, cli, _ := parseCLI(t, "build", "--clean")
	assert.Equal(t, "build", ctx.Command())
	assert.True(t, cli.Build.Clean)

	ctx, cli, _ = parseCLI(t, "clean")
	assert.Contains(t, ctx.Command(), "clean")
	assert.Equal(t, "public", cli.Clean.Target)

	ctx, cli, _ = parseCLI(t, "-c", "site.yml", "new", "post", "notes/%Y.md")
	assert.Contains(t, ctx.Command(), "new")
	assert.Equal(t, "post", cli.New.Type)
	assert.Equal(t, "notes/%Y.md", cli.New.Path)
	assert.True(t, filepath.IsAbs(cli.Config))
}

func TestVerboseSetsDebugLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	_, _, g := parseCLI(t, "-v", "clean")
	require.NotNil(t, g.Logger)
	assert.Equal(t, slog.LevelDebug, g.level.Level())
	assert.True(t, g.pinned)
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, slogLevel(config.LogLevelDebug))
	assert.Equal(t, slog.LevelWarn, slogLevel(config.LogLevelWarn))
	assert.Equal(t, slog.LevelError, slogLevel(config.LogLevelError))
	assert.Equal(t, slog.LevelInfo, slogLevel(""))
}

func TestInitThenClean(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.DefaultFile)

	ctx, cli, g := parseCLI(t, "-c", cfgPath, "init")
	require.NoError(t, ctx.Run(g, cli))
	assert.FileExists(t, cfgPath)
	assert.FileExists(t, filepath.Join(dir, "docs", "post", "sample.md"))

	stale := filepath.Join(dir, "public", "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	ctx, cli, g = parseCLI(t, "-c", cfgPath, "clean", "public")
	require.NoError(t, ctx.Run(g, cli))
	assert.NoFileExists(t, stale)
	assert.DirExists(t, filepath.Join(dir, "public"))
}
