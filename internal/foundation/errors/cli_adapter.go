package errors

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Exit codes returned by the siteforge binary.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitConfig     = 7
	ExitExternal   = 8
	ExitInternal   = 10
	ExitBuild      = 11
	ExitFilesystem = 12
)

// CLIErrorAdapter turns errors into exit codes and terminal output.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps an error to the process exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return ExitGeneral
	}
	switch c.Category() {
	case CategoryValidation:
		return ExitUsage
	case CategoryConfig:
		return ExitConfig
	case CategoryNotify, CategoryNetwork:
		return ExitExternal
	case CategoryContent, CategoryArchive, CategoryTemplate, CategoryOutput:
		return ExitBuild
	case CategoryFileSystem, CategoryCache:
		return ExitFilesystem
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError renders err for a terminal. Source files named in the error
// context are listed on their own lines.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	c, ok := AsClassified(err)
	if !ok {
		return "Error: " + err.Error()
	}
	if c.Category() == CategoryInternal && !a.verbose {
		return "Internal error occurred (use -v for details)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s", c.Message())
	for _, s := range c.Sources() {
		b.WriteString("\n  ")
		b.WriteString(s)
	}
	if a.verbose || len(c.Sources()) == 0 {
		fmt.Fprintf(&b, "\n  %s", err.Error())
	} else if cause := c.Cause(); cause != nil {
		fmt.Fprintf(&b, "\n  cause: %s", cause.Error())
	}
	return b.String()
}

// HandleError prints err and exits with its code. Fatal and unclassified
// errors are logged as well.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.verbose || !HasSeverity(err, SeverityWarning) {
		attrs := []any{slog.String("category", string(GetCategory(err)))}
		if !IsClassified(err) {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		a.logger.Error("command failed", attrs...)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}
