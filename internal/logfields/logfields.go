package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyMode       = "mode"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyDestPath   = "dest_path"
	KeyPostType   = "post_type"
	KeyArchive    = "archive"
	KeyTaxonomy   = "taxonomy"
	KeyTerm       = "term"
	KeyTemplate   = "template"
	KeyPlugin     = "plugin"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DestPath(p string) slog.Attr     { return slog.String(KeyDestPath, p) }
func PostType(n string) slog.Attr     { return slog.String(KeyPostType, n) }
func Archive(id string) slog.Attr     { return slog.String(KeyArchive, id) }
func Taxonomy(n string) slog.Attr     { return slog.String(KeyTaxonomy, n) }
func Term(n string) slog.Attr         { return slog.String(KeyTerm, n) }
func Template(n string) slog.Attr     { return slog.String(KeyTemplate, n) }
func Plugin(n string) slog.Attr       { return slog.String(KeyPlugin, n) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
