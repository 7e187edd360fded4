package config

import (
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/siteforge/internal/foundation/normalization"
)

// NormalizationResult captures adjustments made by NormalizeConfig.
type NormalizationResult struct{ Warnings []string }

var archiveTypeNormalizer = normalization.NewEnumNormalizer("archive_type", map[string]ArchiveType{
	"date":    ArchiveDate,
	"section": ArchiveSection,
	"simple":  ArchiveSimple,
	"none":    ArchiveNone,
}, ArchiveSection)

var logLevelNormalizer = normalization.NewEnumNormalizer("log_level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeArchiveType folds an archive type. Unknown values become section.
func NormalizeArchiveType(raw string) ArchiveType {
	return archiveTypeNormalizer.Normalize(raw)
}

// NormalizeLogLevel folds a log level. Unknown values become info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// NormalizeConfig canonicalizes enumerations and lists before defaults are
// applied. It mutates c and reports every coercion as a warning.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, errors.New("config nil")
	}
	res := &NormalizationResult{}

	for i := range c.PostTypes {
		pt := &c.PostTypes[i]
		pt.Name = strings.TrimSpace(pt.Name)
		if pt.ArchiveType == "" {
			continue
		}
		r := archiveTypeNormalizer.NormalizeWithWarning(fmt.Sprintf("post_type.%s.archive_type", pt.Name), string(pt.ArchiveType))
		if r.Changed {
			res.Warnings = append(res.Warnings, r.Warning)
		}
		pt.ArchiveType = r.Value
	}

	if c.LogLevel != "" {
		r := logLevelNormalizer.NormalizeWithWarning("log_level", string(c.LogLevel))
		if r.Changed {
			res.Warnings = append(res.Warnings, r.Warning)
		}
		c.LogLevel = r.Value
	}

	exts := make([]string, len(c.DocExt))
	for i, e := range c.DocExt {
		exts[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
	}
	c.DocExt = normalizeStringSlice("doc_ext", exts, res)
	c.Exclude = normalizeStringSlice("exclude", c.Exclude, res)
	c.ExtraPages = normalizeStringSlice("extra_pages", c.ExtraPages, res)

	return res, nil
}

// normalizeStringSlice trims and dedupes a list while keeping its order.
func normalizeStringSlice(label string, in []string, res *NormalizationResult) []string {
	if len(in) == 0 {
		return in
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		t := strings.TrimSpace(v)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) != len(in) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("normalized %s list (%d -> %d entries)", label, len(in), len(out)))
	}
	return out
}
