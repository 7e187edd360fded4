package config

import (
	"strings"
	"time"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
)

// ValidateConfig checks the loaded configuration. It returns a config
// ClassifiedError describing the first problem found.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{
		v.validatePostTypes,
		v.validateTaxonomies,
		v.validateServe,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validatePostTypes() error {
	seen := make(map[string]bool, len(cv.config.PostTypes))
	for _, pt := range cv.config.PostTypes {
		if pt.Name == "" {
			return foundationerrors.ConfigError("post type name cannot be empty").Build()
		}
		if strings.ContainsAny(pt.Name, `/\`) {
			return foundationerrors.ConfigError("post type name must be a single directory name").
				WithContext("post_type", pt.Name).Build()
		}
		if seen[pt.Name] {
			return foundationerrors.ConfigError("duplicate post type").
				WithContext("post_type", pt.Name).Build()
		}
		seen[pt.Name] = true
		if pt.Limit < 0 || pt.FirstLimit < 0 {
			return foundationerrors.ConfigError("post type limits must not be negative").
				WithContext("post_type", pt.Name).
				WithContext("limit", pt.Limit).
				WithContext("first_limit", pt.FirstLimit).Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validateTaxonomies() error {
	seen := make(map[string]bool, len(cv.config.Taxonomies))
	for _, tax := range cv.config.Taxonomies {
		if tax.Name == "" {
			return foundationerrors.ConfigError("taxonomy name cannot be empty").Build()
		}
		if seen[tax.Name] {
			return foundationerrors.ConfigError("duplicate taxonomy").
				WithContext("taxonomy", tax.Name).Build()
		}
		seen[tax.Name] = true
		if _, clash := cv.config.PostTypes.Get(tax.Name); clash {
			return foundationerrors.ConfigError("taxonomy name collides with a post type").
				WithContext("taxonomy", tax.Name).Build()
		}
		if tax.Limit < 0 || tax.FirstLimit < 0 {
			return foundationerrors.ConfigError("taxonomy limits must not be negative").
				WithContext("taxonomy", tax.Name).Build()
		}
		terms := make(map[string]bool, len(tax.Terms))
		for _, term := range tax.Terms {
			if term.Name == "" {
				return foundationerrors.ConfigError("term name cannot be empty").
					WithContext("taxonomy", tax.Name).Build()
			}
			if terms[term.Name] {
				return foundationerrors.ConfigError("duplicate term").
					WithContext("taxonomy", tax.Name).
					WithContext("term", term.Name).Build()
			}
			terms[term.Name] = true
		}
	}
	return nil
}

func (cv *configurationValidator) validateServe() error {
	s := cv.config.Serve
	if s.Port < 0 || s.Port > 65535 {
		return foundationerrors.ConfigError("serve.port out of range").
			WithContext("port", s.Port).Build()
	}
	if s.RebuildInterval != "" {
		if _, err := time.ParseDuration(s.RebuildInterval); err != nil {
			return foundationerrors.ConfigError("invalid serve.rebuild_interval").
				WithCause(err).
				WithContext("rebuild_interval", s.RebuildInterval).Build()
		}
	}
	return nil
}

// RebuildEvery returns the parsed periodic rebuild interval, zero when disabled.
func (s ServeConfig) RebuildEvery() time.Duration {
	d, err := time.ParseDuration(s.RebuildInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
