package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const exampleConfig = `site:
  site_name: "site name"
  site_url: ""
  site_desc: ""
  site_image: ""
  language: "en"

post_type:
  - post:
      permalink: /%Y/%m/%d/%H%M%S/
      archive_type: date
  - page:
      permalink: /{slug}/
      archive_type: section

plugins:
  - autop
  - backlink
  - select-pages:
      start: 0
      step: 1

theme:
  name: default

taxonomy:
  - tag:
    - tag1
    - tag 2:
        slug: tag2
    - tag3
  - category:
    - cat1
    - cat11:
        parent: cat1
    - cat12:
        parent: cat1
    - cat2
`

const examplePost = `---
title: sample post
tag: ["tag1", "tag 2"]
category: ["cat11"]
---
This is a sample post.
`

// Init creates an example project in projectDir: the configuration file,
// the directory layout and a sample post.
func Init(projectDir string, force bool) error {
	configPath := filepath.Join(projectDir, DefaultFile)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if _, err := os.Stat(filepath.Dir(filepath.Clean(projectDir))); err != nil {
		return fmt.Errorf("parent directory of %s does not exist: %w", projectDir, err)
	}

	for _, dir := range []string{
		"",
		filepath.Join("docs", "post"),
		filepath.Join("docs", "page"),
		"public",
		"static",
		filepath.Join("themes", "default"),
	} {
		if err := os.MkdirAll(filepath.Join(projectDir, dir), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	samplePath := filepath.Join(projectDir, "docs", "post", "sample.md")
	if _, err := os.Stat(samplePath); os.IsNotExist(err) {
		if err := os.WriteFile(samplePath, []byte(examplePost), 0o644); err != nil {
			return fmt.Errorf("failed to write sample post: %w", err)
		}
	}
	return nil
}
