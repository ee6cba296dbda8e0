// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the optional <root>/.guardlink/guardlink.yaml file
// that feeds internal/scan.Options. It has no influence on GAL grammar or
// model semantics — a zero-value Config reproduces every scanner default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the shape of guardlink.yaml.
type Config struct {
	// IncludeGlobs lists extra glob patterns, e.g. "*.proto". It is loaded
	// but not passed to the scanner: scan.Options has no include-glob
	// setting, so only the closed extension set is scanned.
	IncludeGlobs []string `yaml:"include_globs"`

	// ExcludeDirs supplements the default excluded directory names.
	ExcludeDirs []string `yaml:"exclude_dirs"`

	// MaxFileSizeBytes overrides scan.MaxFileSize when positive.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" validate:"gte=0"`

	// ReportDir is an opaque report output directory override. Neither the
	// scanner nor the CLI reads it; the CLI writes a model to stdout or to
	// the path given by --out.
	ReportDir string `yaml:"report_dir"`

	// SeverityAliases maps extra severity spellings, e.g. "sev-1" ->
	// "critical". It is loaded but not applied: the parser only accepts
	// the fixed severity tokens.
	SeverityAliases map[string]string `yaml:"severity_aliases"`

	// Cache configures the incremental scan cache.
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig configures internal/cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

// DefaultPath is where Load (and through it the CLI) looks for a config
// file, relative to a scan root. scan.Scan does not read it.
const DefaultPath = ".guardlink/guardlink.yaml"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	return v
}

// Load reads and validates root/.guardlink/guardlink.yaml. A missing file
// is not an error: it returns a zero-value Config, which reproduces
// spec.md §6.3's defaults.
func Load(root string) (Config, error) {
	path := filepath.Join(root, filepath.FromSlash(DefaultPath))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(root, ".guardlink", "cache")
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}
