// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/woozymasta/srcfmt/bsp"
	"github.com/woozymasta/srcfmt/keyvalues"
)

// configEnv names the environment variable holding the config file path.
const configEnv = "SRCFMT_CONFIG"

// Config is the optional YAML configuration file. It is loaded from --config
// or SRCFMT_CONFIG only; there is no automatic discovery.
type Config struct {
	// Conditions overrides or adds keyvalues condition values by name.
	Conditions map[string]bool `yaml:"conditions,omitempty"`
	// Decompressor selects the compressed lump decoder.
	Decompressor DecompressorConfig `yaml:"decompressor"`
	// Log configures diagnostics on stderr.
	Log LogConfig `yaml:"log"`
	// Extract configures vpk extraction.
	Extract ExtractConfig `yaml:"extract"`
}

// DecompressorConfig configures compressed lump decoding.
type DecompressorConfig struct {
	// Path is the external decoder executable.
	Path string `yaml:"path,omitempty"`
	// Args replace the default "d -si -so" decoder arguments.
	Args []string `yaml:"args,omitempty"`
	// InProcess decodes without an external process.
	InProcess bool `yaml:"in_process,omitempty"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level,omitempty"`
}

// ExtractConfig holds extraction defaults.
type ExtractConfig struct {
	// Workers is the number of extraction workers; zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`
	// VerifyCRC checks every extracted entry.
	VerifyCRC bool `yaml:"verify_crc,omitempty"`
}

// loadConfig reads path, or SRCFMT_CONFIG when path is empty. No file means defaults.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// conditions builds keyvalues conditions: defaults overlaid with configured values.
func (c Config) conditions(overrides map[string]bool) keyvalues.Conditions {
	conds := keyvalues.DefaultConditions()
	for name, v := range c.Conditions {
		conds[name] = keyvalues.Bool(v)
	}
	for name, v := range overrides {
		conds[name] = keyvalues.Bool(v)
	}

	return conds
}

// decompressor builds the configured lump decoder.
func (c Config) decompressor(logger *slog.Logger) bsp.Decompressor {
	if c.Decompressor.InProcess {
		return bsp.LZMADecompressor{}
	}

	return bsp.ExecDecompressor{
		Path:   c.Decompressor.Path,
		Args:   c.Decompressor.Args,
		Logger: logger,
	}
}

// parseLevel maps a level name to slog.Level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}

	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return level, fmt.Errorf("invalid log level %q", name)
	}

	return level, nil
}
