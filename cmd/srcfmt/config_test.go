// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/woozymasta/srcfmt/bsp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "srcfmt.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
conditions:
  X360: true
  WIN32: false
decompressor:
  path: /usr/bin/xz
  args: [--format=lzma, -dc]
log:
  level: debug
extract:
  workers: 4
  verify_crc: true
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Decompressor.Path != "/usr/bin/xz" || len(cfg.Decompressor.Args) != 2 {
		t.Fatalf("decompressor=%+v", cfg.Decompressor)
	}
	if cfg.Extract.Workers != 4 || !cfg.Extract.VerifyCRC || cfg.Log.Level != "debug" {
		t.Fatalf("cfg=%+v", cfg)
	}

	conds := cfg.conditions(map[string]bool{"X360": false, "OSX": true})
	if conds.Evaluate("$WIN32") || conds.Evaluate("$X360") || !conds.Evaluate("$OSX") {
		t.Fatal("conditions: flag overrides must win over config, config over defaults")
	}

	dec, ok := cfg.decompressor(slog.New(slog.DiscardHandler)).(bsp.ExecDecompressor)
	if !ok || dec.Path != "/usr/bin/xz" {
		t.Fatalf("decompressor=%#v", dec)
	}
}

func TestLoadConfig_EmptyAndMissing(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty config: %v", err)
	}
	if !cfg.conditions(nil).Evaluate("$WIN32") {
		t.Fatal("empty config must keep default conditions")
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file: want error")
	}
}

func TestLoadConfig_UnknownField(t *testing.T) {
	t.Parallel()

	if _, err := loadConfig(writeConfig(t, "extract:\n  threads: 2\n")); err == nil {
		t.Fatal("unknown field: want error")
	}
}

func TestLoadConfig_Env(t *testing.T) {
	path := writeConfig(t, "decompressor:\n  in_process: true\n")
	t.Setenv(configEnv, path)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if _, ok := cfg.decompressor(nil).(bsp.LZMADecompressor); !ok {
		t.Fatal("in_process must select the in-process decoder")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		got, err := parseLevel(name)
		if err != nil || got != want {
			t.Errorf("parseLevel(%q)=%v, %v; want %v", name, got, err, want)
		}
	}

	if _, err := parseLevel("loud"); err == nil {
		t.Fatal("invalid level: want error")
	}
}
