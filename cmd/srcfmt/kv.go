// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/woozymasta/srcfmt/keyvalues"
)

// openInput opens a file, or stdin for "-".
func openInput(s ioStreams, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(s.stdin), nil
	}

	return os.Open(name)
}

// parseConditionFlags parses NAME=bool pairs; a bare NAME means true.
func parseConditionFlags(values []string) (map[string]bool, error) {
	out := make(map[string]bool, len(values))
	for _, v := range values {
		name, raw, found := strings.Cut(v, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), "$")
		if name == "" {
			return nil, fmt.Errorf("invalid --cond %q", v)
		}

		if !found {
			out[name] = true
			continue
		}

		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --cond %q: %w", v, err)
		}

		out[name] = enabled
	}

	return out, nil
}

func kvDecodeCmd(s ioStreams, args []string) error {
	var (
		common   commonFlags
		conds    []string
		langPath string
		lookup   string
	)

	fs := newFlagSet("kv decode", s.stderr)
	common.register(fs, formatJSON)
	fs.StringArrayVar(&conds, "cond", nil, "condition value NAME=true|false (repeatable)")
	fs.StringVar(&langPath, "lang", "", "language file used to translate #token values")
	fs.StringVar(&lookup, "get", "", "print only the value at a dot-separated path")
	pos, err := parseArgs(fs, args, 1, 1, "<file|->")
	if err != nil {
		return err
	}

	env, err := common.setup(s.stderr)
	if err != nil {
		return err
	}

	overrides, err := parseConditionFlags(conds)
	if err != nil {
		return err
	}

	in, err := openInput(s, pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	opts := keyvalues.DecodeOptions{Conditions: env.cfg.conditions(overrides)}
	doc, err := keyvalues.DecodeReader(in, opts)
	if err != nil {
		return err
	}

	if langPath != "" {
		doc, err = translate(doc, langPath)
		if err != nil {
			return err
		}
	}

	if lookup == "" {
		return writeOutput(s.stdout, common.format, doc)
	}

	v, ok := doc.Lookup(lookup)
	if !ok {
		return fmt.Errorf("key %q not found", lookup)
	}

	if str, ok := v.(string); ok && (common.format == formatText || common.format == "") {
		_, err = fmt.Fprintln(s.stdout, str)
		return err
	}

	return writeOutput(s.stdout, common.format, v)
}

// translate substitutes #token values of doc using the language file at langPath.
func translate(doc keyvalues.Map, langPath string) (keyvalues.Map, error) {
	f, err := os.Open(langPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	lang, err := keyvalues.DecodeReader(f, keyvalues.DecodeOptions{})
	if err != nil {
		return nil, fmt.Errorf("language file %s: %w", langPath, err)
	}

	tokens, ok := keyvalues.LanguageTokens(lang)
	if !ok {
		return nil, fmt.Errorf("language file %s: no lang/Tokens block", langPath)
	}

	return keyvalues.NewTranslator(tokens, doc).Translate(), nil
}

func kvEncodeCmd(s ioStreams, args []string) error {
	var (
		common commonFlags
		flat   bool
	)

	fs := newFlagSet("kv encode", s.stderr)
	common.register(fs, formatKV)
	fs.BoolVar(&flat, "flat", false, "write without indentation")
	pos, err := parseArgs(fs, args, 1, 1, "<file.json|file.yaml|->")
	if err != nil {
		return err
	}

	if _, err := common.setup(s.stderr); err != nil {
		return err
	}

	in, err := openInput(s, pos[0])
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	// YAML is a superset of JSON, one decoder serves both.
	var raw any
	if err := yaml.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}

	doc, err := toKeyValues(raw)
	if err != nil {
		return err
	}

	if common.format != formatKV {
		return writeOutput(s.stdout, common.format, doc)
	}

	return keyvalues.Encode(s.stdout, doc, keyvalues.EncodeOptions{Pretty: !flat})
}
