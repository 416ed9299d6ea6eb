// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/woozymasta/srcfmt/keyvalues"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
	formatKV   = "kv"
)

// cborEncMode uses Core Deterministic Encoding so equal values give identical bytes.
var cborEncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("srcfmt: CBOR encoder initialization failed: " + err.Error())
	}

	return mode
}()

// textWriter is implemented by values with a human-readable rendering.
type textWriter interface {
	writeText(w io.Writer) error
}

// writeOutput renders v in format.
func writeOutput(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}

		return enc.Close()
	case formatCBOR:
		data, err := cborEncMode.Marshal(v)
		if err != nil {
			return err
		}

		_, err = w.Write(data)
		return err
	case formatKV:
		m, ok := asKeyValues(v)
		if !ok {
			return fmt.Errorf("format %q is not available for this output", formatKV)
		}

		return keyvalues.Encode(w, m, keyvalues.EncodeOptions{Pretty: true})
	case formatText, "":
		if tw, ok := v.(textWriter); ok {
			return tw.writeText(w)
		}

		return writeOutput(w, formatYAML, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// asKeyValues converts outputs that have a KeyValues shape.
func asKeyValues(v any) (keyvalues.Map, bool) {
	switch t := v.(type) {
	case keyvalues.Map:
		return t, true
	case map[string]any:
		return keyvalues.Map(t), true
	case []keyvalues.Map:
		// Entity lists become numbered blocks.
		out := make(keyvalues.Map, len(t))
		for i, m := range t {
			out[fmt.Sprintf("%d", i)] = m
		}

		return out, true
	default:
		return nil, false
	}
}

// toKeyValues converts a decoded JSON/YAML document into a KeyValues tree.
// Scalars are rendered as strings; lists become numbered blocks.
func toKeyValues(v any) (keyvalues.Map, error) {
	m, ok := v.(map[string]any)
	if !ok {
		if _, isMap := v.(map[any]any); !isMap {
			return nil, fmt.Errorf("top level must be a mapping, got %T", v)
		}

		converted, err := toKeyValuesValue(v)
		if err != nil {
			return nil, err
		}

		return converted.(keyvalues.Map), nil
	}

	out := make(keyvalues.Map, len(m))
	for k, child := range m {
		converted, err := toKeyValuesValue(child)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}

		out[k] = converted
	}

	return out, nil
}

func toKeyValuesValue(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		return toKeyValues(t)
	case map[any]any:
		// YAML mappings with non-string keys.
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprint(k)] = item
		}

		return toKeyValues(m)
	case []any:
		list := make(map[string]any, len(t))
		for i, item := range t {
			list[fmt.Sprintf("%d", i)] = item
		}

		return toKeyValues(list)
	case string:
		return t, nil
	case nil:
		return "", nil
	case bool:
		if t {
			return "1", nil
		}

		return "0", nil
	default:
		return fmt.Sprint(t), nil
	}
}
