// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import "strings"

// Map is one nesting level of a decoded document. Values are string or Map.
type Map map[string]any

// GetString returns the string value stored under key.
func (m Map) GetString(key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}

// GetMap returns the nested level stored under key.
func (m Map) GetMap(key string) (Map, bool) {
	return asMap(m[key])
}

// Lookup resolves a dot-separated path such as "lang.Tokens.Greeting".
func (m Map) Lookup(path string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		level, ok := asMap(cur)
		if !ok {
			return nil, false
		}

		cur, ok = level[part]
		if !ok {
			return nil, false
		}
	}

	return cur, true
}

// LookupFold returns the value stored under key on this level, ignoring key case.
func (m Map) LookupFold(key string) (any, bool) {
	if v, ok := m[key]; ok {
		return v, true
	}

	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}

	return nil, false
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		if child, ok := asMap(v); ok {
			out[k] = child.Clone()
			continue
		}

		out[k] = v
	}

	return out
}

// asMap accepts both Map and plain map[string]any levels.
func asMap(v any) (Map, bool) {
	switch level := v.(type) {
	case Map:
		return level, true
	case map[string]any:
		return Map(level), true
	default:
		return nil, false
	}
}
