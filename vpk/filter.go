// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"slices"
	"strings"
)

// Select returns entries passing prefix, extension and rule filters, sorted by path.
func (a *Archive) Select(opts SelectOptions) ([]Entry, error) {
	opts.applyDefaults()

	matcher, err := newSelectMatcher(opts.Rules, opts.MatcherOptions)
	if err != nil {
		return nil, err
	}

	entries := a.Entries()
	entries = filterEntriesByPrefix(entries, opts.Prefix)
	entries = filterEntriesByExtension(entries, opts.Extensions)
	if matcher != nil {
		entries = slices.DeleteFunc(entries, func(e Entry) bool {
			return !matcher.Match(e.CleanPath())
		})
	}

	return entries, nil
}

// filterEntriesByPrefix keeps entries under prefix (or exact match if it points to a file).
func filterEntriesByPrefix(entries []Entry, prefix string) []Entry {
	prefix = NormalizePath(prefix)
	if prefix == "" {
		return entries
	}

	normalizedPrefix := prefix + "/"
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		entryPath := NormalizePath(entry.CleanPath())
		if entryPath == prefix || strings.HasPrefix(entryPath, normalizedPrefix) {
			out = append(out, entry)
		}
	}

	return out
}

// filterEntriesByExtension keeps entries whose extension is listed; an empty list keeps all.
func filterEntriesByExtension(entries []Entry, extensions []string) []Entry {
	if len(extensions) == 0 {
		return entries
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		allowed[ext] = struct{}{}
	}

	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := allowed[strings.ToLower(trimPlaceholder(entry.Extension))]; ok {
			out = append(out, entry)
		}
	}

	return out
}
