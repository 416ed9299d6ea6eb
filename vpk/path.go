// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"path"
	"strings"
)

// NormalizePath converts a user or archive path to lookup form.
// It trims spaces, accepts both "/" and "\", removes leading "./" and "/",
// cleans "." segments and lowercases the result.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.ToLower(strings.TrimSuffix(raw, "/"))
}

// normalizePathForMatching normalizes separators for matcher use without changing case.
func normalizePathForMatching(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, `/`)
	p = strings.TrimPrefix(p, "./")
	return p
}

// splitArchiveName splits a directory file name into storage dir, base name and extension.
// "maps/pak01_dir.vpk" gives "maps", "pak01", ".vpk" and reports a multi-chunk set.
func splitArchiveName(name string) (dir string, base string, ext string, multiChunk bool) {
	dir = path.Dir(name)
	file := path.Base(name)
	ext = path.Ext(file)
	stem := strings.TrimSuffix(file, ext)

	base, multiChunk = strings.CutSuffix(stem, "_dir")
	return dir, base, ext, multiChunk
}
