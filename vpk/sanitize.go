// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"fmt"
	"hash/fnv"
	"path"
	"strconv"
	"strings"
	"unicode"
)

// maxSanitizedSegmentLen limits one path segment to common filesystem-safe length.
const maxSanitizedSegmentLen = 240

// reservedDeviceNames are case-insensitive Windows device names that cannot be file names.
var reservedDeviceNames = func() map[string]struct{} {
	names := map[string]struct{}{
		"con": {}, "prn": {}, "aux": {}, "nul": {}, "clock$": {},
	}
	for i := 1; i <= 9; i++ {
		names["com"+strconv.Itoa(i)] = struct{}{}
		names["lpt"+strconv.Itoa(i)] = struct{}{}
	}

	return names
}()

// SanitizePath rewrites one entry path to deterministic filesystem-safe slash-separated form.
func SanitizePath(pathValue string) (string, error) {
	normalizedPath := normalizePathForMatching(pathValue)
	normalizedPath = strings.TrimPrefix(path.Clean("/"+normalizedPath), "/")
	if normalizedPath == "" || normalizedPath == "." {
		return "", nil
	}

	sanitized, err := sanitizeRelativePath(normalizedPath)
	if err != nil {
		return "", err
	}

	if _, err := normalizeExtractEntryPath(sanitized); err != nil {
		return "", err
	}

	return sanitized, nil
}

// sanitizeExtractPaths maps every entry clean path to a unique filesystem-safe path.
// Collisions after case folding get a "~N" suffix in input order.
func sanitizeExtractPaths(entries []Entry) ([]string, error) {
	out := make([]string, len(entries))
	used := make(map[string]struct{}, len(entries))
	nextSuffix := make(map[string]int, len(entries))

	for i := range entries {
		raw := entries[i].CleanPath()
		sanitized, err := sanitizeRelativePath(strings.ReplaceAll(raw, `\`, `/`))
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", raw, err)
		}

		sanitized, err = makeSanitizedPathUnique(sanitized, used, nextSuffix)
		if err != nil {
			return nil, fmt.Errorf("sanitize path %s: %w", raw, err)
		}

		out[i] = sanitized
	}

	return out, nil
}

// sanitizeRelativePath sanitizes each segment of a relative slash-separated path.
func sanitizeRelativePath(relativePath string) (string, error) {
	parts := strings.Split(relativePath, "/")
	sanitized := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "." {
			continue
		}

		segment, err := sanitizePathSegment(part)
		if err != nil {
			return "", err
		}

		sanitized = append(sanitized, segment)
	}
	if len(sanitized) == 0 {
		return "_", nil
	}

	return strings.Join(sanitized, "/"), nil
}

// sanitizePathSegment sanitizes one path segment for broad filesystem compatibility.
func sanitizePathSegment(segment string) (string, error) {
	if segment == ".." {
		return "_", nil
	}

	var b strings.Builder
	b.Grow(len(segment))
	for _, r := range segment {
		if unicode.IsControl(r) || unicode.In(r, unicode.Cf) || r == '\uFFFD' || strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteRune('_')
			continue
		}

		b.WriteRune(r)
	}

	sanitized := strings.TrimRight(b.String(), ". ")
	if sanitized == "" {
		sanitized = "_"
	}

	if isReservedDeviceName(sanitized) {
		sanitized = "_" + sanitized
	}

	if len(sanitized) > maxSanitizedSegmentLen {
		sanitized = shortenSegmentDeterministic(sanitized, maxSanitizedSegmentLen)
	}

	return sanitized, nil
}

// isReservedDeviceName reports whether the part before the first dot is a device name.
func isReservedDeviceName(name string) bool {
	candidate := strings.ToLower(name)
	if dot := strings.IndexByte(candidate, '.'); dot >= 0 {
		candidate = candidate[:dot]
	}

	_, ok := reservedDeviceNames[strings.TrimRight(candidate, " ")]
	return ok
}

// makeSanitizedPathUnique resolves collisions by adding deterministic numeric suffix.
func makeSanitizedPathUnique(pathValue string, used map[string]struct{}, nextSuffix map[string]int) (string, error) {
	key := strings.ToLower(pathValue)
	if _, exists := used[key]; !exists {
		used[key] = struct{}{}
		return pathValue, nil
	}

	dir := path.Dir(pathValue)
	name := path.Base(pathValue)
	startIdx := max(nextSuffix[key], 2)

	for idx := startIdx; idx < 1000000; idx++ {
		candidate := withNumericSuffix(name, idx)
		if dir != "." {
			candidate = dir + "/" + candidate
		}

		candidateKey := strings.ToLower(candidate)
		if _, exists := used[candidateKey]; exists {
			continue
		}

		used[candidateKey] = struct{}{}
		nextSuffix[key] = idx + 1
		return candidate, nil
	}

	return "", ErrInvalidExtractPath
}

// withNumericSuffix appends "~N" before extension and preserves max segment length.
func withNumericSuffix(name string, n int) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	suffix := "~" + strconv.Itoa(n)
	allowedBaseLen := max(maxSanitizedSegmentLen-len(ext)-len(suffix), 1)
	if len(base) > allowedBaseLen {
		base = shortenSegmentDeterministic(base, allowedBaseLen)
	}

	return base + suffix + ext
}

// shortenSegmentDeterministic shortens long segment while keeping a hash of the full value.
func shortenSegmentDeterministic(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	if maxLen <= 10 {
		return value[:maxLen]
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(value))
	hashPart := fmt.Sprintf("~%08x", h.Sum32())

	return value[:max(maxLen-len(hashPart), 1)] + hashPart
}
