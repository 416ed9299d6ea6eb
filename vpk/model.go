// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"github.com/woozymasta/pathrules"
)

// Binary layout constants.
const (
	// Signature is the little-endian magic at offset 0 of every VPK directory file.
	Signature uint32 = 0x55AA1234
	// headerSizeV1 is signature, version and tree size.
	headerSizeV1 = 12
	// headerSizeV2 adds four uint32 section sizes after the tree size.
	headerSizeV2 = 28
	// recordTerminator closes every directory record.
	recordTerminator = 0xFFFF
	// EmbeddedChunk marks entries whose data lives in the directory file after the tree.
	EmbeddedChunk uint16 = 0x7FFF
)

// copyBufferSize bounds one read-write step when materializing entry content.
const copyBufferSize = 8 * 1024

// Entry describes one file listed in the directory tree.
type Entry struct {
	// Extension is the tree's first level, without the dot. Files without one use " ".
	Extension string `json:"extension" yaml:"extension"`
	// Directory is the tree's second level. Root files use " ".
	Directory string `json:"directory" yaml:"directory"`
	// Filename is the name without extension.
	Filename string `json:"filename" yaml:"filename"`
	// Source is the storage name of the file holding Size bytes of data.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	// Preload holds the bytes stored inline in the tree; they precede the chunk data.
	Preload []byte `json:"-" yaml:"-"`
	// DataOffset is the resolved absolute offset of the chunk data within Source.
	DataOffset int64 `json:"data_offset" yaml:"data_offset"`
	// CRC32 is the IEEE checksum of the full content.
	CRC32 uint32 `json:"crc32" yaml:"crc32"`
	// Offset is the raw offset as stored in the record.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Size is the number of bytes stored in the chunk file.
	Size uint32 `json:"size" yaml:"size"`
	// PreloadSize is the number of inline bytes.
	PreloadSize uint16 `json:"preload_size,omitempty" yaml:"preload_size,omitempty"`
	// ChunkIndex selects the chunk file for multi-chunk archives.
	ChunkIndex uint16 `json:"chunk_index" yaml:"chunk_index"`
}

// Path returns the entry key "dir/name.ext" exactly as assembled from the tree.
func (e *Entry) Path() string {
	return e.Directory + "/" + e.Filename + "." + e.Extension
}

// CleanPath returns the path with root directory and empty extension placeholders dropped.
func (e *Entry) CleanPath() string {
	name := e.Filename
	if ext := trimPlaceholder(e.Extension); ext != "" {
		name += "." + ext
	}

	dir := trimPlaceholder(e.Directory)
	if dir == "" {
		return name
	}

	return dir + "/" + name
}

// Length returns the full content length: preload plus chunk data.
func (e *Entry) Length() int64 {
	return int64(e.PreloadSize) + int64(e.Size)
}

// Options configures archive reads.
type Options struct {
	// VerifyCRC checks CRC32 of every materialized entry.
	VerifyCRC bool `json:"verify_crc,omitempty" yaml:"verify_crc,omitempty"`
}

// SelectOptions narrows the entry set.
type SelectOptions struct {
	// Prefix keeps entries under a directory (or one exact file).
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// Extensions keeps entries with one of these extensions (case-insensitive, without dot).
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	// Rules are ordered include/exclude glob rules matched against CleanPath.
	Rules []pathrules.Rule `json:"rules,omitempty" yaml:"rules,omitempty"`
	// MatcherOptions control rule matching.
	MatcherOptions pathrules.MatcherOptions `json:"matcher_options,omitzero" yaml:"matcher_options,omitzero"`
}

// ExtractOptions configures Extract behavior.
type ExtractOptions struct {
	// OnEntryDone is called after one entry is fully written to disk.
	OnEntryDone func(entry Entry, written int64, outputPath string) `json:"-" yaml:"-"`
	// FileMode controls output file creation policy.
	FileMode ExtractFileMode `json:"file_mode,omitempty" yaml:"file_mode,omitempty"`
	// Select limits extraction to matching entries.
	Select SelectOptions `json:"select,omitzero" yaml:"select,omitzero"`
	// MaxWorkers is number of extraction workers (zero means GOMAXPROCS).
	MaxWorkers int `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
	// RawNames disables default path sanitization during extract.
	RawNames bool `json:"raw_names,omitempty" yaml:"raw_names,omitempty"`
	// VerifyCRC checks CRC32 of every extracted entry in addition to Options.VerifyCRC.
	VerifyCRC bool `json:"verify_crc,omitempty" yaml:"verify_crc,omitempty"`
}

// ExtractFileMode controls output file open behavior during extraction.
type ExtractFileMode string

// Output file creation policies for extraction.
const (
	// ExtractFileModeAuto first tries create-only, then falls back to truncate for existing files.
	ExtractFileModeAuto ExtractFileMode = "auto"
	// ExtractFileModeTruncate opens existing files with truncate and creates missing files.
	ExtractFileModeTruncate ExtractFileMode = "truncate"
	// ExtractFileModeCreateOnly creates files only when absent and fails on existing files.
	ExtractFileModeCreateOnly ExtractFileMode = "create_only"
)

// applyDefaults fills zero-valued selection options with defaults.
// Without include rules nothing is excluded by default.
func (opts *SelectOptions) applyDefaults() {
	if opts.MatcherOptions == (pathrules.MatcherOptions{}) {
		opts.MatcherOptions.CaseInsensitive = true
	}

	if opts.MatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.MatcherOptions.DefaultAction = pathrules.ActionInclude
		for _, rule := range opts.Rules {
			if rule.Action == pathrules.ActionInclude {
				opts.MatcherOptions.DefaultAction = pathrules.ActionExclude
				break
			}
		}
	}
}

// applyDefaults fills zero-valued extract options with defaults.
func (opts *ExtractOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = ExtractFileModeAuto
	}

	opts.Select.applyDefaults()
}

// trimPlaceholder maps the tree's " " placeholder to an empty string.
func trimPlaceholder(s string) string {
	if s == " " {
		return ""
	}

	return s
}
