// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/woozymasta/srcfmt/buffer"
)

// Archive is a parsed VPK directory. It is immutable after Open and safe for
// concurrent reads as long as its Storage is.
type Archive struct {
	// storage opens the directory file and its chunk siblings.
	storage Storage
	// entries maps Entry.Path keys to parsed records.
	entries map[string]*Entry
	// lookup maps NormalizePath(CleanPath) to Entry.Path keys.
	lookup map[string]string
	// name is the storage name of the directory file.
	name string
	// dir is the storage directory holding the archive set.
	dir string
	// baseName is the file stem without "_dir" and extension.
	baseName string
	// ext is the directory file extension, usually ".vpk".
	ext string
	// opts are read options fixed at Open.
	opts Options
	// version is the header version, 1 or 2.
	version uint32
	// headerSize is 12 for version 1 and 28 for version 2.
	headerSize uint32
	// treeSize is the directory tree length in bytes.
	treeSize uint32
	// multiChunk reports a "_dir" file with numbered chunk siblings.
	multiChunk bool
}

// OpenFile opens a VPK directory file from the local file system.
func OpenFile(filePath string) (*Archive, error) {
	return OpenFileWithOptions(filePath, Options{})
}

// OpenFileWithOptions opens a VPK directory file from the local file system using explicit options.
func OpenFileWithOptions(filePath string, opts Options) (*Archive, error) {
	return OpenWithOptions(DirStorage(filepath.Dir(filePath)), filepath.Base(filePath), opts)
}

// Open parses the directory file name from storage.
func Open(storage Storage, name string) (*Archive, error) {
	return OpenWithOptions(storage, name, Options{})
}

// OpenWithOptions parses the directory file name from storage using explicit options.
// The directory handle is released before returning; chunk files are opened on demand.
func OpenWithOptions(storage Storage, name string, opts Options) (*Archive, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}

	name = path.Clean(strings.ReplaceAll(name, `\`, `/`))
	f, err := storage.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open VPK: %w", err)
	}

	cur, err := buffer.NewStream(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open VPK: %w", err)
	}
	defer func() { _ = cur.Close() }()

	a := &Archive{
		storage: storage,
		name:    name,
		opts:    opts,
	}
	a.dir, a.baseName, a.ext, a.multiChunk = splitArchiveName(name)

	if err := a.parse(cur); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	return a, nil
}

// parse reads the header and the full directory tree.
func (a *Archive) parse(cur *buffer.Cursor) error {
	if err := a.parseHeader(cur); err != nil {
		return err
	}

	tree, err := cur.Slice(int(a.treeSize))
	if err != nil {
		return fmt.Errorf("%w: read tree of %d bytes: %w", ErrCorruptDirectory, a.treeSize, err)
	}

	return a.parseTree(tree)
}

// parseHeader validates signature and version and reads the tree size.
func (a *Archive) parseHeader(cur *buffer.Cursor) error {
	sig, err := cur.Uint32()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if sig != Signature {
		return fmt.Errorf("%w: got 0x%08X", ErrInvalidHeader, sig)
	}

	if a.version, err = cur.Uint32(); err != nil {
		return fmt.Errorf("%w: read version: %w", ErrInvalidHeader, err)
	}

	switch a.version {
	case 1:
		a.headerSize = headerSizeV1
	case 2:
		a.headerSize = headerSizeV2
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.version)
	}

	// Version 2 metadata precedes the tree size and is not used.
	if a.version == 2 {
		if err := cur.Skip(headerSizeV2 - headerSizeV1); err != nil {
			return fmt.Errorf("%w: read v2 header: %w", ErrInvalidHeader, err)
		}
	}

	if a.treeSize, err = cur.Uint32(); err != nil {
		return fmt.Errorf("%w: read tree size: %w", ErrInvalidHeader, err)
	}

	return nil
}

// parseTree walks extension, directory and filename levels until each empty terminator.
func (a *Archive) parseTree(tree *buffer.Cursor) error {
	a.entries = make(map[string]*Entry)
	a.lookup = make(map[string]string)

	for {
		ext, err := tree.CString()
		if err != nil {
			return treeError(err)
		}
		if ext == "" {
			return nil
		}

		for {
			dir, err := tree.CString()
			if err != nil {
				return treeError(err)
			}
			if dir == "" {
				break
			}

			for {
				name, err := tree.CString()
				if err != nil {
					return treeError(err)
				}
				if name == "" {
					break
				}

				entry, err := a.readRecord(tree, ext, dir, name)
				if err != nil {
					return err
				}

				key := entry.Path()
				a.entries[key] = entry
				a.lookup[NormalizePath(entry.CleanPath())] = key
			}
		}
	}
}

// readRecord reads one fixed-size directory record and its inline preload bytes.
func (a *Archive) readRecord(tree *buffer.Cursor, ext, dir, name string) (*Entry, error) {
	e := &Entry{Extension: ext, Directory: dir, Filename: name}

	r := recordReader{cur: tree}
	e.CRC32 = r.uint32()
	e.PreloadSize = r.uint16()
	e.ChunkIndex = r.uint16()
	e.Offset = r.uint32()
	e.Size = r.uint32()
	term := r.uint16()
	if r.err != nil {
		return nil, fmt.Errorf("%w: record %s: %w", ErrCorruptDirectory, e.Path(), r.err)
	}
	if term != recordTerminator {
		return nil, fmt.Errorf("%w: record %s: terminator 0x%04X", ErrCorruptDirectory, e.Path(), term)
	}

	if e.PreloadSize > 0 {
		preload, err := tree.Next(int(e.PreloadSize))
		if err != nil {
			return nil, fmt.Errorf("%w: preload of %s: %w", ErrCorruptDirectory, e.Path(), err)
		}

		e.Preload = slices.Clone(preload)
	}

	a.resolveSource(e)
	return e, nil
}

// resolveSource fills Source and DataOffset for one entry.
func (a *Archive) resolveSource(e *Entry) {
	dataStart := int64(a.headerSize) + int64(a.treeSize)

	switch {
	case a.multiChunk && e.ChunkIndex != EmbeddedChunk:
		e.Source = a.chunkName(e.ChunkIndex)
		e.DataOffset = int64(e.Offset)
	case a.multiChunk:
		e.Source = a.name
		e.DataOffset = dataStart + int64(e.Offset)
	default:
		// Self-contained archives: only version 1 offsets are relative to the tree end.
		e.Source = a.name
		e.DataOffset = int64(e.Offset)
		if a.version == 1 {
			e.DataOffset += dataStart
		}
	}
}

// recordReader reads consecutive fields and keeps the first error.
type recordReader struct {
	cur *buffer.Cursor
	err error
}

// uint16 reads a little-endian uint16 unless an earlier read failed.
func (r *recordReader) uint16() uint16 {
	if r.err != nil {
		return 0
	}

	v, err := r.cur.Uint16()
	r.err = err
	return v
}

// uint32 reads a little-endian uint32 unless an earlier read failed.
func (r *recordReader) uint32() uint32 {
	if r.err != nil {
		return 0
	}

	v, err := r.cur.Uint32()
	r.err = err
	return v
}

// chunkName returns the storage name of chunk file index, e.g. "pak01_007.vpk".
func (a *Archive) chunkName(index uint16) string {
	return path.Join(a.dir, fmt.Sprintf("%s_%03d%s", a.baseName, index, a.ext))
}

// treeError classifies a string read failure inside the tree.
func treeError(err error) error {
	if errors.Is(err, buffer.ErrUnderflow) {
		return fmt.Errorf("%w: unterminated tree: %w", ErrCorruptDirectory, err)
	}

	return err
}

// Name returns the storage name of the directory file.
func (a *Archive) Name() string {
	return a.name
}

// BaseName returns the archive stem without "_dir" and extension.
func (a *Archive) BaseName() string {
	return a.baseName
}

// Version returns the header version.
func (a *Archive) Version() uint32 {
	return a.version
}

// HeaderSize returns the header length in bytes.
func (a *Archive) HeaderSize() uint32 {
	return a.headerSize
}

// TreeSize returns the directory tree length in bytes.
func (a *Archive) TreeSize() uint32 {
	return a.treeSize
}

// MultiChunk reports whether entry data lives in numbered chunk files.
func (a *Archive) MultiChunk() bool {
	return a.multiChunk
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// Paths returns all entry keys sorted.
func (a *Archive) Paths() []string {
	paths := make([]string, 0, len(a.entries))
	for key := range a.entries {
		paths = append(paths, key)
	}

	slices.Sort(paths)
	return paths
}

// Entries returns copies of all entries sorted by path.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, 0, len(a.entries))
	for _, key := range a.Paths() {
		out = append(out, *a.entries[key])
	}

	return out
}

// Entry returns the entry stored under an exact key or, failing that, a normalized path.
func (a *Archive) Entry(name string) (Entry, bool) {
	e := a.find(name)
	if e == nil {
		return Entry{}, false
	}

	return *e, true
}

// find resolves an entry by exact key first, then case-insensitively by clean path.
func (a *Archive) find(name string) *Entry {
	if e, ok := a.entries[name]; ok {
		return e
	}

	if key, ok := a.lookup[NormalizePath(name)]; ok {
		return a.entries[key]
	}

	return nil
}
