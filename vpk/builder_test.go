// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

// vpkFile is one entry for the manual archive builder.
type vpkFile struct {
	ext     string
	dir     string
	name    string
	preload []byte
	data    []byte
	chunk   uint16
}

// vpkLayout drives buildVPK.
type vpkLayout struct {
	files      []vpkFile
	version    uint32
	multiChunk bool
	// terminator overrides the record terminator when non-zero.
	terminator uint16
}

// buildVPK writes a directory file and chunk payloads by hand.
func buildVPK(t testing.TB, l vpkLayout) ([]byte, map[uint16][]byte) {
	t.Helper()

	chunks := map[uint16][]byte{}
	var embedded []byte
	rel := make([]uint32, len(l.files))
	for i, f := range l.files {
		if len(f.data) == 0 {
			continue
		}

		if l.multiChunk && f.chunk != EmbeddedChunk {
			rel[i] = uint32(len(chunks[f.chunk]))
			chunks[f.chunk] = append(chunks[f.chunk], f.data...)
			continue
		}

		rel[i] = uint32(len(embedded))
		embedded = append(embedded, f.data...)
	}

	headerLen := uint32(headerSizeV1)
	if l.version == 2 {
		headerLen = headerSizeV2
	}

	tree := writeTestTree(l, rel, 0)
	if !l.multiChunk && l.version == 2 {
		// Self-contained version 2 stores absolute offsets.
		tree = writeTestTree(l, rel, headerLen+uint32(len(tree)))
	}

	var out bytes.Buffer
	put := func(v any) {
		if err := binary.Write(&out, binary.LittleEndian, v); err != nil {
			t.Fatalf("binary.Write: %v", err)
		}
	}
	put(Signature)
	put(l.version)
	if l.version == 2 {
		// Non-zero metadata catches a tree size read from the wrong word.
		put([4]uint32{uint32(len(embedded)) + 100, 0, 48, 0})
	}
	put(uint32(len(tree)))
	out.Write(tree)
	out.Write(embedded)

	return out.Bytes(), chunks
}

// writeTestTree groups files by extension then directory, preserving first-seen order.
func writeTestTree(l vpkLayout, rel []uint32, shift uint32) []byte {
	var (
		exts   []string
		dirs   = map[string][]string{}
		byPair = map[[2]string][]int{}
	)
	for i, f := range l.files {
		if _, ok := dirs[f.ext]; !ok {
			exts = append(exts, f.ext)
			dirs[f.ext] = nil
		}

		pair := [2]string{f.ext, f.dir}
		if _, ok := byPair[pair]; !ok {
			dirs[f.ext] = append(dirs[f.ext], f.dir)
		}
		byPair[pair] = append(byPair[pair], i)
	}

	terminator := uint16(recordTerminator)
	if l.terminator != 0 {
		terminator = l.terminator
	}

	var tree bytes.Buffer
	cstr := func(s string) {
		tree.WriteString(s)
		tree.WriteByte(0)
	}
	for _, ext := range exts {
		cstr(ext)
		for _, dir := range dirs[ext] {
			cstr(dir)
			for _, i := range byPair[[2]string{ext, dir}] {
				f := l.files[i]
				cstr(f.name)

				offset := rel[i]
				if len(f.data) > 0 {
					offset += shift
				}

				full := append(append([]byte{}, f.preload...), f.data...)
				_ = binary.Write(&tree, binary.LittleEndian, crc32.ChecksumIEEE(full))
				_ = binary.Write(&tree, binary.LittleEndian, uint16(len(f.preload)))
				_ = binary.Write(&tree, binary.LittleEndian, f.chunk)
				_ = binary.Write(&tree, binary.LittleEndian, offset)
				_ = binary.Write(&tree, binary.LittleEndian, uint32(len(f.data)))
				_ = binary.Write(&tree, binary.LittleEndian, terminator)
				tree.Write(f.preload)
			}
			cstr("")
		}
		cstr("")
	}
	cstr("")

	return tree.Bytes()
}

// mapFSArchive places a built archive set into an in-memory file system.
func mapFSArchive(dirName string, dirFile []byte, chunks map[uint16][]byte) fstest.MapFS {
	fsys := fstest.MapFS{dirName: {Data: dirFile}}
	_, base, ext, _ := splitArchiveName(dirName)
	for idx, data := range chunks {
		fsys[fmt.Sprintf("%s_%03d%s", base, idx, ext)] = &fstest.MapFile{Data: data}
	}

	return fsys
}

// writeArchiveSet writes a built archive set to dir and returns the directory file path.
func writeArchiveSet(t testing.TB, dir string, dirName string, dirFile []byte, chunks map[uint16][]byte) string {
	t.Helper()

	for name, f := range mapFSArchive(dirName, dirFile, chunks) {
		if err := os.WriteFile(filepath.Join(dir, name), f.Data, 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	return filepath.Join(dir, dirName)
}
