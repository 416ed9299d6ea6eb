// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package main

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/woozymasta/srcfmt/bsp"
	"github.com/woozymasta/srcfmt/dem"
	"github.com/woozymasta/srcfmt/vpk"
)

// fixtureFile is one vpk entry; files must be grouped by ext then dir.
type fixtureFile struct {
	ext, dir, name string
	data           []byte
}

// writeVPK writes a self-contained version 1 archive with data after the tree.
func writeVPK(t *testing.T, dir string, files []fixtureFile) string {
	t.Helper()

	var (
		tree bytes.Buffer
		data bytes.Buffer
	)
	le := func(v any) { _ = binary.Write(&tree, binary.LittleEndian, v) }
	cstr := func(s string) {
		tree.WriteString(s)
		tree.WriteByte(0)
	}

	for i, f := range files {
		if i == 0 || files[i-1].ext != f.ext {
			if i > 0 {
				cstr("")
				cstr("")
			}
			cstr(f.ext)
			cstr(f.dir)
		} else if files[i-1].dir != f.dir {
			cstr("")
			cstr(f.dir)
		}

		cstr(f.name)
		le(crc32.ChecksumIEEE(f.data))
		le(uint16(0))
		le(vpk.EmbeddedChunk)
		le(uint32(data.Len()))
		le(uint32(len(f.data)))
		le(uint16(0xFFFF))
		data.Write(f.data)
	}
	cstr("")
	cstr("")
	cstr("")

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, [3]uint32{vpk.Signature, 1, uint32(tree.Len())})
	out.Write(tree.Bytes())
	out.Write(data.Bytes())

	path := filepath.Join(dir, "pak01.vpk")
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatalf("write vpk: %v", err)
	}

	return path
}

// defaultVPK holds two entries in different directories.
func defaultVPK(t *testing.T, dir string) string {
	t.Helper()

	return writeVPK(t, dir, []fixtureFile{
		{ext: "txt", dir: "scripts", name: "readme", data: []byte("read me\n")},
		{ext: "vmt", dir: "materials/dev", name: "grid", data: []byte(`"LightmappedGeneric" {}`)},
	})
}

// writeBSP writes a map with an uncompressed entity lump and an embedded zip.
func writeBSP(t *testing.T, dir string, entities string) string {
	t.Helper()

	var zipped bytes.Buffer
	zw := zip.NewWriter(&zipped)
	w, err := zw.Create("materials/custom.vmt")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	_, _ = w.Write([]byte("custom"))
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	payloads := map[int][]byte{
		bsp.LumpEntities: []byte(entities),
		bsp.LumpPakfile:  zipped.Bytes(),
	}

	const headerLen = 4 + 4 + bsp.LumpCount*16 + 4
	var (
		table bytes.Buffer
		data  bytes.Buffer
	)
	for i := range bsp.LumpCount {
		p := payloads[i]
		offset := uint32(0)
		if len(p) > 0 {
			offset = uint32(headerLen + data.Len())
			data.Write(p)
		}

		_ = binary.Write(&table, binary.LittleEndian, [4]uint32{offset, uint32(len(p)), 0, 0})
	}

	var out bytes.Buffer
	out.WriteString(bsp.Magic)
	_ = binary.Write(&out, binary.LittleEndian, uint32(20))
	out.Write(table.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, uint32(3))
	out.Write(data.Bytes())

	path := filepath.Join(dir, "test.bsp")
	if err := os.WriteFile(path, out.Bytes(), 0o600); err != nil {
		t.Fatalf("write bsp: %v", err)
	}

	return path
}

const fixtureEntities = `{
"classname" "worldspawn"
"skyname" "sky_day01_01"
}
{
"classname" "info_player_start"
"origin" "0 0 64"
}
{
"classname" "info_player_start"
"origin" "128 0 64"
}
`

// writeDemo writes a header followed by a sync tick and stop frame.
func writeDemo(t *testing.T, dir string) string {
	t.Helper()

	var b bytes.Buffer
	le := func(v any) { _ = binary.Write(&b, binary.LittleEndian, v) }
	field := func(s string) {
		var f [260]byte
		copy(f[:], s)
		b.Write(f[:])
	}

	b.WriteString(dem.Magic)
	b.WriteByte(0)
	le(uint32(3))
	le(uint32(24))
	field("localhost:27015")
	field("player")
	field("cp_badlands")
	field("tf")
	le(float32(2.5))
	le(uint32(165))
	le(uint32(160))
	le(uint32(0))

	b.WriteByte(byte(dem.FrameSyncTick))
	le(uint32(0))
	b.WriteByte(byte(dem.FrameStop))
	le(uint32(165))

	path := filepath.Join(dir, "match.dem")
	if err := os.WriteFile(path, b.Bytes(), 0o600); err != nil {
		t.Fatalf("write demo: %v", err)
	}

	return path
}

// runCmd executes one command line and returns stdout.
func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(args, bytes.NewBufferString(stdin), &stdout, &stderr)
	if err != nil {
		t.Logf("stderr: %s", stderr.String())
	}

	return stdout.String(), err
}
