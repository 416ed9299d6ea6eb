// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ulikunitz/xz/lzma"
)

// headerLen is magic, version, lump table and map revision.
const headerLen = 4 + 4 + LumpCount*16 + 4

// buildBSP lays out lump payloads after the header in slot order.
func buildBSP(t *testing.T, payloads map[int][]byte) []byte {
	t.Helper()

	var (
		table bytes.Buffer
		data  bytes.Buffer
	)
	for i := 0; i < LumpCount; i++ {
		p := payloads[i]
		offset := uint32(0)
		if len(p) > 0 {
			offset = uint32(headerLen + data.Len())
			data.Write(p)
		}

		_ = binary.Write(&table, binary.LittleEndian, [3]uint32{offset, uint32(len(p)), 0})
		table.Write([]byte{0, 0, 0, 0})
	}

	var out bytes.Buffer
	out.WriteString(Magic)
	_ = binary.Write(&out, binary.LittleEndian, uint32(20))
	out.Write(table.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, uint32(7))
	out.Write(data.Bytes())

	if out.Len() != headerLen+data.Len() {
		t.Fatalf("header layout: got %d bytes", out.Len()-data.Len())
	}

	return out.Bytes()
}

// compressLump encodes text as a compressed lump: tag, sizes, properties and payload.
func compressLump(t *testing.T, text []byte) []byte {
	t.Helper()

	var stream bytes.Buffer
	w, err := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(text)), EOSMarker: false}.NewWriter(&stream)
	if err != nil {
		t.Fatalf("lzma writer: %v", err)
	}
	if _, err := w.Write(text); err != nil {
		t.Fatalf("lzma write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("lzma close: %v", err)
	}

	raw := stream.Bytes()
	props, payload := raw[:lzmaPropsSize], raw[lzmaPropsSize+8:]

	var out bytes.Buffer
	out.WriteString(compressedTag)
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(text)))
	_ = binary.Write(&out, binary.LittleEndian, uint32(len(payload)))
	out.Write(props)
	out.Write(payload)

	return out.Bytes()
}

const threeEntities = `{
"classname" "worldspawn"
"skyname" "sky_day01_01"
}
{
"origin" "0 0 64"
"classname" "info_player_start"
}
{
"classname" "light"
"_light" "255 255 255 200"
}
` + "\x00"
