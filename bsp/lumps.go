// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"encoding/binary"
	"strings"
)

// LumpCount is the fixed number of lump slots after the header.
const LumpCount = 64

// Interpreted lump slots.
const (
	LumpEntities = 0
	LumpPakfile  = 40
)

// LumpNames are Source engine lump slot names indexed by slot.
var LumpNames = [LumpCount]string{
	"entities", "planes", "texdata", "vertexes", "visibility", "nodes", "texinfo", "faces",
	"lighting", "occlusion", "leafs", "faceids", "edges", "surfedges", "models", "worldlights",
	"leaffaces", "leafbrushes", "brushes", "brushsides", "areas", "areaportals", "propcollision", "clusters",
	"portalverts", "clusterportals", "dispinfo", "originalfaces", "physdisp", "physcollide", "vertnormals", "vertnormalindices",
	"disp_lightmap_alphas", "disp_verts", "disp_lightmap_sample_positions", "game_lump", "leafwaterdata", "primitives", "primverts", "primindices",
	"pakfile", "clipportalverts", "cubemaps", "texdata_string_data", "texdata_string_table", "overlays", "leafmindisttowater", "face_macro_texture_info",
	"disp_tris", "physcollidesurface", "wateroverlays", "leaf_ambient_index_hdr", "leaf_ambient_index", "lighting_hdr", "worldlights_hdr", "leaf_ambient_lighting_hdr",
	"leaf_ambient_lighting", "xzippakfile", "faces_hdr", "map_flags", "overlay_fades", "overlay_system_levels", "physlevel", "disp_multiblend",
}

// LumpIndex returns the slot of a lump name, ignoring case.
func LumpIndex(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range LumpNames {
		if n == name {
			return i, true
		}
	}

	return 0, false
}

// Lump is one descriptor of the lump table.
type Lump struct {
	// Name is the slot name from LumpNames.
	Name string `json:"name" yaml:"name"`
	// Index is the slot, 0..63.
	Index int `json:"index" yaml:"index"`
	// Offset is the absolute payload offset.
	Offset uint32 `json:"offset" yaml:"offset"`
	// Length is the stored payload length.
	Length uint32 `json:"length" yaml:"length"`
	// Version is the lump format version.
	Version uint32 `json:"version" yaml:"version"`
	// FourCC is the lump identifier; compressed lumps keep the uncompressed size here.
	FourCC [4]byte `json:"fourcc" yaml:"fourcc"`
}

// Empty reports whether the lump holds no payload.
func (l Lump) Empty() bool {
	return l.Length == 0
}

// UncompressedSize interprets FourCC as the little-endian uncompressed size of a compressed lump.
func (l Lump) UncompressedSize() uint32 {
	return binary.LittleEndian.Uint32(l.FourCC[:])
}
