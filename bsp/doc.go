// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

/*
Package bsp reads Source engine map containers ("VBSP").

The header is a magic tag, a version and 64 lump descriptors. Two lumps are
interpreted: the entity lump (KeyValues text, optionally LZMA-compressed) and
the pakfile lump (an embedded ZIP archive). Everything else is available as
raw bytes through ReadLump.

	f, err := bsp.Open("maps/de_dust2.bsp", bsp.Options{
	    Decompressor: bsp.LZMADecompressor{},
	})
	if err != nil {
	    return err
	}
	defer f.Close()

	spawns, err := f.EntitiesByClass("info_player_terrorist")

Compressed lumps are decoded by a Decompressor. The default ExecDecompressor
runs "lzma d -si -so"; LZMADecompressor decodes in process.
*/
package bsp
