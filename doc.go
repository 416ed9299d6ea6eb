// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

/*
Package srcfmt groups readers for Source engine file formats. The root package
holds no code; functionality lives in the subpackages:

  - buffer: bounds-checked little-endian cursor over bytes or seekable streams;
  - keyvalues: KeyValues text decoder, encoder and token translation;
  - vpk: directory archives, single or split into numbered chunk files;
  - bsp: compiled maps, lump table, entity lump and embedded pakfile;
  - dem: demo header and frame scan.

# Archives

	a, err := vpk.OpenFile("pak01_dir.vpk")
	if err != nil {
	    return err
	}
	data, err := a.ReadEntry("scripts/items/items_game.txt")

Extraction runs in parallel and sanitizes names by default:

	err = a.Extract(ctx, "out", vpk.ExtractOptions{
	    Select: vpk.SelectOptions{Extensions: []string{"vmt", "vtf"}},
	})

# Maps

Compressed lumps are decoded by an external "lzma" process unless another
Decompressor is configured:

	f, err := bsp.Open("ctf_2fort.bsp", bsp.Options{Decompressor: bsp.LZMADecompressor{}})
	if err != nil {
	    return err
	}
	defer f.Close()
	spawns, err := f.EntitiesByClass("info_player_teamspawn")

# KeyValues

	doc, err := keyvalues.Decode(text, keyvalues.DecodeOptions{
	    Conditions: keyvalues.Conditions{"X360": keyvalues.Bool(false)},
	})
	name, ok := doc.Lookup("GameInfo.game")

The srcfmt command in cmd/srcfmt exposes the same operations on the command line.
*/
package srcfmt
