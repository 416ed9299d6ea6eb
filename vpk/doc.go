// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

/*
Package vpk reads Valve Pak (VPK) archives, versions 1 and 2.

A VPK set is a directory file holding a tree of extension, directory and
filename levels plus, for multi-chunk sets ("pak01_dir.vpk"), numbered chunk
files next to it ("pak01_000.vpk", "pak01_001.vpk", ...). Each entry content is
its inline preload bytes followed by Size bytes read from its chunk.

Offset resolution (summary):
  - multi-chunk entries read from "<base>_NNN<ext>" at the stored offset;
  - multi-chunk entries with chunk index 0x7FFF read from the directory file after the tree;
  - self-contained version 1 files shift offsets by header and tree size;
  - self-contained version 2 files use stored offsets as-is.

# Reading

	a, err := vpk.OpenFile("hl2/hl2_misc_dir.vpk")
	if err != nil {
	    return err
	}
	for _, e := range a.Entries() {
	    fmt.Println(e.Path(), e.Length())
	}
	data, err := a.ReadEntry("scripts/weapon_pistol.txt")

Lookup accepts exact keys as well as case-insensitive, slash-normalized paths.
Archives are immutable after Open and safe for concurrent reads; entry data is
copied in bounded chunks and never loaded whole unless ReadEntry is used.

# Selecting and extracting

Selection combines a directory prefix, an extension list and ordered
include/exclude glob rules (github.com/woozymasta/pathrules):

	err := a.Extract(ctx, "out", vpk.ExtractOptions{
	    Select: vpk.SelectOptions{
	        Prefix:     "materials",
	        Extensions: []string{"vmt", "vtf"},
	    },
	    VerifyCRC: true,
	})

Output names are sanitized for common file systems unless RawNames is set.
*/
package vpk
