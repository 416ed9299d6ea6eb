// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

/*
Package buffer provides a bounds-checked random-access byte cursor used by
every format parser in this module.

A Cursor reads either from an in-memory slice or from a seekable stream.
Both backends behave identically: reads, peeks and skips that would move
past the end fail with ErrUnderflow, seeks outside [0, Limit] fail with
ErrOutOfRange, and the position never leaves that range.

	c := buffer.NewBytes(data)
	magic, err := c.Uint32()
	if err != nil {
	    return err
	}
	name, err := c.CString()

Integers are little-endian. Uint32 is assembled from two Uint16 halves,
so the full unsigned range is preserved.
*/
package buffer
