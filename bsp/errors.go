// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import "errors"

// Sentinel errors for BSP operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the file does not start with the "VBSP" tag.
	ErrInvalidHeader = errors.New("invalid BSP file: bad magic")
	// ErrTruncatedPayload means a declared lump or compressed size exceeds the available bytes.
	ErrTruncatedPayload = errors.New("truncated lump payload")
	// ErrDecompressionFailure means a compressed lump has a bad identifier or the decoder failed.
	ErrDecompressionFailure = errors.New("lump decompression failed")
	// ErrUnknownLump means a lump name is not in LumpNames.
	ErrUnknownLump = errors.New("unknown lump")
	// ErrLumpOutOfBounds means a lump index is outside 0..63.
	ErrLumpOutOfBounds = errors.New("lump index out of range")
	// ErrNoPakfile means the map carries no embedded archive.
	ErrNoPakfile = errors.New("map has no pakfile lump")
	// ErrClosed means the file was already closed.
	ErrClosed = errors.New("bsp file closed")
)
