// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/woozymasta/srcfmt/buffer"
)

const (
	// compressedTag starts every compressed lump payload.
	compressedTag = "LZMA"
	// compressedID is compressedTag read as a little-endian uint32.
	compressedID uint32 = 0x414D5A4C
	// lzmaPropsSize is the codec properties length.
	lzmaPropsSize = 5
)

// CompressedHeader is the prefix of a compressed lump payload.
type CompressedHeader struct {
	// ID must equal the "LZMA" tag.
	ID uint32 `json:"id" yaml:"id"`
	// ActualSize is the uncompressed length.
	ActualSize uint32 `json:"actual_size" yaml:"actual_size"`
	// LZMASize is the compressed payload length after the properties.
	LZMASize uint32 `json:"lzma_size" yaml:"lzma_size"`
	// Properties are the raw codec properties.
	Properties [lzmaPropsSize]byte `json:"properties" yaml:"properties"`
}

// IsCompressed reports whether a lump payload starts with the compressed tag.
func IsCompressed(cur *buffer.Cursor) bool {
	tag, err := cur.Peek(len(compressedTag))
	return err == nil && string(tag) == compressedTag
}

// readCompressedHeader reads and validates the compressed lump header.
func readCompressedHeader(cur *buffer.Cursor) (CompressedHeader, error) {
	var h CompressedHeader

	var err error
	if h.ID, err = cur.Uint32(); err != nil {
		return h, fmt.Errorf("%w: read id: %w", ErrTruncatedPayload, err)
	}
	if h.ID != compressedID {
		return h, fmt.Errorf("%w: bad id 0x%08X", ErrDecompressionFailure, h.ID)
	}

	if h.ActualSize, err = cur.Uint32(); err != nil {
		return h, fmt.Errorf("%w: read size: %w", ErrTruncatedPayload, err)
	}
	if h.LZMASize, err = cur.Uint32(); err != nil {
		return h, fmt.Errorf("%w: read size: %w", ErrTruncatedPayload, err)
	}

	props, err := cur.Next(lzmaPropsSize)
	if err != nil {
		return h, fmt.Errorf("%w: read properties: %w", ErrTruncatedPayload, err)
	}
	copy(h.Properties[:], props)

	return h, nil
}

// DecompressLump decodes a compressed lump positioned at its "LZMA" tag. The
// classic 8-byte size field is synthesized from ActualSize between the
// properties and the payload before the stream reaches dec.
func DecompressLump(ctx context.Context, cur *buffer.Cursor, dec Decompressor) ([]byte, error) {
	h, err := readCompressedHeader(cur)
	if err != nil {
		return nil, err
	}

	if int64(h.LZMASize) > cur.Remaining() {
		return nil, fmt.Errorf("%w: compressed size %d, %d bytes left", ErrTruncatedPayload, h.LZMASize, cur.Remaining())
	}

	payload, err := cur.Next(int(h.LZMASize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncatedPayload, err)
	}

	var head [lzmaPropsSize + 8]byte
	copy(head[:], h.Properties[:])
	binary.LittleEndian.PutUint64(head[lzmaPropsSize:], uint64(h.ActualSize))

	out, err := dec.Decompress(ctx, io.MultiReader(bytes.NewReader(head[:]), bytes.NewReader(payload)))
	if err != nil {
		return nil, err
	}

	return out, nil
}
