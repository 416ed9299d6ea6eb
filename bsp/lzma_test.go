// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"os/exec"
	"testing"

	"github.com/woozymasta/srcfmt/buffer"
)

func TestDecompressLump_InProcess(t *testing.T) {
	t.Parallel()

	text := bytes.Repeat([]byte("\"classname\" \"prop_static\"\n"), 200)
	out, err := DecompressLump(context.Background(), buffer.NewBytes(compressLump(t, text)), LZMADecompressor{})
	if err != nil {
		t.Fatalf("DecompressLump: %v", err)
	}

	if !bytes.Equal(out, text) {
		t.Fatalf("decompressed %d bytes, want %d", len(out), len(text))
	}
}

func TestDecompressLump_SynthesizedStream(t *testing.T) {
	t.Parallel()

	lump := compressLump(t, []byte("hello"))
	var seen []byte
	dec := DecompressorFunc(func(_ context.Context, stream io.Reader) ([]byte, error) {
		var err error
		seen, err = io.ReadAll(stream)
		return nil, err
	})

	if _, err := DecompressLump(context.Background(), buffer.NewBytes(lump), dec); err != nil {
		t.Fatalf("DecompressLump: %v", err)
	}

	if !bytes.Equal(seen[:lzmaPropsSize], lump[12:17]) {
		t.Fatalf("properties=%x, want %x", seen[:lzmaPropsSize], lump[12:17])
	}
	if size := binary.LittleEndian.Uint64(seen[lzmaPropsSize:]); size != 5 {
		t.Fatalf("size header=%d, want 5", size)
	}
	if !bytes.Equal(seen[lzmaPropsSize+8:], lump[17:]) {
		t.Fatal("payload mismatch")
	}
}

func TestDecompressLump_BadID(t *testing.T) {
	t.Parallel()

	lump := compressLump(t, []byte("hello"))
	copy(lump, "AMZL")

	_, err := DecompressLump(context.Background(), buffer.NewBytes(lump), LZMADecompressor{})
	if !errors.Is(err, ErrDecompressionFailure) {
		t.Fatalf("err=%v, want ErrDecompressionFailure", err)
	}
}

func TestDecompressLump_Truncated(t *testing.T) {
	t.Parallel()

	lump := compressLump(t, bytes.Repeat([]byte("x"), 64))
	_, err := DecompressLump(context.Background(), buffer.NewBytes(lump[:len(lump)-1]), LZMADecompressor{})
	if !errors.Is(err, ErrTruncatedPayload) {
		t.Fatalf("err=%v, want ErrTruncatedPayload", err)
	}
}

func TestLZMADecompressor_Garbage(t *testing.T) {
	t.Parallel()

	_, err := LZMADecompressor{}.Decompress(context.Background(), bytes.NewReader([]byte{0xFF, 0xFF, 0xFF}))
	if !errors.Is(err, ErrDecompressionFailure) {
		t.Fatalf("err=%v, want ErrDecompressionFailure", err)
	}
}

func TestExecDecompressor(t *testing.T) {
	t.Parallel()

	catPath, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	// A payload larger than a pipe buffer must not deadlock.
	input := bytes.Repeat([]byte("0123456789abcdef"), 64*1024)
	out, err := ExecDecompressor{Path: catPath, Args: []string{}}.Decompress(context.Background(), bytes.NewReader(input))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Fatalf("output %d bytes, want %d", len(out), len(input))
	}
}

func TestExecDecompressor_Failures(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dec := ExecDecompressor{Path: "sh", Args: []string{"-c", "echo broken stream >&2; exit 3"}}
	_, err := dec.Decompress(context.Background(), bytes.NewReader([]byte("x")))
	if !errors.Is(err, ErrDecompressionFailure) {
		t.Fatalf("err=%v, want ErrDecompressionFailure", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("broken stream")) {
		t.Fatalf("err=%v, want diagnostics", err)
	}

	missing := ExecDecompressor{Path: "/nonexistent/lzma-decoder"}
	if _, err := missing.Decompress(context.Background(), bytes.NewReader(nil)); !errors.Is(err, ErrDecompressionFailure) {
		t.Fatalf("missing binary err=%v", err)
	}
}
