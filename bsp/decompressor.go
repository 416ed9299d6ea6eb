// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/ulikunitz/xz/lzma"
)

// Default external decoder invocation: "lzma d -si -so" reads a .lzma stream on stdin.
const DefaultDecompressorPath = "lzma"

// DefaultDecompressorArgs are passed to the external decoder when Args is nil.
var DefaultDecompressorArgs = []string{"d", "-si", "-so"}

// Decompressor decodes a classic .lzma stream: 5 property bytes, an 8-byte
// little-endian uncompressed size, then the compressed payload.
type Decompressor interface {
	Decompress(ctx context.Context, stream io.Reader) ([]byte, error)
}

// DecompressorFunc adapts a function to Decompressor.
type DecompressorFunc func(ctx context.Context, stream io.Reader) ([]byte, error)

// Decompress calls f.
func (f DecompressorFunc) Decompress(ctx context.Context, stream io.Reader) ([]byte, error) {
	return f(ctx, stream)
}

// ExecDecompressor pipes the stream through an external decoder process.
// The stream is written on a separate goroutine while output is collected,
// so payloads larger than the pipe buffer do not deadlock.
type ExecDecompressor struct {
	// Logger receives the decoder diagnostic stream at debug level.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Path is the decoder executable; empty means DefaultDecompressorPath.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	// Args are decoder arguments; nil means DefaultDecompressorArgs.
	Args []string `json:"args,omitempty" yaml:"args,omitempty"`
}

// Decompress runs the decoder. A nonzero exit is reported as ErrDecompressionFailure
// carrying the decoder diagnostics.
func (d ExecDecompressor) Decompress(ctx context.Context, stream io.Reader) ([]byte, error) {
	path := d.Path
	if path == "" {
		path = DefaultDecompressorPath
	}

	args := d.Args
	if args == nil {
		args = DefaultDecompressorArgs
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = stream
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	diag := strings.TrimSpace(stderr.String())
	if diag != "" && d.Logger != nil {
		d.Logger.Debug("decompressor diagnostics", "path", path, "stderr", diag)
	}

	if err != nil {
		if diag != "" {
			return nil, fmt.Errorf("%w: %s: %w: %s", ErrDecompressionFailure, path, err, diag)
		}

		return nil, fmt.Errorf("%w: %s: %w", ErrDecompressionFailure, path, err)
	}

	return stdout.Bytes(), nil
}

// LZMADecompressor decodes in process with github.com/ulikunitz/xz/lzma.
type LZMADecompressor struct{}

// Decompress decodes the whole stream into memory.
func (LZMADecompressor) Decompress(ctx context.Context, stream io.Reader) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := lzma.NewReader(stream)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailure, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressionFailure, err)
	}

	return data, nil
}
