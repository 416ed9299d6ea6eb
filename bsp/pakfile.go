// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package bsp

import (
	"errors"
	"fmt"
	"os"

	"github.com/klauspost/compress/zip"

	"github.com/woozymasta/srcfmt/buffer"
)

// Pakfile is the embedded archive lump copied verbatim to a temporary file.
type Pakfile struct {
	// Path is the temporary file holding the ZIP bytes.
	Path string `json:"path" yaml:"path"`
	// Size is the number of bytes copied.
	Size int64 `json:"size" yaml:"size"`
}

// Open opens the embedded archive for reading. Callers close the returned reader.
func (p *Pakfile) Open() (*zip.ReadCloser, error) {
	zr, err := zip.OpenReader(p.Path)
	if err != nil {
		return nil, fmt.Errorf("open pakfile zip: %w", err)
	}

	return zr, nil
}

// Close removes the temporary file.
func (p *Pakfile) Close() error {
	if p == nil || p.Path == "" {
		return nil
	}

	err := os.Remove(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return err
}

// writePakfile copies n bytes from cur into a new temporary file in 1 KiB chunks.
func writePakfile(cur *buffer.Cursor, n int64, tempDir string) (*Pakfile, error) {
	f, err := os.CreateTemp(tempDir, "pakfile-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create pakfile temp: %w", err)
	}

	p := &Pakfile{Path: f.Name()}
	p.Size, err = cur.CopyN(f, n)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("copy pakfile: %w", err)
	}

	return p, nil
}
