// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

// Package dem reads Source engine demo (".dem") headers and walks the frame stream.
package dem

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/woozymasta/srcfmt/buffer"
)

// Magic is the NUL-terminated tag at offset 0.
const Magic = "HL2DEMO"

// pathFieldSize is the fixed size of every string field in the header.
const pathFieldSize = 260

// Header is the fixed-size demo header.
type Header struct {
	// ServerName is the server name for SourceTV demos or the address for local ones.
	ServerName string `json:"server_name" yaml:"server_name"`
	// ClientName is "SourceTV" or the recording player name.
	ClientName string `json:"client_name" yaml:"client_name"`
	// MapName is the map the demo was recorded on.
	MapName string `json:"map_name" yaml:"map_name"`
	// GameDirectory is the game folder, e.g. "cstrike".
	GameDirectory string `json:"game_directory" yaml:"game_directory"`
	// DemoProtocol is the demo format version.
	DemoProtocol uint32 `json:"demo_protocol" yaml:"demo_protocol"`
	// NetworkProtocol is the game network protocol version.
	NetworkProtocol uint32 `json:"network_protocol" yaml:"network_protocol"`
	// PlaybackTime is the length in seconds.
	PlaybackTime float32 `json:"playback_time" yaml:"playback_time"`
	// Ticks is the length in ticks.
	Ticks uint32 `json:"ticks" yaml:"ticks"`
	// Frames is the number of frames.
	Frames uint32 `json:"frames" yaml:"frames"`
	// SignonLength is the signon data length in bytes.
	SignonLength uint32 `json:"signon_length" yaml:"signon_length"`
}

// Demo is an opened demo positioned after its header.
type Demo struct {
	// cur reads the frame stream following the header.
	cur *buffer.Cursor
	// Header is the decoded fixed-size file header.
	Header Header
}

// Open opens a demo file by path and reads its header.
func Open(path string) (*Demo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}

	d, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return d, nil
}

// NewReader reads the header from a seekable stream. Close closes rs when it is an io.Closer.
func NewReader(rs io.ReadSeeker) (*Demo, error) {
	cur, err := buffer.NewStream(rs)
	if err != nil {
		return nil, fmt.Errorf("open demo: %w", err)
	}

	return newDemo(cur)
}

// NewBytes reads the header of an in-memory demo.
func NewBytes(data []byte) (*Demo, error) {
	return newDemo(buffer.NewBytes(data))
}

func newDemo(cur *buffer.Cursor) (*Demo, error) {
	h, err := readHeader(cur)
	if err != nil {
		return nil, err
	}

	return &Demo{cur: cur, Header: h}, nil
}

// ReadHeader opens a demo file, reads only its header and closes it.
func ReadHeader(path string) (Header, error) {
	d, err := Open(path)
	if err != nil {
		return Header{}, err
	}
	defer func() { _ = d.Close() }()

	return d.Header, nil
}

// Close releases the underlying source.
func (d *Demo) Close() error {
	return d.cur.Close()
}

// readHeader decodes the fixed header.
func readHeader(cur *buffer.Cursor) (Header, error) {
	var h Header

	magic, err := cur.CString()
	if err != nil {
		return h, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}
	if magic != Magic {
		return h, fmt.Errorf("%w: got %q", ErrInvalidHeader, magic)
	}

	r := fieldReader{cur: cur}
	h.DemoProtocol = r.uint32()
	h.NetworkProtocol = r.uint32()
	h.ServerName = r.pathField()
	h.ClientName = r.pathField()
	h.MapName = r.pathField()
	h.GameDirectory = r.pathField()
	h.PlaybackTime = r.float32()
	h.Ticks = r.uint32()
	h.Frames = r.uint32()
	h.SignonLength = r.uint32()
	if r.err != nil {
		return h, fmt.Errorf("read demo header: %w", r.err)
	}

	return h, nil
}

// fieldReader reads consecutive header fields and keeps the first error.
type fieldReader struct {
	cur *buffer.Cursor
	err error
}

// uint32 reads a little-endian uint32 unless an earlier read failed.
func (r *fieldReader) uint32() uint32 {
	if r.err != nil {
		return 0
	}

	v, err := r.cur.Uint32()
	r.err = err
	return v
}

// float32 reads a little-endian float32 unless an earlier read failed.
func (r *fieldReader) float32() float32 {
	if r.err != nil {
		return 0
	}

	v, err := r.cur.Float32()
	r.err = err
	return v
}

// pathField reads one fixed 260-byte field and trims NUL padding and whitespace.
func (r *fieldReader) pathField() string {
	if r.err != nil {
		return ""
	}

	raw, err := r.cur.Next(pathFieldSize)
	if err != nil {
		r.err = err
		return ""
	}

	return strings.Trim(string(raw), " \t\n\r\x00\x0B")
}
