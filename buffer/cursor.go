// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package buffer

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// scanChunkSize is a chunk size used by the NUL-terminated string scanner on stream sources.
	scanChunkSize = 256
	// CopyChunkSize is the fixed chunk size used by CopyN.
	CopyChunkSize = 1024
)

// Cursor is a bounds-checked reader over an in-memory slice or a seekable stream.
// The invariant 0 <= Position() <= Limit() always holds.
//
// A Cursor carries one mutable position and is not safe for concurrent use.
type Cursor struct {
	// src is the random-access source; nil for in-memory cursors.
	src io.ReaderAt
	// closer is closed by Close when the source owns a handle.
	closer io.Closer
	// data holds in-memory content when src is nil.
	data []byte
	// pos is the current read position.
	pos int64
	// size is the total addressable length.
	size int64
	// closed reports whether Close was already called.
	closed bool
}

// NewBytes returns a cursor over data. The slice is not copied and must not be modified while in use.
func NewBytes(data []byte) *Cursor {
	return &Cursor{data: data, size: int64(len(data))}
}

// NewReaderAt returns a cursor over a random-access source with known size.
func NewReaderAt(ra io.ReaderAt, size int64) (*Cursor, error) {
	if ra == nil {
		return nil, ErrNilSource
	}
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrOutOfRange, size)
	}

	c := &Cursor{src: ra, size: size}
	if cl, ok := ra.(io.Closer); ok {
		c.closer = cl
	}

	return c, nil
}

// NewStream returns a cursor over a seekable stream. The length is discovered by
// seeking to the end. Streams that also implement io.ReaderAt are read through it.
// Close closes the stream when it implements io.Closer.
func NewStream(rs io.ReadSeeker) (*Cursor, error) {
	if rs == nil {
		return nil, ErrNilSource
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}

	c := &Cursor{size: size}
	if ra, ok := rs.(io.ReaderAt); ok {
		c.src = ra
	} else {
		c.src = &seekReaderAt{rs: rs}
	}
	if cl, ok := rs.(io.Closer); ok {
		c.closer = cl
	}

	return c, nil
}

// Position returns the current read position.
func (c *Cursor) Position() int64 {
	return c.pos
}

// Limit returns the total length of the source.
func (c *Cursor) Limit() int64 {
	return c.size
}

// Remaining returns the number of bytes between position and limit.
func (c *Cursor) Remaining() int64 {
	return c.size - c.pos
}

// Next returns exactly n bytes and advances the position by n.
// The returned slice may alias in-memory content and must not be modified.
func (c *Cursor) Next(n int) ([]byte, error) {
	p, err := c.Peek(n)
	if err != nil {
		return nil, err
	}

	c.pos += int64(n)
	return p, nil
}

// Peek returns exactly n bytes without advancing the position.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if err := c.checkAvailable(int64(n)); err != nil {
		return nil, err
	}

	if c.src == nil {
		end := c.pos + int64(n)
		return c.data[c.pos:end:end], nil
	}

	p := make([]byte, n)
	if err := c.readAt(p, c.pos); err != nil {
		return nil, err
	}

	return p, nil
}

// Skip advances the position by n bytes.
func (c *Cursor) Skip(n int64) error {
	if err := c.checkAvailable(n); err != nil {
		return err
	}

	c.pos += n
	return nil
}

// Seek moves the position to an absolute offset in [0, Limit()].
func (c *Cursor) Seek(pos int64) error {
	if c.closed {
		return ErrClosed
	}
	if pos < 0 || pos > c.size {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, pos, c.size)
	}

	c.pos = pos
	return nil
}

// Reset moves the position back to the start.
func (c *Cursor) Reset() {
	c.pos = 0
}

// Uint8 reads one unsigned byte.
func (c *Cursor) Uint8() (uint8, error) {
	p, err := c.Next(1)
	if err != nil {
		return 0, err
	}

	return p[0], nil
}

// ReadByte implements io.ByteReader.
func (c *Cursor) ReadByte() (byte, error) {
	return c.Uint8()
}

// Uint16 reads a little-endian 16-bit value.
func (c *Cursor) Uint16() (uint16, error) {
	if err := c.checkAvailable(2); err != nil {
		return 0, err
	}

	lo, err := c.Uint8()
	if err != nil {
		return 0, err
	}
	hi, err := c.Uint8()
	if err != nil {
		return 0, err
	}

	return uint16(hi)<<8 | uint16(lo), nil
}

// Uint32 reads a little-endian 32-bit value assembled from two 16-bit halves.
func (c *Cursor) Uint32() (uint32, error) {
	if err := c.checkAvailable(4); err != nil {
		return 0, err
	}

	lo, err := c.Uint16()
	if err != nil {
		return 0, err
	}
	hi, err := c.Uint16()
	if err != nil {
		return 0, err
	}

	return uint32(hi)<<16 | uint32(lo), nil
}

// Float32 reads an IEEE-754 single-precision value stored little-endian.
func (c *Cursor) Float32() (float32, error) {
	p, err := c.Next(4)
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
}

// CString reads bytes up to and including a NUL terminator and returns them without it.
// If the source ends before a NUL is found, it fails with ErrUnderflow and the position
// is left unchanged.
func (c *Cursor) CString() (string, error) {
	if c.closed {
		return "", ErrClosed
	}

	if c.src == nil {
		rest := c.data[c.pos:]
		idx := bytes.IndexByte(rest, 0)
		if idx < 0 {
			return "", fmt.Errorf("%w: unterminated string at %d", ErrUnderflow, c.pos)
		}

		c.pos += int64(idx) + 1
		return string(rest[:idx]), nil
	}

	s, consumed, err := c.scanCString()
	if err != nil {
		return "", err
	}

	c.pos += consumed
	return s, nil
}

// scanCString scans the stream source in chunks for the next NUL byte.
func (c *Cursor) scanCString() (string, int64, error) {
	var (
		out   []byte
		total int64
		chunk [scanChunkSize]byte
	)

	for {
		off := c.pos + total
		left := c.size - off
		if left <= 0 {
			return "", 0, fmt.Errorf("%w: unterminated string at %d", ErrUnderflow, c.pos)
		}

		part := chunk[:min(int64(len(chunk)), left)]
		if err := c.readAt(part, off); err != nil {
			return "", 0, err
		}

		if idx := bytes.IndexByte(part, 0); idx >= 0 {
			consumed := total + int64(idx) + 1
			if len(out) == 0 {
				return string(part[:idx]), consumed, nil
			}

			out = append(out, part[:idx]...)
			return string(out), consumed, nil
		}

		out = append(out, part...)
		total += int64(len(part))
	}
}

// Slice consumes the next n bytes and returns them as a detached in-memory cursor.
func (c *Cursor) Slice(n int) (*Cursor, error) {
	p, err := c.Next(n)
	if err != nil {
		return nil, err
	}

	return NewBytes(p), nil
}

// Bytes returns all remaining bytes without advancing the position.
func (c *Cursor) Bytes() ([]byte, error) {
	return c.Peek(int(c.Remaining()))
}

// Read implements io.Reader over the remaining bytes.
func (c *Cursor) Read(p []byte) (int, error) {
	if c.closed {
		return 0, ErrClosed
	}

	rem := c.Remaining()
	if rem == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	n := int(min(int64(len(p)), rem))
	if c.src == nil {
		copy(p, c.data[c.pos:c.pos+int64(n)])
	} else if err := c.readAt(p[:n], c.pos); err != nil {
		return 0, err
	}

	c.pos += int64(n)
	return n, nil
}

// CopyN writes the next n bytes to dst in fixed-size chunks and advances the position.
// It fails up front with ErrUnderflow when fewer than n bytes remain.
func (c *Cursor) CopyN(dst io.Writer, n int64) (int64, error) {
	if err := c.checkAvailable(n); err != nil {
		return 0, err
	}

	var (
		buf     [CopyChunkSize]byte
		written int64
	)

	for written < n {
		part := buf[:min(int64(len(buf)), n-written)]
		if c.src == nil {
			copy(part, c.data[c.pos:])
		} else if err := c.readAt(part, c.pos); err != nil {
			return written, err
		}

		w, err := dst.Write(part)
		written += int64(w)
		c.pos += int64(w)
		if err != nil {
			return written, err
		}
		if w != len(part) {
			return written, io.ErrShortWrite
		}
	}

	return written, nil
}

// Close releases in-memory data and closes the source handle when owned.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	c.data = nil
	if c.closer != nil {
		return c.closer.Close()
	}

	return nil
}

// checkAvailable validates that n bytes can be consumed from the current position.
func (c *Cursor) checkAvailable(n int64) error {
	if c.closed {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrUnderflow, n)
	}
	if n > c.Remaining() {
		return fmt.Errorf("%w: need %d bytes at %d, have %d", ErrUnderflow, n, c.pos, c.Remaining())
	}

	return nil
}

// readAt fills p from the stream source at offset off.
func (c *Cursor) readAt(p []byte, off int64) error {
	n, err := c.src.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("%w: read %d bytes at %d: %w", ErrUnderflow, len(p), off, err)
}

// seekReaderAt adapts a stream without ReadAt support by seeking before every read.
type seekReaderAt struct {
	rs io.ReadSeeker
}

// ReadAt implements io.ReaderAt for seekReaderAt.
func (s *seekReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if _, err := s.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}

	return io.ReadFull(s.rs, p)
}
