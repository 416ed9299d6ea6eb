// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// nopCloser wraps a reader and provides a no-op close.
type nopCloser struct {
	io.Reader
}

// Close closes nopCloser (no-op).
func (nopCloser) Close() error {
	return nil
}

// entryReader streams preload then chunk data and owns the chunk handle.
type entryReader struct {
	io.Reader
	closer io.Closer
}

// Close releases the chunk file handle.
func (r *entryReader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

// OpenEntry opens named entry for streaming. Content is the preload bytes followed
// by Size bytes of chunk data. With Options.VerifyCRC the final read reports
// ErrEntryChecksum on mismatch.
func (a *Archive) OpenEntry(name string) (io.ReadCloser, error) {
	e := a.find(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	return a.OpenEntryInfo(*e)
}

// OpenEntryInfo opens entry stream by already resolved metadata.
func (a *Archive) OpenEntryInfo(e Entry) (io.ReadCloser, error) {
	var (
		rc     io.Reader = bytes.NewReader(e.Preload)
		closer io.Closer
	)

	if e.Size > 0 {
		f, err := a.openSource(&e)
		if err != nil {
			return nil, err
		}

		rc = io.MultiReader(rc, &sizedReader{r: f, left: int64(e.Size)})
		closer = f
	}

	if a.opts.VerifyCRC {
		rc = &crcReader{r: rc, entry: e, hash: crc32.NewIEEE()}
	}

	if closer == nil {
		return nopCloser{Reader: rc}, nil
	}

	return &entryReader{Reader: rc, closer: closer}, nil
}

// ReadEntry reads the full content of the named entry. Entries with no preload
// and no data yield an empty slice.
func (a *Archive) ReadEntry(name string) ([]byte, error) {
	e := a.find(name)
	if e == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	var out bytes.Buffer
	out.Grow(int(e.Length()))
	if _, err := a.WriteEntryTo(&out, name); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// WriteEntryTo copies the named entry to w in bounded chunks and returns bytes written.
func (a *Archive) WriteEntryTo(w io.Writer, name string) (int64, error) {
	e := a.find(name)
	if e == nil {
		return 0, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	var src io.ReadSeekCloser
	if e.Size > 0 {
		f, err := a.openSource(e)
		if err != nil {
			return 0, err
		}
		defer func() { _ = f.Close() }()

		src = f
	}

	return copyEntry(w, e, src, make([]byte, copyBufferSize), a.opts.VerifyCRC)
}

// VerifyEntry recomputes the CRC32 of the named entry.
func (a *Archive) VerifyEntry(name string) error {
	e := a.find(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	var src io.ReadSeekCloser
	if e.Size > 0 {
		f, err := a.openSource(e)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		src = f
	}

	_, err := copyEntry(io.Discard, e, src, make([]byte, copyBufferSize), true)
	return err
}

// openSource opens the storage file holding entry data and seeks to its offset.
func (a *Archive) openSource(e *Entry) (io.ReadSeekCloser, error) {
	f, err := a.storage.Open(e.Source)
	if err != nil {
		return nil, fmt.Errorf("open chunk %s for %s: %w", e.Source, e.Path(), err)
	}

	if _, err := f.Seek(e.DataOffset, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("seek %s in %s: %w", e.Path(), e.Source, err)
	}

	return f, nil
}

// copyEntry writes preload and chunk data of e to dst using buf for bounded copies.
// src must already be positioned at e.DataOffset when e.Size > 0.
func copyEntry(dst io.Writer, e *Entry, src io.Reader, buf []byte, verify bool) (int64, error) {
	var h hash.Hash32
	if verify {
		h = crc32.NewIEEE()
		dst = io.MultiWriter(dst, h)
	}

	var written int64
	if len(e.Preload) > 0 {
		n, err := dst.Write(e.Preload)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write %s: %w", e.Path(), err)
		}
	}

	if e.Size > 0 {
		if src == nil {
			return written, fmt.Errorf("copy %s: no data source", e.Path())
		}

		n, err := copyBounded(dst, src, int64(e.Size), buf)
		written += n
		if err != nil {
			return written, fmt.Errorf("copy %s from %s: %w", e.Path(), e.Source, err)
		}
	}

	if verify && h.Sum32() != e.CRC32 {
		return written, checksumError(e, h.Sum32())
	}

	return written, nil
}

// copyBounded copies exactly n bytes from src to dst through buf.
func copyBounded(dst io.Writer, src io.Reader, n int64, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, io.ErrShortBuffer
	}

	var total int64
	for total < n {
		chunk := buf
		if left := n - total; left < int64(len(chunk)) {
			chunk = chunk[:left]
		}

		readN, readErr := src.Read(chunk)
		if readN > 0 {
			writeN, writeErr := dst.Write(chunk[:readN])
			total += int64(writeN)

			if writeErr != nil {
				return total, writeErr
			}

			if writeN != readN {
				return total, io.ErrShortWrite
			}
		}

		if readErr == nil {
			continue
		}

		if errors.Is(readErr, io.EOF) {
			if total < n {
				return total, io.ErrUnexpectedEOF
			}

			return total, nil
		}

		return total, readErr
	}

	return total, nil
}

// sizedReader yields exactly left bytes or io.ErrUnexpectedEOF.
type sizedReader struct {
	r    io.Reader
	left int64
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if s.left <= 0 {
		return 0, io.EOF
	}

	if int64(len(p)) > s.left {
		p = p[:s.left]
	}

	n, err := s.r.Read(p)
	s.left -= int64(n)
	if errors.Is(err, io.EOF) && s.left > 0 {
		err = io.ErrUnexpectedEOF
	}

	return n, err
}

// crcReader checks the entry checksum once the stream is exhausted.
type crcReader struct {
	r     io.Reader
	hash  hash.Hash32
	entry Entry
}

func (c *crcReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	_, _ = c.hash.Write(p[:n])

	if errors.Is(err, io.EOF) && c.hash.Sum32() != c.entry.CRC32 {
		return n, checksumError(&c.entry, c.hash.Sum32())
	}

	return n, err
}

// checksumError formats ErrEntryChecksum with stored and computed sums.
func checksumError(e *Entry, got uint32) error {
	return fmt.Errorf("%w: %s: stored %08x, computed %08x", ErrEntryChecksum, e.Path(), e.CRC32, got)
}
