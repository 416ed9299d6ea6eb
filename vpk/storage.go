// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage opens named files of an archive set: the directory file and its chunk files.
// Names are slash-separated and relative to the storage root.
// Implementations used with Extract must be safe for concurrent Open calls.
type Storage interface {
	Open(name string) (io.ReadSeekCloser, error)
}

// DirStorage is a Storage rooted at a local directory.
type DirStorage string

// Open opens name below the storage root.
func (d DirStorage) Open(name string) (io.ReadSeekCloser, error) {
	f, err := os.Open(filepath.Join(string(d), filepath.FromSlash(name)))
	if err != nil {
		return nil, err
	}

	return f, nil
}

// fsStorage adapts an fs.FS whose files support seeking.
type fsStorage struct {
	fsys fs.FS
}

// FSStorage returns a Storage backed by fsys. Opened files must implement io.Seeker.
func FSStorage(fsys fs.FS) Storage {
	return fsStorage{fsys: fsys}
}

// Open opens name from the wrapped file system.
func (s fsStorage) Open(name string) (io.ReadSeekCloser, error) {
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, err
	}

	rsc, ok := f.(io.ReadSeekCloser)
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s", ErrNotSeekable, name)
	}

	return rsc, nil
}
