// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import "errors"

// Sentinel errors for VPK operations. Use errors.Is in callers.
var (
	// ErrInvalidHeader means the file does not start with the VPK signature.
	ErrInvalidHeader = errors.New("invalid VPK file: bad signature")
	// ErrUnsupportedVersion means the header version is neither 1 nor 2.
	ErrUnsupportedVersion = errors.New("unsupported VPK version")
	// ErrCorruptDirectory means a directory record terminator is not 0xFFFF.
	ErrCorruptDirectory = errors.New("corrupt VPK directory tree")
	// ErrNilStorage means no storage backend was supplied.
	ErrNilStorage = errors.New("storage is nil")
	// ErrNotSeekable means a storage file does not support seeking.
	ErrNotSeekable = errors.New("storage file is not seekable")
	// ErrEntryNotFound means the entry is not found.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEntryChecksum means materialized entry content does not match its stored CRC32.
	ErrEntryChecksum = errors.New("entry CRC32 mismatch")
	// ErrInvalidRules means one or more selection rules are invalid.
	ErrInvalidRules = errors.New("invalid selection rules")
	// ErrInvalidExtractPath means archive entry path is invalid for extraction destination.
	ErrInvalidExtractPath = errors.New("invalid extract path")
	// ErrExtractPathOutsideRoot means resolved extraction path escapes destination root.
	ErrExtractPathOutsideRoot = errors.New("extract path escapes destination root")
)
