// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package buffer

import "errors"

// Sentinel errors for cursor operations. Use errors.Is in callers.
var (
	// ErrUnderflow means a read, peek or skip asked for more bytes than remain.
	ErrUnderflow = errors.New("buffer underflow")
	// ErrOutOfRange means a seek target is outside [0, limit].
	ErrOutOfRange = errors.New("seek position out of range")
	// ErrClosed means the cursor was already closed.
	ErrClosed = errors.New("cursor closed")
	// ErrNilSource means the cursor was created without a byte source.
	ErrNilSource = errors.New("cursor source is nil")
)
