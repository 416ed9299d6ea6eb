// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package dem

import "errors"

var (
	// ErrInvalidHeader means the file does not start with "HL2DEMO".
	ErrInvalidHeader = errors.New("invalid demo file: bad magic")
	// ErrTruncatedFrame means the frame stream ends before a stop command.
	ErrTruncatedFrame = errors.New("truncated demo frame")
)
