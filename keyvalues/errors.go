// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import "errors"

// Sentinel errors for decode and encode. Use errors.Is in callers.
var (
	// ErrSyntax means a line could not be parsed as a statement.
	ErrSyntax = errors.New("keyvalues syntax error")
	// ErrUnbalancedNesting means braces do not balance at end of input.
	ErrUnbalancedNesting = errors.New("keyvalues unbalanced nesting")
	// ErrType means the encoder met a value that is neither string nor map.
	ErrType = errors.New("keyvalues unsupported value type")
)
