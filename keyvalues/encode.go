// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// EncodeOptions configures Encode behavior.
type EncodeOptions struct {
	// Pretty indents each nesting level by one tab.
	Pretty bool `json:"pretty,omitempty" yaml:"pretty,omitempty"`
}

// Marshal encodes m without indentation.
func Marshal(m Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, EncodeOptions{}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// MarshalIndent encodes m with one tab of indentation per level.
func MarshalIndent(m Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m, EncodeOptions{Pretty: true}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode writes m to w. Strings and escapes are written verbatim.
// Values other than string or map fail with ErrType.
func Encode(w io.Writer, m Map, opts EncodeOptions) error {
	bw := bufio.NewWriter(w)
	if err := encodeLevel(bw, m, opts.Pretty, 0); err != nil {
		return err
	}

	return bw.Flush()
}

// encodeLevel writes one nesting level in sorted key order.
func encodeLevel(w *bufio.Writer, m Map, pretty bool, level int) error {
	indent := ""
	if pretty {
		indent = strings.Repeat("\t", level)
	}

	for _, key := range slices.Sorted(maps.Keys(m)) {
		switch v := m[key].(type) {
		case string:
			if _, err := fmt.Fprintf(w, "%s\"%s\" \"%s\"\n", indent, key, v); err != nil {
				return err
			}
		default:
			child, ok := asMap(v)
			if !ok {
				return fmt.Errorf("%w: key %q holds %T (depth %d)", ErrType, key, v, level)
			}

			if _, err := fmt.Fprintf(w, "%s\"%s\"\n%s{\n", indent, key, indent); err != nil {
				return err
			}
			if err := encodeLevel(w, child, pretty, level+1); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "%s}\n", indent); err != nil {
				return err
			}
		}
	}

	return nil
}
