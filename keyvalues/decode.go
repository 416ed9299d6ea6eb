// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// reKeyValue matches `"key" "value"`; group 3 is empty when the value quote is still open.
	reKeyValue = regexp.MustCompile(`^"((?:\\.|[^"\\])*)"[ \t]*"((?:\\.|[^"\\])*)(")?`)
	// reKey matches a quoted key opening a block.
	reKey = regexp.MustCompile(`^"((?:\\.|[^"\\])*)"`)
)

// DecodeOptions configures Decode behavior.
type DecodeOptions struct {
	// Conditions evaluates [$TOKEN] tags; nil means DefaultConditions.
	Conditions Conditions `json:"-" yaml:"-"`
}

// applyDefaults fills zero-valued decode options with defaults.
func (opts *DecodeOptions) applyDefaults() {
	if opts.Conditions == nil {
		opts.Conditions = DefaultConditions()
	}
}

// Unmarshal decodes data with default options.
func Unmarshal(data []byte) (Map, error) {
	return Decode(string(data), DecodeOptions{})
}

// DecodeReader reads and decodes a whole document. UTF-16 documents with a byte
// order mark (as used by language files) are transcoded to UTF-8 first.
func DecodeReader(r io.Reader, opts DecodeOptions) (Map, error) {
	tr := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(tr)
	if err != nil {
		return nil, fmt.Errorf("read keyvalues: %w", err)
	}

	return Decode(string(data), opts)
}

// Decode parses text into a nested Map.
func Decode(text string, opts DecodeOptions) (Map, error) {
	opts.applyDefaults()

	text = strings.TrimPrefix(text, "\uFEFF")
	d := decoder{
		lines:      strings.Split(text, "\n"),
		conditions: opts.Conditions,
	}

	return d.run()
}

// decoder holds parser state for one document.
type decoder struct {
	// conditions evaluates statement tags.
	conditions Conditions
	// lines are raw physical lines of the document.
	lines []string
	// stack holds open nesting levels; stack[0] is the root.
	stack []Map
	// keyLine is the 0-based line of the key awaiting its '{'.
	keyLine int
	// expectBrace is set after a block key until its '{' is seen.
	expectBrace bool
}

// run walks all lines and returns the root map.
func (d *decoder) run() (Map, error) {
	root := Map{}
	d.stack = []Map{root}

	for i := 0; i < len(d.lines); i++ {
		line := strings.TrimSpace(d.lines[i])
		for line != "" && line[0] != '/' {
			var err error
			if i, line, err = d.step(i, line); err != nil {
				return nil, err
			}
		}
	}

	if d.expectBrace {
		return nil, syntaxError(d.keyLine, "expected '{' after block key")
	}
	if len(d.stack) != 1 {
		return nil, fmt.Errorf("%w: %d unclosed block(s)", ErrUnbalancedNesting, len(d.stack)-1)
	}

	return root, nil
}

// step consumes one token or statement from line and returns the last consumed
// line index and the unparsed rest of that line.
func (d *decoder) step(i int, line string) (int, string, error) {
	if line[0] == '{' {
		if !d.expectBrace {
			return i, "", syntaxError(i, "unexpected '{'")
		}

		d.expectBrace = false
		return i, strings.TrimSpace(line[1:]), nil
	}

	if d.expectBrace {
		return i, "", syntaxError(d.keyLine, "expected '{' after block key")
	}

	switch line[0] {
	case '}':
		if len(d.stack) == 1 {
			return i, "", fmt.Errorf("%w: line %d: unexpected '}'", ErrUnbalancedNesting, i+1)
		}

		d.stack = d.stack[:len(d.stack)-1]
		return i, strings.TrimSpace(line[1:]), nil
	case '"':
		return d.statement(i, line)
	default:
		return i, "", syntaxError(i, fmt.Sprintf("unexpected %q", line))
	}
}

// statement parses one statement starting at line i. It returns the last consumed
// line index and the text following the statement on that line.
func (d *decoder) statement(i int, line string) (int, string, error) {
	for {
		m := reKeyValue.FindStringSubmatchIndex(line)
		if m == nil {
			break
		}

		// Value quote not closed on this line: join the next raw line.
		if m[6] < 0 {
			if i+1 >= len(d.lines) {
				return i, "", syntaxError(i, "unterminated value")
			}

			i++
			line += "\n" + d.lines[i]
			continue
		}

		tail := parseTail(line[m[1]:], false)
		if d.include(tail) {
			d.top()[line[m[2]:m[3]]] = line[m[4]:m[5]]
		}

		return i, tail.rest, nil
	}

	m := reKey.FindStringSubmatchIndex(line)
	if m == nil {
		return i, "", syntaxError(i, "invalid statement")
	}

	tail := parseTail(line[m[1]:], true)
	child := Map{}
	if d.include(tail) {
		d.top()[line[m[2]:m[3]]] = child
	}

	// Excluded blocks still get a detached level so braces stay balanced.
	d.stack = append(d.stack, child)
	if !tail.brace {
		d.expectBrace = true
		d.keyLine = i
	}

	return i, tail.rest, nil
}

// top returns the innermost open level.
func (d *decoder) top() Map {
	return d.stack[len(d.stack)-1]
}

// include reports whether a statement with given tail passes its condition.
func (d *decoder) include(tail statementTail) bool {
	if !tail.conditional {
		return true
	}

	return d.conditions.Evaluate(tail.condition)
}

// statementTail is what follows the quoted tokens of a statement.
type statementTail struct {
	// condition is the tag expression without brackets.
	condition string
	// rest is the unparsed text after the tag and brace.
	rest string
	// conditional reports whether a tag was present.
	conditional bool
	// brace reports whether the block opens on the same line.
	brace bool
}

// parseTail extracts an optional [tag] and, for block keys, an optional '{'
// placed before or after it.
func parseTail(rest string, block bool) statementTail {
	var tail statementTail

	rest = strings.TrimSpace(rest)
	if block && strings.HasPrefix(rest, "{") {
		tail.brace = true
		rest = strings.TrimSpace(rest[1:])
	}

	if strings.HasPrefix(rest, "[") {
		if end := strings.IndexByte(rest, ']'); end > 0 {
			tail.condition = strings.TrimSpace(rest[1:end])
			tail.conditional = true
			rest = strings.TrimSpace(rest[end+1:])
		}
	}

	if block && !tail.brace && strings.HasPrefix(rest, "{") {
		tail.brace = true
		rest = strings.TrimSpace(rest[1:])
	}

	tail.rest = rest
	return tail
}

// syntaxError formats ErrSyntax with a 1-based line number.
func syntaxError(line int, msg string) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line+1, msg)
}
