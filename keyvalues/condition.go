// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package keyvalues

import "strings"

// DefaultPlatform is the condition token enabled by DefaultConditions.
const DefaultPlatform = "WIN32"

// Condition reports whether a conditional token is enabled.
// It is invoked lazily, only when a statement references the token.
type Condition func() bool

// Bool returns a Condition with a constant result.
func Bool(v bool) Condition {
	return func() bool { return v }
}

// Conditions maps token names (without the leading $) to their evaluators.
type Conditions map[string]Condition

// DefaultConditions returns the condition set used when none is supplied.
func DefaultConditions() Conditions {
	return Conditions{DefaultPlatform: Bool(true)}
}

// Evaluate evaluates a tag expression such as "$WIN32", "!$X360" or "$A||$B&&!$C".
// "&&" binds tighter than "||". Unknown tokens are false.
func (c Conditions) Evaluate(expr string) bool {
	for _, alt := range strings.Split(expr, "||") {
		if c.evaluateAll(alt) {
			return true
		}
	}

	return false
}

// evaluateAll reports whether every "&&" term of expr is true.
func (c Conditions) evaluateAll(expr string) bool {
	for _, term := range strings.Split(expr, "&&") {
		if !c.evaluateTerm(term) {
			return false
		}
	}

	return true
}

// evaluateTerm evaluates one optionally negated token.
func (c Conditions) evaluateTerm(term string) bool {
	term = strings.TrimSpace(term)
	negate := false
	for strings.HasPrefix(term, "!") {
		negate = !negate
		term = strings.TrimSpace(term[1:])
	}

	name := strings.TrimPrefix(term, "$")
	return c.lookup(name) != negate
}

// lookup resolves one token, falling back to a case-insensitive match.
func (c Conditions) lookup(name string) bool {
	if name == "" {
		return false
	}

	if cond, ok := c[name]; ok {
		return cond != nil && cond()
	}

	for key, cond := range c {
		if strings.EqualFold(key, name) {
			return cond != nil && cond()
		}
	}

	return false
}
