// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/srcfmt

package vpk

import (
	"fmt"

	"github.com/woozymasta/pathrules"
)

// selectMatcher holds compiled include/exclude rules for entry selection.
type selectMatcher struct {
	matcher *pathrules.Matcher
}

// newSelectMatcher compiles selection rules; it returns nil when no rule is set.
func newSelectMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*selectMatcher, error) {
	rules = normalizeRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidRules, err)
	}

	return &selectMatcher{matcher: matcher}, nil
}

// normalizeRules normalizes rule patterns and drops empty patterns.
func normalizeRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizePathForMatching(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether an entry clean path passes the rules. A nil matcher accepts everything.
func (m *selectMatcher) Match(cleanPath string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	return m.matcher.Included(cleanPath, false)
}
