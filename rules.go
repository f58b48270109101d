// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// ruleMatcher holds compiled path rules for Ignore and Store option sets.
type ruleMatcher struct {
	matcher *pathrules.Matcher
}

// newRuleMatcher compiles path rules; nil matcher is returned for empty rule set.
func newRuleMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*ruleMatcher, error) {
	rules = normalizeRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, newError(KindInvalidArgument, "compile rules", "", fmt.Errorf("%w: %w", ErrInvalidOptions, err))
	}

	return &ruleMatcher{matcher: matcher}, nil
}

// normalizeRules normalizes rule patterns and drops empty patterns.
func normalizeRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := strings.ReplaceAll(strings.TrimSpace(rule.Pattern), `\`, "/")
		pattern = strings.TrimPrefix(pattern, "./")
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

// Match reports whether entry name is included by rule set.
func (m *ruleMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return false
	}

	candidate := NormalizeEntryName(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// ParseRules converts glob patterns to include rules.
// A leading "!" turns pattern into exclude rule, which re-admits paths matched by earlier patterns.
func ParseRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		action := pathrules.ActionInclude
		if rest, ok := strings.CutPrefix(pattern, "!"); ok {
			action = pathrules.ActionExclude
			pattern = strings.TrimSpace(rest)
		}

		if pattern == "" {
			continue
		}

		rules = append(rules, pathrules.Rule{
			Action:  action,
			Pattern: pattern,
		})
	}

	return rules
}

// entryMethod selects ZIP method for replacement entry by Store rules.
func entryMethod(store *ruleMatcher, name string) uint16 {
	if store.Match(name) {
		return MethodStore
	}

	return MethodDeflate
}
