// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

// Package gapfeatures implements GapFeatures: the composite, mostly
// text-regex-driven sub-features that sit alongside the AST-grounded
// analyzers — hazards, entry points, environment variables, linter rules,
// the Rosetta-Stone test example, architectural pillars, maintenance
// hotspots, the prose summary, and the persona map.
//
// Each sub-feature runs an ordered table of regexes with named capture
// indices against source text already read into memory, rather than a
// second AST pass — these sub-features only ever need the textual
// shape of a call or string literal, not its parsed structure.
package gapfeatures

import "github.com/kraklabs/pyxray/pkg/model"

// Reader loads the source text of a discovered file on demand. Sub-features
// that need raw text (entry points, env vars, persona map, test example) take
// one of these rather than holding file contents in the bundle, matching
// the retained-records-only memory discipline AstAnalyzer already follows.
type Reader func(f model.FileRecord) (string, error)

// extractArgs scans forward from openParenIdx (the index of the opening
// "(" of a call) and returns the text up to its matching close paren,
// tolerating nested parens/brackets and skipping over quoted strings so a
// literal ")" inside a string doesn't terminate the scan early.
func extractArgs(src string, openParenIdx int) (string, bool) {
	depth := 0
	var quote byte
	start := openParenIdx + 1
	for i := openParenIdx; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return src[start:i], true
			}
		}
	}
	return "", false
}

// splitTopLevel splits a call's argument text on top-level commas, leaving
// commas nested inside parens/brackets/strings untouched.
func splitTopLevel(args string) []string {
	var parts []string
	depth := 0
	var quote byte
	last := 0
	for i := 0; i < len(args); i++ {
		c := args[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, args[last:i])
				last = i + 1
			}
		}
	}
	if last < len(args) {
		parts = append(parts, args[last:])
	}
	for i, p := range parts {
		parts[i] = trimSpace(p)
	}
	return parts
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func lineOf(src string, byteOffset int) int {
	line := 1
	for i := 0; i < byteOffset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
