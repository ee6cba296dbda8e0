// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import "strings"

// StripResult is the outcome of stripping one source line.
type StripResult struct {
	// IsComment is false when the line carries no comment text at all.
	IsComment bool

	// Inner is the comment's inner text, leading whitespace trimmed.
	Inner string

	// IsContinuation is true for a Javadoc-style " * ..." continuation line
	// (block-closing line marker, spec §4.1), as opposed to a fresh
	// single-line or self-closing-block comment.
	IsContinuation bool
}

// Strip extracts the inner comment text from one raw source line, per the
// shape's recognized comment syntax.
//
// # Description
//
// Applies the five ordered rules from spec §4.2: single-line prefixes,
// Javadoc continuation lines, self-closing block forms, the bare block
// opener, and finally "not a comment". Strip is line-local: it never
// tracks whether a prior line opened an un-closed block comment, by
// design (spec §4.2) — legitimate GAL usage lives in single-line comments
// or Javadoc-style blocks where every continuation line starts with '*'.
func Strip(line string, shape CommentShape) StripResult {
	trimmed := strings.TrimLeft(line, " \t")

	// Rule 1: single-line prefixes, longest match first within the shape's
	// own list (shapes.go already orders multi-prefix shapes longest-first).
	for _, prefix := range shape.LinePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return StripResult{IsComment: true, Inner: strings.TrimLeft(trimmed[len(prefix):], " \t")}
		}
	}

	// Rule 2: Javadoc-style block-continuation line, only meaningful for
	// shapes that use the "/* */" block family.
	if shape.BlockOpen == "/*" && strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/") {
		return StripResult{IsComment: true, Inner: strings.TrimLeft(trimmed[1:], " \t"), IsContinuation: true}
	}

	// Rule 3: self-closing block form entirely on one line.
	if shape.BlockOpen != "" && shape.BlockClose != "" {
		if strings.HasPrefix(trimmed, shape.BlockOpen) {
			rest := trimmed[len(shape.BlockOpen):]
			if idx := strings.Index(rest, shape.BlockClose); idx >= 0 {
				return StripResult{IsComment: true, Inner: strings.TrimSpace(rest[:idx])}
			}
			// Rule 4: block opener without a close on the same line.
			return StripResult{IsComment: true, Inner: strings.TrimLeft(rest, " \t")}
		}
	}

	// Rule 5.
	return StripResult{IsComment: false}
}
