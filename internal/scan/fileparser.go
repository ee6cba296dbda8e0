// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scan implements the file parser (C5) and project scanner (C6):
// the only two components in the core that touch the filesystem.
package scan

import (
	"bufio"
	"path/filepath"
	"strings"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

// ParseFile walks a file's lines, strips comments per its extension's
// CommentShape, and runs each stripped line through the line stripper,
// continuation joiner, shield tracker, and annotation parser (spec §4.5).
// path is the project-relative, forward-slash path attached to every
// SourceLocation produced.
func ParseFile(path string, content []byte) ([]gal.Annotation, []gal.Diagnostic) {
	shape := gal.ShapeFor(filepath.Ext(path))

	var annotations []gal.Annotation
	var diagnostics []gal.Diagnostic

	lastIdx := -1
	inShield := false

	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		stripped := gal.Strip(raw, shape)
		if !stripped.IsComment {
			lastIdx = -1
			continue
		}

		if inShield {
			if !isShieldEnd(stripped.Inner) {
				continue
			}
		}

		if lastIdx >= 0 && isContinuation(stripped.Inner) {
			annotations[lastIdx].Description = joinDescription(annotations[lastIdx].Description, continuationText(stripped.Inner))
			endLine := lineNo
			annotations[lastIdx].Location.EndLine = &endLine
			continue
		}

		loc := gal.SourceLocation{File: path, Line: lineNo}
		res := gal.ParseLine(stripped.Inner, loc, raw)

		switch {
		case res.Annotation != nil:
			annotations = append(annotations, *res.Annotation)
			lastIdx = len(annotations) - 1

			switch res.Annotation.Verb {
			case gal.VerbShieldBegin:
				inShield = true
			case gal.VerbShieldEnd:
				inShield = false
			}
		case res.Diagnostic != nil:
			diagnostics = append(diagnostics, *res.Diagnostic)
			lastIdx = -1
		}
	}

	return annotations, diagnostics
}

// isContinuation reports whether a stripped comment line is a bare
// `-- "..."` continuation carrying no verb of its own.
func isContinuation(inner string) bool {
	trimmed := strings.TrimSpace(inner)
	return strings.HasPrefix(trimmed, `-- "`)
}

// continuationText extracts and unescapes the quoted text from a
// continuation line.
func continuationText(inner string) string {
	trimmed := strings.TrimSpace(inner)
	body := strings.TrimPrefix(trimmed, `-- "`)

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			b.WriteByte(body[i])
			b.WriteByte(body[i+1])
			i++
			continue
		}
		if body[i] == '"' {
			break
		}
		b.WriteByte(body[i])
	}
	return gal.UnescapeDescription(b.String())
}

// joinDescription appends continuation text to an existing description,
// joined by a single space (spec §4.5).
func joinDescription(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + " " + addition
}

// isShieldEnd reports whether a stripped line is the `@shield:end` marker,
// the only line a shielded region's content is allowed to match.
func isShieldEnd(inner string) bool {
	return strings.HasPrefix(strings.TrimSpace(inner), "@shield:end")
}
