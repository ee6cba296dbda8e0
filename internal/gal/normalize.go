// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CanonicalName derives a threat/control's canonical name from its human
// name (spec §3.2, §4.3): Unicode NFKC, lowercase, whitespace/hyphen runs
// collapsed to a single underscore, consecutive underscores collapsed,
// leading/trailing underscores trimmed.
func CanonicalName(name string) string {
	s := norm.NFKC.String(name)
	s = strings.ToLower(s)

	var b strings.Builder
	lastWasSep := false
	for _, r := range s {
		isSep := r == ' ' || r == '\t' || r == '-' || r == '_'
		if isSep {
			if !lastWasSep {
				b.WriteByte('_')
			}
			lastWasSep = true
			continue
		}
		lastWasSep = false
		b.WriteRune(r)
	}
	return strings.Trim(b.String(), "_")
}

// severityAliases maps every accepted severity spelling (case-insensitive)
// to its canonical stored form. The canonical form is the word, not the
// P-code: tests and the serialization surface both expect "critical" etc.
var severityAliases = map[string]string{
	"p0":       "critical",
	"critical": "critical",
	"p1":       "high",
	"high":     "high",
	"p2":       "medium",
	"medium":   "medium",
	"p3":       "low",
	"low":      "low",
}

// NormalizeSeverity resolves a raw severity token (with or without the
// surrounding brackets) to its canonical form, case-insensitively. Returns
// ("", false) if the token is not a recognized severity.
func NormalizeSeverity(raw string) (string, bool) {
	token := strings.ToLower(strings.Trim(raw, "[]"))
	canon, ok := severityAliases[token]
	return canon, ok
}

// dataClassifications is the closed set of @handles classifications
// (spec §6.3), compared case-insensitively and stored lowercase.
var dataClassifications = map[string]bool{
	"pii": true, "phi": true, "financial": true,
	"secrets": true, "internal": true, "public": true,
}

// NormalizeClassification lowercases a data classification token and
// reports whether it belongs to the closed set.
func NormalizeClassification(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	return lower, dataClassifications[lower]
}

// UnescapeDescription resolves the two recognized escape sequences in a GAL
// description string: \" -> " and \\ -> \. No other escape is recognized
// (spec §4.3).
func UnescapeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
