// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalName(t *testing.T) {
	cases := map[string]string{
		"SQL_Injection":     "sql_injection",
		"SQL Injection":     "sql_injection",
		"  SQL---Injection": "sql_injection",
		"Session":           "session",
		"Cross Site  Script": "cross_site_script",
	}
	for in, want := range cases {
		assert.Equal(t, want, CanonicalName(in), "input %q", in)
	}
}

func TestNormalizeSeverity(t *testing.T) {
	cases := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"critical", "critical", true},
		{"[critical]", "critical", true},
		{"P0", "critical", true},
		{"p1", "high", true},
		{"MEDIUM", "medium", true},
		{"p3", "low", true},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeSeverity(tc.raw)
		assert.Equal(t, tc.ok, ok, "raw %q", tc.raw)
		assert.Equal(t, tc.want, got, "raw %q", tc.raw)
	}
}

func TestNormalizeClassification(t *testing.T) {
	got, ok := NormalizeClassification("PII")
	assert.True(t, ok)
	assert.Equal(t, "pii", got)

	_, ok = NormalizeClassification("topsecret")
	assert.False(t, ok)
}

func TestUnescapeDescription(t *testing.T) {
	assert.Equal(t, `say "hi"`, UnescapeDescription(`say \"hi\"`))
	assert.Equal(t, `back\slash`, UnescapeDescription(`back\\slash`))
}
