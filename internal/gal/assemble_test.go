// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, file string, line int, text string) Annotation {
	t.Helper()
	res := ParseLine(text, SourceLocation{File: file, Line: line}, text)
	require.NotNil(t, res.Annotation, "failed to parse %q", text)
	return *res.Annotation
}

func TestAssembleSeverityInheritance(t *testing.T) {
	anns := []Annotation{
		mustParse(t, "a.go", 1, `@threat Session (#hijack) [high]`),
		mustParse(t, "a.go", 2, `@exposes App to #hijack`),
	}
	m, diags := Assemble(anns, []string{"a.go"}, "demo")
	require.Empty(t, diags)
	require.Len(t, m.Exposures, 1)
	require.Equal(t, "high", m.Exposures[0].Severity)
}

func TestAssembleDuplicateID(t *testing.T) {
	anns := []Annotation{
		mustParse(t, "a.go", 1, `@asset Foo (#x)`),
		mustParse(t, "b.go", 5, `@asset Bar (#x)`),
	}
	m, diags := Assemble(anns, []string{"a.go", "b.go"}, "demo")
	require.Len(t, m.Assets, 2)
	require.Len(t, diags, 1)
	require.Equal(t, LevelError, diags[0].Level)
	require.Contains(t, diags[0].Message, "a.go:1")
}

func TestAssembleFilePartitionAndCoverage(t *testing.T) {
	anns := []Annotation{
		mustParse(t, "a.go", 1, `@asset Foo (#x)`),
	}
	m, _ := Assemble(anns, []string{"a.go", "b.go", ".guardlink/defs.yaml"}, "demo")
	require.Equal(t, []string{"a.go"}, m.AnnotatedFiles)
	require.Equal(t, []string{"b.go"}, m.UnannotatedFiles)
	require.Equal(t, 50, m.Coverage.Percent)
}

func TestAssembleProvenance(t *testing.T) {
	m, _ := Assemble(nil, []string{"a.go"}, "demo")
	require.Equal(t, SchemaVersion, m.Version)
	require.NotEmpty(t, m.ScanID)
	require.NotEmpty(t, m.GeneratedAt)
}
