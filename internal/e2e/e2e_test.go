// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package e2e runs the end-to-end scenarios against the fixtures under
// testdata/, exercising scan, assemble, validate, query, and diff together.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/diff"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/query"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/scan"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/validate"
)

func fixturePath(t *testing.T, name string) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Join(wd, "..", "..", "testdata", name)
}

func TestAllAnnotationsFixtureAssembles(t *testing.T) {
	path := fixturePath(t, "all-annotations.ts")
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	anns, diags := scan.ParseFile("all-annotations.ts", content)
	require.Empty(t, diags)

	model, asmDiags := gal.Assemble(anns, []string{"all-annotations.ts"}, "fixture")
	require.Empty(t, asmDiags)

	require.GreaterOrEqual(t, len(model.Assets), 3)
	require.GreaterOrEqual(t, len(model.Threats), 3)
	require.GreaterOrEqual(t, len(model.Controls), 3)
	require.NotEmpty(t, model.Mitigations)
	require.NotEmpty(t, model.Exposures)
	require.NotEmpty(t, model.Acceptances)
	require.NotEmpty(t, model.Transfers)
	require.NotEmpty(t, model.Flows)
	require.NotEmpty(t, model.Boundaries)
	require.NotEmpty(t, model.Validations)
	require.NotEmpty(t, model.Audits)
	require.NotEmpty(t, model.Ownership)
	require.NotEmpty(t, model.DataHandling)
	require.NotEmpty(t, model.Assumptions)
	require.NotEmpty(t, model.Comments)
	require.NotEmpty(t, model.Shields)

	for _, a := range model.Assets {
		require.NotEqual(t, "hidden", a.ID, "shielded asset must never appear in the model")
	}
}

func TestScanProjectRootEndToEnd(t *testing.T) {
	root := t.TempDir()
	data, err := os.ReadFile(fixturePath(t, "all-annotations.ts"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.ts"), data, 0o644))

	result, err := scan.Scan(context.Background(), root, scan.Options{})
	require.NoError(t, err)

	model, diags := gal.Assemble(result.Annotations, result.Files, "demo")
	require.Empty(t, diags)

	report := validate.Validate(model)
	require.Empty(t, report.Diagnostics)

	res := query.Run(model, "flows into App.API")
	require.Equal(t, "flows_into", res.Type)
	require.Equal(t, 1, res.Count)
}

func TestDiffUnmitigatedAfterAccepts(t *testing.T) {
	build := func(src string) *gal.ThreatModel {
		anns, diags := scan.ParseFile("f.ts", []byte(src))
		require.Empty(t, diags)
		m, asmDiags := gal.Assemble(anns, []string{"f.ts"}, "demo")
		require.Empty(t, asmDiags)
		return m
	}

	a := build(`// @exposes App to #xss
`)
	b := build(`// @exposes App to #xss
// @accepts #xss on App
`)

	result := diff.Diff(a, b)
	require.Equal(t, diff.RiskDecreased, result.RiskDelta)
	require.Len(t, result.ResolvedUnmitigated, 1)
}

func TestDanglingReferenceReportedOnce(t *testing.T) {
	anns, diags := scan.ParseFile("f.ts", []byte(`// @mitigates App against #sqli
`))
	require.Empty(t, diags)
	model, asmDiags := gal.Assemble(anns, []string{"f.ts"}, "demo")
	require.Empty(t, asmDiags)

	report := validate.Validate(model)
	var danglers []string
	for _, d := range report.Diagnostics {
		if d.Level == gal.LevelWarning {
			danglers = append(danglers, d.Message)
		}
	}
	require.Len(t, danglers, 1)
	require.Contains(t, danglers[0], "#sqli")
}

func TestDuplicateAssetAcrossFilesReportsFirstLocation(t *testing.T) {
	annsA, _ := scan.ParseFile("a.ts", []byte(`// @asset Foo (#x)
`))
	annsB, _ := scan.ParseFile("b.ts", []byte(`// @asset Foo (#x)
`))

	all := append(append([]gal.Annotation{}, annsA...), annsB...)
	_, diags := gal.Assemble(all, []string{"a.ts", "b.ts"}, "demo")

	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "a.ts:1")
}
