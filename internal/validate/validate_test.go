// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/scan"
)

func assemble(t *testing.T, src string) *gal.ThreatModel {
	t.Helper()
	anns, diags := scan.ParseFile("fixture.go", []byte(src))
	require.Empty(t, diags)
	m, assembleDiags := gal.Assemble(anns, []string{"fixture.go"}, "demo")
	require.Empty(t, assembleDiags)
	return m
}

func TestValidateDanglingReference(t *testing.T) {
	m := assemble(t, `// @mitigates App against #sqli
`)
	rep := Validate(m)
	require.Len(t, rep.Diagnostics, 1)
	require.Equal(t, gal.LevelWarning, rep.Diagnostics[0].Level)
	require.Contains(t, rep.Diagnostics[0].Message, "#sqli")
}

func TestValidateNoFalseDanglingForDottedPath(t *testing.T) {
	m := assemble(t, `// @mitigates App.Auth against #sqli
// @threat SQLi (#sqli)
`)
	rep := Validate(m)
	require.Empty(t, rep.Diagnostics)
}

func TestValidateUnmitigatedExposureNormalization(t *testing.T) {
	m := assemble(t, `// @exposes App to #xss
// @accepts xss on App
`)
	rep := Validate(m)
	require.Empty(t, rep.Unmitigated)
}

func TestValidateUnmitigatedExposureFound(t *testing.T) {
	m := assemble(t, `// @exposes App to #xss
`)
	rep := Validate(m)
	require.Len(t, rep.Unmitigated, 1)
	require.Equal(t, "App", rep.Unmitigated[0].Asset)
}

func TestValidateDuplicateIDSurfaced(t *testing.T) {
	anns1, _ := scan.ParseFile("a.go", []byte(`// @asset Foo (#x)
`))
	anns2, _ := scan.ParseFile("b.go", []byte(`// @asset Bar (#x)
`))
	m, _ := gal.Assemble(append(anns1, anns2...), []string{"a.go", "b.go"}, "demo")

	rep := Validate(m)
	require.Len(t, rep.Diagnostics, 1)
	require.Equal(t, gal.LevelError, rep.Diagnostics[0].Level)
}
