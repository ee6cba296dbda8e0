// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

func TestParseFileContinuationJoins(t *testing.T) {
	src := []byte(`// @threat Session (#hijack) [P1]
// -- "steals token"
// -- "on shared nets"
`)
	anns, diags := ParseFile("a.go", src)
	require.Empty(t, diags)
	require.Len(t, anns, 1)
	require.Equal(t, "steals token on shared nets", anns[0].Description)
}

func TestParseFileShieldHidesBody(t *testing.T) {
	src := []byte(`// @shield:begin
// @asset Hidden.Thing (#hidden)
// some random body text
// @shield:end
`)
	anns, diags := ParseFile("a.go", src)
	require.Empty(t, diags)
	require.Len(t, anns, 2)
	require.Equal(t, gal.VerbShieldBegin, anns[0].Verb)
	require.Equal(t, gal.VerbShieldEnd, anns[1].Verb)
}

func TestParseFileResetsOnNonComment(t *testing.T) {
	src := []byte(`// @threat Session (#hijack) [P1]
const x = 1
// -- "should not attach"
`)
	anns, _ := ParseFile("a.go", src)
	require.Len(t, anns, 1)
	require.Equal(t, "", anns[0].Description)
}

func TestParseFileMalformedThenContinues(t *testing.T) {
	src := []byte(`// @mitigates App
// @asset Foo (#x)
`)
	anns, diags := ParseFile("a.go", src)
	require.Len(t, diags, 1)
	require.Len(t, anns, 1)
}

func TestParseFileExtensionDrivenShape(t *testing.T) {
	src := []byte("# @asset App.Auth (#a)\n")
	anns, diags := ParseFile("a.py", src)
	require.Empty(t, diags)
	require.Len(t, anns, 1)
}
