// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/scan"
)

func assembleModel(t *testing.T, src string) *gal.ThreatModel {
	t.Helper()
	anns, diags := scan.ParseFile("f.go", []byte(src))
	require.Empty(t, diags)
	m, _ := gal.Assemble(anns, []string{"f.go"}, "demo")
	return m
}

func TestQueryFlowsInto(t *testing.T) {
	m := assembleModel(t, `// @flows App.Frontend -> App.API via HTTPS
`)
	res := Run(m, "flows into App.API")
	require.Equal(t, "flows_into", res.Type)
	require.Equal(t, 1, res.Count)
}

func TestQueryUnmitigated(t *testing.T) {
	m := assembleModel(t, `// @exposes app to #xss
// @accepts #xss on #app
`)
	res := Run(m, "unmitigated")
	require.Equal(t, "unmitigated", res.Type)
	require.Equal(t, 0, res.Count)
}

func TestQueryAssetLookupByAlias(t *testing.T) {
	m := assembleModel(t, `// @asset App.Auth.Login (#login)
`)
	res := Run(m, "asset login")
	require.Equal(t, "asset", res.Type)
	require.Equal(t, 1, res.Count)

	res2 := Run(m, "asset App.Auth.Login")
	require.Equal(t, 1, res2.Count)
}

func TestQueryNoMatch(t *testing.T) {
	m := assembleModel(t, `// @comment -- "nothing here"
`)
	res := Run(m, "zzzzz_nonexistent")
	require.Equal(t, "no_match", res.Type)
}

func TestQueryAssetLookupEmptyStillTypedAsset(t *testing.T) {
	m := assembleModel(t, `// @asset App.Auth.Login (#login)
`)
	res := Run(m, "asset nope_nonexistent")
	require.Equal(t, "asset", res.Type)
	require.Equal(t, 0, res.Count)
}

func TestQueryFuzzyFallback(t *testing.T) {
	m := assembleModel(t, `// @threat SQL_Injection (#sqli)
`)
	res := Run(m, "sql")
	require.Equal(t, "mixed", res.Type)
	require.GreaterOrEqual(t, res.Count, 1)
}
