// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScanFindsAnnotationsAndExcludesVendor(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.go", `// @asset App.Auth (#login) -- "login"
`)
	writeFile(t, root, "vendor/dep.go", `// @asset Should.Not.Appear (#vendored)
`)
	writeFile(t, root, "node_modules/pkg/index.js", `// @asset Nope (#npm)
`)

	res, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Annotations, 1)
	require.Equal(t, "src/app.go", res.Annotations[0].Location.File)
}

func TestScanIncludesGuardlinkDotDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".guardlink/defs.yaml", `# @control Rate_Limit (#rl)
`)

	res, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Len(t, res.Annotations, 1)
	require.Equal(t, ".guardlink/defs.yaml", res.Annotations[0].Location.File)
}

func TestScanNonexistentRoot(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), Options{})
	require.Error(t, err)
}

func TestScanOrdersLexicographically(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "b.go", `// @asset B (#b)
`)
	writeFile(t, root, "a.go", `// @asset A (#a)
`)

	res, err := Scan(context.Background(), root, Options{})
	require.NoError(t, err)
	require.Equal(t, []string{"a.go", "b.go"}, res.Files)
}
