// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"testing"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

func TestPrintDiagnosticsDoesNotPanic(t *testing.T) {
	printDiagnostics([]gal.Diagnostic{
		{Level: gal.LevelError, Message: "boom", File: "f.go", Line: 3},
		{Level: gal.LevelWarning, Message: "heads up"},
	})
}

func TestPrintJSONSimpleValueNoError(t *testing.T) {
	if err := printJSON(map[string]int{"a": 1}); err != nil {
		t.Fatalf("printJSON returned error: %v", err)
	}
}
