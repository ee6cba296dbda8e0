// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/metrics"
)

// colorEnabled reports whether stdout is a terminal, gating ANSI color
// codes in diagnostic output (no color when piped into a file or CI log).
func colorEnabled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// printDiagnostics writes one line per diagnostic to stderr, colorized by
// level when stdout is a TTY.
func printDiagnostics(diags []gal.Diagnostic) {
	color := colorEnabled()
	for _, d := range diags {
		prefix := string(d.Level)
		if color {
			c := ansiYellow
			if d.Level == gal.LevelError {
				c = ansiRed
			}
			prefix = c + prefix + ansiReset
		}
		if d.Line > 0 {
			fmt.Fprintf(os.Stderr, "[%s] %s:%d: %s\n", prefix, d.File, d.Line, d.Message)
		} else {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", prefix, d.Message)
		}
	}
}

// printJSON marshals v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func serveMetrics(addr string) error {
	return metrics.Serve(addr)
}
