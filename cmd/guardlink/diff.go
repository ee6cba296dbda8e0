// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/diff"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

var diffCmd = &cobra.Command{
	Use:   "diff <before> <after>",
	Short: "Diff two threat models, each given as a directory to scan or a model JSON file",
	Long: `diff accepts two revisions, each either a directory (rescanned on the
spot) or a path to a previously saved model JSON file. It does not perform
git integration itself — "give me the model at revision R" is the caller's
job (e.g. "git worktree add" or "git show rev:path > snapshot.json").`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	before, err := loadRevision(cmd, args[0])
	if err != nil {
		return fmt.Errorf("before revision: %w", err)
	}
	after, err := loadRevision(cmd, args[1])
	if err != nil {
		return fmt.Errorf("after revision: %w", err)
	}

	return printJSON(diff.Diff(before, after))
}

// loadRevision loads a ThreatModel either by parsing rev as a canonical
// model JSON file, or by scanning it as a directory.
func loadRevision(cmd *cobra.Command, rev string) (*gal.ThreatModel, error) {
	if info, err := os.Stat(rev); err == nil && !info.IsDir() {
		if strings.HasSuffix(rev, ".json") {
			data, err := os.ReadFile(rev)
			if err != nil {
				return nil, err
			}
			return gal.ParseCanonical(data)
		}
	}
	model, _, err := scanOnce(cmd.Context(), rev)
	return model, err
}
