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

	"github.com/spf13/cobra"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [root]",
	Short: "Scan, assemble, and validate a threat model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	model, _, err := scanOnce(cmd.Context(), root)
	if err != nil {
		return err
	}

	report := validate.Validate(model)
	printDiagnostics(report.Diagnostics)

	if err := printJSON(report); err != nil {
		return err
	}

	for _, d := range report.Diagnostics {
		if d.Level == gal.LevelError {
			fmt.Fprintln(os.Stderr, "validation failed: errors present")
			os.Exit(1)
		}
	}
	return nil
}
