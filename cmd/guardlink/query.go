// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/query"
)

var queryRoot string

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Run a free-text query against a freshly scanned threat model",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryRoot, "root", ".", "directory to scan before querying")
}

func runQuery(cmd *cobra.Command, args []string) error {
	model, _, err := scanOnce(cmd.Context(), queryRoot)
	if err != nil {
		return err
	}

	q := strings.Join(args, " ")
	return printJSON(query.Run(model, q))
}
