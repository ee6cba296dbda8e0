// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/glog"
)

var (
	metricsAddr string
	logger      *glog.Logger

	rootCmd = &cobra.Command{
		Use:   "guardlink",
		Short: "Threat-modeling-as-code over comment-embedded security annotations",
		Long: `guardlink scans a source tree for GAL annotations (@asset, @threat,
@control, and friends) living in ordinary code comments, assembles them into
a typed threat model, and lets you validate, query, and diff it.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = glog.Default()
			if metricsAddr != "" {
				go func() {
					if err := serveMetrics(metricsAddr); err != nil {
						logger.Warn("metrics server stopped", "addr", metricsAddr, "error", err)
					}
				}()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"if set, serve Prometheus metrics at this address (e.g. :9090)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(diffCmd)
}
