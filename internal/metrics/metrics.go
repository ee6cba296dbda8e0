// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package metrics declares the Prometheus instruments the scanner and CLI
// increment, and optionally serves them over --metrics-addr.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ScanFilesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardlink_scan_files_total",
		Help: "Files visited by a scan.",
	})

	ScanAnnotationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guardlink_scan_annotations_total",
		Help: "Annotations parsed across all scans.",
	})

	ScanDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "guardlink_scan_duration_seconds",
		Help:    "Wall-clock duration of a full project scan.",
		Buckets: prometheus.DefBuckets,
	})

	ScanDiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guardlink_scan_diagnostics_total",
		Help: "Diagnostics emitted by a scan, by level.",
	}, []string{"level"})
)

// Serve starts a blocking HTTP server exposing /metrics at addr. Callers
// run it in its own goroutine; a non-nil return means the listener failed
// to start or stopped unexpectedly.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
