// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/cache"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/config"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/diff"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/scan"
)

var (
	scanProject string
	scanWatch   bool
	scanOutput  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Scan a source tree and assemble a threat model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanProject, "project", "", "project name stamped into the model (default: root directory name)")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "rescan on filesystem change and print a diff against the previous scan")
	scanCmd.Flags().StringVar(&scanOutput, "out", "", "write the model JSON to this path instead of stdout")
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	if scanWatch {
		return watchScan(cmd.Context(), root)
	}

	model, _, err := scanOnce(cmd.Context(), root)
	if err != nil {
		return err
	}
	return emitModel(model)
}

// scanOnce runs Scan+Assemble once, loading config and the incremental
// cache if configured. Config is reloaded on every call. It returns the
// scan Result (with assembly diagnostics appended) alongside the model.
func scanOnce(ctx context.Context, root string) (*gal.ThreatModel, *scan.Result, error) {
	cfg, err := config.Load(root)
	if err != nil {
		logger.Warn("config load failed, using defaults", "error", err)
		cfg = config.Config{}
	}

	opts := scan.Options{
		ExtraExcludeDirs: cfg.ExcludeDirs,
		MaxFileSize:      cfg.MaxFileSizeBytes,
	}

	if cfg.Cache.Enabled {
		c, err := cache.Open(cfg.Cache.Dir)
		if err != nil {
			logger.Warn("cache open failed, scanning without cache", "error", err)
		} else {
			defer c.Close()
			opts.Cache = c
		}
	}

	result, err := scan.Scan(ctx, root, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("scan: %w", err)
	}

	project := scanProject
	if project == "" {
		abs, absErr := filepath.Abs(root)
		if absErr == nil {
			project = filepath.Base(abs)
		} else {
			project = root
		}
	}

	model, diags := gal.Assemble(result.Annotations, result.Files, project)
	result.Diagnostics = append(result.Diagnostics, diags...)
	printDiagnostics(result.Diagnostics)

	logger.Info("scan complete", "files", len(result.Files), "annotations", len(result.Annotations))

	return model, result, nil
}

func emitModel(model *gal.ThreatModel) error {
	if scanOutput == "" {
		return printJSON(model)
	}
	data, err := gal.MarshalCanonical(model)
	if err != nil {
		return err
	}
	return os.WriteFile(scanOutput, data, 0o644)
}

// watchScan re-runs scanOnce on filesystem change, debounced at 250ms, and
// prints a diff against the previous scan after the first one.
func watchScan(ctx context.Context, root string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()

	if err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || !info.IsDir() {
			return nil
		}
		return watcher.Add(path)
	}); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	previous, _, err := scanOnce(ctx, root)
	if err != nil {
		return err
	}
	if err := emitModel(previous); err != nil {
		return err
	}

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			debounce.Reset(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-debounce.C:
			current, _, err := scanOnce(ctx, root)
			if err != nil {
				logger.Error("rescan failed", "error", err)
				continue
			}
			delta := diff.Diff(previous, current)
			if err := printJSON(delta); err != nil {
				logger.Error("failed to print diff", "error", err)
			}
			previous = current
		}
	}
}
