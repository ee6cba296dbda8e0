// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/cache"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/metrics"
)

// MaxFileSize is the default per-file size cutoff (spec §5 "recommended
// 1 MB"); files larger than this are skipped with a warning.
const MaxFileSize = 1 << 20

// sniffWindow is how much of a file's head is checked for NUL bytes when
// deciding whether it is text (spec §5).
const sniffWindow = 8 * 1024

// ErrRootNotExist is returned when the scan root does not exist.
var ErrRootNotExist = errors.New("scan root does not exist")

// ErrRootNotReadable is returned when the scan root cannot be read at all.
var ErrRootNotReadable = errors.New("scan root is not readable")

// includeExt is the closed set of scanned file extensions (spec §6.3).
var includeExt = map[string]bool{}

func init() {
	for _, e := range []string{
		".ts", ".tsx", ".js", ".jsx", ".py", ".rb", ".go", ".rs", ".java", ".kt",
		".scala", ".c", ".cpp", ".cc", ".h", ".hpp", ".cs", ".swift", ".dart",
		".sql", ".lua", ".hs", ".tf", ".hcl", ".yaml", ".yml", ".sh", ".bash",
		".html", ".xml", ".svg", ".css", ".ex", ".exs",
	} {
		includeExt[e] = true
	}
}

// defaultExcludeDirs is the closed set of directories never walked into
// (spec §6.3), checked by base name at any depth.
var defaultExcludeDirs = map[string]bool{
	"node_modules": true, "dist": true, "build": true, ".git": true,
	"__pycache__": true, "target": true, "vendor": true, ".next": true,
	"tests": true, "test": true, "__tests__": true,
}

// guardlinkDir is the hand-maintained definitions directory the scanner
// always descends into, dot-prefix notwithstanding (spec §4.6, §6.1).
const guardlinkDir = ".guardlink"

// ScanError wraps a path with the cause of a scan-level I/O failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Options configures a scan.
type Options struct {
	// ExtraExcludeDirs supplements defaultExcludeDirs, by base name.
	ExtraExcludeDirs []string
	// MaxFileSize overrides MaxFileSize when positive.
	MaxFileSize int64
	// Concurrency bounds the number of files parsed in parallel; 0 (or a
	// negative value) means a limit of 8.
	Concurrency int
	// Cache, when non-nil, short-circuits ParseFile for unchanged files.
	// A miss or a nil Cache always falls back to reparsing.
	Cache *cache.Cache
}

// Result is everything a scan produces: a flat, scan-ordered annotation
// stream, diagnostics gathered along the way, and the full list of files
// that were visited (used by Assemble for annotated/unannotated partition).
type Result struct {
	Annotations []gal.Annotation
	Diagnostics []gal.Diagnostic
	Files       []string
}

// Scan walks root, parsing every included file and returning a Result in
// scan order (lexicographic by relative path, spec §5). It returns a
// non-nil error only when root itself cannot be walked; every per-file
// failure degrades to a warning diagnostic instead.
func Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	timer := prometheus.NewTimer(metrics.ScanDurationSeconds)
	defer timer.ObserveDuration()

	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotExist, root)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotReadable, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotReadable, root)
	}

	exclude := map[string]bool{}
	for k := range defaultExcludeDirs {
		exclude[k] = true
	}
	for _, d := range opts.ExtraExcludeDirs {
		exclude[d] = true
	}

	maxSize := int64(MaxFileSize)
	if opts.MaxFileSize > 0 {
		maxSize = opts.MaxFileSize
	}

	var diagnostics []gal.Diagnostic
	var paths []string

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			rel, _ := filepath.Rel(root, path)
			diagnostics = append(diagnostics, gal.Diagnostic{
				Level: gal.LevelWarning, Message: err.Error(), File: toRelSlash(rel),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		rel = toRelSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			base := filepath.Base(path)
			if base == guardlinkDir {
				return nil
			}
			if exclude[base] {
				return fs.SkipDir
			}
			if strings.HasPrefix(base, ".") {
				return fs.SkipDir
			}
			return nil
		}

		if !underGuardlinkDir(rel) && strings.HasPrefix(filepath.Base(path), ".") {
			return nil
		}
		if !includeExt[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootNotReadable, root, walkErr)
	}

	sort.Strings(paths)

	type fileOutcome struct {
		annotations []gal.Annotation
		diagnostics []gal.Diagnostic
	}
	outcomes := make([]fileOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	} else {
		g.SetLimit(8)
	}

	for i, rel := range paths {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}

			full := filepath.Join(root, filepath.FromSlash(rel))

			if opts.Cache != nil {
				if size, modTime, statErr := cache.Stat(full); statErr == nil {
					if entry, ok := opts.Cache.Lookup(rel, size, modTime); ok {
						outcomes[i].annotations = entry.Annotations
						outcomes[i].diagnostics = entry.Diagnostics
						return nil
					}
				}
			}

			content, readErr := readBounded(full, maxSize)
			if readErr != nil {
				outcomes[i].diagnostics = []gal.Diagnostic{{
					Level: gal.LevelWarning, Message: readErr.Error(), File: rel,
				}}
				return nil
			}
			if content == nil {
				return nil // nothing to parse
			}

			anns, diags := ParseFile(rel, content)
			outcomes[i].annotations = anns
			outcomes[i].diagnostics = diags

			if opts.Cache != nil {
				if size, modTime, statErr := cache.Stat(full); statErr == nil {
					_ = opts.Cache.Store(rel, size, modTime, anns, diags)
				}
			}
			return nil
		})
	}
	_ = g.Wait() // per-file goroutines never return a non-nil error

	var annotations []gal.Annotation
	for _, o := range outcomes {
		annotations = append(annotations, o.annotations...)
		diagnostics = append(diagnostics, o.diagnostics...)
	}

	select {
	case <-ctx.Done():
		diagnostics = append(diagnostics, gal.Diagnostic{
			Level: gal.LevelWarning, Message: "scan canceled",
		})
	default:
	}

	metrics.ScanFilesTotal.Add(float64(len(paths)))
	metrics.ScanAnnotationsTotal.Add(float64(len(annotations)))
	for _, d := range diagnostics {
		metrics.ScanDiagnosticsTotal.WithLabelValues(string(d.Level)).Inc()
	}

	return &Result{Annotations: annotations, Diagnostics: diagnostics, Files: paths}, nil
}

// readBounded reads a file's content. It returns an error when the file
// cannot be read, is larger than maxSize, or has a NUL byte in its first
// sniffWindow bytes; the caller turns any such error into a warning
// diagnostic and skips the file.
func readBounded(path string, maxSize int64) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file exceeds %d byte limit, skipped", maxSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, sniffWindow)
	n, _ := f.Read(head)
	if bytes.IndexByte(head[:n], 0) >= 0 {
		return nil, fmt.Errorf("file appears to be binary, skipped")
	}

	rest, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rest, nil
}

func toRelSlash(rel string) string {
	return filepath.ToSlash(rel)
}

func underGuardlinkDir(rel string) bool {
	return rel == guardlinkDir || strings.HasPrefix(rel, guardlinkDir+"/")
}
