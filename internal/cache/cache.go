// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides a badger-backed incremental scan cache, keyed by
// a file's path, size, and modification time, storing its parsed
// annotations and diagnostics. It is a pure speedup: a cache miss, a
// disabled cache, or a corrupt entry must always fall back to reparsing
// and must never change the resulting ThreatModel.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

// Entry is what gets stored per file.
type Entry struct {
	Size        int64           `json:"size"`
	ModTime     int64           `json:"mod_time"`
	Annotations []gal.Annotation `json:"annotations"`
	Diagnostics []gal.Diagnostic `json:"diagnostics"`
}

// Cache wraps a badger.DB opened at the directory passed to Open
// (config.Load defaults it to .guardlink/cache under the scan root).
type Cache struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger store at dir. Callers should
// treat a non-nil error as "run without a cache", not as fatal.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying badger handles.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached annotations/diagnostics for path if present and
// still valid for the given size/modTime, and ok=false otherwise (cache
// miss, stale entry, or any decode error — all treated identically by the
// caller: reparse).
func (c *Cache) Lookup(path string, size int64, modTime time.Time) (Entry, bool) {
	if c == nil || c.db == nil {
		return Entry{}, false
	}

	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return Entry{}, false
	}
	if entry.Size != size || entry.ModTime != modTime.UnixNano() {
		return Entry{}, false
	}
	return entry, true
}

// Store writes the parse result for path, keyed by its current size and
// modification time. Store errors are non-fatal: a failed write just means
// the next scan reparses this file too.
func (c *Cache) Store(path string, size int64, modTime time.Time, anns []gal.Annotation, diags []gal.Diagnostic) error {
	if c == nil || c.db == nil {
		return nil
	}
	entry := Entry{
		Size:        size,
		ModTime:     modTime.UnixNano(),
		Annotations: anns,
		Diagnostics: diags,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), data)
	})
}

// Stat is a small seam over os.Stat so callers can build the (size,
// modTime) pair Lookup/Store need without importing os themselves.
func Stat(path string) (size int64, modTime time.Time, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, time.Time{}, err
	}
	return info.Size(), info.ModTime(), nil
}

// IsNotFound reports whether err is badger's not-found sentinel, for
// callers that want to distinguish "no entry" from other I/O failures.
func IsNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}
