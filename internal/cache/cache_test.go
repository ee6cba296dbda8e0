// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/cache"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/scan"
)

func TestCacheStoreThenLookupRoundTrips(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	c, err := cache.Open(dir)
	require.NoError(t, err)
	defer c.Close()

	src := `// @asset App.Auth.Login (#login)
// @threat SQLi (#sqli) [high]
`
	anns, diags := scan.ParseFile("login.go", []byte(src))
	require.Empty(t, diags)

	modTime := time.Now()
	require.NoError(t, c.Store("login.go", int64(len(src)), modTime, anns, diags))

	entry, ok := c.Lookup("login.go", int64(len(src)), modTime)
	require.True(t, ok)
	require.Len(t, entry.Annotations, 2)
	require.Equal(t, gal.VerbAsset, entry.Annotations[0].Verb)
	require.Equal(t, gal.VerbThreat, entry.Annotations[1].Verb)

	threat, ok := entry.Annotations[1].Payload.(gal.ThreatPayload)
	require.True(t, ok)
	require.Equal(t, "high", threat.Severity)
	require.Equal(t, "sqli", threat.ID)
}

func TestCacheLookupMissOnSizeChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "badger")
	c, err := cache.Open(dir)
	require.NoError(t, err)
	defer c.Close()

	modTime := time.Now()
	require.NoError(t, c.Store("f.go", 10, modTime, nil, nil))

	_, ok := c.Lookup("f.go", 11, modTime)
	require.False(t, ok)
}

func TestCacheLookupMissWhenNil(t *testing.T) {
	var c *cache.Cache
	_, ok := c.Lookup("f.go", 10, time.Now())
	require.False(t, ok)
}
