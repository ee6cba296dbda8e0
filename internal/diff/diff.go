// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package diff implements the Diff Engine (C10): comparing two ThreatModel
// values by stable identity keys and computing a risk delta.
package diff

import (
	"strings"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/validate"
)

// RiskDelta classifies how the unmitigated-exposure set moved between two
// models.
type RiskDelta string

const (
	RiskIncreased RiskDelta = "increased"
	RiskDecreased RiskDelta = "decreased"
	RiskUnchanged RiskDelta = "unchanged"
)

// Change is one added/removed/modified entry in a category.
type Change struct {
	Key     string      `json:"key"`
	Before  interface{} `json:"before,omitempty"`
	After   interface{} `json:"after,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Category is the added/removed/modified breakdown for one table.
type Category struct {
	Added    []Change `json:"added"`
	Removed  []Change `json:"removed"`
	Modified []Change `json:"modified"`
}

func (c Category) total() int { return len(c.Added) + len(c.Removed) + len(c.Modified) }

// Result is the full output of Diff.
type Result struct {
	Assets      Category `json:"assets"`
	Threats     Category `json:"threats"`
	Controls    Category `json:"controls"`
	Mitigations Category `json:"mitigations"`
	Exposures   Category `json:"exposures"`
	Acceptances Category `json:"acceptances"`
	Transfers   Category `json:"transfers"`
	Flows       Category `json:"flows"`
	Boundaries  Category `json:"boundaries"`

	NewUnmitigated      []string  `json:"new_unmitigated"`
	ResolvedUnmitigated  []string `json:"resolved_unmitigated"`
	RiskDelta            RiskDelta `json:"risk_delta"`

	TotalAdded    int `json:"total_added"`
	TotalRemoved  int `json:"total_removed"`
	TotalModified int `json:"total_modified"`
}

// Diff compares before and after by stable identity key per table (spec
// §4.10) and computes the risk delta from each model's unmitigated set.
func Diff(before, after *gal.ThreatModel) Result {
	var r Result

	r.Assets = diffAssets(before.Assets, after.Assets)
	r.Threats = diffThreats(before.Threats, after.Threats)
	r.Controls = diffControls(before.Controls, after.Controls)
	r.Mitigations = diffMitigations(before.Mitigations, after.Mitigations)
	r.Exposures = diffExposures(before.Exposures, after.Exposures)
	r.Acceptances = diffAcceptances(before.Acceptances, after.Acceptances)
	r.Transfers = diffTransfers(before.Transfers, after.Transfers)
	r.Flows = diffFlows(before.Flows, after.Flows)
	r.Boundaries = diffBoundaries(before.Boundaries, after.Boundaries)

	beforeUnmitigated := keySet(validate.ComputeUnmitigated(before))
	afterUnmitigated := keySet(validate.ComputeUnmitigated(after))

	for k := range afterUnmitigated {
		if !beforeUnmitigated[k] {
			r.NewUnmitigated = append(r.NewUnmitigated, k)
		}
	}
	for k := range beforeUnmitigated {
		if !afterUnmitigated[k] {
			r.ResolvedUnmitigated = append(r.ResolvedUnmitigated, k)
		}
	}

	switch {
	case len(r.NewUnmitigated) > len(r.ResolvedUnmitigated):
		r.RiskDelta = RiskIncreased
	case len(r.NewUnmitigated) < len(r.ResolvedUnmitigated):
		r.RiskDelta = RiskDecreased
	default:
		r.RiskDelta = RiskUnchanged
	}

	for _, c := range []Category{
		r.Assets, r.Threats, r.Controls, r.Mitigations, r.Exposures,
		r.Acceptances, r.Transfers, r.Flows, r.Boundaries,
	} {
		r.TotalAdded += len(c.Added)
		r.TotalRemoved += len(c.Removed)
		r.TotalModified += len(c.Modified)
	}

	return r
}

func keySet(us []validate.Unmitigated) map[string]bool {
	out := map[string]bool{}
	for _, u := range us {
		out[strings.TrimPrefix(u.Asset, "#")+"::"+strings.TrimPrefix(u.Threat, "#")] = true
	}
	return out
}

// =============================================================================
// Identity keys (spec §4.10 table)

func assetKey(a gal.AssetRecord) string {
	if a.ID != "" {
		return a.ID
	}
	return a.DottedPath()
}

func threatKey(t gal.ThreatRecord) string {
	if t.ID != "" {
		return t.ID
	}
	return t.CanonicalName
}

func controlKey(c gal.ControlRecord) string {
	if c.ID != "" {
		return c.ID
	}
	return c.CanonicalName
}

func mitigationKey(m gal.MitigationRecord) string {
	return m.Asset + "::" + m.Threat + "::" + m.Control
}

func exposureKey(e gal.ExposureRecord) string {
	return e.Asset + "::" + e.Threat
}

func acceptanceKey(a gal.AcceptanceRecord) string {
	return a.Asset + "::" + a.Threat
}

func flowKey(f gal.FlowRecord) string {
	return f.Source + "->" + f.Target + "::" + f.Mechanism
}

func boundaryKey(b gal.BoundaryRecord) string {
	if b.ID != "" {
		return b.ID
	}
	return b.AssetA + "::" + b.AssetB
}

func transferKey(t gal.TransferRecord) string {
	return t.From + "->" + t.To + "::" + t.Threat
}

// =============================================================================
// Per-table diff

func diffAssets(before, after []gal.AssetRecord) Category {
	bIdx := map[string]gal.AssetRecord{}
	for _, a := range before {
		bIdx[assetKey(a)] = a
	}
	aIdx := map[string]gal.AssetRecord{}
	for _, a := range after {
		aIdx[assetKey(a)] = a
	}

	var cat Category
	for _, a := range after {
		k := assetKey(a)
		b, ok := bIdx[k]
		if !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: a})
			continue
		}
		var details []string
		if b.Description != a.Description {
			details = append(details, "description changed")
		}
		if b.DottedPath() != a.DottedPath() {
			details = append(details, "path changed")
		}
		if len(details) > 0 {
			cat.Modified = append(cat.Modified, Change{Key: k, Before: b, After: a, Details: strings.Join(details, "; ")})
		}
	}
	for _, b := range before {
		k := assetKey(b)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: b})
		}
	}
	return cat
}

func diffThreats(before, after []gal.ThreatRecord) Category {
	bIdx := map[string]gal.ThreatRecord{}
	for _, t := range before {
		bIdx[threatKey(t)] = t
	}
	aIdx := map[string]gal.ThreatRecord{}
	for _, t := range after {
		aIdx[threatKey(t)] = t
	}

	var cat Category
	for _, t := range after {
		k := threatKey(t)
		b, ok := bIdx[k]
		if !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: t})
			continue
		}
		var details []string
		if b.Severity != t.Severity {
			details = append(details, "severity changed")
		}
		if b.Description != t.Description {
			details = append(details, "description changed")
		}
		if strings.Join(b.ExternalRefs, ",") != strings.Join(t.ExternalRefs, ",") {
			details = append(details, "external refs changed")
		}
		if len(details) > 0 {
			cat.Modified = append(cat.Modified, Change{Key: k, Before: b, After: t, Details: strings.Join(details, "; ")})
		}
	}
	for _, b := range before {
		k := threatKey(b)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: b})
		}
	}
	return cat
}

func diffControls(before, after []gal.ControlRecord) Category {
	bIdx := map[string]gal.ControlRecord{}
	for _, c := range before {
		bIdx[controlKey(c)] = c
	}
	aIdx := map[string]gal.ControlRecord{}
	for _, c := range after {
		aIdx[controlKey(c)] = c
	}

	var cat Category
	for _, c := range after {
		k := controlKey(c)
		b, ok := bIdx[k]
		if !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: c})
			continue
		}
		if b.Description != c.Description {
			cat.Modified = append(cat.Modified, Change{Key: k, Before: b, After: c, Details: "description changed"})
		}
	}
	for _, b := range before {
		k := controlKey(b)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: b})
		}
	}
	return cat
}

func diffMitigations(before, after []gal.MitigationRecord) Category {
	return diffIdentityOnly(before, after, mitigationKey, func(v gal.MitigationRecord) interface{} { return v })
}

func diffAcceptances(before, after []gal.AcceptanceRecord) Category {
	return diffIdentityOnly(before, after, acceptanceKey, func(v gal.AcceptanceRecord) interface{} { return v })
}

func diffTransfers(before, after []gal.TransferRecord) Category {
	return diffIdentityOnly(before, after, transferKey, func(v gal.TransferRecord) interface{} { return v })
}

func diffExposures(before, after []gal.ExposureRecord) Category {
	bIdx := map[string]gal.ExposureRecord{}
	for _, e := range before {
		bIdx[exposureKey(e)] = e
	}
	aIdx := map[string]gal.ExposureRecord{}
	for _, e := range after {
		aIdx[exposureKey(e)] = e
	}

	var cat Category
	for _, e := range after {
		k := exposureKey(e)
		b, ok := bIdx[k]
		if !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: e})
			continue
		}
		var details []string
		if b.Severity != e.Severity {
			details = append(details, "severity changed")
		}
		if b.Description != e.Description {
			details = append(details, "description changed")
		}
		if len(details) > 0 {
			cat.Modified = append(cat.Modified, Change{Key: k, Before: b, After: e, Details: strings.Join(details, "; ")})
		}
	}
	for _, b := range before {
		k := exposureKey(b)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: b})
		}
	}
	return cat
}

func diffFlows(before, after []gal.FlowRecord) Category {
	bIdx := map[string]gal.FlowRecord{}
	for _, f := range before {
		bIdx[flowKey(f)] = f
	}
	aIdx := map[string]gal.FlowRecord{}
	for _, f := range after {
		aIdx[flowKey(f)] = f
	}

	var cat Category
	for _, f := range after {
		k := flowKey(f)
		b, ok := bIdx[k]
		if !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: f})
			continue
		}
		var details []string
		if b.Mechanism != f.Mechanism {
			details = append(details, "mechanism changed")
		}
		if b.Description != f.Description {
			details = append(details, "description changed")
		}
		if len(details) > 0 {
			cat.Modified = append(cat.Modified, Change{Key: k, Before: b, After: f, Details: strings.Join(details, "; ")})
		}
	}
	for _, b := range before {
		k := flowKey(b)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: b})
		}
	}
	return cat
}

func diffBoundaries(before, after []gal.BoundaryRecord) Category {
	return diffIdentityOnly(before, after, boundaryKey, func(v gal.BoundaryRecord) interface{} { return v })
}

// diffIdentityOnly handles tables where the spec declares "equality of
// identity key suffices; changes to descriptions are not tracked" — added
// and removed only, never modified.
func diffIdentityOnly[T any](before, after []T, key func(T) string, box func(T) interface{}) Category {
	bIdx := map[string]T{}
	for _, v := range before {
		bIdx[key(v)] = v
	}
	aIdx := map[string]T{}
	for _, v := range after {
		aIdx[key(v)] = v
	}

	var cat Category
	for _, v := range after {
		k := key(v)
		if _, ok := bIdx[k]; !ok {
			cat.Added = append(cat.Added, Change{Key: k, After: box(v)})
		}
	}
	for _, v := range before {
		k := key(v)
		if _, ok := aIdx[k]; !ok {
			cat.Removed = append(cat.Removed, Change{Key: k, Before: box(v)})
		}
	}
	return cat
}
