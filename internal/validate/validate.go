// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validate implements the Validator (C8): duplicate-id surfacing,
// dangling-reference detection, unmitigated-exposure computation, and
// coverage statistics, all operating on an already-assembled ThreatModel.
package validate

import (
	"fmt"
	"strings"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
)

// Unmitigated identifies one exposure with no corresponding mitigation or
// acceptance, keyed by normalized (asset, threat) reference.
type Unmitigated struct {
	Asset    string
	Threat   string
	Exposure gal.ExposureRecord
}

// Report is the result of validating a model.
type Report struct {
	Diagnostics      []gal.Diagnostic
	Unmitigated      []Unmitigated
	CoveragePercent  int
}

// normalizeRef strips a leading '#' so "#sqli" and "sqli" compare equal
// (spec §4.8 rule 3); case is otherwise preserved.
func normalizeRef(ref string) string {
	return strings.TrimPrefix(ref, "#")
}

// Validate runs all four checks against an assembled model. Duplicate-id
// diagnostics are recomputed here (rather than reused verbatim from
// Assemble) so Validate can run standalone against any ThreatModel,
// including one loaded from a persisted canonical-form document.
func Validate(m *gal.ThreatModel) Report {
	var diags []gal.Diagnostic

	diags = append(diags, duplicateIDs(m)...)
	diags = append(diags, danglingRefs(m)...)

	rep := Report{
		Diagnostics:     diags,
		Unmitigated:     ComputeUnmitigated(m),
		CoveragePercent: m.Coverage.Percent,
	}
	return rep
}

type firstSeen struct {
	loc gal.SourceLocation
}

func duplicateIDs(m *gal.ThreatModel) []gal.Diagnostic {
	var diags []gal.Diagnostic
	seen := map[string]firstSeen{}

	check := func(id string, loc gal.SourceLocation) {
		if id == "" {
			return
		}
		if prior, ok := seen[id]; ok {
			diags = append(diags, gal.Diagnostic{
				Level: gal.LevelError,
				Message: fmt.Sprintf(
					"duplicate id #%s: first declared at %s:%d", id, prior.loc.File, prior.loc.Line,
				),
				File: loc.File,
				Line: loc.Line,
			})
			return
		}
		seen[id] = firstSeen{loc: loc}
	}

	for _, a := range m.Assets {
		check(a.ID, a.Location)
	}
	for _, t := range m.Threats {
		check(t.ID, t.Location)
	}
	for _, c := range m.Controls {
		check(c.ID, c.Location)
	}
	for _, b := range m.Boundaries {
		check(b.ID, b.Location)
	}
	return diags
}

// danglingRefs walks every relationship and lifecycle table, checking each
// sigiled ('#'-prefixed) reference against the model's id universe.
func danglingRefs(m *gal.ThreatModel) []gal.Diagnostic {
	universe := map[string]bool{}
	for _, id := range m.AllSigiledIDs() {
		universe[id] = true
	}

	var diags []gal.Diagnostic
	report := func(ref string, loc gal.SourceLocation) {
		if !strings.HasPrefix(ref, "#") {
			return
		}
		bare := normalizeRef(ref)
		if !universe[bare] {
			diags = append(diags, gal.Diagnostic{
				Level:   gal.LevelWarning,
				Message: fmt.Sprintf("Dangling reference: %s is never defined", ref),
				File:    loc.File,
				Line:    loc.Line,
			})
		}
	}

	for _, x := range m.Mitigations {
		report(x.Asset, x.Location)
		report(x.Threat, x.Location)
		if x.Control != "" {
			report(x.Control, x.Location)
		}
	}
	for _, x := range m.Exposures {
		report(x.Asset, x.Location)
		report(x.Threat, x.Location)
	}
	for _, x := range m.Acceptances {
		report(x.Asset, x.Location)
		report(x.Threat, x.Location)
	}
	for _, x := range m.Transfers {
		report(x.From, x.Location)
		report(x.To, x.Location)
		report(x.Threat, x.Location)
	}
	for _, x := range m.Flows {
		report(x.Source, x.Location)
		report(x.Target, x.Location)
	}
	for _, x := range m.Boundaries {
		report(x.AssetA, x.Location)
		report(x.AssetB, x.Location)
	}
	for _, x := range m.Validations {
		report(x.Control, x.Location)
		report(x.Asset, x.Location)
	}
	for _, x := range m.Audits {
		report(x.Asset, x.Location)
	}
	for _, x := range m.Ownership {
		report(x.Asset, x.Location)
	}
	for _, x := range m.DataHandling {
		report(x.Asset, x.Location)
	}
	for _, x := range m.Assumptions {
		report(x.Asset, x.Location)
	}

	return diags
}

// pairKey builds the normalized (asset, threat) identity used to compare
// exposures against mitigations/acceptances.
func pairKey(asset, threat string) string {
	return normalizeRef(asset) + "::" + normalizeRef(threat)
}

// ComputeUnmitigated computes the unmitigated-exposure list (spec §4.8 rule
// 3). Exported as a free function (rather than only via Report) so the
// query engine's "unmitigated" pattern can reuse it directly.
func ComputeUnmitigated(m *gal.ThreatModel) []Unmitigated {
	covered := map[string]bool{}
	for _, x := range m.Mitigations {
		covered[pairKey(x.Asset, x.Threat)] = true
	}
	for _, x := range m.Acceptances {
		covered[pairKey(x.Asset, x.Threat)] = true
	}

	var out []Unmitigated
	for _, e := range m.Exposures {
		key := pairKey(e.Asset, e.Threat)
		if covered[key] {
			continue
		}
		out = append(out, Unmitigated{Asset: e.Asset, Threat: e.Threat, Exposure: e})
	}
	return out
}
