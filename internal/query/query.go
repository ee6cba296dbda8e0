// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package query implements the Query Engine (C9): structured and fuzzy
// lookups over an assembled ThreatModel.
package query

import (
	"regexp"
	"strings"

	"github.com/Bugb-Technologies/guardlink-sub001/internal/gal"
	"github.com/Bugb-Technologies/guardlink-sub001/internal/validate"
)

// Response is the shape returned for every query (spec §6.5).
type Response struct {
	Query   string      `json:"query"`
	Type    string      `json:"type"`
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

var (
	reUnmitigated = regexp.MustCompile(`(?i)^unmitigated$`)
	reThreatsFor  = regexp.MustCompile(`(?i)^threats\s+(?:for|targeting|on)\s+(.+)$`)
	reControlsFor = regexp.MustCompile(`(?i)^controls\s+(?:for|protecting|on)\s+(.+)$`)
	reFlowsInto   = regexp.MustCompile(`(?i)^flows\s+(?:into|to)\s+(.+)$`)
	reFlowsFrom   = regexp.MustCompile(`(?i)^flows\s+(?:from|out of)\s+(.+)$`)
	reBoundaries  = regexp.MustCompile(`(?i)^boundar(?:y|ies)(?:\s+(?:for|involving|of))?\s+(.+)$`)
	reAsset       = regexp.MustCompile(`(?i)^asset\s+(.+)$`)
	reThreat      = regexp.MustCompile(`(?i)^threat\s+(.+)$`)
	reControl     = regexp.MustCompile(`(?i)^control\s+(.+)$`)
	reExposures   = regexp.MustCompile(`(?i)^exposures\s+(?:for|on)\s+(.+)$`)
	reMitigations = regexp.MustCompile(`(?i)^mitigations\s+(?:for|on)\s+(.+)$`)
)

// Run dispatches a query string against an assembled model (spec §4.9),
// trying the eight structured patterns in priority order before falling
// back to a cross-table fuzzy match.
func Run(m *gal.ThreatModel, q string) Response {
	trimmed := strings.TrimSpace(q)

	if reUnmitigated.MatchString(trimmed) {
		results := validate.ComputeUnmitigated(m)
		return respond(q, "unmitigated", results)
	}
	if mm := reThreatsFor.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "threats", threatsForAsset(m, mm[1]))
	}
	if mm := reControlsFor.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "controls", controlsForAsset(m, mm[1]))
	}
	if mm := reFlowsInto.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "flows_into", flowsMatching(m, mm[1], true))
	}
	if mm := reFlowsFrom.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "flows_from", flowsMatching(m, mm[1], false))
	}
	if mm := reBoundaries.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "boundaries", boundariesMatching(m, mm[1]))
	}
	if mm := reAsset.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "asset", assetLookup(m, mm[1]))
	}
	if mm := reThreat.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "threat", threatLookup(m, mm[1]))
	}
	if mm := reControl.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "control", controlLookup(m, mm[1]))
	}
	if mm := reExposures.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "exposures", exposuresForAsset(m, mm[1]))
	}
	if mm := reMitigations.FindStringSubmatch(trimmed); mm != nil {
		return respond(q, "mitigations", mitigationsForAsset(m, mm[1]))
	}

	mixed := fuzzy(m, trimmed)
	if len(mixed) > 0 {
		return respond(q, "mixed", mixed)
	}
	return Response{Query: q, Type: "no_match", Count: 0, Results: []interface{}{}}
}

func respond(q, typ string, results interface{}) Response {
	return Response{Query: q, Type: typ, Count: resultLen(results), Results: results}
}

func resultLen(results interface{}) int {
	switch r := results.(type) {
	case []validate.Unmitigated:
		return len(r)
	case []ThreatHit:
		return len(r)
	case []gal.ControlRecord:
		return len(r)
	case []gal.FlowRecord:
		return len(r)
	case []gal.BoundaryRecord:
		return len(r)
	case []gal.AssetRecord:
		return len(r)
	case []gal.ThreatRecord:
		return len(r)
	case []gal.ExposureRecord:
		return len(r)
	case []gal.MitigationRecord:
		return len(r)
	case []interface{}:
		return len(r)
	default:
		return 0
	}
}

// =============================================================================
// Reference resolution (shared by every pattern above, spec §4.9)

// aliasSet builds the set of strings a user-typed ref should be considered
// equal to: the bare id, its dotted path (if it names an asset), and the
// canonical name (if it names a threat or control).
func aliasSet(m *gal.ThreatModel, ref string) map[string]bool {
	bare := strings.ToLower(strings.TrimPrefix(ref, "#"))
	aliases := map[string]bool{bare: true}

	for _, a := range m.Assets {
		if strings.ToLower(a.ID) == bare {
			aliases[strings.ToLower(a.DottedPath())] = true
		}
		if strings.ToLower(a.DottedPath()) == bare && a.ID != "" {
			aliases[strings.ToLower(a.ID)] = true
		}
	}
	for _, t := range m.Threats {
		if strings.ToLower(t.ID) == bare {
			aliases[strings.ToLower(t.CanonicalName)] = true
		}
	}
	for _, c := range m.Controls {
		if strings.ToLower(c.ID) == bare {
			aliases[strings.ToLower(c.CanonicalName)] = true
		}
	}
	return aliases
}

// refMatches tests a stored reference/name string against an alias set
// using the three ordered rules from spec §4.9.
func refMatches(stored string, aliases map[string]bool) bool {
	s := strings.ToLower(strings.TrimPrefix(stored, "#"))
	for a := range aliases {
		if s == a {
			return true
		}
	}
	segs := strings.Split(s, ".")
	last := segs[len(segs)-1]
	for a := range aliases {
		if last == a {
			return true
		}
	}
	for a := range aliases {
		if len(a) >= 3 && strings.Contains(s, a) {
			return true
		}
	}
	return false
}

// =============================================================================
// Pattern implementations

// ThreatHit pairs a threat with whether any asset-scoped mitigation or
// acceptance covers it, for the "threats for <ref>" pattern.
type ThreatHit struct {
	Threat     gal.ThreatRecord `json:"threat"`
	Mitigated  bool             `json:"mitigated"`
	Accepted   bool             `json:"accepted"`
}

func threatsForAsset(m *gal.ThreatModel, ref string) []ThreatHit {
	aliases := aliasSet(m, ref)

	mitigatedThreats := map[string]bool{}
	for _, x := range m.Mitigations {
		if refMatches(x.Asset, aliases) {
			mitigatedThreats[normKey(x.Threat)] = true
		}
	}
	acceptedThreats := map[string]bool{}
	for _, x := range m.Acceptances {
		if refMatches(x.Asset, aliases) {
			acceptedThreats[normKey(x.Threat)] = true
		}
	}

	threatRefs := map[string]bool{}
	for _, x := range m.Exposures {
		if refMatches(x.Asset, aliases) {
			threatRefs[normKey(x.Threat)] = true
		}
	}

	var hits []ThreatHit
	for _, t := range m.Threats {
		key := normKey("#" + t.ID)
		if t.ID == "" || !threatRefs[key] {
			continue
		}
		hits = append(hits, ThreatHit{
			Threat:    t,
			Mitigated: mitigatedThreats[key],
			Accepted:  acceptedThreats[key],
		})
	}
	return hits
}

func normKey(ref string) string {
	return strings.ToLower(strings.TrimPrefix(ref, "#"))
}

func controlsForAsset(m *gal.ThreatModel, ref string) []gal.ControlRecord {
	aliases := aliasSet(m, ref)
	controlIDs := map[string]bool{}
	for _, x := range m.Mitigations {
		if refMatches(x.Asset, aliases) && x.Control != "" {
			controlIDs[normKey(x.Control)] = true
		}
	}
	var out []gal.ControlRecord
	for _, c := range m.Controls {
		if c.ID != "" && controlIDs[normKey("#"+c.ID)] {
			out = append(out, c)
		}
	}
	return out
}

func flowsMatching(m *gal.ThreatModel, ref string, intoTarget bool) []gal.FlowRecord {
	aliases := aliasSet(m, ref)
	var out []gal.FlowRecord
	for _, f := range m.Flows {
		if intoTarget && refMatches(f.Target, aliases) {
			out = append(out, f)
		} else if !intoTarget && refMatches(f.Source, aliases) {
			out = append(out, f)
		}
	}
	return out
}

func boundariesMatching(m *gal.ThreatModel, ref string) []gal.BoundaryRecord {
	aliases := aliasSet(m, ref)
	var out []gal.BoundaryRecord
	for _, b := range m.Boundaries {
		if refMatches(b.AssetA, aliases) || refMatches(b.AssetB, aliases) {
			out = append(out, b)
		}
	}
	return out
}

func assetLookup(m *gal.ThreatModel, ref string) []gal.AssetRecord {
	aliases := aliasSet(m, ref)
	var out []gal.AssetRecord
	for _, a := range m.Assets {
		if refMatches(a.ID, aliases) || refMatches(a.DottedPath(), aliases) {
			out = append(out, a)
		}
	}
	return out
}

func threatLookup(m *gal.ThreatModel, ref string) []gal.ThreatRecord {
	aliases := aliasSet(m, ref)
	var out []gal.ThreatRecord
	for _, t := range m.Threats {
		if refMatches(t.ID, aliases) || refMatches(t.CanonicalName, aliases) {
			out = append(out, t)
		}
	}
	return out
}

func controlLookup(m *gal.ThreatModel, ref string) []gal.ControlRecord {
	aliases := aliasSet(m, ref)
	var out []gal.ControlRecord
	for _, c := range m.Controls {
		if refMatches(c.ID, aliases) || refMatches(c.CanonicalName, aliases) {
			out = append(out, c)
		}
	}
	return out
}

func exposuresForAsset(m *gal.ThreatModel, ref string) []gal.ExposureRecord {
	aliases := aliasSet(m, ref)
	var out []gal.ExposureRecord
	for _, e := range m.Exposures {
		if refMatches(e.Asset, aliases) {
			out = append(out, e)
		}
	}
	return out
}

func mitigationsForAsset(m *gal.ThreatModel, ref string) []gal.MitigationRecord {
	aliases := aliasSet(m, ref)
	var out []gal.MitigationRecord
	for _, x := range m.Mitigations {
		if refMatches(x.Asset, aliases) {
			out = append(out, x)
		}
	}
	return out
}

// fuzzy is the final fallback (spec §4.9 "Fuzzy fallback"): scan assets,
// threats, and controls for any record whose id or name satisfies the
// matcher, regardless of which structured pattern (if any) was attempted.
func fuzzy(m *gal.ThreatModel, ref string) []interface{} {
	aliases := aliasSet(m, ref)
	var out []interface{}
	for _, a := range m.Assets {
		if refMatches(a.ID, aliases) || refMatches(a.DottedPath(), aliases) {
			out = append(out, a)
		}
	}
	for _, t := range m.Threats {
		if refMatches(t.ID, aliases) || refMatches(t.CanonicalName, aliases) || refMatches(t.Name, aliases) {
			out = append(out, t)
		}
	}
	for _, c := range m.Controls {
		if refMatches(c.ID, aliases) || refMatches(c.CanonicalName, aliases) || refMatches(c.Name, aliases) {
			out = append(out, c)
		}
	}
	return out
}
