// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// idLocation pairs a sigiled id with the first place it was declared, for
// duplicate-id diagnostics (spec §4.7 rule 2).
type idLocation struct {
	id  string
	loc SourceLocation
}

// Assemble converts a flat, scan-ordered annotation stream into a
// ThreatModel (spec §4.7). sourceFiles is every file the scanner visited,
// forward-slash relative paths, in the order the scanner enumerated them.
// project is an implementation-supplied label (e.g. the scan root's base
// name); it is opaque to the core.
func Assemble(annotations []Annotation, sourceFiles []string, project string) (*ThreatModel, []Diagnostic) {
	m := &ThreatModel{
		Version:     SchemaVersion,
		Project:     project,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		ScanID:      uuid.New().String(),
		SourceFiles: len(sourceFiles),
	}

	var diags []Diagnostic
	seen := map[string]idLocation{} // sigiled id (no '#') -> first declaration
	annotatedFiles := map[string]bool{}
	threatSeverityByID := map[string]string{}

	declare := func(id string, loc SourceLocation) bool {
		if id == "" {
			return true
		}
		if prior, dup := seen[id]; dup {
			diags = append(diags, Diagnostic{
				Level: LevelError,
				Message: fmt.Sprintf(
					"duplicate id #%s: first declared at %s:%d", id, prior.loc.File, prior.loc.Line,
				),
				File: loc.File,
				Line: loc.Line,
			})
			return false
		}
		seen[id] = idLocation{id: id, loc: loc}
		return true
	}

	for _, a := range annotations {
		annotatedFiles[a.Location.File] = true
		m.AnnotationsParsed++

		switch p := a.Payload.(type) {
		case AssetPayload:
			declare(p.ID, a.Location)
			m.Assets = append(m.Assets, AssetRecord{
				ID: p.ID, Path: p.Path, Description: a.Description, Location: a.Location,
			})
		case ThreatPayload:
			declare(p.ID, a.Location)
			if p.ID != "" && p.Severity != "" {
				threatSeverityByID[p.ID] = p.Severity
			}
			m.Threats = append(m.Threats, ThreatRecord{
				ID: p.ID, Name: p.Name, CanonicalName: p.CanonicalName,
				Severity: p.Severity, ExternalRefs: p.ExternalRefs,
				Description: a.Description, Location: a.Location,
			})
		case ControlPayload:
			declare(p.ID, a.Location)
			m.Controls = append(m.Controls, ControlRecord{
				ID: p.ID, Name: p.Name, CanonicalName: p.CanonicalName,
				Description: a.Description, Location: a.Location,
			})
		case MitigatesPayload:
			m.Mitigations = append(m.Mitigations, MitigationRecord{
				Asset: p.Asset, Threat: p.Threat, Control: p.Control,
				Description: a.Description, Location: a.Location,
			})
		case ExposesPayload:
			m.Exposures = append(m.Exposures, ExposureRecord{
				Asset: p.Asset, Threat: p.Threat, Severity: p.Severity,
				ExternalRefs: p.ExternalRefs, Description: a.Description, Location: a.Location,
			})
		case AcceptsPayload:
			m.Acceptances = append(m.Acceptances, AcceptanceRecord{
				Threat: p.Threat, Asset: p.Asset, Description: a.Description, Location: a.Location,
			})
		case TransfersPayload:
			m.Transfers = append(m.Transfers, TransferRecord{
				Threat: p.Threat, From: p.From, To: p.To, Description: a.Description, Location: a.Location,
			})
		case FlowsPayload:
			m.Flows = append(m.Flows, FlowRecord{
				Source: p.Source, Target: p.Target, Mechanism: p.Mechanism,
				Description: a.Description, Location: a.Location,
			})
		case BoundaryPayload:
			declare(p.ID, a.Location)
			m.Boundaries = append(m.Boundaries, BoundaryRecord{
				AssetA: p.AssetA, AssetB: p.AssetB, ID: p.ID,
				Description: a.Description, Location: a.Location,
			})
		case ValidatesPayload:
			m.Validations = append(m.Validations, ValidationRecord{
				Control: p.Control, Asset: p.Asset, Description: a.Description, Location: a.Location,
			})
		case AuditPayload:
			m.Audits = append(m.Audits, AuditRecord{
				Asset: p.Asset, Description: a.Description, Location: a.Location,
			})
		case OwnershipPayload:
			m.Ownership = append(m.Ownership, OwnershipRecord{
				Owner: p.Owner, Asset: p.Asset, Description: a.Description, Location: a.Location,
			})
		case DataHandlingPayload:
			m.DataHandling = append(m.DataHandling, DataHandlingRecord{
				Classification: p.Classification, Asset: p.Asset,
				Description: a.Description, Location: a.Location,
			})
		case AssumptionPayload:
			m.Assumptions = append(m.Assumptions, AssumptionRecord{
				Asset: p.Asset, Description: a.Description, Location: a.Location,
			})
		case ShieldPayload:
			m.Shields = append(m.Shields, ShieldRecord{Kind: a.Verb, Location: a.Location})
		case CommentPayload:
			m.Comments = append(m.Comments, CommentRecord{
				Description: a.Description, Location: a.Location,
			})
		}
	}

	// Severity inheritance pass (I4): fill exposures with no inline severity
	// from the threat they reference, when that reference is a sigiled id
	// that resolves in the threat table.
	for i := range m.Exposures {
		e := &m.Exposures[i]
		if e.Severity != "" {
			continue
		}
		if !strings.HasPrefix(e.Threat, "#") {
			continue
		}
		if sev, ok := threatSeverityByID[strings.TrimPrefix(e.Threat, "#")]; ok {
			e.Severity = sev
		}
	}

	// Annotated/unannotated file partition (rule 4): files under .guardlink/
	// are excluded from the unannotated list even when they carry no
	// annotations, since they are hand-maintained definition files.
	for _, f := range sourceFiles {
		if annotatedFiles[f] {
			m.AnnotatedFiles = append(m.AnnotatedFiles, f)
		} else if !strings.HasPrefix(f, ".guardlink/") {
			m.UnannotatedFiles = append(m.UnannotatedFiles, f)
		}
	}
	sort.Strings(m.AnnotatedFiles)
	sort.Strings(m.UnannotatedFiles)

	m.Coverage = ComputeCoverage(len(m.AnnotatedFiles), len(m.UnannotatedFiles))

	return m, diags
}
