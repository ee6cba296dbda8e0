// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gal implements the Guardlink Annotation Language: a comment-embedded
// security annotation grammar, its name/severity normalization rules, and the
// typed ThreatModel graph that annotations assemble into.
//
// # Description
//
// GAL annotations live in ordinary source-code comments (see package scan
// for how they are extracted from a file tree). This package owns everything
// downstream of "here is one stripped comment line": parsing a line into a
// typed Annotation, normalizing names and severities, and assembling a flat
// annotation stream into a ThreatModel with enforced identity invariants.
//
// # Thread Safety
//
// Every type in this package is an immutable value once constructed; there
// is no shared mutable state, so all functions are safe for concurrent use.
package gal

// =============================================================================
// Source Location
// =============================================================================

// SourceLocation pinpoints where an annotation was written.
type SourceLocation struct {
	// File is the project-relative path, forward-slash separated.
	File string `json:"file"`

	// Line is the 1-indexed line the annotation starts on.
	Line int `json:"line"`

	// EndLine is set when an annotation spans continuation lines.
	EndLine *int `json:"end_line,omitempty"`

	// ParentSymbol is an optional enclosing symbol name (unused by the core
	// parser, which does not parse host-language syntax; populated only if
	// a caller supplies it out of band).
	ParentSymbol *string `json:"parent_symbol,omitempty"`
}

// =============================================================================
// Diagnostics
// =============================================================================

// DiagnosticLevel is the severity of a diagnostic.
type DiagnosticLevel string

const (
	// LevelError indicates a hard failure: duplicate id, malformed annotation.
	LevelError DiagnosticLevel = "error"

	// LevelWarning indicates a soft failure: dangling reference, unreadable file.
	LevelWarning DiagnosticLevel = "warning"
)

// Diagnostic is a single problem surfaced while scanning, parsing, or
// assembling a model. Diagnostics never abort processing; see spec §7.
type Diagnostic struct {
	Level   DiagnosticLevel `json:"level"`
	Message string          `json:"message"`
	File    string          `json:"file"`
	Line    int             `json:"line"`
	Raw     string          `json:"raw,omitempty"`
}

// =============================================================================
// Verbs
// =============================================================================

// Verb identifies which GAL annotation grammar rule produced an Annotation.
type Verb string

const (
	VerbAsset       Verb = "asset"
	VerbThreat      Verb = "threat"
	VerbControl     Verb = "control"
	VerbMitigates   Verb = "mitigates"
	VerbExposes     Verb = "exposes"
	VerbAccepts     Verb = "accepts"
	VerbTransfers   Verb = "transfers"
	VerbFlows       Verb = "flows"
	VerbBoundary    Verb = "boundary"
	VerbValidates   Verb = "validates"
	VerbAudit       Verb = "audit"
	VerbOwns        Verb = "owns"
	VerbHandles     Verb = "handles"
	VerbAssumes     Verb = "assumes"
	VerbComment     Verb = "comment"
	VerbShieldBegin Verb = "shield:begin"
	VerbShieldEnd   Verb = "shield:end"
)

// =============================================================================
// Annotation payloads
// =============================================================================
//
// Annotation is a closed tagged union over Verb: the Payload field holds one
// of the *Payload structs below, selected by Verb. This is the idiomatic Go
// rendering of the "sealed hierarchy" the spec calls for — an interface with
// a private marker method closes the set of implementers to this package,
// and callers type-switch exhaustively on Verb.

// Payload is implemented by every verb-specific payload struct.
type Payload interface {
	isPayload()
}

// AssetPayload backs @asset annotations.
type AssetPayload struct {
	// Path is the dotted-path segments, e.g. ["App","Auth","Login"].
	Path []string
	// ID is the sigiled id without the leading '#', or "" if none was given.
	ID string
}

func (AssetPayload) isPayload() {}

// DottedPath renders Path back into dot-joined form.
func (p AssetPayload) DottedPath() string {
	return joinDots(p.Path)
}

// ThreatPayload backs @threat annotations.
type ThreatPayload struct {
	Name          string
	CanonicalName string
	ID            string
	Severity      string
	ExternalRefs  []string
}

func (ThreatPayload) isPayload() {}

// ControlPayload backs @control annotations.
type ControlPayload struct {
	Name          string
	CanonicalName string
	ID            string
}

func (ControlPayload) isPayload() {}

// MitigatesPayload backs @mitigates annotations.
type MitigatesPayload struct {
	Asset   string
	Threat  string
	Control string // may be empty: "using"/"with" clause is optional
}

func (MitigatesPayload) isPayload() {}

// ExposesPayload backs @exposes annotations.
type ExposesPayload struct {
	Asset        string
	Threat       string
	Severity     string // may be filled in later by severity inheritance (I4)
	ExternalRefs []string
}

func (ExposesPayload) isPayload() {}

// AcceptsPayload backs @accepts annotations.
type AcceptsPayload struct {
	Threat string
	Asset  string
}

func (AcceptsPayload) isPayload() {}

// TransfersPayload backs @transfers annotations.
type TransfersPayload struct {
	Threat string
	From   string
	To     string
}

func (TransfersPayload) isPayload() {}

// FlowsPayload backs @flows annotations.
type FlowsPayload struct {
	Source    string
	Target    string
	Mechanism string
}

func (FlowsPayload) isPayload() {}

// BoundaryPayload backs @boundary annotations.
type BoundaryPayload struct {
	AssetA string
	AssetB string
	ID     string
}

func (BoundaryPayload) isPayload() {}

// ValidatesPayload backs @validates annotations.
type ValidatesPayload struct {
	Control string
	Asset   string
}

func (ValidatesPayload) isPayload() {}

// AuditPayload backs @audit (and legacy @review) annotations.
type AuditPayload struct {
	Asset string
}

func (AuditPayload) isPayload() {}

// OwnershipPayload backs @owns annotations.
type OwnershipPayload struct {
	Owner string
	Asset string
}

func (OwnershipPayload) isPayload() {}

// DataHandlingPayload backs @handles annotations.
type DataHandlingPayload struct {
	Classification string // lowercase, one of the closed classification set
	Asset          string
}

func (DataHandlingPayload) isPayload() {}

// AssumptionPayload backs @assumes annotations.
type AssumptionPayload struct {
	Asset string
}

func (AssumptionPayload) isPayload() {}

// CommentPayload backs @comment annotations; carries no graph semantics.
type CommentPayload struct{}

func (CommentPayload) isPayload() {}

// ShieldPayload backs @shield, @shield:begin, and @shield:end markers. The
// region's contents are never retained (spec §4.5, §9 "Shield semantics").
type ShieldPayload struct{}

func (ShieldPayload) isPayload() {}

// =============================================================================
// Annotation
// =============================================================================

// Annotation is one record extracted from a single GAL comment (or a comment
// plus its continuation lines), typed by Verb.
type Annotation struct {
	Verb        Verb
	Location    SourceLocation
	Description string
	Payload     Payload
}

func joinDots(segments []string) string {
	out := ""
	for i, s := range segments {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}
