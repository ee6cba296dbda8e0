// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Lexical fragments
// =============================================================================

var (
	reDottedPath = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*$`)
	reSigiledID  = regexp.MustCompile(`^#[A-Za-z0-9_-]+$`)
	reParenID    = regexp.MustCompile(`^\(#([A-Za-z0-9_-]+)\)$`)
	reSeverity   = regexp.MustCompile(`(?i)^\[(p[0-3]|critical|high|medium|low)\]$`)
	reExtRef     = regexp.MustCompile(`^[A-Za-z]+:[A-Za-z0-9_:.\-]+$`)
	reFlowsLine  = regexp.MustCompile(`^(\S+)\s*->\s*(\S+)(?:\s+via\s+(.+))?$`)
	reVerbLine   = regexp.MustCompile(`^@([A-Za-z]+(?::[A-Za-z]+)?)(?:\s+(.*))?$`)
)

// knownVerbs is the closed GAL verb set. A line starting with an "@word"
// that is not in this set carries no GAL semantics and is silently ignored
// (spec §4.4 "Parser error policy") — GAL coexists with other comment
// annotation conventions such as @param/@returns.
var knownVerbs = map[string]bool{
	"asset": true, "threat": true, "control": true,
	"mitigates": true, "exposes": true, "accepts": true,
	"transfers": true, "flows": true, "boundary": true,
	"validates": true, "audit": true, "review": true,
	"owns": true, "handles": true, "assumes": true,
	"comment": true, "shield": true, "shield:begin": true, "shield:end": true,
}

// ParseResult is returned by ParseLine: exactly one of Annotation or
// Diagnostic is non-nil, or both are nil when the line is not GAL at all.
type ParseResult struct {
	Annotation *Annotation
	Diagnostic *Diagnostic
}

// malformedMessage is the fixed diagnostic message for a recognized verb whose
// arguments fail to match its grammar (spec §4.4).
const malformedMessage = "malformed @%s annotation: could not parse arguments"

// ParseLine parses one stripped comment line (inner text, as produced by
// Strip) into a ParseResult. loc is attached to any Annotation or
// Diagnostic produced. raw is the original, un-stripped line text, kept on
// diagnostics for operator context.
func ParseLine(inner string, loc SourceLocation, raw string) ParseResult {
	m := reVerbLine.FindStringSubmatch(inner)
	if m == nil {
		return ParseResult{}
	}
	verb := strings.ToLower(m[1])
	if !knownVerbs[verb] {
		return ParseResult{}
	}
	rest := strings.TrimSpace(m[2])

	main, desc, _ := splitDescription(rest)

	ann, ok := parseVerbArgs(verb, main, desc, loc)
	if !ok {
		return ParseResult{Diagnostic: &Diagnostic{
			Level:   LevelError,
			Message: fmt.Sprintf(malformedMessage, verb),
			File:    loc.File,
			Line:    loc.Line,
			Raw:     raw,
		}}
	}
	return ParseResult{Annotation: ann}
}

// splitDescription separates the grammar-shared "-- \"desc\"" suffix from
// the verb-specific argument text that precedes it. The sentinel is the
// literal substring `-- "`; everything from there to the next unescaped
// quote is the raw (still-escaped) description text.
func splitDescription(rest string) (main string, desc string, hasDesc bool) {
	idx := strings.Index(rest, `-- "`)
	if idx < 0 {
		return strings.TrimSpace(rest), "", false
	}
	main = strings.TrimSpace(rest[:idx])
	body := rest[idx+len(`-- "`):]

	var b strings.Builder
	i := 0
	closed := false
	for i < len(body) {
		if body[i] == '\\' && i+1 < len(body) {
			b.WriteByte(body[i])
			b.WriteByte(body[i+1])
			i += 2
			continue
		}
		if body[i] == '"' {
			closed = true
			break
		}
		b.WriteByte(body[i])
		i++
	}
	_ = closed
	return main, UnescapeDescription(b.String()), true
}

// parseVerbArgs dispatches to the per-verb grammar and returns (annotation,
// ok). ok is false when the known verb's arguments don't match its shape.
func parseVerbArgs(verb, main, desc string, loc SourceLocation) (*Annotation, bool) {
	switch verb {
	case "asset":
		return parseAsset(main, desc, loc)
	case "threat":
		return parseThreat(main, desc, loc)
	case "control":
		return parseControl(main, desc, loc)
	case "mitigates":
		return parseMitigates(main, desc, loc)
	case "exposes":
		return parseExposes(main, desc, loc)
	case "accepts":
		return parseAccepts(main, desc, loc)
	case "transfers":
		return parseTransfers(main, desc, loc)
	case "flows":
		return parseFlows(main, desc, loc)
	case "boundary":
		return parseBoundary(main, desc, loc)
	case "validates":
		return parseValidates(main, desc, loc)
	case "audit", "review":
		return parseAudit(main, desc, loc)
	case "owns":
		return parseOwns(main, desc, loc)
	case "handles":
		return parseHandles(main, desc, loc)
	case "assumes":
		return parseAssumes(main, desc, loc)
	case "comment":
		return &Annotation{Verb: VerbComment, Location: loc, Description: desc, Payload: CommentPayload{}}, true
	case "shield":
		return &Annotation{Verb: VerbShieldBegin, Location: loc, Description: desc, Payload: ShieldPayload{}}, true
	case "shield:begin":
		return &Annotation{Verb: VerbShieldBegin, Location: loc, Description: desc, Payload: ShieldPayload{}}, true
	case "shield:end":
		return &Annotation{Verb: VerbShieldEnd, Location: loc, Description: desc, Payload: ShieldPayload{}}, true
	}
	return nil, false
}

// =============================================================================
// Token helpers
// =============================================================================

// popTrailingParenID pops a trailing "(#id)" token, returning the bare id.
func popTrailingParenID(tokens []string) (id string, rest []string, ok bool) {
	if len(tokens) == 0 {
		return "", tokens, false
	}
	last := tokens[len(tokens)-1]
	if m := reParenID.FindStringSubmatch(last); m != nil {
		return m[1], tokens[:len(tokens)-1], true
	}
	return "", tokens, false
}

// popTrailingSeverity pops a trailing "[severity]" token.
func popTrailingSeverity(tokens []string) (sev string, rest []string, ok bool) {
	if len(tokens) == 0 {
		return "", tokens, false
	}
	last := tokens[len(tokens)-1]
	if reSeverity.MatchString(last) {
		canon, _ := NormalizeSeverity(last)
		return canon, tokens[:len(tokens)-1], true
	}
	return "", tokens, false
}

// popTrailingExtRefs pops a contiguous run of trailing "kind:value" tokens,
// returning them in original left-to-right order.
func popTrailingExtRefs(tokens []string) (refs []string, rest []string) {
	i := len(tokens)
	for i > 0 && reExtRef.MatchString(tokens[i-1]) {
		i--
	}
	return append([]string(nil), tokens[i:]...), tokens[:i]
}

// isAssetRef reports whether a single token is a valid AssetRef (sigiled id
// or dotted path); AssetRef never contains whitespace.
func isAssetRef(tok string) bool {
	return reSigiledID.MatchString(tok) || reDottedPath.MatchString(tok)
}

// =============================================================================
// Per-verb parsers
// =============================================================================

func parseAsset(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	id, tokens, _ := popTrailingParenID(tokens)
	if len(tokens) != 1 || !reDottedPath.MatchString(tokens[0]) {
		return nil, false
	}
	return &Annotation{
		Verb: VerbAsset, Location: loc, Description: desc,
		Payload: AssetPayload{Path: strings.Split(tokens[0], "."), ID: id},
	}, true
}

func parseThreat(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	refs, tokens := popTrailingExtRefs(tokens)
	sev, tokens, _ := popTrailingSeverity(tokens)
	id, tokens, _ := popTrailingParenID(tokens)
	if len(tokens) == 0 {
		return nil, false
	}
	name := strings.Join(tokens, " ")
	return &Annotation{
		Verb: VerbThreat, Location: loc, Description: desc,
		Payload: ThreatPayload{
			Name: name, CanonicalName: CanonicalName(name), ID: id,
			Severity: sev, ExternalRefs: refs,
		},
	}, true
}

func parseControl(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	id, tokens, _ := popTrailingParenID(tokens)
	if len(tokens) == 0 {
		return nil, false
	}
	name := strings.Join(tokens, " ")
	return &Annotation{
		Verb: VerbControl, Location: loc, Description: desc,
		Payload: ControlPayload{Name: name, CanonicalName: CanonicalName(name), ID: id},
	}, true
}

func parseMitigates(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) < 3 || !isAssetRef(tokens[0]) || tokens[1] != "against" {
		return nil, false
	}
	asset := tokens[0]
	rest := tokens[2:]

	control := ""
	for i, t := range rest {
		if t == "using" || t == "with" {
			if i+1 >= len(rest) {
				return nil, false
			}
			control = strings.Join(rest[i+1:], " ")
			rest = rest[:i]
			break
		}
	}
	if len(rest) == 0 {
		return nil, false
	}
	threat := strings.Join(rest, " ")
	return &Annotation{
		Verb: VerbMitigates, Location: loc, Description: desc,
		Payload: MitigatesPayload{Asset: asset, Threat: threat, Control: control},
	}, true
}

func parseExposes(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) < 3 || !isAssetRef(tokens[0]) || tokens[1] != "to" {
		return nil, false
	}
	asset := tokens[0]
	rest := tokens[2:]
	refs, rest := popTrailingExtRefs(rest)
	sev, rest, _ := popTrailingSeverity(rest)
	if len(rest) == 0 {
		return nil, false
	}
	threat := strings.Join(rest, " ")
	return &Annotation{
		Verb: VerbExposes, Location: loc, Description: desc,
		Payload: ExposesPayload{Asset: asset, Threat: threat, Severity: sev, ExternalRefs: refs},
	}, true
}

func parseAccepts(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) < 3 {
		return nil, false
	}
	asset := tokens[len(tokens)-1]
	kw := tokens[len(tokens)-2]
	if (kw != "on" && kw != "to") || !isAssetRef(asset) {
		return nil, false
	}
	threat := strings.Join(tokens[:len(tokens)-2], " ")
	if threat == "" {
		return nil, false
	}
	return &Annotation{
		Verb: VerbAccepts, Location: loc, Description: desc,
		Payload: AcceptsPayload{Threat: threat, Asset: asset},
	}, true
}

func parseTransfers(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	fromIdx := -1
	for i, t := range tokens {
		if t == "from" {
			fromIdx = i
			break
		}
	}
	if fromIdx < 0 || fromIdx == 0 || fromIdx+3 >= len(tokens) {
		return nil, false
	}
	source := tokens[fromIdx+1]
	if tokens[fromIdx+2] != "to" {
		return nil, false
	}
	target := tokens[fromIdx+3]
	if fromIdx+4 != len(tokens) || !isAssetRef(source) || !isAssetRef(target) {
		return nil, false
	}
	threat := strings.Join(tokens[:fromIdx], " ")
	return &Annotation{
		Verb: VerbTransfers, Location: loc, Description: desc,
		Payload: TransfersPayload{Threat: threat, From: source, To: target},
	}, true
}

func parseFlows(main, desc string, loc SourceLocation) (*Annotation, bool) {
	m := reFlowsLine.FindStringSubmatch(main)
	if m == nil {
		return nil, false
	}
	source, target, mechanism := m[1], m[2], strings.TrimSpace(m[3])
	if !isAssetRef(source) || !isAssetRef(target) {
		return nil, false
	}
	return &Annotation{
		Verb: VerbFlows, Location: loc, Description: desc,
		Payload: FlowsPayload{Source: source, Target: target, Mechanism: mechanism},
	}, true
}

func parseBoundary(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) > 0 && tokens[0] == "between" {
		tokens = tokens[1:]
	}
	id, tokens, _ := popTrailingParenID(tokens)
	if len(tokens) != 3 {
		return nil, false
	}
	a, sep, b := tokens[0], tokens[1], tokens[2]
	if (sep != "and" && sep != "|") || !isAssetRef(a) || !isAssetRef(b) {
		return nil, false
	}
	return &Annotation{
		Verb: VerbBoundary, Location: loc, Description: desc,
		Payload: BoundaryPayload{AssetA: a, AssetB: b, ID: id},
	}, true
}

func parseValidates(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) < 3 {
		return nil, false
	}
	asset := tokens[len(tokens)-1]
	if tokens[len(tokens)-2] != "for" || !isAssetRef(asset) {
		return nil, false
	}
	control := strings.Join(tokens[:len(tokens)-2], " ")
	if control == "" {
		return nil, false
	}
	return &Annotation{
		Verb: VerbValidates, Location: loc, Description: desc,
		Payload: ValidatesPayload{Control: control, Asset: asset},
	}, true
}

func parseAudit(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) != 1 || !isAssetRef(tokens[0]) {
		return nil, false
	}
	return &Annotation{
		Verb: VerbAudit, Location: loc, Description: desc,
		Payload: AuditPayload{Asset: tokens[0]},
	}, true
}

func parseOwns(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) < 3 {
		return nil, false
	}
	asset := tokens[len(tokens)-1]
	if tokens[len(tokens)-2] != "for" || !isAssetRef(asset) {
		return nil, false
	}
	owner := strings.Join(tokens[:len(tokens)-2], " ")
	if owner == "" {
		return nil, false
	}
	return &Annotation{
		Verb: VerbOwns, Location: loc, Description: desc,
		Payload: OwnershipPayload{Owner: owner, Asset: asset},
	}, true
}

func parseHandles(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) != 3 {
		return nil, false
	}
	if tokens[1] != "on" || !isAssetRef(tokens[2]) {
		return nil, false
	}
	classification, ok := NormalizeClassification(tokens[0])
	if !ok {
		return nil, false
	}
	return &Annotation{
		Verb: VerbHandles, Location: loc, Description: desc,
		Payload: DataHandlingPayload{Classification: classification, Asset: tokens[2]},
	}, true
}

func parseAssumes(main, desc string, loc SourceLocation) (*Annotation, bool) {
	tokens := strings.Fields(main)
	if len(tokens) != 1 || !isAssetRef(tokens[0]) {
		return nil, false
	}
	return &Annotation{
		Verb: VerbAssumes, Location: loc, Description: desc,
		Payload: AssumptionPayload{Asset: tokens[0]},
	}, true
}
