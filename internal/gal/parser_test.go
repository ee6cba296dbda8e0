// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, inner string) *Annotation {
	t.Helper()
	res := ParseLine(inner, SourceLocation{File: "f.go", Line: 1}, inner)
	require.Nil(t, res.Diagnostic, "unexpected diagnostic: %+v", res.Diagnostic)
	require.NotNil(t, res.Annotation)
	return res.Annotation
}

func TestParseAsset(t *testing.T) {
	a := parse(t, `@asset App.Auth.Login (#login) -- "Login endpoint"`)
	p := a.Payload.(AssetPayload)
	require.Equal(t, []string{"App", "Auth", "Login"}, p.Path)
	require.Equal(t, "login", p.ID)
	require.Equal(t, "Login endpoint", a.Description)
}

func TestParseThreat(t *testing.T) {
	a := parse(t, `@threat SQL_Injection (#sqli) [critical] cwe:CWE-89 owasp:A03:2021 -- "Bad input"`)
	p := a.Payload.(ThreatPayload)
	require.Equal(t, "sql_injection", p.CanonicalName)
	require.Equal(t, "critical", p.Severity)
	require.Equal(t, []string{"cwe:CWE-89", "owasp:A03:2021"}, p.ExternalRefs)
	require.Equal(t, "sqli", p.ID)
}

func TestParseFlowsMechanismDisambiguation(t *testing.T) {
	a := parse(t, `@flows App.Frontend -> App.API via HTTPS/443 -- "TLS 1.3"`)
	p := a.Payload.(FlowsPayload)
	require.Equal(t, "App.Frontend", p.Source)
	require.Equal(t, "App.API", p.Target)
	require.Equal(t, "HTTPS/443", p.Mechanism)
	require.Equal(t, "TLS 1.3", a.Description)
}

func TestParseFlowsMultiWordMechanism(t *testing.T) {
	a := parse(t, `@flows App.A -> App.B via gRPC over TLS`)
	p := a.Payload.(FlowsPayload)
	require.Equal(t, "gRPC over TLS", p.Mechanism)
	require.Equal(t, "", a.Description)
}

func TestParseMitigatesLegacyWith(t *testing.T) {
	a := parse(t, `@mitigates #app against #sqli with #waf`)
	p := a.Payload.(MitigatesPayload)
	require.Equal(t, "#app", p.Asset)
	require.Equal(t, "#sqli", p.Threat)
	require.Equal(t, "#waf", p.Control)
}

func TestParseMitigatesNoControl(t *testing.T) {
	a := parse(t, `@mitigates #app against #sqli`)
	p := a.Payload.(MitigatesPayload)
	require.Equal(t, "", p.Control)
}

func TestParseExposesWithSeverityAndExtRefs(t *testing.T) {
	a := parse(t, `@exposes App to #xss [high] cwe:CWE-79`)
	p := a.Payload.(ExposesPayload)
	require.Equal(t, "App", p.Asset)
	require.Equal(t, "#xss", p.Threat)
	require.Equal(t, "high", p.Severity)
	require.Equal(t, []string{"cwe:CWE-79"}, p.ExternalRefs)
}

func TestParseAcceptsLegacyTo(t *testing.T) {
	a := parse(t, `@accepts #xss to #app`)
	p := a.Payload.(AcceptsPayload)
	require.Equal(t, "#xss", p.Threat)
	require.Equal(t, "#app", p.Asset)
}

func TestParseTransfers(t *testing.T) {
	a := parse(t, `@transfers #sqli from #app to #vendor`)
	p := a.Payload.(TransfersPayload)
	require.Equal(t, "#sqli", p.Threat)
	require.Equal(t, "#app", p.From)
	require.Equal(t, "#vendor", p.To)
}

func TestParseBoundaryRejectsSingleAsset(t *testing.T) {
	res := ParseLine(`@boundary App.Frontend`, SourceLocation{File: "f.go", Line: 1}, "")
	require.Nil(t, res.Annotation)
	require.NotNil(t, res.Diagnostic)
	require.Equal(t, LevelError, res.Diagnostic.Level)
}

func TestParseBoundaryTwoAssets(t *testing.T) {
	a := parse(t, `@boundary between App.Frontend and App.Backend (#dmz)`)
	p := a.Payload.(BoundaryPayload)
	require.Equal(t, "App.Frontend", p.AssetA)
	require.Equal(t, "App.Backend", p.AssetB)
	require.Equal(t, "dmz", p.ID)
}

func TestParseValidates(t *testing.T) {
	a := parse(t, `@validates #waf for App`)
	p := a.Payload.(ValidatesPayload)
	require.Equal(t, "#waf", p.Control)
	require.Equal(t, "App", p.Asset)
}

func TestParseAuditAndLegacyReview(t *testing.T) {
	a1 := parse(t, `@audit App`)
	a2 := parse(t, `@review App`)
	require.Equal(t, VerbAudit, a1.Verb)
	require.Equal(t, VerbAudit, a2.Verb)
}

func TestParseOwns(t *testing.T) {
	a := parse(t, `@owns platform-team for App`)
	p := a.Payload.(OwnershipPayload)
	require.Equal(t, "platform-team", p.Owner)
	require.Equal(t, "App", p.Asset)
}

func TestParseHandles(t *testing.T) {
	a := parse(t, `@handles PII on App.Users`)
	p := a.Payload.(DataHandlingPayload)
	require.Equal(t, "pii", p.Classification)
	require.Equal(t, "App.Users", p.Asset)
}

func TestParseHandlesRejectsUnknownClassification(t *testing.T) {
	res := ParseLine(`@handles topsecret on App`, SourceLocation{File: "f.go", Line: 1}, "")
	require.Nil(t, res.Annotation)
	require.NotNil(t, res.Diagnostic)
}

func TestParseAssumes(t *testing.T) {
	a := parse(t, `@assumes App`)
	p := a.Payload.(AssumptionPayload)
	require.Equal(t, "App", p.Asset)
}

func TestParseComment(t *testing.T) {
	a := parse(t, `@comment -- "remember to rotate keys"`)
	require.Equal(t, VerbComment, a.Verb)
	require.Equal(t, "remember to rotate keys", a.Description)
}

func TestParseShieldMarkers(t *testing.T) {
	begin := parse(t, `@shield:begin`)
	end := parse(t, `@shield:end`)
	require.Equal(t, VerbShieldBegin, begin.Verb)
	require.Equal(t, VerbShieldEnd, end.Verb)
}

func TestParseUnknownVerbIsIgnored(t *testing.T) {
	res := ParseLine(`@param x the input`, SourceLocation{File: "f.go", Line: 1}, "")
	require.Nil(t, res.Annotation)
	require.Nil(t, res.Diagnostic)
}

func TestParseMalformedKnownVerb(t *testing.T) {
	res := ParseLine(`@mitigates App`, SourceLocation{File: "f.go", Line: 7}, `// @mitigates App`)
	require.Nil(t, res.Annotation)
	require.NotNil(t, res.Diagnostic)
	require.Equal(t, LevelError, res.Diagnostic.Level)
	require.Contains(t, res.Diagnostic.Message, "malformed @mitigates")
	require.Equal(t, 7, res.Diagnostic.Line)
}

func TestParseNotAnAnnotationAtAll(t *testing.T) {
	res := ParseLine(`just some comment text`, SourceLocation{File: "f.go", Line: 1}, "")
	require.Nil(t, res.Annotation)
	require.Nil(t, res.Diagnostic)
}
