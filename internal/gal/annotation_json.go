// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import (
	"encoding/json"
	"fmt"
)

// annotationJSON is Annotation's wire shape: Payload is a closed interface,
// so it round-trips as a verb-tagged envelope rather than directly.
type annotationJSON struct {
	Verb        Verb            `json:"verb"`
	Location    SourceLocation  `json:"location"`
	Description string          `json:"description,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// MarshalJSON lets Annotation serialize for the scan cache (internal/cache)
// without losing the concrete Payload type.
func (a Annotation) MarshalJSON() ([]byte, error) {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(annotationJSON{
		Verb:        a.Verb,
		Location:    a.Location,
		Description: a.Description,
		Payload:     payload,
	})
}

// UnmarshalJSON is MarshalJSON's inverse: it reconstructs the concrete
// Payload type from the verb tag.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var wire annotationJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	payload, err := decodePayload(wire.Verb, wire.Payload)
	if err != nil {
		return err
	}
	a.Verb = wire.Verb
	a.Location = wire.Location
	a.Description = wire.Description
	a.Payload = payload
	return nil
}

func decodePayload(verb Verb, raw json.RawMessage) (Payload, error) {
	switch verb {
	case VerbAsset:
		var p AssetPayload
		return p, json.Unmarshal(raw, &p)
	case VerbThreat:
		var p ThreatPayload
		return p, json.Unmarshal(raw, &p)
	case VerbControl:
		var p ControlPayload
		return p, json.Unmarshal(raw, &p)
	case VerbMitigates:
		var p MitigatesPayload
		return p, json.Unmarshal(raw, &p)
	case VerbExposes:
		var p ExposesPayload
		return p, json.Unmarshal(raw, &p)
	case VerbAccepts:
		var p AcceptsPayload
		return p, json.Unmarshal(raw, &p)
	case VerbTransfers:
		var p TransfersPayload
		return p, json.Unmarshal(raw, &p)
	case VerbFlows:
		var p FlowsPayload
		return p, json.Unmarshal(raw, &p)
	case VerbBoundary:
		var p BoundaryPayload
		return p, json.Unmarshal(raw, &p)
	case VerbValidates:
		var p ValidatesPayload
		return p, json.Unmarshal(raw, &p)
	case VerbAudit:
		var p AuditPayload
		return p, json.Unmarshal(raw, &p)
	case VerbOwns:
		var p OwnershipPayload
		return p, json.Unmarshal(raw, &p)
	case VerbHandles:
		var p DataHandlingPayload
		return p, json.Unmarshal(raw, &p)
	case VerbAssumes:
		var p AssumptionPayload
		return p, json.Unmarshal(raw, &p)
	case VerbComment:
		return CommentPayload{}, nil
	case VerbShieldBegin, VerbShieldEnd:
		return ShieldPayload{}, nil
	default:
		return nil, fmt.Errorf("gal: unknown verb %q in cached annotation", verb)
	}
}
