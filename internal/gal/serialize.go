// Copyright (C) 2026 Bugb Technologies
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gal

import "encoding/json"

// MarshalCanonical renders a ThreatModel into its canonical external form
// (spec §6.2): struct field declaration order on ThreatModel already matches
// the required key order, so this is a thin, deliberately boring wrapper —
// the guarantee lives in model.go's field ordering, not here.
func MarshalCanonical(m *ThreatModel) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseCanonical parses a canonical-form document back into a ThreatModel.
// Used for the round-trip property (P1) and for loading a persisted model
// as one side of a diff.
func ParseCanonical(data []byte) (*ThreatModel, error) {
	var m ThreatModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
