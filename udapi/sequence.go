// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package udapi

import (
	"encoding/json"
	"fmt"
)

// SequenceOf reads Content.Sequence from a stream update.
func SequenceOf(update string) (int, error) {
	var doc struct {
		Content *struct {
			Sequence *int `json:"Sequence"`
		} `json:"Content"`
	}
	if err := json.Unmarshal([]byte(update), &doc); err != nil {
		return 0, fmt.Errorf("decode update: %w", err)
	}
	if doc.Content == nil || doc.Content.Sequence == nil {
		return 0, fmt.Errorf("update has no Content.Sequence")
	}
	return *doc.Content.Sequence, nil
}
