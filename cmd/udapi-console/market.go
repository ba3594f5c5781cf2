// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/google/renameio/v2"
)

// Fixture is the part of a snapshot the console prints.
type Fixture struct {
	ID          string   `json:"Id"`
	Sequence    int      `json:"Sequence"`
	MatchStatus int      `json:"MatchStatus"`
	Markets     []Market `json:"Markets"`
}

type Market struct {
	ID         string         `json:"Id"`
	Name       string         `json:"Name"`
	Tradable   bool           `json:"Tradable"`
	Tags       map[string]any `json:"Tags"`
	Selections []Selection    `json:"Selections"`
}

type Selection struct {
	ID       string  `json:"Id"`
	Name     string  `json:"Name"`
	Price    float64 `json:"Price"`
	Tradable bool    `json:"Tradable"`
}

func parseFixture(snapshot string) (Fixture, error) {
	var f Fixture
	if err := json.Unmarshal([]byte(snapshot), &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

// Summary is one log-friendly line per fixture.
func (f Fixture) Summary() string {
	tradable, selections := 0, 0
	for _, m := range f.Markets {
		if m.Tradable {
			tradable++
		}
		selections += len(m.Selections)
	}
	return fmt.Sprintf("fixture %s seq=%d status=%d markets=%d tradable=%d selections=%d",
		f.ID, f.Sequence, f.MatchStatus, len(f.Markets), tradable, selections)
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// writeSnapshot replaces dir/<id>.json atomically.
func writeSnapshot(dir, id, body string) (string, error) {
	name := unsafeName.ReplaceAllString(id, "_")
	if name == "" || name == "." || name == ".." {
		name = "unknown"
	}
	path := filepath.Join(dir, name+".json")
	if err := renameio.WriteFile(path, []byte(body), 0o640); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return path, nil
}
