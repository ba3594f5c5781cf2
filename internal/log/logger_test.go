// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithComponentWritesServiceAndComponent(t *testing.T) {
	var buf bytes.Buffer
	Reset()
	t.Cleanup(Reset)
	Configure(Config{Level: "debug", Output: &buf, Service: "udapi-test"})

	l := WithComponent("stream")
	l.Info().Str(FieldQueue, "q1").Msg("consumer opened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "udapi-test", entry["service"])
	assert.Equal(t, "stream", entry[FieldComponent])
	assert.Equal(t, "q1", entry[FieldQueue])
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	require.Error(t, SetLevel("loud"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestDeriveAppliesBuilder(t *testing.T) {
	var buf bytes.Buffer
	Reset()
	t.Cleanup(Reset)
	Configure(Config{Level: "info", Output: &buf})

	l := Derive(func(c *zerolog.Context) {
		*c = c.Str(FieldResourceID, "fx-1")
	})
	l.Info().Msg("derived")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fx-1", entry[FieldResourceID])
	assert.Equal(t, "udapi", entry["service"])
}
