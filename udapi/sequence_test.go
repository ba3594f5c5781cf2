// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package udapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceOf(t *testing.T) {
	n, err := SequenceOf(`{"Content":{"Sequence":17,"MatchStatus":40}}`)
	require.NoError(t, err)
	assert.Equal(t, 17, n)

	for _, in := range []string{`{}`, `{"Content":{}}`, `not json`} {
		_, err := SequenceOf(in)
		assert.Error(t, err, in)
	}
}
