// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"testing"

	"github.com/ManuGH/udapi/internal/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions_Lifecycle(t *testing.T) {
	m := newMachine()
	steps := []struct {
		ev   event
		want State
	}{
		{evStart, StateConnecting},
		{evConnected, StateStreaming},
		{evPause, StatePaused},
		{evResume, StateStreaming},
		{evStop, StateStopping},
		{evLoopExited, StateStopped},
		{evStart, StateConnecting},
		{evConnectFailed, StateErrored},
		{evStart, StateConnecting},
		{evConnected, StateStreaming},
		{evBrokerLost, StateErrored},
		{evLoopExited, StateStopped},
	}
	for _, st := range steps {
		_, to, err := m.Fire(st.ev)
		require.NoError(t, err, "event %s", st.ev)
		assert.Equal(t, st.want, to)
	}
}

func TestTransitions_Rejected(t *testing.T) {
	m := newMachine()
	for _, ev := range []event{evConnected, evPause, evResume, evStop, evBrokerLost, evLoopExited} {
		_, _, err := m.Fire(ev)
		assert.ErrorIs(t, err, fsm.ErrInvalidTransition, "idle must reject %s", ev)
	}
	assert.Equal(t, StateIdle, m.State())
}

func TestState_Active(t *testing.T) {
	assert.True(t, StateStreaming.Active())
	assert.True(t, StatePaused.Active())
	for _, s := range []State{StateIdle, StateConnecting, StateStopping, StateStopped, StateErrored} {
		assert.False(t, s.Active(), s)
	}
}

func TestParseStartPolicy(t *testing.T) {
	p, err := ParseStartPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, StartReject, p)

	p, err = ParseStartPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StartIgnore, p)

	_, err = ParseStartPolicy("restart")
	assert.Error(t, err)
}
