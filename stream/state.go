// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import "github.com/ManuGH/udapi/internal/fsm"

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateStreaming  State = "streaming"
	StatePaused     State = "paused"
	StateStopping   State = "stopping"
	StateStopped    State = "stopped"
	StateErrored    State = "errored"
)

type event string

const (
	evStart         event = "start"
	evConnected     event = "connected"
	evConnectFailed event = "connect_failed"
	evPause         event = "pause"
	evResume        event = "resume"
	evStop          event = "stop"
	evBrokerLost    event = "broker_lost"
	evLoopExited    event = "loop_exited"
)

type transition = fsm.Transition[State, event]

var transitions = []transition{
	{From: StateIdle, Event: evStart, To: StateConnecting},
	{From: StateStopped, Event: evStart, To: StateConnecting},
	{From: StateErrored, Event: evStart, To: StateConnecting},

	{From: StateConnecting, Event: evConnected, To: StateStreaming},
	{From: StateConnecting, Event: evConnectFailed, To: StateErrored},

	{From: StateStreaming, Event: evPause, To: StatePaused},
	{From: StatePaused, Event: evResume, To: StateStreaming},

	{From: StateStreaming, Event: evStop, To: StateStopping},
	{From: StatePaused, Event: evStop, To: StateStopping},
	{From: StateStopping, Event: evLoopExited, To: StateStopped},

	{From: StateStreaming, Event: evBrokerLost, To: StateErrored},
	{From: StatePaused, Event: evBrokerLost, To: StateErrored},
	{From: StateErrored, Event: evLoopExited, To: StateStopped},
}

func newMachine() *fsm.Machine[State, event] {
	return fsm.MustNew(StateIdle, transitions)
}

// Active reports whether the state mirrors an open subscription.
func (s State) Active() bool {
	return s == StateStreaming || s == StatePaused
}
