// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsm is a small transition-table state machine.
package fsm

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned when no edge exists for state+event.
var ErrInvalidTransition = errors.New("invalid transition")

// Transition describes a single edge in the FSM.
type Transition[S ~string, E ~string] struct {
	From  S
	Event E
	To    S
}

// Hook observes applied transitions. It runs after the state has changed,
// outside the machine lock.
type Hook[S ~string, E ~string] func(from, to S, event E)

// Machine applies events atomically against a fixed transition table.
// Unknown transitions are errors and leave the state untouched.
type Machine[S ~string, E ~string] struct {
	mu    sync.Mutex
	state S
	index map[string]S
	hooks []Hook[S, E]
}

func New[S ~string, E ~string](initial S, transitions []Transition[S, E]) (*Machine[S, E], error) {
	idx := make(map[string]S, len(transitions))
	for _, t := range transitions {
		k := key(t.From, t.Event)
		if _, exists := idx[k]; exists {
			return nil, fmt.Errorf("duplicate transition: %s -> %s", t.From, t.Event)
		}
		idx[k] = t.To
	}
	return &Machine[S, E]{state: initial, index: idx}, nil
}

// MustNew is New for package-level tables that are known to be valid.
func MustNew[S ~string, E ~string](initial S, transitions []Transition[S, E]) *Machine[S, E] {
	m, err := New(initial, transitions)
	if err != nil {
		panic(err)
	}
	return m
}

// OnTransition registers a hook. Hooks must be registered before the
// machine is shared between goroutines.
func (m *Machine[S, E]) OnTransition(h Hook[S, E]) {
	m.hooks = append(m.hooks, h)
}

func (m *Machine[S, E]) State() S {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// In reports whether the current state is one of states.
func (m *Machine[S, E]) In(states ...S) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Contains(states, m.state)
}

// Can reports whether event is accepted in the current state.
func (m *Machine[S, E]) Can(event E) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.index[key(m.state, event)]
	return ok
}

// Fire applies event and returns the state it left and the state it entered.
func (m *Machine[S, E]) Fire(event E) (from S, to S, err error) {
	m.mu.Lock()
	from = m.state
	to, ok := m.index[key(from, event)]
	if !ok {
		m.mu.Unlock()
		return from, from, fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, from, event)
	}
	m.state = to
	m.mu.Unlock()

	for _, h := range m.hooks {
		h(from, to, event)
	}
	return from, to, nil
}

func key[S ~string, E ~string](from S, event E) string {
	return string(from) + "|" + string(event)
}
