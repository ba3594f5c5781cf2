// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errUpstream = errors.New("upstream down")

func failing() error { return errUpstream }
func healthy() error { return nil }

func TestCircuitBreaker_TripsAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test", 3, 10*time.Second, WithClock(clock))

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, cb.Execute(failing), errUpstream)
		assert.Equal(t, StateClosed, cb.State())
	}
	require.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called, "open breaker must not invoke fn")
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test", 1, 10*time.Second, WithClock(clock))

	require.Error(t, cb.Execute(failing))
	require.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)

	// Failed probe re-opens.
	require.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)
	require.NoError(t, cb.Execute(healthy))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenAdmitsSingleProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test", 1, time.Second, WithClock(clock))
	require.Error(t, cb.Execute(failing))

	clock.now = clock.now.Add(2 * time.Second)

	inner := make(chan error, 1)
	err := cb.Execute(func() error {
		inner <- cb.Execute(healthy)
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, <-inner, ErrCircuitOpen)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailureFilter(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := NewCircuitBreaker("test", 1, time.Minute, WithFailureFilter(func(err error) bool {
		return !errors.Is(err, errNotFound)
	}))

	for i := 0; i < 5; i++ {
		require.ErrorIs(t, cb.Execute(func() error { return errNotFound }), errNotFound)
	}
	assert.Equal(t, StateClosed, cb.State())

	require.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, StateOpen, cb.State())
}

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker("defaults", 0, 0)
	assert.Equal(t, 3, cb.threshold)
	assert.Equal(t, 30*time.Second, cb.resetTimeout)
}
