// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"errors"
	"testing"

	"github.com/ManuGH/udapi/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDispatcher_DeliversToAllInRegistrationOrder(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	var order []string
	d.Subscribe(ObserverFuncs{OnMessage: func(p string) { order = append(order, "a:"+p) }})
	d.Subscribe(ObserverFuncs{OnMessage: func(p string) { order = append(order, "b:"+p) }})

	d.message("1")
	d.message("2")

	assert.Equal(t, []string{"a:1", "b:1", "a:2", "b:2"}, order)
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	rec := &recorder{}
	unsubscribe := d.Subscribe(rec)
	other := &recorder{}
	d.Subscribe(other)

	d.connected()
	unsubscribe()
	unsubscribe()
	d.disconnected()

	assert.Equal(t, []string{"connected"}, rec.snapshot())
	assert.Equal(t, []string{"connected", "disconnected"}, other.snapshot())
	assert.Equal(t, 1, d.Len())
}

func TestDispatcher_SubscribeDuringDelivery(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	late := &recorder{}
	d.Subscribe(ObserverFuncs{OnConnected: func() { d.Subscribe(late) }})

	d.connected()
	assert.Empty(t, late.snapshot(), "observers added mid-delivery start with the next event")

	d.message("x")
	assert.Equal(t, []string{"message:x"}, late.snapshot())
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	d := NewDispatcher(zerolog.Nop())
	before := testutil.ToFloat64(metrics.StreamObserverPanicsTotal.WithLabelValues("synchronization_error"))

	d.Subscribe(ObserverFuncs{OnSynchronizationError: func(error) { panic("boom") }})
	rec := &recorder{}
	d.Subscribe(rec)

	assert.NotPanics(t, func() { d.syncError(errors.New("bad frame")) })
	assert.Equal(t, []string{"sync_error"}, rec.snapshot())

	after := testutil.ToFloat64(metrics.StreamObserverPanicsTotal.WithLabelValues("synchronization_error"))
	assert.Equal(t, before+1, after)
}

func TestObserverFuncs_NilFieldsAreSkipped(t *testing.T) {
	var o ObserverFuncs
	assert.NotPanics(t, func() {
		o.Connected()
		o.Disconnected()
		o.Message("x")
		o.SynchronizationError(nil)
	})
}
