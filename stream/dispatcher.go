// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"sync"

	"github.com/ManuGH/udapi/internal/metrics"
	"github.com/rs/zerolog"
)

// Observer receives session events. Calls happen on the consume loop
// goroutine; an observer that blocks stalls the stream. Observers must not
// call Session.Stop synchronously.
type Observer interface {
	Connected()
	Disconnected()
	Message(payload string)
	SynchronizationError(err error)
}

// ObserverFuncs adapts optional callbacks to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnConnected            func()
	OnDisconnected         func()
	OnMessage              func(payload string)
	OnSynchronizationError func(err error)
}

func (o ObserverFuncs) Connected() {
	if o.OnConnected != nil {
		o.OnConnected()
	}
}

func (o ObserverFuncs) Disconnected() {
	if o.OnDisconnected != nil {
		o.OnDisconnected()
	}
}

func (o ObserverFuncs) Message(payload string) {
	if o.OnMessage != nil {
		o.OnMessage(payload)
	}
}

func (o ObserverFuncs) SynchronizationError(err error) {
	if o.OnSynchronizationError != nil {
		o.OnSynchronizationError(err)
	}
}

type subscription struct {
	id       uint64
	observer Observer
}

// Dispatcher fans events out to registered observers. Each event goes to the
// observers registered when it fires, once each, in registration order.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	logger zerolog.Logger
}

// NewDispatcher returns an empty dispatcher that logs recovered observer
// panics to logger.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Subscribe registers o and returns a func that removes it. The func is safe to call more than once.
func (d *Dispatcher) Subscribe(o Observer) (unsubscribe func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.subs = append(d.subs, subscription{id: id, observer: o})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(id) })
	}
}

func (d *Dispatcher) remove(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered observers.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subs)
}

func (d *Dispatcher) snapshot() []subscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.subs
}

func (d *Dispatcher) connected() {
	d.deliver("connected", func(o Observer) { o.Connected() })
}

func (d *Dispatcher) disconnected() {
	d.deliver("disconnected", func(o Observer) { o.Disconnected() })
}

func (d *Dispatcher) message(payload string) {
	d.deliver("message", func(o Observer) { o.Message(payload) })
}

func (d *Dispatcher) syncError(err error) {
	d.deliver("synchronization_error", func(o Observer) { o.SynchronizationError(err) })
}

func (d *Dispatcher) deliver(event string, call func(Observer)) {
	for _, s := range d.snapshot() {
		d.safeCall(event, s, call)
	}
}

func (d *Dispatcher) safeCall(event string, s subscription, call func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncObserverPanic(event)
			d.logger.Error().
				Str("event", "stream.observer_panic").
				Str("kind", event).
				Uint64("observer", s.id).
				Interface("panic", r).
				Msg("observer panicked, event skipped for this observer")
		}
	}()
	call(s.observer)
}
