// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ManuGH/udapi/broker"
	"github.com/rs/zerolog"
)

const (
	DefaultEchoInterval = 10 * time.Second
	DefaultEchoMaxDelay = 3 * time.Second
)

// StartPolicy decides what Start does on a session that is already active.
type StartPolicy int

const (
	// StartIgnore makes Start a silent no-op.
	StartIgnore StartPolicy = iota
	// StartReject makes Start return ErrAlreadyActive.
	StartReject
)

// ParseStartPolicy maps "ignore" and "reject" to a policy.
func ParseStartPolicy(s string) (StartPolicy, error) {
	switch s {
	case "", "ignore":
		return StartIgnore, nil
	case "reject":
		return StartReject, nil
	}
	return StartIgnore, errors.New("unknown start policy " + s)
}

// Clock supplies the time for echo stamps, round trips and liveness.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// MessageValidator rejects data frames that must not reach observers.
type MessageValidator func(body []byte) error

// ValidJSON accepts any well-formed JSON document.
func ValidJSON(body []byte) error {
	if !json.Valid(body) {
		return errors.New("body is not valid JSON")
	}
	return nil
}

type options struct {
	echoInterval time.Duration
	echoMaxDelay time.Duration
	startPolicy  StartPolicy
	clock        Clock
	logger       *zerolog.Logger
	validate     MessageValidator
	observers    []Observer
	consumer     broker.ConsumerOptions
	resourceID   string
	resourceName string
}

func defaultOptions() options {
	return options{
		echoInterval: DefaultEchoInterval,
		echoMaxDelay: DefaultEchoMaxDelay,
		startPolicy:  StartIgnore,
		clock:        realClock{},
		validate:     ValidJSON,
		consumer:     broker.DefaultConsumerOptions(),
	}
}

// Option configures a Session.
type Option func(*options)

// WithEchoInterval sets how often echo probes are sent. Zero disables probing.
func WithEchoInterval(d time.Duration) Option {
	return func(o *options) { o.echoInterval = d }
}

// WithEchoMaxDelay sets the grace added to the echo interval before Stale reports true.
func WithEchoMaxDelay(d time.Duration) Option {
	return func(o *options) { o.echoMaxDelay = d }
}

// WithStartPolicy decides what Start does on an active session.
func WithStartPolicy(p StartPolicy) Option {
	return func(o *options) { o.startPolicy = p }
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLogger sets the base logger. Session and resource fields are added to it.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithMessageValidator replaces the default JSON check. Nil accepts everything.
func WithMessageValidator(v MessageValidator) Option {
	return func(o *options) { o.validate = v }
}

// WithObserver subscribes o before the session can emit anything.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// WithConsumerOptions overrides prefetch, QoS scope and consumer tag.
func WithConsumerOptions(c broker.ConsumerOptions) Option {
	return func(o *options) { o.consumer = c }
}

// WithResource labels logs, spans and health output.
func WithResource(id, name string) Option {
	return func(o *options) {
		o.resourceID = id
		o.resourceName = name
	}
}
