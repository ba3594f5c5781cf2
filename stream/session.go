// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/internal/fsm"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/ManuGH/udapi/internal/metrics"
	"github.com/ManuGH/udapi/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Session owns the live subscription of one resource.
//
// Control methods may be called from any goroutine. Observer callbacks run on
// the session's consume loop goroutine.
type Session struct {
	id         string
	source     DescriptorSource
	transport  broker.Transport
	opts       options
	logger     zerolog.Logger
	tracer     trace.Tracer
	dispatcher *Dispatcher
	machine    *fsm.Machine[State, event]
	live       liveness
	gate       *gate

	active atomic.Bool

	// lifeMu serializes Start and Stop. last is the most recent run.
	lifeMu sync.Mutex
	last   *run

	// ctrlMu pairs flips of active with their transition, and pause
	// transitions with the gate. It also guards cur, the run that is not
	// yet past its loop_exited transition.
	ctrlMu sync.Mutex
	cur    *run

	errMu   sync.Mutex
	lastErr error
}

// run is one connected period between Start and loop exit.
type run struct {
	consumer broker.Consumer
	cancel   context.CancelFunc
	// exited closes once the run has reached the stopped state, before
	// Disconnected is dispatched. done closes after Disconnected.
	exited    chan struct{}
	done      chan struct{}
	echoDone  chan struct{}
	prev      *run
	requested bool // written under ctrlMu before cancel
}

// NewSession creates an idle session. Nothing is resolved or opened until Start.
func NewSession(source DescriptorSource, transport broker.Transport, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:        uuid.NewString(),
		source:    source,
		transport: transport,
		opts:      o,
		tracer:    telemetry.Tracer("stream"),
		machine:   newMachine(),
		gate:      newGate(),
	}

	base := log.WithComponent("stream")
	if o.logger != nil {
		base = *o.logger
	}
	ctx := base.With().Str(log.FieldSessionID, s.id)
	if o.resourceID != "" {
		ctx = ctx.Str(log.FieldResourceID, o.resourceID)
	}
	if o.resourceName != "" {
		ctx = ctx.Str(log.FieldResourceName, o.resourceName)
	}
	s.logger = ctx.Logger()

	s.dispatcher = NewDispatcher(s.logger)
	for _, obs := range o.observers {
		s.dispatcher.Subscribe(obs)
	}

	s.machine.OnTransition(func(from, to State, ev event) {
		metrics.IncStreamTransition(string(from), string(to))
		s.logger.Debug().
			Str(log.FieldEvent, string(ev)).
			Str(log.FieldOldState, string(from)).
			Str(log.FieldNewState, string(to)).
			Msg("stream state transition")
	})
	return s
}

// ID is the session's unique id, used in logs.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.machine.State() }

// IsActive reports whether the session is streaming or paused.
func (s *Session) IsActive() bool { return s.active.Load() }

// Subscribe registers an observer. See Dispatcher.Subscribe.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) { return s.dispatcher.Subscribe(o) }

// Liveness returns the latest liveness data.
func (s *Session) Liveness() LivenessSnapshot { return s.live.snapshot() }

// Stale reports whether nothing (data or echo reply) has arrived for longer
// than EchoInterval+EchoMaxDelay. Inactive sessions are never stale.
func (s *Session) Stale(now time.Time) bool {
	window := s.opts.echoInterval + s.opts.echoMaxDelay
	if window <= 0 || !s.active.Load() {
		return false
	}
	last := s.live.lastActivity()
	return !last.IsZero() && now.Sub(last) > window
}

// Err returns why the last run ended abnormally: a failed start or an
// unsolicited disconnect. It is cleared by the next Start.
func (s *Session) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.lastErr
}

func (s *Session) setErr(err error) {
	s.errMu.Lock()
	s.lastErr = err
	s.errMu.Unlock()
}

// Start resolves the broker endpoint, opens a consumer and launches the
// consume loop. Connected is raised by the loop before any message.
//
// On an active session Start follows the configured StartPolicy.
func (s *Session) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.active.Load() {
		if s.opts.startPolicy == StartReject {
			return ErrAlreadyActive
		}
		s.logger.Debug().Msg("start ignored, session already active")
		return nil
	}
	if s.last != nil {
		// The previous run ended on its own and may still be on its way to
		// stopped. Only wait for the state change: this Start may come from
		// that run's Disconnected observer.
		<-s.last.exited
	}

	ctx, span := s.tracer.Start(ctx, "stream.start",
		trace.WithAttributes(telemetry.StreamAttributes(s.opts.resourceID, s.opts.resourceName, "", "", "")...))
	defer span.End()

	if _, _, err := s.machine.Fire(evStart); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	s.setErr(nil)

	d, err := s.source.Descriptor(ctx)
	if err != nil {
		return s.failStart(span, fmt.Errorf("resolve stream descriptor: %w", err))
	}
	span.SetAttributes(telemetry.StreamAttributes("", "", d.Address(), d.VirtualHost, d.QueueName)...)

	consumer, err := s.transport.Open(ctx, d, s.opts.consumer)
	if err != nil {
		return s.failStart(span, fmt.Errorf("%w: %s: %w", ErrBrokerConnect, d.String(), err))
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		consumer: consumer,
		cancel:   cancel,
		exited:   make(chan struct{}),
		done:     make(chan struct{}),
		echoDone: make(chan struct{}),
		prev:     s.last,
	}

	s.ctrlMu.Lock()
	s.gate.open()
	s.live.markActive(s.opts.clock.Now())
	if _, _, err := s.machine.Fire(evConnected); err != nil {
		s.ctrlMu.Unlock()
		cancel()
		_ = consumer.Close()
		return fmt.Errorf("start session: %w", err)
	}
	s.active.Store(true)
	s.cur = r
	s.ctrlMu.Unlock()

	s.last = r
	go s.loop(loopCtx, r)
	if s.opts.echoInterval > 0 {
		go s.echoLoop(loopCtx, r)
	} else {
		close(r.echoDone)
	}

	s.logger.Info().
		Str(log.FieldHost, d.Address()).
		Str(log.FieldVirtualHost, d.VirtualHost).
		Str(log.FieldQueue, d.QueueName).
		Msg("stream started")
	return nil
}

func (s *Session) failStart(span trace.Span, err error) error {
	if _, _, ferr := s.machine.Fire(evConnectFailed); ferr != nil {
		s.logger.Error().Err(ferr).Msg("connect failure transition rejected")
	}
	s.setErr(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, "start failed")
	s.logger.Warn().Err(err).Msg("stream start failed")
	return err
}

// Stop ends the session and blocks until the consume loop has exited and
// Disconnected has been delivered. It is safe to call any number of times;
// on a session that is already stopped it returns at once, so it may be
// called from a Disconnected observer after a broker drop.
func (s *Session) Stop() error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.ctrlMu.Lock()
	r := s.cur
	if r == nil {
		s.ctrlMu.Unlock()
		return nil
	}
	if s.active.CompareAndSwap(true, false) {
		r.requested = true
		if _, _, err := s.machine.Fire(evStop); err != nil {
			s.logger.Error().Err(err).Msg("stop transition rejected")
		}
		s.gate.open()
	}
	s.ctrlMu.Unlock()

	r.cancel()
	<-r.done
	return nil
}

// Pause holds delivery without closing the consumer. Frames that arrive
// meanwhile are delivered after Resume. Pausing a paused session is a no-op.
func (s *Session) Pause() error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if !s.active.Load() {
		return ErrNotActive
	}
	if s.machine.State() == StatePaused {
		return nil
	}
	if _, _, err := s.machine.Fire(evPause); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	s.gate.close()
	s.logger.Info().Msg("stream paused")
	return nil
}

// Resume releases a paused session. Resuming a streaming session is a no-op.
func (s *Session) Resume() error {
	s.ctrlMu.Lock()
	defer s.ctrlMu.Unlock()

	if !s.active.Load() {
		return ErrNotActive
	}
	if s.machine.State() == StateStreaming {
		return nil
	}
	if _, _, err := s.machine.Fire(evResume); err != nil {
		return fmt.Errorf("resume: %w", err)
	}
	s.gate.open()
	s.logger.Info().Msg("stream resumed")
	return nil
}

func (s *Session) loop(ctx context.Context, r *run) {
	var lost error
	defer func() { s.exit(r, lost) }()

	if r.prev != nil {
		// keep Disconnected of the previous run ahead of this Connected
		select {
		case <-r.prev.done:
		case <-ctx.Done():
		}
	}
	s.dispatcher.connected()

	for {
		// Next keeps running while paused so a broker drop is still noticed.
		frame, err := r.consumer.Next(ctx)
		if err != nil {
			s.ctrlMu.Lock()
			if s.active.CompareAndSwap(true, false) {
				lost = err
				if _, _, ferr := s.machine.Fire(evBrokerLost); ferr != nil {
					s.logger.Error().Err(ferr).Msg("broker lost transition rejected")
				}
			}
			s.ctrlMu.Unlock()
			return
		}
		// frames that arrive while paused are held here until Resume
		if err := s.gate.wait(ctx); err != nil {
			return
		}
		if !s.active.Load() {
			return
		}
		s.handle(frame)
	}
}

func (s *Session) handle(f broker.Frame) {
	metrics.IncStreamFrame(f.Kind.String())

	switch f.Kind {
	case broker.FrameEcho:
		_, sent, err := ParseEcho(string(f.Body))
		if err != nil {
			metrics.IncStreamSyncError("malformed_echo")
			s.logger.Warn().Err(err).Msg("malformed echo")
			s.dispatcher.syncError(err)
			return
		}
		now := s.opts.clock.Now()
		rtt := now.Sub(sent)
		s.live.recordEcho(now, rtt)
		metrics.ObserveEchoRoundTrip(rtt)
		s.logger.Debug().Dur("rtt", rtt).Msg("echo received")

	default:
		if s.opts.validate != nil {
			if err := s.opts.validate(f.Body); err != nil {
				err = fmt.Errorf("%w: %v", ErrMalformedMessage, err)
				metrics.IncStreamSyncError("malformed_message")
				s.logger.Warn().Err(err).Int("bytes", len(f.Body)).Msg("malformed message")
				s.dispatcher.syncError(err)
				return
			}
		}
		s.live.recordMessage(s.opts.clock.Now())
		s.dispatcher.message(string(f.Body))
	}
}

// exit runs once per run on the loop goroutine.
func (s *Session) exit(r *run, lost error) {
	r.cancel()
	<-r.echoDone

	if err := r.consumer.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("close consumer")
	}
	s.live.recordDisconnect(s.opts.clock.Now())

	s.ctrlMu.Lock()
	cause := "requested"
	if !r.requested {
		cause = "unsolicited"
		if lost == nil {
			lost = errors.New("consume loop ended")
		}
		s.setErr(fmt.Errorf("%w: %w", ErrUnsolicitedDisconnect, lost))
	}
	if _, _, err := s.machine.Fire(evLoopExited); err != nil {
		s.logger.Error().Err(err).Msg("loop exit transition rejected")
	}
	if s.cur == r {
		s.cur = nil
	}
	close(r.exited)
	s.ctrlMu.Unlock()

	metrics.IncStreamDisconnect(cause)
	if cause == "unsolicited" {
		s.logger.Warn().Err(lost).Msg("stream disconnected by broker")
	} else {
		s.logger.Info().Msg("stream stopped")
	}

	s.dispatcher.disconnected()
	close(r.done)
}

func (s *Session) echoLoop(ctx context.Context, r *run) {
	defer close(r.echoDone)

	ticker := time.NewTicker(s.opts.echoInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.machine.State() != StateStreaming {
				continue
			}
			payload := FormatEcho(uuid.NewString(), s.opts.clock.Now())
			if err := r.consumer.SendEcho(ctx, payload); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn().Err(err).Msg("send echo")
			}
		}
	}
}
