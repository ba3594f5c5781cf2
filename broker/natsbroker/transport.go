// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package natsbroker implements broker.Transport over NATS core subjects.
//
// The descriptor's virtual host and queue name map to a subject
// ("<vhost>.<queue>" with slashes turned into dots). Echo requests are
// published to the same subject with a kind header so they come back as
// echo frames.
package natsbroker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/internal/log"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

const (
	kindHeader = "Udapi-Kind"
	kindEcho   = "echo"

	defaultPort = 4222
)

// Config tunes new connections.
type Config struct {
	Timeout time.Duration
	Name    string
}

// Transport opens one NATS connection per consumer. Reconnects are disabled:
// losing the server surfaces as broker.ErrDisconnected and the caller decides.
type Transport struct {
	cfg    Config
	logger zerolog.Logger
}

// New returns a transport with a 5s connect timeout unless cfg sets one.
func New(cfg Config) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "udapi"
	}
	return &Transport{cfg: cfg, logger: log.WithComponent("natsbroker")}
}

// ServerURL renders the nats:// URL for d without credentials.
func ServerURL(d broker.Descriptor) string {
	scheme := "nats"
	if d.Scheme == "tls" || d.Scheme == "nats+tls" {
		scheme = "tls"
	}
	port := defaultPort
	if d.Port != nil {
		port = *d.Port
	}
	return scheme + "://" + d.Host + ":" + strconv.Itoa(port)
}

// Subject maps the descriptor's path to a NATS subject.
func Subject(d broker.Descriptor) string {
	parts := make([]string, 0, 2)
	if d.VirtualHost != "" {
		parts = append(parts, d.VirtualHost)
	}
	if d.QueueName != "" {
		parts = append(parts, strings.ReplaceAll(d.QueueName, "/", "."))
	}
	return strings.Join(parts, ".")
}

func (t *Transport) Open(ctx context.Context, d broker.Descriptor, opts broker.ConsumerOptions) (broker.Consumer, error) {
	subject := Subject(d)
	if subject == "" {
		return nil, fmt.Errorf("%w: no subject in %s", broker.ErrBadConnectionString, d.String())
	}
	if opts.Prefetch <= 0 {
		opts.Prefetch = broker.DefaultPrefetch
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := &consumer{
		subject: subject,
		msgs:    make(chan *nats.Msg, opts.Prefetch),
		lost:    make(chan struct{}),
		stop:    make(chan struct{}),
		logger: t.logger.With().
			Str(log.FieldHost, d.Address()).
			Str(log.FieldQueue, subject).
			Logger(),
	}

	natsOpts := []nats.Option{
		nats.Name(t.cfg.Name),
		nats.Timeout(t.cfg.Timeout),
		nats.NoReconnect(),
		nats.DisconnectErrHandler(c.handleDisconnect),
		nats.ClosedHandler(c.handleClosed),
	}
	if d.UserName != nil {
		pass := ""
		if d.Password != nil {
			pass = *d.Password
		}
		natsOpts = append(natsOpts, nats.UserInfo(*d.UserName, pass))
	}

	nc, err := nats.Connect(ServerURL(d), natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", d.String(), err)
	}
	sub, err := nc.ChanSubscribe(subject, c.msgs)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("subscribe %s: %w", subject, err)
	}
	if err := nc.FlushWithContext(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("flush subscription: %w", err)
	}
	c.nc, c.sub = nc, sub

	c.logger.Debug().Int("prefetch", opts.Prefetch).Msg("nats consumer open")
	return c, nil
}

type consumer struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
	msgs    chan *nats.Msg
	logger  zerolog.Logger

	lostOnce sync.Once
	lost     chan struct{}
	lostMu   sync.Mutex
	lostErr  error

	stop      chan struct{}
	closeOnce sync.Once
}

func (c *consumer) markLost(err error) {
	c.lostOnce.Do(func() {
		c.lostMu.Lock()
		c.lostErr = err
		c.lostMu.Unlock()
		close(c.lost)
	})
}

func (c *consumer) handleDisconnect(_ *nats.Conn, err error) {
	if err == nil {
		err = errors.New("connection dropped")
	}
	c.markLost(err)
}

func (c *consumer) handleClosed(_ *nats.Conn) {
	c.markLost(errors.New("connection closed"))
}

func (c *consumer) Next(ctx context.Context) (broker.Frame, error) {
	select {
	case <-ctx.Done():
		return broker.Frame{}, ctx.Err()
	case <-c.stop:
		return broker.Frame{}, broker.ErrConsumerClosed
	case msg := <-c.msgs:
		return toFrame(msg, time.Now()), nil
	case <-c.lost:
		select {
		case <-c.stop:
			return broker.Frame{}, broker.ErrConsumerClosed
		default:
		}
		c.lostMu.Lock()
		cause := c.lostErr
		c.lostMu.Unlock()
		return broker.Frame{}, fmt.Errorf("%w: %v", broker.ErrDisconnected, cause)
	}
}

func (c *consumer) SendEcho(_ context.Context, payload string) error {
	select {
	case <-c.stop:
		return broker.ErrConsumerClosed
	default:
	}
	if err := c.nc.PublishMsg(echoMsg(c.subject, payload)); err != nil {
		if errors.Is(err, nats.ErrConnectionClosed) {
			return fmt.Errorf("%w: %v", broker.ErrDisconnected, err)
		}
		return fmt.Errorf("publish echo: %w", err)
	}
	return nil
}

func (c *consumer) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		if uerr := c.sub.Unsubscribe(); uerr != nil && !errors.Is(uerr, nats.ErrConnectionClosed) {
			err = fmt.Errorf("unsubscribe: %w", uerr)
		}
		c.nc.Close()
		c.logger.Debug().Msg("nats consumer closed")
	})
	return err
}

func echoMsg(subject, payload string) *nats.Msg {
	msg := nats.NewMsg(subject)
	msg.Header.Set(kindHeader, kindEcho)
	msg.Data = []byte(payload)
	return msg
}

func toFrame(msg *nats.Msg, now time.Time) broker.Frame {
	kind := broker.FrameData
	if msg.Header != nil && msg.Header.Get(kindHeader) == kindEcho {
		kind = broker.FrameEcho
	}
	return broker.Frame{
		Kind:       kind,
		Body:       msg.Data,
		Tag:        msg.Subject,
		ReceivedAt: now,
	}
}
