// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package amqpbroker implements broker.Transport over AMQP 0-9-1.
//
// Each consumer owns its connection and channel. Echo requests are published
// to the consumer's own queue through the default exchange with message type
// "echo", so the reply comes back on the same delivery stream.
package amqpbroker

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/ManuGH/udapi/broker"
	"github.com/ManuGH/udapi/internal/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	echoType = "echo"

	defaultPort    = 5672
	defaultTLSPort = 5671
)

// Config tunes new connections.
type Config struct {
	Heartbeat   time.Duration
	DialTimeout time.Duration
	// ConnectionName is reported to the broker as a client property.
	ConnectionName string
}

func (c Config) withDefaults() Config {
	if c.Heartbeat <= 0 {
		c.Heartbeat = 10 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 30 * time.Second
	}
	if c.ConnectionName == "" {
		c.ConnectionName = "udapi"
	}
	return c
}

// Transport dials a new AMQP connection per consumer.
type Transport struct {
	cfg    Config
	logger zerolog.Logger
}

// New returns a transport; zero Config fields take their defaults.
func New(cfg Config) *Transport {
	return &Transport{
		cfg:    cfg.withDefaults(),
		logger: log.WithComponent("amqpbroker"),
	}
}

// DialURL builds the AMQP URL for d. Missing credentials fall back to the
// broker's guest account and the virtual host is unescaped before use.
func DialURL(d broker.Descriptor) string {
	u := amqp.URI{
		Scheme:   "amqp",
		Host:     d.Host,
		Port:     defaultPort,
		Username: "guest",
		Password: "guest",
		Vhost:    "/",
	}
	if d.Scheme == "amqps" {
		u.Scheme = "amqps"
		u.Port = defaultTLSPort
	}
	if len(u.Host) > 1 && u.Host[0] == '[' && u.Host[len(u.Host)-1] == ']' {
		u.Host = u.Host[1 : len(u.Host)-1]
	}
	if d.Port != nil {
		u.Port = *d.Port
	}
	if d.UserName != nil {
		u.Username = *d.UserName
	}
	if d.Password != nil {
		u.Password = *d.Password
	}
	if d.VirtualHost != "" {
		vh, err := url.PathUnescape(d.VirtualHost)
		if err != nil {
			vh = d.VirtualHost
		}
		u.Vhost = vh
	}
	return u.String()
}

// Open dials, opens a channel, applies QoS and starts consuming d.QueueName.
func (t *Transport) Open(ctx context.Context, d broker.Descriptor, opts broker.ConsumerOptions) (broker.Consumer, error) {
	if opts.Prefetch <= 0 {
		opts.Prefetch = broker.DefaultPrefetch
	}
	logger := t.logger.With().
		Str(log.FieldHost, d.Address()).
		Str(log.FieldVirtualHost, d.VirtualHost).
		Str(log.FieldQueue, d.QueueName).
		Logger()

	dialer := amqp.DefaultDial(t.cfg.DialTimeout)
	props := amqp.NewConnectionProperties()
	props.SetClientConnectionName(t.cfg.ConnectionName)

	type dialResult struct {
		conn *amqp.Connection
		err  error
	}
	done := make(chan dialResult, 1)
	go func() {
		conn, err := amqp.DialConfig(DialURL(d), amqp.Config{
			Heartbeat:  t.cfg.Heartbeat,
			Locale:     "en_US",
			Properties: props,
			Dial:       dialer,
		})
		done <- dialResult{conn, err}
	}()

	var conn *amqp.Connection
	select {
	case <-ctx.Done():
		go func() {
			if r := <-done; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("dial %s: %w", d.String(), r.err)
		}
		conn = r.conn
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.Qos(opts.Prefetch, 0, opts.GlobalQoS); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(d.QueueName, opts.ConsumerTag, true, false, false, false, nil)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("consume %s: %w", d.QueueName, err)
	}

	logger.Debug().
		Int("prefetch", opts.Prefetch).
		Bool("global_qos", opts.GlobalQoS).
		Msg("amqp consumer open")

	return &consumer{
		conn:       conn,
		ch:         ch,
		queue:      d.QueueName,
		deliveries: deliveries,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
		stop:       make(chan struct{}),
		logger:     logger,
	}, nil
}

type consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	deliveries <-chan amqp.Delivery
	closed     chan *amqp.Error
	logger     zerolog.Logger

	stop      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (c *consumer) Next(ctx context.Context) (broker.Frame, error) {
	select {
	case <-ctx.Done():
		return broker.Frame{}, ctx.Err()
	case <-c.stop:
		return broker.Frame{}, broker.ErrConsumerClosed
	case d, ok := <-c.deliveries:
		if !ok {
			return broker.Frame{}, c.disconnectErr()
		}
		return toFrame(d, time.Now()), nil
	case amqpErr, ok := <-c.closed:
		if ok && amqpErr != nil {
			return broker.Frame{}, fmt.Errorf("%w: %v", broker.ErrDisconnected, amqpErr)
		}
		return broker.Frame{}, c.disconnectErr()
	}
}

func (c *consumer) disconnectErr() error {
	select {
	case <-c.stop:
		return broker.ErrConsumerClosed
	default:
	}
	select {
	case amqpErr, ok := <-c.closed:
		if ok && amqpErr != nil {
			return fmt.Errorf("%w: %v", broker.ErrDisconnected, amqpErr)
		}
	default:
	}
	return fmt.Errorf("%w: delivery channel closed", broker.ErrDisconnected)
}

func (c *consumer) SendEcho(ctx context.Context, payload string) error {
	select {
	case <-c.stop:
		return broker.ErrConsumerClosed
	default:
	}
	err := c.ch.PublishWithContext(ctx, "", c.queue, false, false, echoPublishing(payload, time.Now()))
	if err != nil {
		if errors.Is(err, amqp.ErrClosed) {
			return fmt.Errorf("%w: %v", broker.ErrDisconnected, err)
		}
		return fmt.Errorf("publish echo: %w", err)
	}
	return nil
}

func (c *consumer) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		if err := c.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			c.closeErr = fmt.Errorf("close connection: %w", err)
		}
		c.logger.Debug().Msg("amqp consumer closed")
	})
	return c.closeErr
}

func echoPublishing(payload string, now time.Time) amqp.Publishing {
	return amqp.Publishing{
		ContentType: "text/plain",
		Type:        echoType,
		Timestamp:   now.UTC(),
		Body:        []byte(payload),
	}
}

func toFrame(d amqp.Delivery, now time.Time) broker.Frame {
	kind := broker.FrameData
	if d.Type == echoType {
		kind = broker.FrameEcho
	}
	return broker.Frame{
		Kind:       kind,
		Body:       d.Body,
		Tag:        d.ConsumerTag,
		ReceivedAt: now,
	}
}
