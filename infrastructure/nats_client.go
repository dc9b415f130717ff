package infrastructure

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	natsConnectionName = "curation-engine"
	natsReconnectWait  = 2 * time.Second
	natsMaxReconnects  = 10
	natsCloseFlushWait = 2 * time.Second

	// eventStreamMaxAge bounds how long published events stay replayable
	// for downstream consumers.
	eventStreamMaxAge  = 72 * time.Hour
	eventStreamMaxMsgs = 1_000_000
)

// NATSClient is the engine's connection to NATS. The engine only produces:
// domain events go out through JetStream, and their consumers live in other
// services.
type NATSClient struct {
	servers string
	nc      *nats.Conn
	js      nats.JetStreamContext
}

// NewNATSClient creates a client for the given server list
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{servers: servers}
}

// Connect establishes the connection and opens a JetStream context
func (c *NATSClient) Connect() error {
	nc, err := nats.Connect(c.servers,
		nats.Name(natsConnectionName),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Warn("NATS disconnected")
				return
			}
			log.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", c.servers, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to open JetStream context: %w", err)
	}

	c.nc = nc
	c.js = js

	log.WithField("servers", c.servers).Info("Connected to NATS")
	return nil
}

// Publish sends a message through JetStream and waits for the stream's ack
func (c *NATSClient) Publish(subject string, data []byte) error {
	if c.js == nil {
		return fmt.Errorf("NATS client is not connected")
	}

	if _, err := c.js.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// ensureStream creates the stream when it does not exist yet. An existing
// stream is left alone, whatever its configuration.
func (c *NATSClient) ensureStream(name string, subjects []string) error {
	if c.js == nil {
		return fmt.Errorf("NATS client is not connected")
	}

	if _, err := c.js.StreamInfo(name); err == nil {
		return nil
	} else if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", name, err)
	}

	_, err := c.js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Retention: nats.LimitsPolicy,
		MaxAge:    eventStreamMaxAge,
		MaxMsgs:   eventStreamMaxMsgs,
		Storage:   nats.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}

	log.WithFields(log.Fields{
		"stream":   name,
		"subjects": subjects,
	}).Info("Created JetStream event stream")
	return nil
}

// Close flushes outstanding publishes and shuts the connection down
func (c *NATSClient) Close() error {
	if c.nc == nil {
		return nil
	}

	if err := c.nc.FlushTimeout(natsCloseFlushWait); err != nil {
		log.WithError(err).Warn("NATS flush on close failed")
	}
	c.nc.Close()
	c.nc = nil
	c.js = nil

	log.Info("NATS connection closed")
	return nil
}
