/*
 * This file is part of Lingo (https://github.com/lingolabs/lingo).
 * Copyright (C) 2025 Lingo Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package messaging

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/events"
)

// EventPublisher fans processed utterances out to interested subscribers.
// Implementations must tolerate being handed events from multiple goroutines.
type EventPublisher interface {
	PublishUtterance(event *events.UtteranceEvent) error
}

// NATSService handles NATS messaging for the Lingo hub
type NATSService struct {
	conn *nats.Conn
	cfg  config.NATSConfig
}

// NewNATSService creates a new NATS service instance
func NewNATSService(cfg config.NATSConfig) *NATSService {
	return &NATSService{cfg: cfg}
}

// Connect establishes connection to the NATS server
func (ns *NATSService) Connect() error {
	log.Printf("🔌 Connecting to NATS at %s", ns.cfg.URL)

	// Connection options with retry logic
	opts := []nats.Option{
		nats.Name("lingo-hub"),
		nats.ReconnectWait(ns.cfg.ReconnectWait),
		nats.MaxReconnects(ns.cfg.MaxReconnect),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("⚠️  NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("🔄 NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("🔌 NATS connection closed")
		}),
	}

	conn, err := nats.Connect(ns.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	ns.conn = conn
	log.Printf("✅ Connected to NATS server at %s", conn.ConnectedUrl())
	return nil
}

// PublishUtterance publishes a processed utterance event. Events are routed
// to a per-kind subject under the configured event subject root, e.g.
// lingo.events.translation and lingo.events.chat.
func (ns *NATSService) PublishUtterance(event *events.UtteranceEvent) error {
	if ns.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	if err := event.IsValid(); err != nil {
		return fmt.Errorf("refusing to publish invalid event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal utterance event: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", ns.cfg.EventSubject, event.Kind)
	if err := ns.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}

// SubscribeToUtterances subscribes to all utterance events published by the hub
func (ns *NATSService) SubscribeToUtterances(handler func(*events.UtteranceEvent)) (*nats.Subscription, error) {
	if ns.conn == nil {
		return nil, fmt.Errorf("NATS connection not established")
	}

	subject := ns.cfg.EventSubject + ".>"
	return ns.conn.Subscribe(subject, func(msg *nats.Msg) {
		var event events.UtteranceEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Printf("❌ Error unmarshaling utterance event: %v", err)
			return
		}
		handler(&event)
	})
}

// Conn returns the underlying NATS connection, nil before Connect
func (ns *NATSService) Conn() *nats.Conn {
	return ns.conn
}

// IsConnected returns true if connected to NATS
func (ns *NATSService) IsConnected() bool {
	return ns.conn != nil && ns.conn.IsConnected()
}

// Close closes the NATS connection
func (ns *NATSService) Close() {
	if ns.conn != nil {
		ns.conn.Close()
	}
}

// NoopPublisher discards events. It stands in for NATS when the hub runs
// without a message bus.
type NoopPublisher struct{}

// PublishUtterance implements EventPublisher
func (NoopPublisher) PublishUtterance(*events.UtteranceEvent) error {
	return nil
}
