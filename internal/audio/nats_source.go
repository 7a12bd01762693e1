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

package audio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/logging"
)

// UtteranceMessage is the wire format the microphone relay publishes on the
// audio subject. AudioData carries one complete utterance; the relay owns
// voice-activity detection and end-of-speech segmentation.
type UtteranceMessage struct {
	StreamID    string `json:"stream_id"`
	AudioData   []byte `json:"audio_data"`   // Complete utterance payload
	AudioFormat string `json:"audio_format"` // "pcm16" is the only supported format
	SampleRate  int    `json:"sample_rate"`
}

// NATSSource captures utterances published by a microphone relay over NATS.
// It buffers a small number of decoded utterances; when the consumer falls
// behind, the oldest pending utterance is dropped rather than blocking the
// subscription.
type NATSSource struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	subject string
	pending chan Utterance
}

// NewNATSSource subscribes to the audio subject on an established connection
func NewNATSSource(conn *nats.Conn, subject string) (*NATSSource, error) {
	if conn == nil {
		return nil, fmt.Errorf("nats connection is required")
	}
	if subject == "" {
		return nil, fmt.Errorf("audio subject is required")
	}

	source := &NATSSource{
		conn:    conn,
		subject: subject,
		pending: make(chan Utterance, 10),
	}

	sub, err := conn.Subscribe(subject, source.handleMessage)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	source.sub = sub

	logging.LogNATSEvent(subject, "subscribe")
	return source, nil
}

func (s *NATSSource) handleMessage(msg *nats.Msg) {
	var utteranceMsg UtteranceMessage
	if err := json.Unmarshal(msg.Data, &utteranceMsg); err != nil {
		logging.LogError(err, "Dropping malformed utterance message",
			zap.String("subject", s.subject))
		return
	}

	if utteranceMsg.AudioFormat != "" && utteranceMsg.AudioFormat != "pcm16" {
		logging.LogWarn("Dropping utterance with unsupported audio format",
			zap.String("format", utteranceMsg.AudioFormat),
			zap.String("stream_id", utteranceMsg.StreamID))
		return
	}

	samples, err := PCM16ToFloat32(utteranceMsg.AudioData)
	if err != nil {
		logging.LogError(err, "Dropping undecodable utterance payload",
			zap.String("stream_id", utteranceMsg.StreamID))
		return
	}

	utterance := Utterance{
		StreamID:   utteranceMsg.StreamID,
		Samples:    samples,
		SampleRate: utteranceMsg.SampleRate,
	}

	select {
	case s.pending <- utterance:
	default:
		// Consumer is behind; evict the oldest pending utterance.
		select {
		case <-s.pending:
		default:
		}
		select {
		case s.pending <- utterance:
		default:
		}
		logging.LogWarn("Audio consumer behind, dropped oldest pending utterance",
			zap.String("subject", s.subject))
	}
}

// Capture implements Source
func (s *NATSSource) Capture(ctx context.Context) (Utterance, error) {
	select {
	case utterance := <-s.pending:
		return utterance, nil
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return Utterance{}, ErrCaptureTimeout
		}
		return Utterance{}, ctx.Err()
	}
}

// Close unsubscribes from the audio subject
func (s *NATSSource) Close() error {
	if s.sub != nil {
		if err := s.sub.Unsubscribe(); err != nil {
			return fmt.Errorf("failed to unsubscribe from %s: %w", s.subject, err)
		}
		logging.LogNATSEvent(s.subject, "unsubscribe")
	}
	return nil
}
