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
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// PlaybackMessage carries one complete synthesized audio clip to whichever
// speaker relay is subscribed on the playback subject.
type PlaybackMessage struct {
	StreamID    string `json:"stream_id"`    // Unique identifier for this clip
	AudioData   []byte `json:"audio_data"`   // Complete audio file data
	AudioFormat string `json:"audio_format"` // Format (e.g., "mp3", "wav")
}

// PlaybackPublisher delivers synthesized speech over NATS. It implements
// tts.PlaybackSink.
type PlaybackPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewPlaybackPublisher creates a playback publisher on the given subject
func NewPlaybackPublisher(conn *nats.Conn, subject string) *PlaybackPublisher {
	return &PlaybackPublisher{
		conn:    conn,
		subject: subject,
	}
}

// Play reads the complete clip and publishes it as a single message
func (p *PlaybackPublisher) Play(audio io.Reader, format string) error {
	if p.conn == nil {
		return fmt.Errorf("NATS connection not established")
	}

	audioData, err := io.ReadAll(audio)
	if err != nil {
		return fmt.Errorf("failed to read audio data: %w", err)
	}

	msg := PlaybackMessage{
		StreamID:    fmt.Sprintf("%s-%d", uuid.New().String()[:8], time.Now().UnixNano()),
		AudioData:   audioData,
		AudioFormat: format,
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal playback message: %w", err)
	}

	if err := p.conn.Publish(p.subject, msgData); err != nil {
		return fmt.Errorf("failed to publish audio clip: %w", err)
	}

	return nil
}
