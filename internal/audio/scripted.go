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
	"sync"
)

// ScriptedSource is a Source fed programmatically. It backs tests and local
// development without a microphone relay: pushed utterances are delivered in
// order, and Capture blocks until one is pushed or the context ends.
type ScriptedSource struct {
	mu      sync.Mutex
	closed  bool
	pending chan Utterance
}

// NewScriptedSource creates a scripted source with a small delivery buffer
func NewScriptedSource() *ScriptedSource {
	return &ScriptedSource{
		pending: make(chan Utterance, 32),
	}
}

// Push queues an utterance for the next Capture call. Pushing to a closed
// source is a no-op.
func (s *ScriptedSource) Push(utterance Utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.pending <- utterance:
	default:
	}
}

// PushText queues a marker utterance whose samples are irrelevant; scripted
// transcribers key off the stream ID.
func (s *ScriptedSource) PushText(streamID string) {
	s.Push(Utterance{
		StreamID:   streamID,
		Samples:    make([]float32, 160),
		SampleRate: 16000,
	})
}

// Capture implements Source
func (s *ScriptedSource) Capture(ctx context.Context) (Utterance, error) {
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

// Close implements Source
func (s *ScriptedSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
