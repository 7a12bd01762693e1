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
	"errors"
)

// ErrCaptureTimeout is returned when no utterance arrives within the capture
// bound. It is not a failure; the caller treats it as an empty iteration.
var ErrCaptureTimeout = errors.New("audio capture timed out")

// Utterance is one captured unit of speech, from detected start to detected
// end-of-speech or timeout.
type Utterance struct {
	StreamID   string
	Samples    []float32
	SampleRate int
}

// Duration returns the utterance length in seconds
func (u Utterance) Duration() float64 {
	if u.SampleRate <= 0 {
		return 0
	}
	return float64(len(u.Samples)) / float64(u.SampleRate)
}

// Source yields captured utterances. Capture blocks until one utterance is
// available, the context is done, or the capture bound expires
// (ErrCaptureTimeout). Implementations must be safe for use from a single
// consumer goroutine.
type Source interface {
	Capture(ctx context.Context) (Utterance, error)
	Close() error
}
