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

package tts

import (
	"context"
	"io"
)

// Options holds options for text-to-speech synthesis
type Options struct {
	Voice          string  // Voice to use (e.g., "af_heart")
	Speed          float32 // Speech speed (1.0 = normal)
	ResponseFormat string  // Audio format (mp3, wav, opus, flac)
	Normalize      bool    // Enable text normalization
}

// Result holds the result of text-to-speech synthesis
type Result struct {
	Audio       io.ReadCloser // Audio stream
	ContentType string        // MIME type of the audio
	Length      int64         // Audio length in bytes (-1 if unknown)
}

// Synthesizer converts text into an audio stream
type Synthesizer interface {
	// Synthesize converts text to speech audio
	Synthesize(ctx context.Context, text string, options *Options) (*Result, error)

	// Close cleans up resources
	Close() error
}

// PlaybackSink delivers synthesized audio to wherever it gets played; the
// NATS audio publisher is the production implementation.
type PlaybackSink interface {
	Play(audio io.Reader, format string) error
}

// Speaker speaks text aloud in a given voice. It is the chatbot's spoken
// output boundary.
type Speaker interface {
	Speak(ctx context.Context, text, voice string) error
}

// SinkSpeaker synthesizes with a Synthesizer and hands the audio to a
// PlaybackSink.
type SinkSpeaker struct {
	synthesizer Synthesizer
	sink        PlaybackSink
	format      string
}

// NewSinkSpeaker composes a Synthesizer and a PlaybackSink into a Speaker
func NewSinkSpeaker(synthesizer Synthesizer, sink PlaybackSink, format string) *SinkSpeaker {
	if format == "" {
		format = "mp3"
	}
	return &SinkSpeaker{
		synthesizer: synthesizer,
		sink:        sink,
		format:      format,
	}
}

// Speak implements Speaker
func (s *SinkSpeaker) Speak(ctx context.Context, text, voice string) error {
	result, err := s.synthesizer.Synthesize(ctx, text, &Options{
		Voice:          voice,
		ResponseFormat: s.format,
		Normalize:      true,
	})
	if err != nil {
		return err
	}
	defer func() { _ = result.Audio.Close() }()

	return s.sink.Play(result.Audio, s.format)
}
