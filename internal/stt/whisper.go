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

//go:build whisper

package stt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

// WhisperTranscriber handles speech-to-text in-process using whisper.cpp
type WhisperTranscriber struct {
	model     whisper.Model
	modelPath string
}

// NewWhisperTranscriber creates a new Whisper transcriber
func NewWhisperTranscriber(modelPath string) (*WhisperTranscriber, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found at %s", modelPath)
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper model: %w", err)
	}

	logging.Sugar.Infow("🧠 Whisper model loaded", "model_path", modelPath)
	return &WhisperTranscriber{
		model:     model,
		modelPath: modelPath,
	}, nil
}

// Transcribe converts audio samples to text with auto language detection
func (wt *WhisperTranscriber) Transcribe(_ context.Context, utterance audio.Utterance) (Result, error) {
	if wt.model == nil {
		return Result{}, fmt.Errorf("whisper model not initialized")
	}

	if utterance.SampleRate != whisper.SampleRate {
		return Result{}, fmt.Errorf("whisper requires %d Hz audio, got %d", whisper.SampleRate, utterance.SampleRate)
	}

	wctx, err := wt.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("failed to create whisper context: %w", err)
	}

	if err := wctx.SetLanguage("auto"); err != nil {
		return Result{}, fmt.Errorf("failed to enable language detection: %w", err)
	}

	if err := wctx.Process(utterance.Samples, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("failed to process audio: %w", err)
	}

	var transcript strings.Builder
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		transcript.WriteString(segment.Text)
	}

	result := Result{
		Text:     strings.TrimSpace(transcript.String()),
		Language: wctx.Language(),
	}

	logging.Sugar.Debugw("🧠 Whisper transcription",
		"text_length", len(result.Text),
		"language", result.Language)
	return result, nil
}

// Close cleans up the Whisper model
func (wt *WhisperTranscriber) Close() error {
	if wt.model != nil {
		wt.model.Close()
		logging.Sugar.Infow("🧠 Whisper model closed")
	}
	return nil
}
