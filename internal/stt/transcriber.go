/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package stt

import (
	"context"

	"github.com/lingolabs/lingo-hub/internal/audio"
)

// Result contains the outcome of speech-to-text processing
type Result struct {
	Text     string
	Language string // Raw engine-detected language code, empty when unknown
}

// Transcriber defines the interface for speech-to-text transcription services
type Transcriber interface {
	// Transcribe converts one captured utterance to text with the detected language
	Transcribe(ctx context.Context, utterance audio.Utterance) (Result, error)

	// Close cleans up resources
	Close() error
}
