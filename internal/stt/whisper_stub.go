//go:build !whisper

package stt

import (
	"context"
	"fmt"

	"github.com/lingolabs/lingo-hub/internal/audio"
)

// WhisperTranscriber stub implementation when whisper is disabled
type WhisperTranscriber struct {
	modelPath string
}

// NewWhisperTranscriber creates a stub transcriber when whisper is disabled
func NewWhisperTranscriber(modelPath string) (*WhisperTranscriber, error) {
	return &WhisperTranscriber{
		modelPath: modelPath,
	}, nil
}

// Transcribe stub implementation returns an error
func (wt *WhisperTranscriber) Transcribe(_ context.Context, _ audio.Utterance) (Result, error) {
	return Result{}, fmt.Errorf("whisper transcription disabled (build with -tags whisper to enable)")
}

// Close stub implementation
func (wt *WhisperTranscriber) Close() error {
	// Nothing to clean up in stub
	return nil
}
