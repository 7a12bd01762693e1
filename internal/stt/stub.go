/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package stt

import (
	"context"
	"sync"

	"github.com/lingolabs/lingo-hub/internal/audio"
)

// Script maps an utterance stream ID to a scripted transcription result
type Script map[string]Result

// StubTranscriber returns scripted results keyed by utterance stream ID.
// Used by tests and local development without a real STT engine; pairs with
// audio.ScriptedSource, which stamps the stream ID on each pushed utterance.
type StubTranscriber struct {
	mu     sync.Mutex
	script Script
	err    error
	calls  int
}

// NewStubTranscriber creates a stub with the given script
func NewStubTranscriber(script Script) *StubTranscriber {
	if script == nil {
		script = Script{}
	}
	return &StubTranscriber{script: script}
}

// SetError makes every subsequent Transcribe call fail with err (nil clears)
func (s *StubTranscriber) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of Transcribe invocations
func (s *StubTranscriber) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Transcribe implements Transcriber. Unknown stream IDs yield an empty
// result, which the session treats as silence.
func (s *StubTranscriber) Transcribe(_ context.Context, utterance audio.Utterance) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	if s.err != nil {
		return Result{}, s.err
	}

	return s.script[utterance.StreamID], nil
}

// Close implements Transcriber
func (s *StubTranscriber) Close() error {
	return nil
}
