/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package tts

import (
	"context"
	"sync"
)

// StubSpeaker records spoken texts instead of synthesizing audio
type StubSpeaker struct {
	mu     sync.Mutex
	err    error
	spoken []string
	voices []string
}

// NewStubSpeaker creates a recording speaker for tests and local development
func NewStubSpeaker() *StubSpeaker {
	return &StubSpeaker{}
}

// SetError makes every subsequent Speak call fail with err (nil clears)
func (s *StubSpeaker) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Spoken returns a copy of everything spoken so far
func (s *StubSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// Voices returns the voice used for each Speak call, in order
func (s *StubSpeaker) Voices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.voices...)
}

// Speak implements Speaker
func (s *StubSpeaker) Speak(_ context.Context, text, voice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.spoken = append(s.spoken, text)
	s.voices = append(s.voices, voice)
	return nil
}
