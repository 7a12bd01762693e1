/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package dialogue

import (
	"context"
	"fmt"
	"sync"
)

// StubEngine returns canned replies for known messages and an echo reply
// otherwise. It stands in for the Ollama engine in tests.
type StubEngine struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	calls   int
}

// NewStubEngine creates a stub engine; replies maps user text to the reply
func NewStubEngine(replies map[string]string) *StubEngine {
	if replies == nil {
		replies = map[string]string{}
	}
	return &StubEngine{replies: replies}
}

// SetError makes every subsequent Respond call fail with err (nil clears)
func (s *StubEngine) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times Respond was invoked
func (s *StubEngine) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Respond implements Engine
func (s *StubEngine) Respond(_ context.Context, text, language string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if reply, ok := s.replies[text]; ok {
		return reply, nil
	}
	return fmt.Sprintf("You said (%s): %s", language, text), nil
}

// Close implements Engine
func (s *StubEngine) Close() error {
	return nil
}
