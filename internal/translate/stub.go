/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package translate

import (
	"context"
	"fmt"
	"sync"
)

// Dictionary maps [targetLang][sourceText] to a translated text
type Dictionary map[string]map[string]string

// StubTranslator translates via a fixed dictionary, falling back to a
// "[lang] text" rendering. It records the context supplied with the last
// call so tests can assert what the session handed to the engine.
type StubTranslator struct {
	mu          sync.Mutex
	dictionary  Dictionary
	err         error
	calls       int
	lastContext []Exchange
}

// NewStubTranslator creates a stub translator with an optional dictionary
func NewStubTranslator(dictionary Dictionary) *StubTranslator {
	return &StubTranslator{dictionary: dictionary}
}

// SetError makes every subsequent Translate call fail with err (nil clears)
func (s *StubTranslator) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of Translate invocations
func (s *StubTranslator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastContext returns a copy of the context supplied with the last call
func (s *StubTranslator) LastContext() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Exchange, len(s.lastContext))
	copy(out, s.lastContext)
	return out
}

// Translate implements Translator
func (s *StubTranslator) Translate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastContext = append([]Exchange(nil), req.Context...)

	if s.err != nil {
		return "", s.err
	}

	if byTarget, ok := s.dictionary[req.TargetLang]; ok {
		if translated, ok := byTarget[req.Text]; ok {
			return translated, nil
		}
	}

	return fmt.Sprintf("[%s] %s", req.TargetLang, req.Text), nil
}

// Close implements Translator
func (s *StubTranslator) Close() error {
	return nil
}
