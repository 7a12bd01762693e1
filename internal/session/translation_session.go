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

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/events"
	"github.com/lingolabs/lingo-hub/internal/language"
	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/messaging"
	"github.com/lingolabs/lingo-hub/internal/stt"
	"github.com/lingolabs/lingo-hub/internal/translate"
)

// EventSink persists completed utterance events. The utterance events store
// is the production implementation.
type EventSink interface {
	Insert(event *events.UtteranceEvent) error
}

// TranslationSession runs the capture → transcribe → translate loop in a
// background goroutine and exposes a thread-safe control surface. All
// control methods may be called concurrently with the loop and each other.
type TranslationSession struct {
	cfg         config.SessionConfig
	catalog     *language.Catalog
	source      audio.Source
	transcriber stt.Transcriber
	translator  translate.Translator
	sink        EventSink
	publisher   messaging.EventPublisher

	mu       sync.Mutex
	state    State
	cancel   context.CancelFunc
	done     chan struct{}
	target   string
	buffer   *ContextBuffer
	detector *language.Detector

	// Snapshot of the most recent utterance; the three fields change
	// together under mu so polls never see a mixed pair.
	transcription string
	translation   string
	sourceLang    string
	lastErr       string
}

// NewTranslationSession creates a session in the idle state
func NewTranslationSession(
	cfg config.SessionConfig,
	catalog *language.Catalog,
	source audio.Source,
	transcriber stt.Transcriber,
	translator translate.Translator,
) *TranslationSession {
	return &TranslationSession{
		cfg:         cfg,
		catalog:     catalog,
		source:      source,
		transcriber: transcriber,
		translator:  translator,
		target:      cfg.DefaultTargetLanguage,
		buffer:      NewContextBuffer(cfg.ContextSize),
		detector:    language.NewDetector(catalog, cfg.DefaultTargetLanguage),
	}
}

// SetEventSink wires a persistence sink; nil disables persistence
func (s *TranslationSession) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetEventPublisher wires an event publisher; nil disables publication
func (s *TranslationSession) SetEventPublisher(publisher messaging.EventPublisher) {
	s.publisher = publisher
}

// Start launches the background loop. A session can be restarted after it
// stopped; each start begins with a clean snapshot and empty context.
func (s *TranslationSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateListening, StatePaused:
		return ErrAlreadyRunning
	case StateStopping:
		return ErrTransitionInProgress
	}

	s.transcription = ""
	s.translation = ""
	s.sourceLang = ""
	s.lastErr = ""
	s.buffer.Clear()
	s.detector = language.NewDetector(s.catalog, s.cfg.DefaultTargetLanguage)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateListening

	logging.LogSessionTransition("translation", StateIdle.String(), StateListening.String())
	go s.run(ctx)
	return nil
}

// Pause idles the loop at its next safe point. Pausing an already paused
// session is a no-op.
func (s *TranslationSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePaused:
		return nil
	case StateListening:
		s.state = StatePaused
		logging.LogSessionTransition("translation", StateListening.String(), StatePaused.String())
		return nil
	default:
		return ErrNotRunning
	}
}

// Resume picks the loop back up after a pause
func (s *TranslationSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return ErrNotPaused
	}
	s.state = StateListening
	logging.LogSessionTransition("translation", StatePaused.String(), StateListening.String())
	return nil
}

// Stop signals the loop to exit at its next safe point and returns without
// waiting; callers needing confirmation poll Snapshot().Running. Stopping a
// session that is not running is a no-op.
func (s *TranslationSession) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateIdle, StateStopped:
		s.state = StateStopped
		return nil
	case StateStopping:
		return nil
	}

	prior := s.state
	s.state = StateStopping
	s.cancel()
	logging.LogSessionTransition("translation", prior.String(), StateStopping.String())
	return nil
}

// Done returns a channel closed when the background loop has exited, nil if
// the session was never started
func (s *TranslationSession) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// ChangeLanguage switches the translation target. The context buffer is
// cleared so exchanges from the old target cannot skew new translations.
// Allowed in any state.
func (s *TranslationSession) ChangeLanguage(code string) (language.Info, error) {
	info, ok := s.catalog.Lookup(code)
	if !ok {
		return language.Info{}, ErrUnknownLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if info.Code == s.target {
		return info, ErrLanguageUnchanged
	}

	old := s.target
	s.target = info.Code
	s.buffer.Clear()

	logging.LogPipelineStage("translation", "language_change",
		zap.String("from", old),
		zap.String("to", info.Code),
	)
	return info, nil
}

// TargetLanguage returns the current translation target
func (s *TranslationSession) TargetLanguage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Snapshot returns a consistent point-in-time view of the session
func (s *TranslationSession) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Status{
		SourceLang:    s.sourceLang,
		TargetLang:    s.target,
		Transcription: s.transcription,
		Translation:   s.translation,
		Running:       s.state == StateListening || s.state == StatePaused || s.state == StateStopping,
		Paused:        s.state == StatePaused,
		Error:         s.lastErr,
	}
}

func (s *TranslationSession) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// run is the background loop. It exits when ctx is cancelled or after too
// many consecutive pipeline failures.
func (s *TranslationSession) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		// Release the loop context even when the loop stopped on its own,
		// e.g. after too many failures.
		s.cancel()
		s.state = StateStopped
		close(s.done)
		s.mu.Unlock()
	}()

	failures := 0
	for {
		if ctx.Err() != nil {
			return
		}

		if s.currentState() == StatePaused {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.cfg.PauseTick):
			}
			continue
		}

		captureCtx, cancel := context.WithTimeout(ctx, s.cfg.MaxUtterance)
		utterance, err := s.source.Capture(captureCtx)
		cancel()
		if err != nil {
			if errors.Is(err, audio.ErrCaptureTimeout) {
				// Nobody spoke; not a failure.
				continue
			}
			if ctx.Err() != nil {
				return
			}
			if s.fail(&failures, fmt.Errorf("audio capture: %w", err)) {
				return
			}
			continue
		}
		if s.currentState() == StatePaused {
			// Pause landed while the capture was blocked; drop the audio.
			continue
		}

		started := time.Now()
		result, err := s.transcriber.Transcribe(ctx, utterance)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.fail(&failures, fmt.Errorf("transcription: %w", err)) {
				return
			}
			continue
		}
		if strings.TrimSpace(result.Text) == "" {
			// Silence or noise.
			continue
		}

		sourceLang := s.detector.Resolve(result.Language)
		target := s.TargetLanguage()
		if sourceLang == target {
			// Already in the target language.
			logging.LogPipelineStage("translation", "skip_same_language",
				zap.String("language", sourceLang),
			)
			continue
		}

		translated, err := s.translator.Translate(ctx, translate.Request{
			Text:       result.Text,
			SourceLang: sourceLang,
			TargetLang: target,
			Context:    s.contextSnapshot(),
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.fail(&failures, fmt.Errorf("translation: %w", err)) {
				return
			}
			continue
		}

		s.publish(result.Text, translated, sourceLang, target)

		event := events.NewUtteranceEvent(events.KindTranslation)
		event.Timestamp = started
		event.SetLanguages(sourceLang, target)
		event.SetOutput(result.Text, translated)
		s.record(event)
		failures = 0
	}
}

// fail counts a consecutive pipeline failure and reports whether the
// threshold was crossed, in which case the loop must exit.
func (s *TranslationSession) fail(failures *int, err error) bool {
	*failures++
	logging.LogWarn("translation pipeline failure",
		zap.Int("consecutive", *failures),
		zap.Int("threshold", s.cfg.FailureThreshold),
		zap.Error(err),
	)

	if *failures < s.cfg.FailureThreshold {
		return false
	}

	s.mu.Lock()
	s.lastErr = fmt.Sprintf("stopped after %d consecutive failures: %v", *failures, err)
	s.mu.Unlock()
	logging.LogError(err, "translation session stopping",
		zap.Int("consecutive_failures", *failures),
	)
	return true
}

func (s *TranslationSession) contextSnapshot() []translate.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.AsContext()
}

// publish installs a completed utterance into the snapshot and the context
// buffer. A target change while the utterance was in flight does not lose
// the result: it was translated to the target observed at translation time
// and the snapshot shows it. Only the context buffer append is skipped
// then, since the buffer was cleared for the new target and must not carry
// exchanges from the old one.
func (s *TranslationSession) publish(transcription, translation, sourceLang, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcription = transcription
	s.translation = translation
	s.sourceLang = sourceLang

	if s.target != target {
		logging.LogPipelineStage("translation", "skip_context_after_change",
			zap.String("utterance_target", target),
			zap.String("current_target", s.target),
		)
		return
	}
	s.buffer.Add(transcription, translation)
}

// record persists and publishes an event, best effort
func (s *TranslationSession) record(event *events.UtteranceEvent) {
	if s.sink != nil {
		if err := s.sink.Insert(event); err != nil {
			logging.LogWarn("failed to persist utterance event", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishUtterance(event); err != nil {
			logging.LogWarn("failed to publish utterance event", zap.Error(err))
		}
	}
}
