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
	"github.com/lingolabs/lingo-hub/internal/dialogue"
	"github.com/lingolabs/lingo-hub/internal/events"
	"github.com/lingolabs/lingo-hub/internal/language"
	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/messaging"
	"github.com/lingolabs/lingo-hub/internal/stt"
	"github.com/lingolabs/lingo-hub/internal/translate"
	"github.com/lingolabs/lingo-hub/internal/tts"
)

// ChatSession runs the capture → transcribe → respond → speak loop for the
// spoken chatbot. The session is bound to one conversation language at a
// time; the dialogue engine may operate in a pivot language internally.
type ChatSession struct {
	cfg         config.SessionConfig
	pivot       string // dialogue engine language; empty means language-agnostic
	catalog     *language.Catalog
	source      audio.Source
	transcriber stt.Transcriber
	translator  translate.Translator
	engine      dialogue.Engine
	speaker     tts.Speaker
	sink        EventSink
	publisher   messaging.EventPublisher

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
	lang   string

	// Last completed exchange; both fields change together under mu.
	userMessage string
	botResponse string
	lastErr     string
	turns       []Turn
}

// NewChatSession creates a chat session in the idle state
func NewChatSession(
	cfg config.SessionConfig,
	pivot string,
	catalog *language.Catalog,
	source audio.Source,
	transcriber stt.Transcriber,
	translator translate.Translator,
	engine dialogue.Engine,
	speaker tts.Speaker,
) *ChatSession {
	return &ChatSession{
		cfg:         cfg,
		pivot:       pivot,
		catalog:     catalog,
		source:      source,
		transcriber: transcriber,
		translator:  translator,
		engine:      engine,
		speaker:     speaker,
		lang:        cfg.DefaultTargetLanguage,
	}
}

// SetEventSink wires a persistence sink; nil disables persistence
func (s *ChatSession) SetEventSink(sink EventSink) {
	s.sink = sink
}

// SetEventPublisher wires an event publisher; nil disables publication
func (s *ChatSession) SetEventPublisher(publisher messaging.EventPublisher) {
	s.publisher = publisher
}

// Start launches the chatbot loop conversing in the given language. An
// empty code keeps the current session language.
func (s *ChatSession) Start(code string) error {
	if code != "" {
		if _, ok := s.catalog.Lookup(code); !ok {
			return ErrUnknownLanguage
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateListening, StatePaused:
		return ErrAlreadyRunning
	case StateStopping:
		return ErrTransitionInProgress
	}

	if code != "" {
		s.lang = code
	}
	s.userMessage = ""
	s.botResponse = ""
	s.lastErr = ""
	s.turns = nil

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = StateListening

	logging.LogSessionTransition("chat", StateIdle.String(), StateListening.String(),
		zap.String("language", s.lang),
	)
	go s.run(ctx)
	return nil
}

// Pause idles the loop at its next safe point
func (s *ChatSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePaused:
		return nil
	case StateListening:
		s.state = StatePaused
		logging.LogSessionTransition("chat", StateListening.String(), StatePaused.String())
		return nil
	default:
		return ErrNotRunning
	}
}

// Resume picks the loop back up after a pause
func (s *ChatSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return ErrNotPaused
	}
	s.state = StateListening
	logging.LogSessionTransition("chat", StatePaused.String(), StateListening.String())
	return nil
}

// Stop signals the loop to exit at its next safe point and returns without
// waiting; callers needing confirmation poll Snapshot().Running. Stopping a
// session that is not running is a no-op.
func (s *ChatSession) Stop() error {
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
	logging.LogSessionTransition("chat", prior.String(), StateStopping.String())
	return nil
}

// Done returns a channel closed when the background loop has exited, nil if
// the session was never started
func (s *ChatSession) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// ChangeLanguage switches the conversation language. The turn log is kept;
// only new exchanges use the new language.
func (s *ChatSession) ChangeLanguage(code string) (language.Info, error) {
	info, ok := s.catalog.Lookup(code)
	if !ok {
		return language.Info{}, ErrUnknownLanguage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if info.Code == s.lang {
		return info, ErrLanguageUnchanged
	}

	old := s.lang
	s.lang = info.Code
	logging.LogPipelineStage("chat", "language_change",
		zap.String("from", old),
		zap.String("to", info.Code),
	)
	return info, nil
}

// Language returns the current conversation language
func (s *ChatSession) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

// Snapshot returns a consistent point-in-time view of the session
func (s *ChatSession) Snapshot() ChatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ChatStatus{
		Language:    s.lang,
		UserMessage: s.userMessage,
		BotResponse: s.botResponse,
		Running:     s.state == StateListening || s.state == StatePaused || s.state == StateStopping,
		Paused:      s.state == StatePaused,
		Error:       s.lastErr,
	}
}

// History returns the completed exchanges, oldest first
func (s *ChatSession) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Turn(nil), s.turns...)
}

func (s *ChatSession) currentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ChatSession) run(ctx context.Context) {
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
		userText := strings.TrimSpace(result.Text)
		if userText == "" {
			continue
		}

		lang := s.Language()
		reply, err := s.respond(ctx, userText, lang)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if s.fail(&failures, err) {
				return
			}
			continue
		}

		if s.speaker != nil {
			voice := ""
			if info, ok := s.catalog.Lookup(lang); ok {
				voice = info.Voice
			}
			if err := s.speaker.Speak(ctx, reply, voice); err != nil {
				// The exchange already happened; spoken output is best effort.
				logging.LogWarn("chat speech synthesis failed", zap.Error(err))
			}
		}

		s.publishTurn(userText, reply, lang)

		event := events.NewUtteranceEvent(events.KindChat)
		event.Timestamp = started
		event.SetLanguages(lang, lang)
		event.SetOutput(userText, reply)
		s.record(event)
		failures = 0
	}
}

// respond produces the bot reply, routing through the pivot language when
// the dialogue engine does not converse in the session language natively.
func (s *ChatSession) respond(ctx context.Context, userText, lang string) (string, error) {
	if s.pivot == "" || s.pivot == lang {
		reply, err := s.engine.Respond(ctx, userText, lang)
		if err != nil {
			return "", fmt.Errorf("dialogue: %w", err)
		}
		return reply, nil
	}

	pivotText, err := s.translator.Translate(ctx, translate.Request{
		Text:       userText,
		SourceLang: lang,
		TargetLang: s.pivot,
	})
	if err != nil {
		return "", fmt.Errorf("translation to pivot: %w", err)
	}

	pivotReply, err := s.engine.Respond(ctx, pivotText, s.pivot)
	if err != nil {
		return "", fmt.Errorf("dialogue: %w", err)
	}

	reply, err := s.translator.Translate(ctx, translate.Request{
		Text:       pivotReply,
		SourceLang: s.pivot,
		TargetLang: lang,
	})
	if err != nil {
		return "", fmt.Errorf("translation from pivot: %w", err)
	}
	return reply, nil
}

func (s *ChatSession) fail(failures *int, err error) bool {
	*failures++
	logging.LogWarn("chat pipeline failure",
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
	logging.LogError(err, "chat session stopping",
		zap.Int("consecutive_failures", *failures),
	)
	return true
}

// publishTurn installs a completed exchange into the snapshot and the turn
// log. A language change while the exchange was in flight only affects
// later turns; this one is kept, tagged with the language it happened in.
func (s *ChatSession) publishTurn(userText, reply, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lang != lang {
		logging.LogPipelineStage("chat", "turn_completed_after_language_change",
			zap.String("turn_language", lang),
			zap.String("current_language", s.lang),
		)
	}

	s.userMessage = userText
	s.botResponse = reply
	s.turns = append(s.turns, Turn{
		UserMessage: userText,
		BotResponse: reply,
		Language:    lang,
	})
	if limit := s.cfg.TurnLogLimit; limit > 0 && len(s.turns) > limit {
		s.turns = s.turns[len(s.turns)-limit:]
	}
}

func (s *ChatSession) record(event *events.UtteranceEvent) {
	if s.sink != nil {
		if err := s.sink.Insert(event); err != nil {
			logging.LogWarn("failed to persist chat event", zap.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishUtterance(event); err != nil {
			logging.LogWarn("failed to publish chat event", zap.Error(err))
		}
	}
}
