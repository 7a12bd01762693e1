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

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/api"
	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/dialogue"
	"github.com/lingolabs/lingo-hub/internal/language"
	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/messaging"
	"github.com/lingolabs/lingo-hub/internal/session"
	"github.com/lingolabs/lingo-hub/internal/storage"
	"github.com/lingolabs/lingo-hub/internal/stt"
	"github.com/lingolabs/lingo-hub/internal/translate"
	"github.com/lingolabs/lingo-hub/internal/tts"
)

// Dependencies bundles the pipeline collaborators the server wires into its
// sessions. New assembles the production set; tests inject stubs.
type Dependencies struct {
	Source      audio.Source
	Transcriber stt.Transcriber
	Translator  translate.Translator
	Speaker     tts.Speaker
	Dialogue    dialogue.Engine

	// Store persists utterance events and backs /api/events; nil disables
	// both persistence and the history endpoints.
	Store *storage.UtteranceEventsStore

	// Publisher broadcasts utterance events over the message bus; nil
	// disables publication.
	Publisher messaging.EventPublisher
}

// Server is the Lingo hub: it owns the translation and chatbot sessions and
// exposes their controls over HTTP
type Server struct {
	cfg     *config.Config
	catalog *language.Catalog
	mux     *http.ServeMux
	server  *http.Server

	translation *session.TranslationSession
	chat        *session.ChatSession
	store       *storage.UtteranceEventsStore

	db   *storage.Database
	nats *messaging.NATSService

	// Pipeline engines shut down after the sessions have exited
	closers []io.Closer

	// Server context for graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server wired to the production pipeline: NATS audio in,
// STT, machine translation, Ollama dialogue, Kokoro speech out, SQLite
// event history.
func New(cfg *config.Config) (*Server, error) {
	catalog, err := language.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("loading language catalog: %w", err)
	}

	db, err := storage.NewDatabase(storage.DatabaseConfig{Path: cfg.Server.DBPath})
	if err != nil {
		return nil, fmt.Errorf("opening event database: %w", err)
	}

	natsService := messaging.NewNATSService(cfg.NATS)
	if err := natsService.Connect(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	cleanup := func() {
		natsService.Close()
		db.Close()
	}

	source, err := audio.NewNATSSource(natsService.Conn(), cfg.NATS.AudioSubject)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("subscribing to audio subject: %w", err)
	}

	var transcriber stt.Transcriber
	if cfg.STT.Backend == "whisper" {
		transcriber, err = stt.NewWhisperTranscriber(cfg.STT.WhisperModel)
	} else {
		transcriber, err = stt.NewClient(cfg.STT)
	}
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("creating transcriber: %w", err)
	}

	translator, err := translate.NewClient(cfg.Translate)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("creating translation client: %w", err)
	}

	synthesizer, err := tts.NewKokoroClient(cfg.TTS)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("creating TTS client: %w", err)
	}

	engine, err := dialogue.NewOllamaEngine(cfg.Dialogue)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("creating dialogue engine: %w", err)
	}

	playback := messaging.NewPlaybackPublisher(natsService.Conn(), cfg.NATS.PlaybackSubject)
	speaker := tts.NewSinkSpeaker(synthesizer, playback, cfg.TTS.ResponseFormat)

	deps := Dependencies{
		Source:      source,
		Transcriber: transcriber,
		Translator:  translator,
		Speaker:     speaker,
		Dialogue:    engine,
		Store:       storage.NewUtteranceEventsStore(db),
		Publisher:   natsService,
	}

	s := NewWithDependencies(cfg, catalog, deps)
	s.db = db
	s.nats = natsService
	s.closers = []io.Closer{source, transcriber, translator, synthesizer, engine}
	return s, nil
}

// NewWithDependencies creates a server around pre-built collaborators. The
// caller keeps ownership of any external resources behind them.
func NewWithDependencies(cfg *config.Config, catalog *language.Catalog, deps Dependencies) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	translation := session.NewTranslationSession(
		cfg.Session, catalog, deps.Source, deps.Transcriber, deps.Translator)
	chat := session.NewChatSession(
		cfg.Session, cfg.Dialogue.PivotLanguage, catalog,
		deps.Source, deps.Transcriber, deps.Translator, deps.Dialogue, deps.Speaker)

	if deps.Store != nil {
		translation.SetEventSink(deps.Store)
		chat.SetEventSink(deps.Store)
	}
	if deps.Publisher != nil {
		translation.SetEventPublisher(deps.Publisher)
		chat.SetEventPublisher(deps.Publisher)
	}

	s := &Server{
		cfg:         cfg,
		catalog:     catalog,
		mux:         http.NewServeMux(),
		translation: translation,
		chat:        chat,
		store:       deps.Store,
		ctx:         ctx,
		cancel:      cancel,
	}

	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(s.cfg.Server.Port),
		Handler:      s.mux,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.routes()

	return s
}

// routes sets up HTTP routing for session control and history
func (s *Server) routes() {
	// Health check
	s.mux.HandleFunc("/health", s.handleHealth)

	// Translation session control
	sessions := api.NewSessionHandler(s.translation)
	s.mux.HandleFunc("/start", sessions.HandleStart)
	s.mux.HandleFunc("/pause", sessions.HandlePause)
	s.mux.HandleFunc("/resume", sessions.HandleResume)
	s.mux.HandleFunc("/stop", sessions.HandleStop)
	s.mux.HandleFunc("/change_language", sessions.HandleChangeLanguage)
	s.mux.HandleFunc("/status", sessions.HandleStatus)

	// Chatbot session control
	chat := api.NewChatHandler(s.chat)
	s.mux.HandleFunc("/start_chatbot", chat.HandleStart)
	s.mux.HandleFunc("/stop_chatbot", chat.HandleStop)
	s.mux.HandleFunc("/change_chatbot_language", chat.HandleChangeLanguage)
	s.mux.HandleFunc("/get_chatbot_status", chat.HandleStatus)
	s.mux.HandleFunc("/chat_history", chat.HandleHistory)

	// Catalog and history
	languages := api.NewLanguagesHandler(s.catalog)
	s.mux.HandleFunc("/api/languages", languages.HandleLanguages)
	if s.store != nil {
		events := api.NewUtteranceEventsHandler(s.store)
		s.mux.HandleFunc("/api/events", events.HandleEvents)
		s.mux.HandleFunc("/api/events/", events.HandleEventByID)
	}

	logging.Sugar.Infow("🌐 HTTP routes configured",
		"session_endpoints", "/start /pause /resume /stop /change_language /status",
		"chatbot_endpoints", "/start_chatbot /stop_chatbot /change_chatbot_language /get_chatbot_status /chat_history",
		"history_endpoint", "/api/events")
}

// handleHealth provides system health information
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	translation := s.translation.Snapshot()
	chat := s.chat.Snapshot()

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"translation_session": map[string]bool{
			"running": translation.Running,
			"paused":  translation.Paused,
		},
		"chatbot_session": map[string]bool{
			"running": chat.Running,
			"paused":  chat.Paused,
		},
	}
	if s.nats != nil {
		health["nats_connected"] = s.nats.IsConnected()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health); err != nil {
		logging.LogError(err, "Failed to encode health response")
	}
}

// Start starts the HTTP server and blocks until it shuts down
func (s *Server) Start() error {
	logging.Sugar.Infow("🚀 Lingo Hub starting",
		"http_port", s.cfg.Server.Port,
		"default_target_language", s.cfg.Session.DefaultTargetLanguage)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully shuts down the server: session loops first, then the HTTP
// listener, then the engines and external connections.
func (s *Server) Stop() error {
	logging.Sugar.Infow("🛑 Shutting down Lingo Hub")

	s.cancel()

	// Stopping is a signal; wait for the loops to actually exit so the
	// engines are idle before they get closed.
	_ = s.translation.Stop()
	_ = s.chat.Stop()
	s.awaitSessions(5 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			logging.LogWarn("engine close failed", zap.Error(err))
		}
	}
	if s.nats != nil {
		s.nats.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logging.LogWarn("database close failed", zap.Error(err))
		}
	}

	logging.Sugar.Infow("✅ Lingo Hub shut down successfully")
	return nil
}

// awaitSessions waits for both session loops to exit, up to the deadline.
// A nil Done channel means the session never ran.
func (s *Server) awaitSessions(timeout time.Duration) {
	deadline := time.After(timeout)
	for _, done := range []<-chan struct{}{s.translation.Done(), s.chat.Done()} {
		if done == nil {
			continue
		}
		select {
		case <-done:
		case <-deadline:
			logging.LogWarn("session loop did not exit before shutdown deadline")
			return
		}
	}
}
