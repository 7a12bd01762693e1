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

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/security"
	"github.com/lingolabs/lingo-hub/internal/session"
)

// Control status words reported to the web layer
const (
	StatusStarted            = "started"
	StatusAlreadyRunning     = "already_running"
	StatusPaused             = "paused"
	StatusNotRunning         = "not_running"
	StatusResumed            = "resumed"
	StatusNotPaused          = "not_paused"
	StatusStopped            = "stopped"
	StatusLanguageChanged    = "language_changed"
	StatusLanguageNotChanged = "language_not_changed"
)

// ControlResponse is the envelope for session control operations
type ControlResponse struct {
	Status       string `json:"status"`
	LanguageName string `json:"language_name,omitempty"`
}

// ChangeLanguageRequest is the body for language change operations
type ChangeLanguageRequest struct {
	Language string `json:"language"`
}

// SessionHandler exposes translation session control over HTTP
type SessionHandler struct {
	session *session.TranslationSession
}

// NewSessionHandler creates a handler bound to one translation session
func NewSessionHandler(s *session.TranslationSession) *SessionHandler {
	return &SessionHandler{session: s}
}

// HandleStart handles POST /start
func (h *SessionHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	err := h.session.Start()
	switch {
	case err == nil:
		writeControl(w, ControlResponse{Status: StatusStarted})
	case errors.Is(err, session.ErrAlreadyRunning), errors.Is(err, session.ErrTransitionInProgress):
		writeControl(w, ControlResponse{Status: StatusAlreadyRunning})
	default:
		logging.LogError(err, "failed to start translation session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandlePause handles POST /pause
func (h *SessionHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	if err := h.session.Pause(); errors.Is(err, session.ErrNotRunning) {
		writeControl(w, ControlResponse{Status: StatusNotRunning})
		return
	}
	writeControl(w, ControlResponse{Status: StatusPaused})
}

// HandleResume handles POST /resume
func (h *SessionHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	if err := h.session.Resume(); errors.Is(err, session.ErrNotPaused) {
		writeControl(w, ControlResponse{Status: StatusNotPaused})
		return
	}
	writeControl(w, ControlResponse{Status: StatusResumed})
}

// HandleStop handles POST /stop. Stopping is idempotent; the response is
// "stopped" whether or not a loop was running.
func (h *SessionHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	if err := h.session.Stop(); err != nil {
		logging.LogError(err, "failed to stop translation session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeControl(w, ControlResponse{Status: StatusStopped})
}

// HandleChangeLanguage handles POST /change_language
func (h *SessionHandler) HandleChangeLanguage(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req ChangeLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	info, err := h.session.ChangeLanguage(req.Language)
	switch {
	case err == nil:
		writeControl(w, ControlResponse{Status: StatusLanguageChanged, LanguageName: info.Name})
	case errors.Is(err, session.ErrLanguageUnchanged), errors.Is(err, session.ErrUnknownLanguage):
		logging.LogWarn("language not changed",
			zap.String("requested", security.SanitizeLogInput(req.Language)),
			zap.Error(err),
		)
		writeControl(w, ControlResponse{Status: StatusLanguageNotChanged})
	default:
		logging.LogError(err, "failed to change language")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandleStatus handles GET /status
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.session.Snapshot())
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeControl(w http.ResponseWriter, resp ControlResponse) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
