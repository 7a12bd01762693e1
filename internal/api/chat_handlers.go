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
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/security"
	"github.com/lingolabs/lingo-hub/internal/session"
)

// StartChatRequest is the optional body for starting the chatbot; an empty
// or missing language keeps the session's current one.
type StartChatRequest struct {
	Language string `json:"language"`
}

// ChatHistoryResponse wraps the chat turn log
type ChatHistoryResponse struct {
	History []session.Turn `json:"history"`
}

// ChatHandler exposes chat session control over HTTP
type ChatHandler struct {
	session *session.ChatSession
}

// NewChatHandler creates a handler bound to one chat session
func NewChatHandler(s *session.ChatSession) *ChatHandler {
	return &ChatHandler{session: s}
}

// HandleStart handles POST /start_chatbot
func (h *ChatHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req StartChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	err := h.session.Start(req.Language)
	switch {
	case err == nil:
		writeControl(w, ControlResponse{Status: StatusStarted})
	case errors.Is(err, session.ErrAlreadyRunning), errors.Is(err, session.ErrTransitionInProgress):
		writeControl(w, ControlResponse{Status: StatusAlreadyRunning})
	case errors.Is(err, session.ErrUnknownLanguage):
		logging.LogWarn("chatbot start with unknown language",
			zap.String("requested", security.SanitizeLogInput(req.Language)),
		)
		writeControl(w, ControlResponse{Status: StatusLanguageNotChanged})
	default:
		logging.LogError(err, "failed to start chat session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandleStop handles POST /stop_chatbot; idempotent like /stop
func (h *ChatHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	if err := h.session.Stop(); err != nil {
		logging.LogError(err, "failed to stop chat session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeControl(w, ControlResponse{Status: StatusStopped})
}

// HandleChangeLanguage handles POST /change_chatbot_language
func (h *ChatHandler) HandleChangeLanguage(w http.ResponseWriter, r *http.Request) {
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
		writeControl(w, ControlResponse{Status: StatusLanguageNotChanged})
	default:
		logging.LogError(err, "failed to change chatbot language")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HandleStatus handles GET /get_chatbot_status
func (h *ChatHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.session.Snapshot())
}

// HandleHistory handles GET /chat_history
func (h *ChatHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history := h.session.History()
	if history == nil {
		history = []session.Turn{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ChatHistoryResponse{History: history})
}
