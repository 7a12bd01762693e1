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
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/events"
	"github.com/lingolabs/lingo-hub/internal/logging"
	"github.com/lingolabs/lingo-hub/internal/storage"
)

// UtteranceEventsHandler handles HTTP requests for the utterance history
type UtteranceEventsHandler struct {
	store *storage.UtteranceEventsStore
}

// NewUtteranceEventsHandler creates a new utterance events handler
func NewUtteranceEventsHandler(store *storage.UtteranceEventsStore) *UtteranceEventsHandler {
	return &UtteranceEventsHandler{store: store}
}

// ListUtteranceEventsResponse represents the response for listing events
type ListUtteranceEventsResponse struct {
	Events     []*events.UtteranceEvent `json:"events"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
}

// HandleEvents handles GET /api/events
func (h *UtteranceEventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	page := parseIntParam(query.Get("page"), 1)
	pageSize := parseIntParam(query.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if page < 1 {
		page = 1
	}

	options := storage.ListOptions{
		Kind:       query.Get("kind"),
		SourceLang: query.Get("source_lang"),
		TargetLang: query.Get("target_lang"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
		SortBy:     query.Get("sort_by"),
		SortOrder:  strings.ToUpper(query.Get("sort_order")),
	}

	if successStr := query.Get("success"); successStr != "" {
		if success, err := strconv.ParseBool(successStr); err == nil {
			options.Success = &success
		}
	}

	if startTimeStr := query.Get("start_time"); startTimeStr != "" {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			options.StartTime = &startTime
		}
	}
	if endTimeStr := query.Get("end_time"); endTimeStr != "" {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			options.EndTime = &endTime
		}
	}

	total, err := h.store.Count(options)
	if err != nil {
		logging.LogError(err, "Failed to count utterance events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	list, err := h.store.List(options)
	if err != nil {
		logging.LogError(err, "Failed to list utterance events")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*events.UtteranceEvent{}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	response := ListUtteranceEventsResponse{
		Events:     list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// HandleEventByID handles GET /api/events/{uuid}
func (h *UtteranceEventsHandler) HandleEventByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/events/"), "/")
	if len(pathParts) == 0 || pathParts[0] == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return
	}
	uuid := pathParts[0]

	event, err := h.store.GetByUUID(uuid)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			http.Error(w, "Utterance event not found", http.StatusNotFound)
			return
		}
		logging.LogError(err, "Failed to get utterance event",
			zap.String("uuid", uuid),
		)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(event)
}

// parseIntParam parses an integer query parameter with a default
func parseIntParam(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	return defaultValue
}
