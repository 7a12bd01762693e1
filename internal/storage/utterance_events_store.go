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

package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lingolabs/lingo-hub/internal/events"
)

// UtteranceEventsStore handles database operations for utterance events
type UtteranceEventsStore struct {
	db *Database
}

// NewUtteranceEventsStore creates a new utterance events store
func NewUtteranceEventsStore(db *Database) *UtteranceEventsStore {
	return &UtteranceEventsStore{db: db}
}

// Insert stores a new utterance event in the database
func (s *UtteranceEventsStore) Insert(event *events.UtteranceEvent) error {
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid utterance event: %w", err)
	}

	query := `
		INSERT INTO utterance_events (
			uuid, kind, timestamp,
			source_lang, target_lang,
			source_text, output_text,
			processing_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.DB().Exec(query,
		event.UUID, event.Kind, event.Timestamp,
		event.SourceLang, event.TargetLang,
		event.SourceText, event.OutputText,
		event.ProcessingMs, event.Success, event.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to insert utterance event: %w", err)
	}

	return nil
}

// GetByUUID retrieves an utterance event by its UUID
func (s *UtteranceEventsStore) GetByUUID(uuid string) (*events.UtteranceEvent, error) {
	query := `
		SELECT uuid, kind, timestamp,
			   source_lang, target_lang,
			   source_text, output_text,
			   processing_ms, success, error_message
		FROM utterance_events
		WHERE uuid = ?`

	row := s.db.DB().QueryRow(query, uuid)
	return s.scanUtteranceEvent(row)
}

// ListOptions defines filtering and pagination options
type ListOptions struct {
	// Filtering
	Kind       string
	SourceLang string
	TargetLang string
	Success    *bool // nil = all, true = success only, false = errors only
	StartTime  *time.Time
	EndTime    *time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "timestamp", "processing_ms"
	SortOrder string // "ASC", "DESC"
}

// List retrieves utterance events with pagination and filtering
func (s *UtteranceEventsStore) List(options ListOptions) ([]*events.UtteranceEvent, error) {
	query, args := s.buildListQuery(options)

	rows, err := s.db.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query utterance events: %w", err)
	}
	defer rows.Close()

	var eventsList []*events.UtteranceEvent
	for rows.Next() {
		event, err := s.scanUtteranceEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan utterance event: %w", err)
		}
		eventsList = append(eventsList, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating utterance events: %w", err)
	}

	return eventsList, nil
}

// Count returns the total number of utterance events matching the filter
func (s *UtteranceEventsStore) Count(options ListOptions) (int64, error) {
	options.Limit = 0
	options.Offset = 0
	query, args := s.buildListQuery(options)

	countQuery := "SELECT COUNT(*) FROM (" + query + ") as filtered"

	var count int64
	err := s.db.DB().QueryRow(countQuery, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count utterance events: %w", err)
	}

	return count, nil
}

// Delete removes an utterance event by UUID
func (s *UtteranceEventsStore) Delete(uuid string) error {
	result, err := s.db.DB().Exec("DELETE FROM utterance_events WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("failed to delete utterance event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("utterance event not found: %s", uuid)
	}

	return nil
}

// buildListQuery constructs the SQL query based on ListOptions
func (s *UtteranceEventsStore) buildListQuery(options ListOptions) (string, []interface{}) {
	query := `
		SELECT uuid, kind, timestamp,
			   source_lang, target_lang,
			   source_text, output_text,
			   processing_ms, success, error_message
		FROM utterance_events WHERE 1=1`

	var args []interface{}

	if options.Kind != "" {
		query += " AND kind = ?"
		args = append(args, options.Kind)
	}

	if options.SourceLang != "" {
		query += " AND source_lang = ?"
		args = append(args, options.SourceLang)
	}

	if options.TargetLang != "" {
		query += " AND target_lang = ?"
		args = append(args, options.TargetLang)
	}

	if options.Success != nil {
		query += " AND success = ?"
		args = append(args, *options.Success)
	}

	if options.StartTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, options.StartTime)
	}

	if options.EndTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, options.EndTime)
	}

	// Sort columns are whitelisted; anything else falls back to timestamp.
	sortBy := options.SortBy
	switch sortBy {
	case "timestamp", "processing_ms":
	default:
		sortBy = "timestamp"
	}

	sortOrder := options.SortOrder
	if sortOrder != "ASC" {
		sortOrder = "DESC"
	}

	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)

		if options.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, options.Offset)
		}
	}

	return query, args
}

// scanUtteranceEvent scans a database row into an UtteranceEvent struct
func (s *UtteranceEventsStore) scanUtteranceEvent(scanner interface{}) (*events.UtteranceEvent, error) {
	var event events.UtteranceEvent

	var row interface {
		Scan(dest ...interface{}) error
	}

	switch v := scanner.(type) {
	case *sql.Row:
		row = v
	case *sql.Rows:
		row = v
	default:
		return nil, fmt.Errorf("unsupported scanner type")
	}

	err := row.Scan(
		&event.UUID, &event.Kind, &event.Timestamp,
		&event.SourceLang, &event.TargetLang,
		&event.SourceText, &event.OutputText,
		&event.ProcessingMs, &event.Success, &event.ErrorMessage,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("utterance event not found")
		}
		return nil, err
	}

	return &event, nil
}
