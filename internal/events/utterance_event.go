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

package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event kinds recorded by the hub
const (
	KindTranslation = "translation" // source utterance → translated text
	KindChat        = "chat"        // user message → chatbot reply
)

// UtteranceEvent records one fully processed utterance: what was heard,
// in which language, and what the pipeline produced from it.
type UtteranceEvent struct {
	UUID      string    `json:"uuid" db:"uuid"`
	Kind      string    `json:"kind" db:"kind"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`

	SourceLang string `json:"source_lang" db:"source_lang"`
	TargetLang string `json:"target_lang" db:"target_lang"`

	SourceText string `json:"source_text" db:"source_text"`
	OutputText string `json:"output_text" db:"output_text"`

	ProcessingMs int64  `json:"processing_ms" db:"processing_ms"`
	Success      bool   `json:"success" db:"success"`
	ErrorMessage string `json:"error_message,omitempty" db:"error_message"`
}

// NewUtteranceEvent creates an event with a generated UUID and current timestamp
func NewUtteranceEvent(kind string) *UtteranceEvent {
	return &UtteranceEvent{
		UUID:      uuid.NewString(),
		Kind:      kind,
		Timestamp: time.Now(),
		Success:   true,
	}
}

// SetLanguages records the language pair for this event
func (e *UtteranceEvent) SetLanguages(sourceLang, targetLang string) {
	e.SourceLang = sourceLang
	e.TargetLang = targetLang
}

// SetOutput records the pipeline output and the elapsed processing time
func (e *UtteranceEvent) SetOutput(sourceText, outputText string) {
	e.SourceText = sourceText
	e.OutputText = outputText
	e.ProcessingMs = time.Since(e.Timestamp).Milliseconds()
}

// SetError marks the event as failed with an error message
func (e *UtteranceEvent) SetError(err error) {
	e.Success = false
	e.ErrorMessage = err.Error()
	e.ProcessingMs = time.Since(e.Timestamp).Milliseconds()
}

// IsValid performs basic validation on the event
func (e *UtteranceEvent) IsValid() error {
	if e.UUID == "" {
		return fmt.Errorf("UUID is required")
	}

	if e.Kind != KindTranslation && e.Kind != KindChat {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}

	if e.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}

	if e.SourceLang == "" || e.TargetLang == "" {
		return fmt.Errorf("language pair is required")
	}

	return nil
}

// String returns a human-readable representation of the event
func (e *UtteranceEvent) String() string {
	return fmt.Sprintf("UtteranceEvent{UUID: %s, Kind: %s, %s→%s, Source: %q, Success: %t}",
		e.UUID, e.Kind, e.SourceLang, e.TargetLang, e.SourceText, e.Success)
}
