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

import "errors"

// State describes where a session is in its lifecycle
type State int

const (
	// StateIdle means the session has never been started
	StateIdle State = iota
	// StateListening means the background loop is capturing and translating
	StateListening
	// StatePaused means the loop is alive but idling between safe points
	StatePaused
	// StateStopping means Stop was requested and the loop is winding down
	StateStopping
	// StateStopped means the loop has exited, voluntarily or on failure
	StateStopped
)

// String implements fmt.Stringer
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Sentinel errors returned by session operations. Handlers map these onto
// the status words the HTTP API reports.
var (
	ErrAlreadyRunning       = errors.New("session already running")
	ErrNotRunning           = errors.New("session not running")
	ErrNotPaused            = errors.New("session not paused")
	ErrTransitionInProgress = errors.New("session transition in progress")
	ErrUnknownLanguage      = errors.New("unknown language")
	ErrLanguageUnchanged    = errors.New("language unchanged")
)

// Status is a point-in-time snapshot of a translation session. The three
// output fields always come from the same utterance.
type Status struct {
	SourceLang    string `json:"source_lang"`
	TargetLang    string `json:"target_lang"`
	Transcription string `json:"transcription"`
	Translation   string `json:"translation"`
	Running       bool   `json:"running"`
	Paused        bool   `json:"paused"`
	Error         string `json:"error,omitempty"`
}

// ChatStatus is a point-in-time snapshot of a chat session. UserMessage and
// BotResponse always come from the same exchange.
type ChatStatus struct {
	Language    string `json:"language"`
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	Running     bool   `json:"running"`
	Paused      bool   `json:"paused"`
	Error       string `json:"error,omitempty"`
}

// Turn is one completed chat exchange
type Turn struct {
	UserMessage string `json:"user_message"`
	BotResponse string `json:"bot_response"`
	Language    string `json:"language"`
}
