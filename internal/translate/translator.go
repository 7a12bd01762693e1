/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package translate

import (
	"context"
	"time"
)

// Exchange is one prior utterance/translation pair supplied as
// disambiguation context for the next translation call. The engine decides
// how (and whether) to weight it; the timestamp lets it prefer recency.
type Exchange struct {
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text"`
	Timestamp      time.Time `json:"timestamp"`
}

// Request describes one translation call
type Request struct {
	Text       string
	SourceLang string
	TargetLang string
	Context    []Exchange // Read-only prior exchanges, most recent last
}

// Translator converts text between languages
type Translator interface {
	// Translate converts text to the target language
	Translate(ctx context.Context, req Request) (string, error)

	// Close cleans up resources
	Close() error
}
