/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package session

import (
	"time"

	"github.com/lingolabs/lingo-hub/internal/translate"
)

// ContextBuffer is a bounded FIFO of recent exchanges handed to the
// translator as disambiguation context. Not safe for concurrent use; the
// owning session serializes access.
type ContextBuffer struct {
	entries []translate.Exchange
	limit   int
}

// NewContextBuffer creates a buffer keeping at most limit exchanges
func NewContextBuffer(limit int) *ContextBuffer {
	if limit < 0 {
		limit = 0
	}
	return &ContextBuffer{limit: limit}
}

// Add appends an exchange, evicting the oldest when full
func (b *ContextBuffer) Add(sourceText, translatedText string) {
	if b.limit == 0 {
		return
	}
	if len(b.entries) == b.limit {
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:b.limit-1]
	}
	b.entries = append(b.entries, translate.Exchange{
		SourceText:     sourceText,
		TranslatedText: translatedText,
		Timestamp:      time.Now(),
	})
}

// AsContext returns a copy of the buffered exchanges, oldest first
func (b *ContextBuffer) AsContext() []translate.Exchange {
	if len(b.entries) == 0 {
		return nil
	}
	return append([]translate.Exchange(nil), b.entries...)
}

// Clear drops all buffered exchanges
func (b *ContextBuffer) Clear() {
	b.entries = b.entries[:0]
}

// Len returns the number of buffered exchanges
func (b *ContextBuffer) Len() int {
	return len(b.entries)
}
