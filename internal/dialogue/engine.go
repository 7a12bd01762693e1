/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package dialogue

import "context"

// Engine produces a conversational reply to a user message. Implementations
// may be language-agnostic or require translation into a pivot language first.
type Engine interface {
	// Respond generates a reply to text written in the given language
	Respond(ctx context.Context, text, language string) (string, error)

	// Close cleans up resources
	Close() error
}
