/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package messaging

import (
	"strings"
	"testing"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/events"
)

func TestNATSService_RequiresConnection(t *testing.T) {
	service := NewNATSService(config.NATSConfig{URL: "nats://localhost:4222"})

	event := events.NewUtteranceEvent(events.KindTranslation)
	event.SetLanguages("es", "en")

	if err := service.PublishUtterance(event); err == nil {
		t.Error("PublishUtterance() expected error before Connect()")
	}
	if _, err := service.SubscribeToUtterances(func(*events.UtteranceEvent) {}); err == nil {
		t.Error("SubscribeToUtterances() expected error before Connect()")
	}
	if service.IsConnected() {
		t.Error("IsConnected() = true before Connect()")
	}

	// Close before Connect must be a no-op.
	service.Close()
}

func TestPlaybackPublisher_RequiresConnection(t *testing.T) {
	publisher := NewPlaybackPublisher(nil, "lingo.audio.playback")

	err := publisher.Play(strings.NewReader("audio-bytes"), "mp3")
	if err == nil {
		t.Error("Play() expected error without a NATS connection")
	}
}

func TestNoopPublisher(t *testing.T) {
	event := events.NewUtteranceEvent(events.KindChat)
	event.SetLanguages("en", "en")

	if err := (NoopPublisher{}).PublishUtterance(event); err != nil {
		t.Errorf("NoopPublisher.PublishUtterance() error: %v", err)
	}
}
