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

package tts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lingolabs/lingo-hub/internal/config"
)

func ttsConfig(url string) config.TTSConfig {
	return config.TTSConfig{
		URL:            url,
		Voice:          "af_heart",
		Speed:          1.0,
		ResponseFormat: "mp3",
		Normalize:      true,
		MaxConcurrent:  2,
		Timeout:        5 * time.Second,
	}
}

func TestKokoroClient_Synthesize(t *testing.T) {
	var captured KokoroRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("path = %q, want /audio/speech", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("fake-mp3-bytes"))
	}))
	defer server.Close()

	client, err := NewKokoroClient(ttsConfig(server.URL))
	if err != nil {
		t.Fatalf("NewKokoroClient() error: %v", err)
	}

	result, err := client.Synthesize(context.Background(), "bonjour", &Options{Voice: "ff_siwis", Normalize: true})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	defer func() { _ = result.Audio.Close() }()

	if captured.Input != "bonjour" {
		t.Errorf("request input = %q, want %q", captured.Input, "bonjour")
	}
	if captured.Voice != "ff_siwis" {
		t.Errorf("request voice = %q, want override %q", captured.Voice, "ff_siwis")
	}
	if captured.Model != "kokoro" {
		t.Errorf("request model = %q, want %q", captured.Model, "kokoro")
	}

	audio, err := io.ReadAll(result.Audio)
	if err != nil {
		t.Fatalf("failed to read audio: %v", err)
	}
	if string(audio) != "fake-mp3-bytes" {
		t.Errorf("audio = %q, want passthrough bytes", audio)
	}
	if result.ContentType != "audio/mpeg" {
		t.Errorf("ContentType = %q, want audio/mpeg", result.ContentType)
	}
}

func TestKokoroClient_SynthesizeErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice not found", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewKokoroClient(ttsConfig(server.URL))
	if err != nil {
		t.Fatalf("NewKokoroClient() error: %v", err)
	}

	if _, err := client.Synthesize(context.Background(), "hi", nil); err == nil {
		t.Error("Synthesize() expected error for 400 response")
	}
	if _, err := client.Synthesize(context.Background(), "", nil); err == nil {
		t.Error("Synthesize() expected error for empty text")
	}
}

func TestNewKokoroClient_RequiresURL(t *testing.T) {
	if _, err := NewKokoroClient(config.TTSConfig{MaxConcurrent: 1}); err == nil {
		t.Error("NewKokoroClient() expected error for empty URL")
	}
}

type memorySink struct {
	played []string
	format string
}

func (m *memorySink) Play(audio io.Reader, format string) error {
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	m.played = append(m.played, string(data))
	m.format = format
	return nil
}

func TestSinkSpeaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req KokoroRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = w.Write([]byte("audio:" + req.Input))
	}))
	defer server.Close()

	client, err := NewKokoroClient(ttsConfig(server.URL))
	if err != nil {
		t.Fatalf("NewKokoroClient() error: %v", err)
	}

	sink := &memorySink{}
	speaker := NewSinkSpeaker(client, sink, "mp3")

	if err := speaker.Speak(context.Background(), "hello there", "af_heart"); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}

	if len(sink.played) != 1 || sink.played[0] != "audio:hello there" {
		t.Errorf("sink played = %v, want synthesized audio", sink.played)
	}
	if sink.format != "mp3" {
		t.Errorf("sink format = %q, want mp3", sink.format)
	}
}

func TestStubSpeaker(t *testing.T) {
	speaker := NewStubSpeaker()

	if err := speaker.Speak(context.Background(), "hola", "ef_dora"); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}

	spoken := speaker.Spoken()
	if len(spoken) != 1 || spoken[0] != "hola" {
		t.Errorf("Spoken() = %v, want [hola]", spoken)
	}
	if voices := speaker.Voices(); len(voices) != 1 || voices[0] != "ef_dora" {
		t.Errorf("Voices() = %v, want [ef_dora]", voices)
	}

	speaker.SetError(errors.New("synth down"))
	if err := speaker.Speak(context.Background(), "x", "v"); err == nil {
		t.Error("Speak() expected injected error")
	}
	if len(speaker.Spoken()) != 1 {
		t.Error("failed Speak() must not record text")
	}

	if !strings.Contains(speaker.Spoken()[0], "hola") {
		t.Error("recorded text lost")
	}
}
