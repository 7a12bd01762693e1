/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package stt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

func TestMain(m *testing.M) {
	if err := logging.InitializeWithConfig(logging.LogConfig{Level: "error", Format: "console"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/audio/transcriptions", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testUtterance() audio.Utterance {
	return audio.Utterance{
		StreamID:   "utt-1",
		Samples:    make([]float32, 1600),
		SampleRate: 16000,
	}
}

func TestClient_Transcribe(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}

		if got := r.FormValue("response_format"); got != "verbose_json" {
			t.Errorf("response_format = %q, want %q", got, "verbose_json")
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing audio file: %v", err)
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		if header.Filename != "audio.wav" {
			t.Errorf("filename = %q, want %q", header.Filename, "audio.wav")
		}

		_ = json.NewEncoder(w).Encode(map[string]string{
			"text":     "hola",
			"language": "es",
		})
	})

	client, err := NewClient(config.STTConfig{URL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	defer func() { _ = client.Close() }()

	result, err := client.Transcribe(context.Background(), testUtterance())
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if result.Text != "hola" {
		t.Errorf("Text = %q, want %q", result.Text, "hola")
	}
	if result.Language != "es" {
		t.Errorf("Language = %q, want %q", result.Language, "es")
	}
}

func TestClient_TranscribeServerError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	})

	client, err := NewClient(config.STTConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if _, err := client.Transcribe(context.Background(), testUtterance()); err == nil {
		t.Error("Transcribe() expected error for 500 response")
	}
}

func TestClient_TranscribeValidation(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for invalid input")
	})

	client, err := NewClient(config.STTConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if _, err := client.Transcribe(context.Background(), audio.Utterance{SampleRate: 16000}); err == nil {
		t.Error("Transcribe() expected error for empty samples")
	}
	if _, err := client.Transcribe(context.Background(), audio.Utterance{Samples: []float32{0}}); err == nil {
		t.Error("Transcribe() expected error for zero sample rate")
	}
}

func TestNewClient_HealthCheckFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	if _, err := NewClient(config.STTConfig{URL: server.URL}); err == nil {
		t.Error("NewClient() expected health check error")
	}
}

func TestFloat32ToWAV_Header(t *testing.T) {
	wav := float32ToWAV(make([]float32, 100), 16000)

	if len(wav) != 44+400 {
		t.Fatalf("WAV length = %d, want %d", len(wav), 44+400)
	}
	if string(wav[0:4]) != "RIFF" {
		t.Errorf("chunk ID = %q, want RIFF", wav[0:4])
	}
	if string(wav[8:12]) != "WAVE" {
		t.Errorf("format = %q, want WAVE", wav[8:12])
	}
	if wav[20] != 3 {
		t.Errorf("audio format = %d, want 3 (IEEE float)", wav[20])
	}
}

func TestStubTranscriber(t *testing.T) {
	stub := NewStubTranscriber(Script{
		"utt-1": {Text: "hola", Language: "es"},
	})

	result, err := stub.Transcribe(context.Background(), audio.Utterance{StreamID: "utt-1"})
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if result.Text != "hola" || result.Language != "es" {
		t.Errorf("result = %+v, want scripted hola/es", result)
	}

	// Unknown stream IDs read as silence
	result, err = stub.Transcribe(context.Background(), audio.Utterance{StreamID: "unknown"})
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if result.Text != "" {
		t.Errorf("Text = %q, want empty for unknown stream", result.Text)
	}

	if stub.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", stub.Calls())
	}
}
