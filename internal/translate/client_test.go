/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

func TestMain(m *testing.M) {
	if err := logging.InitializeWithConfig(logging.LogConfig{Level: "error", Format: "console"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestClient_Translate(t *testing.T) {
	var captured translateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %q, want /translate", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "hello"})
	}))
	defer server.Close()

	client, err := NewClient(config.TranslateConfig{URL: server.URL})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	defer func() { _ = client.Close() }()

	translated, err := client.Translate(context.Background(), Request{
		Text:       "hola",
		SourceLang: "es",
		TargetLang: "en",
		Context: []Exchange{
			{SourceText: "buenos días", TranslatedText: "good morning"},
		},
	})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if translated != "hello" {
		t.Errorf("Translate() = %q, want %q", translated, "hello")
	}

	if captured.Q != "hola" {
		t.Errorf("request q = %q, want %q", captured.Q, "hola")
	}
	if captured.Source != "es" || captured.Target != "en" {
		t.Errorf("request langs = %s→%s, want es→en", captured.Source, captured.Target)
	}
	if len(captured.Context) != 1 || captured.Context[0].TranslatedText != "good morning" {
		t.Errorf("request context = %+v, want the prior exchange", captured.Context)
	}
}

func TestClient_TranslateErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "error field in body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "unsupported pair"})
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(config.TranslateConfig{URL: server.URL})
			if err != nil {
				t.Fatalf("NewClient() error: %v", err)
			}

			_, err = client.Translate(context.Background(), Request{
				Text: "hola", SourceLang: "es", TargetLang: "en",
			})
			if err == nil {
				t.Error("Translate() expected error")
			}
		})
	}
}

func TestClient_TranslateValidation(t *testing.T) {
	client, err := NewClient(config.TranslateConfig{URL: "http://localhost:5000"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	if _, err := client.Translate(context.Background(), Request{SourceLang: "es", TargetLang: "en"}); err == nil {
		t.Error("Translate() expected error for empty text")
	}
	if _, err := client.Translate(context.Background(), Request{Text: "hola", TargetLang: "en"}); err == nil {
		t.Error("Translate() expected error for missing source language")
	}
}

func TestStubTranslator(t *testing.T) {
	stub := NewStubTranslator(Dictionary{
		"en": {"hola": "hello"},
	})

	translated, err := stub.Translate(context.Background(), Request{
		Text: "hola", SourceLang: "es", TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if translated != "hello" {
		t.Errorf("Translate() = %q, want dictionary hit %q", translated, "hello")
	}

	translated, err = stub.Translate(context.Background(), Request{
		Text: "bonjour", SourceLang: "fr", TargetLang: "en",
	})
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if translated != "[en] bonjour" {
		t.Errorf("Translate() = %q, want fallback %q", translated, "[en] bonjour")
	}

	if stub.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", stub.Calls())
	}
}
