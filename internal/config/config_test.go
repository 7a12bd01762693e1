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

package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv removes all configuration environment variables for a clean test run
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"LINGO_HOST", "LINGO_PORT", "LINGO_READ_TIMEOUT", "LINGO_WRITE_TIMEOUT", "LINGO_DB_PATH",
		"STT_BACKEND", "STT_URL", "STT_TEMPERATURE", "STT_MAX_TOKENS", "STT_TIMEOUT", "WHISPER_MODEL_PATH",
		"TRANSLATE_URL", "TRANSLATE_API_KEY", "TRANSLATE_TIMEOUT",
		"KOKORO_TTS_URL", "KOKORO_TTS_VOICE", "KOKORO_TTS_SPEED", "KOKORO_TTS_FORMAT",
		"KOKORO_TTS_NORMALIZE", "KOKORO_TTS_MAX_CONCURRENT", "KOKORO_TTS_TIMEOUT",
		"DIALOGUE_URL", "DIALOGUE_MODEL", "DIALOGUE_TIMEOUT", "DIALOGUE_PIVOT_LANGUAGE",
		"SESSION_DEFAULT_TARGET", "SESSION_MAX_UTTERANCE", "SESSION_PAUSE_TICK",
		"SESSION_FAILURE_THRESHOLD", "SESSION_CONTEXT_SIZE", "CHAT_TURN_LOG_LIMIT",
		"LOG_LEVEL", "LOG_FORMAT",
		"NATS_URL", "NATS_AUDIO_SUBJECT", "NATS_PLAYBACK_SUBJECT", "NATS_EVENT_SUBJECT",
		"NATS_MAX_RECONNECT", "NATS_RECONNECT_WAIT",
	}
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			t.Setenv(key, value) // restores after the test
			_ = os.Unsetenv(key)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Server.DBPath != "./data/lingo-hub.db" {
		t.Errorf("Server.DBPath = %q, want %q", cfg.Server.DBPath, "./data/lingo-hub.db")
	}

	if cfg.STT.URL != "http://stt:8000" {
		t.Errorf("STT.URL = %q, want %q", cfg.STT.URL, "http://stt:8000")
	}
	if cfg.Translate.URL != "http://translate:5000" {
		t.Errorf("Translate.URL = %q, want %q", cfg.Translate.URL, "http://translate:5000")
	}

	if cfg.TTS.URL != "http://localhost:8880/v1" {
		t.Errorf("TTS.URL = %q, want %q", cfg.TTS.URL, "http://localhost:8880/v1")
	}
	if cfg.TTS.Voice != "af_heart" {
		t.Errorf("TTS.Voice = %q, want %q", cfg.TTS.Voice, "af_heart")
	}

	if cfg.Dialogue.PivotLanguage != "" {
		t.Errorf("Dialogue.PivotLanguage = %q, want empty", cfg.Dialogue.PivotLanguage)
	}

	if cfg.Session.DefaultTargetLanguage != "en" {
		t.Errorf("Session.DefaultTargetLanguage = %q, want %q", cfg.Session.DefaultTargetLanguage, "en")
	}
	if cfg.Session.MaxUtterance != 15*time.Second {
		t.Errorf("Session.MaxUtterance = %v, want %v", cfg.Session.MaxUtterance, 15*time.Second)
	}
	if cfg.Session.FailureThreshold != 5 {
		t.Errorf("Session.FailureThreshold = %d, want %d", cfg.Session.FailureThreshold, 5)
	}
	if cfg.Session.ContextSize != 8 {
		t.Errorf("Session.ContextSize = %d, want %d", cfg.Session.ContextSize, 8)
	}
	if cfg.Session.TurnLogLimit != 200 {
		t.Errorf("Session.TurnLogLimit = %d, want %d", cfg.Session.TurnLogLimit, 200)
	}

	if cfg.NATS.AudioSubject != "lingo.audio.utterances" {
		t.Errorf("NATS.AudioSubject = %q, want %q", cfg.NATS.AudioSubject, "lingo.audio.utterances")
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "Server configuration",
			envVars: map[string]string{
				"LINGO_HOST":    "127.0.0.1",
				"LINGO_PORT":    "3000",
				"LINGO_DB_PATH": "/custom/path/db.sqlite",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Server.Host != "127.0.0.1" {
					t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "127.0.0.1")
				}
				if cfg.Server.Port != 3000 {
					t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 3000)
				}
				if cfg.Server.DBPath != "/custom/path/db.sqlite" {
					t.Errorf("Server.DBPath = %q, want %q", cfg.Server.DBPath, "/custom/path/db.sqlite")
				}
			},
		},
		{
			name: "Session configuration",
			envVars: map[string]string{
				"SESSION_DEFAULT_TARGET":    "fr",
				"SESSION_MAX_UTTERANCE":     "5s",
				"SESSION_FAILURE_THRESHOLD": "3",
				"SESSION_CONTEXT_SIZE":      "4",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Session.DefaultTargetLanguage != "fr" {
					t.Errorf("Session.DefaultTargetLanguage = %q, want %q", cfg.Session.DefaultTargetLanguage, "fr")
				}
				if cfg.Session.MaxUtterance != 5*time.Second {
					t.Errorf("Session.MaxUtterance = %v, want %v", cfg.Session.MaxUtterance, 5*time.Second)
				}
				if cfg.Session.FailureThreshold != 3 {
					t.Errorf("Session.FailureThreshold = %d, want %d", cfg.Session.FailureThreshold, 3)
				}
				if cfg.Session.ContextSize != 4 {
					t.Errorf("Session.ContextSize = %d, want %d", cfg.Session.ContextSize, 4)
				}
			},
		},
		{
			name: "Dialogue configuration",
			envVars: map[string]string{
				"DIALOGUE_URL":            "http://ollama:11434",
				"DIALOGUE_MODEL":          "mistral:7b",
				"DIALOGUE_PIVOT_LANGUAGE": "en",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Dialogue.URL != "http://ollama:11434" {
					t.Errorf("Dialogue.URL = %q, want %q", cfg.Dialogue.URL, "http://ollama:11434")
				}
				if cfg.Dialogue.Model != "mistral:7b" {
					t.Errorf("Dialogue.Model = %q, want %q", cfg.Dialogue.Model, "mistral:7b")
				}
				if cfg.Dialogue.PivotLanguage != "en" {
					t.Errorf("Dialogue.PivotLanguage = %q, want %q", cfg.Dialogue.PivotLanguage, "en")
				}
			},
		},
		{
			name: "Invalid numeric value falls back to default",
			envVars: map[string]string{
				"SESSION_FAILURE_THRESHOLD": "not-a-number",
			},
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Session.FailureThreshold != 5 {
					t.Errorf("Session.FailureThreshold = %d, want default %d", cfg.Session.FailureThreshold, 5)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}

			tt.validate(t, cfg)
		})
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "invalid port",
			envVars: map[string]string{"LINGO_PORT": "99999"},
		},
		{
			name:    "zero TTS concurrency",
			envVars: map[string]string{"KOKORO_TTS_MAX_CONCURRENT": "0"},
		},
		{
			name:    "negative TTS speed",
			envVars: map[string]string{"KOKORO_TTS_SPEED": "-1.0"},
		},
		{
			name:    "zero failure threshold",
			envVars: map[string]string{"SESSION_FAILURE_THRESHOLD": "0"},
		},
		{
			name:    "zero context size",
			envVars: map[string]string{"SESSION_CONTEXT_SIZE": "0"},
		},
		{
			name:    "unknown STT backend",
			envVars: map[string]string{"STT_BACKEND": "carrier-pigeon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			if _, err := Load(); err == nil {
				t.Error("Load() expected validation error but got none")
			}
		})
	}
}
