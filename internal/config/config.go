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
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Lingo hub
type Config struct {
	Server    ServerConfig
	STT       STTConfig
	Translate TranslateConfig
	TTS       TTSConfig
	Dialogue  DialogueConfig
	Session   SessionConfig
	Logging   LoggingConfig
	NATS      NATSConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DBPath       string
}

// STTConfig holds Speech-to-Text service configuration
type STTConfig struct {
	Backend      string // "rest" for the remote STT service, "whisper" for in-process
	URL          string // REST API URL for OpenAI-compatible STT service
	Temperature  float32
	MaxTokens    int
	Timeout      time.Duration
	WhisperModel string // Local whisper model path, used with the whisper build tag
}

// TranslateConfig holds machine translation service configuration
type TranslateConfig struct {
	URL     string // REST API URL for LibreTranslate-compatible MT service
	APIKey  string // Optional API key
	Timeout time.Duration
}

// TTSConfig holds Text-to-Speech service configuration
type TTSConfig struct {
	URL            string        // REST API URL for Kokoro-82M TTS service
	Voice          string        // Default voice to use (e.g., "af_heart")
	Speed          float32       // Speech speed (1.0 = normal)
	ResponseFormat string        // Audio format (mp3, wav, opus, flac)
	Normalize      bool          // Enable text normalization
	MaxConcurrent  int           // Maximum concurrent TTS requests
	Timeout        time.Duration // Request timeout
}

// DialogueConfig holds dialogue engine configuration for the chatbot mode
type DialogueConfig struct {
	URL           string // Ollama-compatible REST API URL
	Model         string
	Timeout       time.Duration
	PivotLanguage string // Internal engine language; empty means language-agnostic
}

// SessionConfig holds session state machine tunables
type SessionConfig struct {
	DefaultTargetLanguage string
	MaxUtterance          time.Duration // Upper bound on one audio capture
	PauseTick             time.Duration // Poll interval while paused
	FailureThreshold      int           // Consecutive engine failures before the session stops
	ContextSize           int           // Bounded translation context entries
	TurnLogLimit          int           // Bounded chat turn log
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration
type NATSConfig struct {
	URL             string
	AudioSubject    string // Subject the microphone relay publishes utterances on
	PlaybackSubject string // Subject synthesized speech is published on
	EventSubject    string // Subject prefix for completed utterance events
	MaxReconnect    int
	ReconnectWait   time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Host:         getEnvString("LINGO_HOST", "0.0.0.0"),
			Port:         getEnvInt("LINGO_PORT", 8080),
			ReadTimeout:  getEnvDuration("LINGO_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("LINGO_WRITE_TIMEOUT", 30*time.Second),
			DBPath:       getEnvString("LINGO_DB_PATH", "./data/lingo-hub.db"),
		},
		STT: STTConfig{
			Backend:      getEnvString("STT_BACKEND", "rest"),
			URL:          getEnvString("STT_URL", "http://stt:8000"),
			Temperature:  getEnvFloat32("STT_TEMPERATURE", 0.0),
			MaxTokens:    getEnvInt("STT_MAX_TOKENS", 224),
			Timeout:      getEnvDuration("STT_TIMEOUT", 30*time.Second),
			WhisperModel: getEnvString("WHISPER_MODEL_PATH", "./models/ggml-base.bin"),
		},
		Translate: TranslateConfig{
			URL:     getEnvString("TRANSLATE_URL", "http://translate:5000"),
			APIKey:  getEnvString("TRANSLATE_API_KEY", ""),
			Timeout: getEnvDuration("TRANSLATE_TIMEOUT", 15*time.Second),
		},
		TTS: TTSConfig{
			URL:            getEnvString("KOKORO_TTS_URL", "http://localhost:8880/v1"),
			Voice:          getEnvString("KOKORO_TTS_VOICE", "af_heart"),
			Speed:          getEnvFloat32("KOKORO_TTS_SPEED", 1.0),
			ResponseFormat: getEnvString("KOKORO_TTS_FORMAT", "mp3"),
			Normalize:      getEnvBool("KOKORO_TTS_NORMALIZE", true),
			MaxConcurrent:  getEnvInt("KOKORO_TTS_MAX_CONCURRENT", 10),
			Timeout:        getEnvDuration("KOKORO_TTS_TIMEOUT", 10*time.Second),
		},
		Dialogue: DialogueConfig{
			URL:           getEnvString("DIALOGUE_URL", "http://localhost:11434"),
			Model:         getEnvString("DIALOGUE_MODEL", "llama3.2:3b"),
			Timeout:       getEnvDuration("DIALOGUE_TIMEOUT", 30*time.Second),
			PivotLanguage: getEnvString("DIALOGUE_PIVOT_LANGUAGE", ""),
		},
		Session: SessionConfig{
			DefaultTargetLanguage: getEnvString("SESSION_DEFAULT_TARGET", "en"),
			MaxUtterance:          getEnvDuration("SESSION_MAX_UTTERANCE", 15*time.Second),
			PauseTick:             getEnvDuration("SESSION_PAUSE_TICK", 100*time.Millisecond),
			FailureThreshold:      getEnvInt("SESSION_FAILURE_THRESHOLD", 5),
			ContextSize:           getEnvInt("SESSION_CONTEXT_SIZE", 8),
			TurnLogLimit:          getEnvInt("CHAT_TURN_LOG_LIMIT", 200),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
		NATS: NATSConfig{
			URL:             getEnvString("NATS_URL", "nats://localhost:4222"),
			AudioSubject:    getEnvString("NATS_AUDIO_SUBJECT", "lingo.audio.utterances"),
			PlaybackSubject: getEnvString("NATS_PLAYBACK_SUBJECT", "lingo.audio.playback"),
			EventSubject:    getEnvString("NATS_EVENT_SUBJECT", "lingo.events"),
			MaxReconnect:    getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait:   getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.STT.Backend {
	case "rest":
		if c.STT.URL == "" {
			return fmt.Errorf("STT URL must be provided")
		}
	case "whisper":
		if c.STT.WhisperModel == "" {
			return fmt.Errorf("whisper model path must be provided")
		}
	default:
		return fmt.Errorf("unknown STT backend: %q", c.STT.Backend)
	}

	if c.Translate.URL == "" {
		return fmt.Errorf("translate URL must be provided")
	}

	if c.TTS.URL == "" {
		return fmt.Errorf("TTS URL must be provided")
	}

	if c.TTS.MaxConcurrent <= 0 {
		return fmt.Errorf("TTS max concurrent must be positive: %d", c.TTS.MaxConcurrent)
	}

	if c.TTS.Speed <= 0 {
		return fmt.Errorf("TTS speed must be positive: %f", c.TTS.Speed)
	}

	if c.Session.DefaultTargetLanguage == "" {
		return fmt.Errorf("default target language must be provided")
	}

	if c.Session.MaxUtterance <= 0 {
		return fmt.Errorf("max utterance duration must be positive: %v", c.Session.MaxUtterance)
	}

	if c.Session.FailureThreshold <= 0 {
		return fmt.Errorf("failure threshold must be positive: %d", c.Session.FailureThreshold)
	}

	if c.Session.ContextSize <= 0 {
		return fmt.Errorf("context size must be positive: %d", c.Session.ContextSize)
	}

	if c.Session.TurnLogLimit <= 0 {
		return fmt.Errorf("turn log limit must be positive: %d", c.Session.TurnLogLimit)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatValue)
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
