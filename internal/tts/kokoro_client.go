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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

// KokoroRequest represents a request to the Kokoro TTS API
type KokoroRequest struct {
	Model   string                 `json:"model"`
	Input   string                 `json:"input"`
	Voice   string                 `json:"voice"`
	Format  string                 `json:"response_format"`
	Speed   float32                `json:"speed,omitempty"`
	Options map[string]interface{} `json:"normalization_options,omitempty"`
}

// KokoroClient implements Synthesizer for Kokoro-82M TTS
type KokoroClient struct {
	baseURL   string
	client    *http.Client
	config    config.TTSConfig
	semaphore chan struct{} // Limits concurrent requests
}

// NewKokoroClient creates a new Kokoro TTS client
func NewKokoroClient(cfg config.TTSConfig) (*KokoroClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("Kokoro TTS URL cannot be empty")
	}

	kokoroClient := &KokoroClient{
		baseURL:   strings.TrimSuffix(cfg.URL, "/"),
		client:    &http.Client{Timeout: cfg.Timeout},
		config:    cfg,
		semaphore: make(chan struct{}, cfg.MaxConcurrent),
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("🔊 Kokoro TTS client initialized",
			"url", cfg.URL,
			"voice", cfg.Voice,
			"max_concurrent", cfg.MaxConcurrent,
		)
	}

	return kokoroClient, nil
}

// Synthesize converts text to speech using Kokoro-82M
func (k *KokoroClient) Synthesize(ctx context.Context, text string, options *Options) (*Result, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Acquire semaphore slot for concurrency control
	select {
	case k.semaphore <- struct{}{}:
		defer func() { <-k.semaphore }()
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("TTS synthesis queue full, request timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	startTime := time.Now()

	voice := k.config.Voice
	speed := k.config.Speed
	format := k.config.ResponseFormat
	normalize := k.config.Normalize

	if options != nil {
		if options.Voice != "" {
			voice = options.Voice
		}
		if options.Speed > 0 {
			speed = options.Speed
		}
		if options.ResponseFormat != "" {
			format = options.ResponseFormat
		}
		normalize = options.Normalize
	}

	request := KokoroRequest{
		Model:  "kokoro",
		Input:  text,
		Voice:  voice,
		Format: format,
		Speed:  speed,
	}

	if !normalize {
		request.Options = map[string]interface{}{
			"normalize": false,
		}
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}

	if logging.Logger != nil {
		logging.LogTTSOperation("synthesis_start",
			zap.String("voice", voice),
			zap.Int("text_length", len(text)),
			zap.String("format", format),
			zap.Float32("speed", speed),
		)
	}

	reqCtx := ctx
	if k.config.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, k.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, k.baseURL+"/audio/speech", bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")

	resp, err := k.client.Do(req)
	if err != nil {
		if logging.Logger != nil {
			logging.LogError(err, "Kokoro TTS HTTP request failed",
				zap.String("voice", voice),
				zap.Int("text_length", len(text)),
			)
		}
		return nil, fmt.Errorf("TTS HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if logging.Logger != nil {
			logging.LogWarn("Kokoro TTS request failed",
				zap.Int("status_code", resp.StatusCode),
				zap.String("response_body", string(body)),
			)
		}
		return nil, fmt.Errorf("TTS request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if logging.Logger != nil {
		logging.LogTTSOperation("synthesis_complete",
			zap.String("voice", voice),
			zap.Int("text_length", len(text)),
			zap.Duration("processing_time", time.Since(startTime)),
			zap.String("content_type", resp.Header.Get("Content-Type")),
			zap.Int64("content_length", resp.ContentLength),
		)
	}

	return &Result{
		Audio:       resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Length:      resp.ContentLength,
	}, nil
}

// Close cleans up resources
func (k *KokoroClient) Close() error {
	return nil
}
