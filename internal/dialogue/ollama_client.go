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

package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

// OllamaRequest represents a request to Ollama API
type OllamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaResponse represents a response from Ollama API
type OllamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaEngine implements Engine against an Ollama-compatible REST API
type OllamaEngine struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaEngine creates a dialogue engine backed by Ollama
func NewOllamaEngine(cfg config.DialogueConfig) (*OllamaEngine, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("dialogue engine URL cannot be empty")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("dialogue engine model cannot be empty")
	}

	engine := &OllamaEngine{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}

	if logging.Sugar != nil {
		logging.Sugar.Infow("💬 Dialogue engine initialized",
			"url", cfg.URL,
			"model", cfg.Model,
		)
	}

	return engine, nil
}

// Respond implements Engine
func (e *OllamaEngine) Respond(ctx context.Context, text, language string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("message text cannot be empty")
	}

	request := OllamaRequest{
		Model:  e.model,
		Prompt: buildPrompt(text, language),
		Stream: false,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making request to Ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}

	var ollamaResp OllamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}

	reply := strings.TrimSpace(ollamaResp.Response)
	if reply == "" {
		return "", fmt.Errorf("ollama returned an empty reply")
	}

	return reply, nil
}

// Close implements Engine
func (e *OllamaEngine) Close() error {
	return nil
}

func buildPrompt(text, language string) string {
	var prompt strings.Builder
	prompt.WriteString("You are a friendly voice assistant. Reply conversationally in one or two short sentences.")
	if language != "" {
		fmt.Fprintf(&prompt, " Reply in the language with ISO code %q.", language)
	}
	prompt.WriteString("\n\nUser: ")
	prompt.WriteString(text)
	prompt.WriteString("\nAssistant:")
	return prompt.String()
}
