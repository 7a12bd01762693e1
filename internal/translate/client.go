/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

// translateRequest is the LibreTranslate-compatible request body. The
// context field is an extension our MT service accepts and plain
// LibreTranslate ignores.
type translateRequest struct {
	Q       string     `json:"q"`
	Source  string     `json:"source"`
	Target  string     `json:"target"`
	Format  string     `json:"format"`
	APIKey  string     `json:"api_key,omitempty"`
	Context []Exchange `json:"context,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// Client implements the Translator interface against a
// LibreTranslate-compatible machine translation service
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new machine translation client
func NewClient(cfg config.TranslateConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("translate URL cannot be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}

	logging.Sugar.Infow("Translation client initialized", "base_url", client.baseURL)
	return client, nil
}

// Translate implements the Translator interface
func (c *Client) Translate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", fmt.Errorf("empty text")
	}
	if req.SourceLang == "" || req.TargetLang == "" {
		return "", fmt.Errorf("source and target languages are required")
	}

	startTime := time.Now()

	body, err := json.Marshal(translateRequest{
		Q:       req.Text,
		Source:  req.SourceLang,
		Target:  req.TargetLang,
		Format:  "text",
		APIKey:  c.apiKey,
		Context: req.Context,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal translate request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translation HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var translateResp translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&translateResp); err != nil {
		return "", fmt.Errorf("failed to parse translation response: %w", err)
	}
	if translateResp.Error != "" {
		return "", fmt.Errorf("translation service error: %s", translateResp.Error)
	}

	logging.Sugar.Debugw("Translation completed",
		"source", req.SourceLang,
		"target", req.TargetLang,
		"context_entries", len(req.Context),
		"processing_time_ms", time.Since(startTime).Milliseconds(),
	)

	return translateResp.TranslatedText, nil
}

// Close cleans up resources
func (c *Client) Close() error {
	return nil
}
