/*
Copyright (c) 2025 Lingo Labs

Licensed under the AGPLv3 License.
This file is part of the lingo-hub.
*/

package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/lingolabs/lingo-hub/internal/audio"
	"github.com/lingolabs/lingo-hub/internal/config"
	"github.com/lingolabs/lingo-hub/internal/logging"
)

// Client implements the Transcriber interface using REST API calls
// to any OpenAI-compatible Speech-to-Text service
type Client struct {
	baseURL     string
	temperature float32
	httpClient  *http.Client
}

// OpenAI-compatible verbose_json response struct
type transcriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// NewClient creates a new OpenAI-compatible STT client
func NewClient(cfg config.STTConfig) (*Client, error) {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = "http://localhost:8000" // Default STT service address
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &Client{
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
	}

	// Test connection with health check
	if err := client.healthCheck(); err != nil {
		return nil, fmt.Errorf("STT service health check failed: %w", err)
	}

	logging.Sugar.Infow("Connected to STT REST service", "base_url", baseURL)

	return client, nil
}

// healthCheck verifies the service is running
func (c *Client) healthCheck() error {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return fmt.Errorf("failed to connect to STT service at %s: %w", c.baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("STT service health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// Transcribe implements the Transcriber interface
func (c *Client) Transcribe(ctx context.Context, utterance audio.Utterance) (Result, error) {
	if len(utterance.Samples) == 0 {
		return Result{}, fmt.Errorf("empty audio data")
	}

	if utterance.SampleRate <= 0 {
		return Result{}, fmt.Errorf("invalid sample rate: %d", utterance.SampleRate)
	}

	startTime := time.Now()
	requestID := fmt.Sprintf("req_%d", startTime.UnixNano())

	logging.Sugar.Debugw("Sending transcription request",
		"request_id", requestID,
		"stream_id", utterance.StreamID,
		"samples", len(utterance.Samples),
		"sample_rate", utterance.SampleRate,
	)

	wavData := float32ToWAV(utterance.Samples, utterance.SampleRate)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	audioWriter, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return Result{}, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := audioWriter.Write(wavData); err != nil {
		return Result{}, fmt.Errorf("failed to write audio data: %w", err)
	}

	// verbose_json carries the detected language alongside the text
	_ = writer.WriteField("model", "tiny")
	_ = writer.WriteField("language", "") // Auto-detect
	_ = writer.WriteField("temperature", strconv.FormatFloat(float64(c.temperature), 'f', -1, 32))
	_ = writer.WriteField("response_format", "verbose_json")

	contentType := writer.FormDataContentType()
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/audio/transcriptions", &requestBody)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("transcription HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("transcription failed with status %d: %s", resp.StatusCode, string(body))
	}

	var transcriptionResp transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&transcriptionResp); err != nil {
		return Result{}, fmt.Errorf("failed to parse transcription response: %w", err)
	}

	logging.Sugar.Infow("Transcription completed",
		"request_id", requestID,
		"processing_time_ms", time.Since(startTime).Milliseconds(),
		"text_length", len(transcriptionResp.Text),
		"language", transcriptionResp.Language,
	)

	return Result{
		Text:     transcriptionResp.Text,
		Language: transcriptionResp.Language,
	}, nil
}

// float32ToWAV converts float32 audio samples to WAV format bytes
func float32ToWAV(samples []float32, sampleRate int) []byte {
	// Simple WAV header for 32-bit float PCM
	numSamples := len(samples)
	dataSize := numSamples * 4 // 4 bytes per float32 sample
	fileSize := 36 + dataSize

	var buf bytes.Buffer

	buf.WriteString("RIFF")
	buf.Write([]byte{byte(fileSize), byte(fileSize >> 8), byte(fileSize >> 16), byte(fileSize >> 24)})
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	buf.Write([]byte{16, 0, 0, 0}) // Subchunk1Size (16 for PCM)
	buf.Write([]byte{3, 0})        // AudioFormat (3 = IEEE float)
	buf.Write([]byte{1, 0})        // NumChannels (1 = mono)
	buf.Write([]byte{byte(sampleRate), byte(sampleRate >> 8), byte(sampleRate >> 16), byte(sampleRate >> 24)})
	byteRate := sampleRate * 4
	buf.Write([]byte{byte(byteRate), byte(byteRate >> 8), byte(byteRate >> 16), byte(byteRate >> 24)})
	buf.Write([]byte{4, 0})  // BlockAlign
	buf.Write([]byte{32, 0}) // BitsPerSample (32 for float32)
	buf.WriteString("data")
	buf.Write([]byte{byte(dataSize), byte(dataSize >> 8), byte(dataSize >> 16), byte(dataSize >> 24)})

	for _, sample := range samples {
		bits := math.Float32bits(sample)
		binaryData := make([]byte, 4)
		binary.LittleEndian.PutUint32(binaryData, bits)
		buf.Write(binaryData)
	}

	return buf.Bytes()
}

// Close cleans up resources
func (c *Client) Close() error {
	logging.Sugar.Infow("Closing STT client", "base_url", c.baseURL)
	return nil
}
