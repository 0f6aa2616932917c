// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the chat-completions client used for optional
// gate-analysis enhancement, plus outbound redaction so source snippets
// never carry live credentials to the provider.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// Client generates completions. Implementations must be safe for
// concurrent use; the scan workers share one client.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// =============================================================================
// OpenAI-compatible wire types
// =============================================================================

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         *float32      `json:"temperature,omitempty"`
	MaxCompletionTokens *int          `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// =============================================================================
// Client implementation
// =============================================================================

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// using raw net/http. Local inference servers (llama.cpp, vLLM, Ollama)
// expose the same wire format, so one client covers all of them.
//
// Thread Safety: OpenAIClient is safe for concurrent use.
type OpenAIClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewOpenAIClientWithConfig creates a client with explicit configuration.
// An empty baseURL falls back to the OpenAI endpoint.
func NewOpenAIClientWithConfig(apiKey, model, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

// NewOpenAIClient creates a client from the environment.
//
// Description:
//
//	Reads HARDGATE_LLM_API_KEY, HARDGATE_LLM_MODEL, and
//	HARDGATE_LLM_BASE_URL. The key is required unless the base URL points
//	at a local server, which typically ignores authentication.
//
// Outputs:
//   - *OpenAIClient: The configured client.
//   - error: Non-nil when no key is set and no base URL overrides it.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("HARDGATE_LLM_API_KEY")
	model := os.Getenv("HARDGATE_LLM_MODEL")
	baseURL := os.Getenv("HARDGATE_LLM_BASE_URL")
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("llm: API key is missing (HARDGATE_LLM_API_KEY)")
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("HARDGATE_LLM_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing LLM client", "model", model)
	return NewOpenAIClientWithConfig(apiKey, model, baseURL), nil
}

// Complete implements Client with a single system+user exchange.
//
// Description:
//
//	Marshals a chat completions request, posts it, and returns the first
//	choice's content. The outbound user content is redacted before
//	leaving the process.
//
// Outputs:
//   - string: The model's reply content.
//   - error: Transport failure, non-2xx status, or an API-level error.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	temp := float32(0.2)
	maxTokens := 2048
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: SafeLogString(user)},
		},
		Temperature:         &temp,
		MaxCompletionTokens: &maxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm: status %d: %s", resp.StatusCode, SafeLogString(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm: api error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("llm: response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
