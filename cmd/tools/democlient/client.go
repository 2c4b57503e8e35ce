package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zhouzirui/voicedesk/internal/model/chat"
)

// apiClient talks to a running voicedesk server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type healthResponse struct {
	Status     string          `json:"status"`
	DemoMode   bool            `json:"demo_mode"`
	Sessions   int             `json:"sessions"`
	Components map[string]bool `json:"components"`
	Backends   map[string]any  `json:"backends"`
}

type chatResponse struct {
	ConversationID string      `json:"conversation_id"`
	User           chat.Turn   `json:"user_message"`
	Assistant      chat.Turn   `json:"ai_response"`
	History        []chat.Turn `json:"conversation_history"`
}

type callResponse struct {
	Success  bool   `json:"success"`
	CallID   string `json:"call_id"`
	DemoMode bool   `json:"demo_mode"`
	Message  string `json:"message"`
}

func (c *apiClient) Health(ctx context.Context) (healthResponse, error) {
	var out healthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *apiClient) Chat(ctx context.Context, conversationID, text string) (chatResponse, error) {
	payload := map[string]string{"user_input": text}
	if conversationID != "" {
		payload["conversation_id"] = conversationID
	}
	var out chatResponse
	err := c.do(ctx, http.MethodPost, "/demo/chat", payload, &out)
	return out, err
}

func (c *apiClient) Call(ctx context.Context, phoneNumber string) (callResponse, error) {
	var out callResponse
	err := c.do(ctx, http.MethodPost, "/call", map[string]string{"phone_number": phoneNumber}, &out)
	return out, err
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
