// Package webhook holds clients for the externally hosted workflow
// endpoints: the conversational assistant and the contact-form intake.
// Both are collaborators, not part of this service's logic: request in,
// response out, no orchestration here.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Errors returned by webhook clients.
var (
	ErrUpstream    = errors.New("webhook request failed")
	ErrBadResponse = errors.New("webhook returned an unexpected response")
)

// ChatRequest is the payload sent to the chat workflow for one turn.
// Context is the server-authoritative conversation state: the UI ships back
// whatever it was last given, byte for byte.
type ChatRequest struct {
	Message   string          `json:"message"`
	Context   json.RawMessage `json:"context"`
	Timestamp string          `json:"timestamp"`
}

// ChatReply is one assistant turn. Context replaces the caller's copy
// wholesale; it is never merged with previous state.
type ChatReply struct {
	Response  string          `json:"response"`
	Status    string          `json:"status"`
	Context   json.RawMessage `json:"context"`
	Intents   []string        `json:"intents,omitempty"`
	LeadScore json.RawMessage `json:"leadScore,omitempty"`
}

// ChatClient posts conversation turns to the chat workflow webhook.
type ChatClient struct {
	url string
	hc  *http.Client
	now func() time.Time
}

// NewChatClient creates a chat client for the given webhook URL.
func NewChatClient(url string, hc *http.Client) *ChatClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &ChatClient{url: url, hc: hc, now: time.Now}
}

// Send posts one user message plus the opaque conversation context and
// returns the assistant's reply. Cancellation via ctx is reported as the
// context's error so callers can tell superseded requests from failures.
func (c *ChatClient) Send(ctx context.Context, message string, convContext json.RawMessage) (*ChatReply, error) {
	if convContext == nil {
		convContext = json.RawMessage(`{}`)
	}

	body, err := json.Marshal(ChatRequest{
		Message:   message,
		Context:   convContext,
		Timestamp: c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var reply ChatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return &reply, nil
}
