package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ContactMessage is one submission of the contact form.
type ContactMessage struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Topic     string `json:"topic"`
	Message   string `json:"message"`
}

// ContactClient forwards contact-form submissions to the intake webhook.
type ContactClient struct {
	url string
	hc  *http.Client
}

// NewContactClient creates a contact client for the given webhook URL.
func NewContactClient(url string, hc *http.Client) *ContactClient {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &ContactClient{url: url, hc: hc}
}

// Send forwards one submission. Any 2xx status counts as delivered.
func (c *ContactClient) Send(ctx context.Context, msg ContactMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal contact message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return nil
}
