package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mommamia-caters/api/internal/enum"
)

// DefaultCacheTTL is the freshness window for the in-memory catalog cache.
const DefaultCacheTTL = 5 * time.Minute

// Errors returned by the menu client.
var (
	ErrUpstream    = errors.New("menu webhook request failed")
	ErrBadResponse = errors.New("menu webhook returned an unexpected response")
)

// envelope is the wire format of the menu webhook.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Timestamp string          `json:"timestamp"`
}

// Client fetches the catalog from the upstream menu webhook and keeps a
// single process-wide cache entry. Safe for concurrent use.
type Client struct {
	baseURL string
	hc      *http.Client
	ttl     time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	data      Data
	hasData   bool
	fetchedAt time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithTTL overrides the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithClock overrides the time source. Used by tests to control freshness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a menu client for the given webhook base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 10 * time.Second},
		ttl:     DefaultCacheTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetAll returns the full catalog. Serves the cache while fresh unless
// forceRefresh is set. On fetch failure it returns stale cached data if
// present, otherwise an empty catalog, always alongside the error, so
// callers can flag the degradation without losing data to render.
func (c *Client) GetAll(ctx context.Context, forceRefresh bool) (Data, error) {
	c.mu.RLock()
	if !forceRefresh && c.hasData && c.fresh() {
		data := c.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	var data Data
	if err := c.fetch(ctx, nil, &data); err != nil {
		c.mu.RLock()
		defer c.mu.RUnlock()
		if c.hasData {
			return c.data, err
		}
		return Data{}, err
	}

	c.mu.Lock()
	c.data = data
	c.hasData = true
	c.fetchedAt = c.now()
	c.mu.Unlock()

	return data, nil
}

// GetCategory returns one menu category's items. Tries the category-scoped
// endpoint first and falls back to filtering the full catalog.
func (c *Client) GetCategory(ctx context.Context, category enum.MenuCategory) (TypeData, error) {
	var data TypeData
	err := c.fetch(ctx, url.Values{"category": {string(category)}}, &data)
	if err == nil {
		return data, nil
	}

	all, allErr := c.GetAll(ctx, false)
	return all.ByCategory(category), allErr
}

// GetType returns one dish type's items across both menu categories.
func (c *Client) GetType(ctx context.Context, dishType enum.Category) (TypeSlices, error) {
	var data TypeSlices
	err := c.fetch(ctx, url.Values{"type": {string(dishType)}}, &data)
	if err == nil {
		return data, nil
	}

	all, allErr := c.GetAll(ctx, false)
	return TypeSlices{
		CheckALunch: all.CheckALunch.ByType(dishType),
		FunBoxes:    all.FunBoxes.ByType(dishType),
	}, allErr
}

// GetCategoryType returns the items for one menu category and dish type.
func (c *Client) GetCategoryType(ctx context.Context, category enum.MenuCategory, dishType enum.Category) ([]Item, error) {
	var data []Item
	err := c.fetch(ctx, url.Values{
		"category": {string(category)},
		"type":     {string(dishType)},
	}, &data)
	if err == nil {
		return data, nil
	}

	all, allErr := c.GetAll(ctx, false)
	return all.ByCategory(category).ByType(dishType), allErr
}

// Refresh asks the upstream workflow to rebuild its menu data, then drops the
// local cache so the next read fetches fresh data.
func (c *Client) Refresh(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"action": "refresh"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	c.Invalidate()
	return nil
}

// Invalidate drops the cached catalog.
func (c *Client) Invalidate() {
	c.mu.Lock()
	c.data = Data{}
	c.hasData = false
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
}

// Fresh reports whether the cache holds data inside the freshness window.
func (c *Client) Fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hasData && c.fresh()
}

// fresh must be called with the mutex held.
func (c *Client) fresh() bool {
	return c.now().Sub(c.fetchedAt) < c.ttl
}

// fetch performs a GET against the webhook with optional query params and
// decodes the envelope's data field into out.
func (c *Client) fetch(ctx context.Context, params url.Values, out interface{}) error {
	target := c.baseURL
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build menu request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if !env.Success || env.Data == nil {
		if env.Message != "" {
			return fmt.Errorf("%w: %s", ErrBadResponse, env.Message)
		}
		return ErrBadResponse
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}
