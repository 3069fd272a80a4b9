// Package render speaks the JSON contract of the headless rendering
// service. The parser treats the service as an opaque, possibly-slow,
// possibly-failing collaborator.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is the rendering service contract.
type Request struct {
	URL             string `json:"url"`
	UseStealth      bool   `json:"use_stealth"`
	RenderJS        bool   `json:"render_js"`
	Timeout         int    `json:"timeout"`
	WaitForSelector string `json:"wait_for_selector,omitempty"`
}

// Response carries the rendered page back.
type Response struct {
	Content    string `json:"content"`
	StatusCode int    `json:"status_code"`
}

type Client struct {
	baseURL string
	http    *http.Client
	// Timeout passed to the service, in milliseconds.
	renderTimeoutMs int
}

// New builds a client for the rendering service at baseURL. The HTTP
// timeout leaves headroom over the render timeout itself.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:         baseURL,
		http:            &http.Client{Timeout: timeout},
		renderTimeoutMs: 60000,
	}
}

// Render asks the service to load url with JS execution and stealth mode.
// waitForSelector is optional.
func (c *Client) Render(ctx context.Context, url, waitForSelector string) (*Response, error) {
	payload, err := json.Marshal(Request{
		URL:             url,
		UseStealth:      true,
		RenderJS:        true,
		Timeout:         c.renderTimeoutMs,
		WaitForSelector: waitForSelector,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("render service HTTP %d: %s", resp.StatusCode, body)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}
	if out.Content == "" {
		return nil, fmt.Errorf("render service returned empty content")
	}
	return &out, nil
}
