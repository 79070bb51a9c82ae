// Package webhook posts JSON event payloads to a configured HTTP endpoint,
// typically a chat-channel incoming webhook watched by the lab staff.
package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/JASIELAB/CULTUREMEDIA/internal/config"
)

// Client is a thin resty wrapper around the webhook endpoint.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient builds the webhook client from configuration.
func NewClient(cfg config.NotifyConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: resty.New().SetTimeout(timeout),
		url:  cfg.WebhookURL,
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// Post sends one JSON payload. The caller decides whether a failure matters.
func (c *Client) Post(ctx context.Context, payload interface{}) error {
	if !c.Enabled() {
		return nil
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
