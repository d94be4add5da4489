// Package notify posts diagnostic summaries to a Slack webhook when a run
// finds failing domains.
package notify

import (
	"net/http"
	"time"
)

// defaultRequestTimeout bounds one webhook delivery
const defaultRequestTimeout = 10 * time.Second

// Client delivers messages to a Slack incoming webhook
type Client struct {
	webhookURL string
	httpClient *http.Client
}

// Option configures the Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for webhook deliveries
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a webhook client
func New(webhookURL string, opts ...Option) (*Client, error) {
	if webhookURL == "" {
		return nil, ErrMissingWebhookURL
	}

	c := &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
