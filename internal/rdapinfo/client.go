// Package rdapinfo probes domain registration via RDAP. The engine uses it to
// tell an unregistered domain apart from one with broken DNS when a trust file
// fetch fails to resolve.
package rdapinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	rdaplib "github.com/openrdap/rdap"
)

// defaultTimeout bounds one RDAP query
const defaultTimeout = 15 * time.Second

// Client wraps the openrdap library for registration probes
type Client struct {
	rdapClient *rdaplib.Client
	timeout    time.Duration
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for RDAP queries
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.rdapClient.HTTP = httpClient
		}
	}
}

// WithTimeout overrides the per-query timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient creates an RDAP registration probe client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		rdapClient: &rdaplib.Client{},
		timeout:    defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Registered reports whether the domain exists in its registry. A definitive
// object-does-not-exist answer is (false, nil); transport or bootstrap
// problems are errors so callers can treat them as inconclusive.
func (c *Client) Registered(ctx context.Context, domain string) (bool, error) {
	domain = strings.TrimSpace(strings.ToLower(domain))
	if domain == "" {
		return false, ErrEmptyDomain
	}

	req := &rdaplib.Request{
		Type:    rdaplib.DomainRequest,
		Query:   domain,
		Timeout: c.timeout,
	}

	req = req.WithContext(ctx)

	_, err := c.rdapClient.Do(req)
	if err != nil {
		var clientErr *rdaplib.ClientError
		if errors.As(err, &clientErr) && clientErr.Type == rdaplib.ObjectDoesNotExist {
			return false, nil
		}

		return false, fmt.Errorf("RDAP query for %s: %w", domain, err)
	}

	return true, nil
}
