// Package domain validates and decomposes host names before they are handed
// to the trust file validator.
package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Info contains parsed domain information
type Info struct {
	Domain    string `json:"domain"`
	Subdomain string `json:"subdomain,omitempty"`
	TLD       string `json:"tld"`
	SLD       string `json:"sld"`
}

// Parse normalizes a host string and decomposes it against the public suffix
// list. URLs are accepted and reduced to their host.
func Parse(input string) (*Info, error) {
	input = strings.ToLower(strings.TrimSpace(input))

	if strings.Contains(input, "://") {
		u, err := url.Parse(input)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
		}

		input = u.Host
	}

	// Strip a port if present
	if idx := strings.LastIndex(input, ":"); idx != -1 {
		input = input[:idx]
	}

	if input == "" || !strings.Contains(input, ".") {
		return nil, ErrInvalidDomain
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoPublicSuffix, err)
	}

	tld, _ := publicsuffix.PublicSuffix(input)
	sld := strings.TrimSuffix(etld1, "."+tld)

	subdomain := ""
	if etld1 != input {
		subdomain = strings.TrimSuffix(input, "."+etld1)
	}

	return &Info{
		Domain:    input,
		Subdomain: subdomain,
		TLD:       tld,
		SLD:       sld,
	}, nil
}
