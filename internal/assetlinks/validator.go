package assetlinks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/projectdiscovery/cdncheck"
	"github.com/rs/zerolog/log"
	"github.com/theopenlane/httpsling"
)

const (
	// defaultRequestTimeout bounds a single trust file fetch. Android's own
	// verifier gives up well under this, so anything slower is effectively broken.
	defaultRequestTimeout = 10 * time.Second
	// defaultMaxRedirects is the maximum redirect hops followed while still
	// recording the chain. App Links verification rejects redirected trust
	// files, so this exists only to reach the final body for inspection.
	defaultMaxRedirects = 5
	// defaultDNSServer is the resolver used for failure sub-classification probes
	defaultDNSServer = "8.8.8.8:53"
	// defaultDNSTimeout is the per-query timeout for classification probes
	defaultDNSTimeout = 3 * time.Second
	// defaultUserAgent identifies trust file fetches in server logs
	defaultUserAgent = "linkops/1.0 (App Links diagnostics)"
	// maxBodyBytes caps the trust file body read (trust files are tiny; 1MB is generous)
	maxBodyBytes = 1 << 20
	// jsonContentType is the content type a trust file must be served with
	jsonContentType = "application/json"
)

// Validator fetches and validates Digital Asset Links trust files.
// It never returns an error from Validate: every transport and body outcome
// maps to exactly one Validation value.
type Validator struct {
	httpClient   *http.Client
	dnsClient    *dns.Client
	cdnClient    *cdncheck.Client
	dnsServer    string
	scheme       string
	userAgent    string
	maxRedirects int
}

// Option configures the Validator
type Option func(*Validator)

// WithHTTPClient overrides the HTTP client used for trust file fetches
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithTimeout overrides the per-fetch timeout
func WithTimeout(timeout time.Duration) Option {
	return func(v *Validator) {
		if timeout > 0 {
			v.httpClient.Timeout = timeout
		}
	}
}

// WithDNSServer overrides the resolver used for network error classification
func WithDNSServer(server string) Option {
	return func(v *Validator) {
		if server != "" {
			v.dnsServer = server
		}
	}
}

// WithMaxRedirects overrides the redirect hop limit
func WithMaxRedirects(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxRedirects = n
		}
	}
}

// WithScheme overrides the URL scheme. App Links verification is HTTPS-only;
// this exists for tests exercising the validator against local fixtures.
func WithScheme(scheme string) Option {
	return func(v *Validator) {
		if scheme != "" {
			v.scheme = scheme
		}
	}
}

// NewValidator creates a trust file validator
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		httpClient:   &http.Client{Timeout: defaultRequestTimeout},
		dnsClient:    &dns.Client{Timeout: defaultDNSTimeout},
		cdnClient:    cdncheck.New(),
		dnsServer:    defaultDNSServer,
		scheme:       "https",
		userAgent:    defaultUserAgent,
		maxRedirects: defaultMaxRedirects,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// WellKnownURL returns the canonical trust file URL for a domain
func (v *Validator) WellKnownURL(domain string) string {
	return fmt.Sprintf("%s://%s%s", v.scheme, domain, WellKnownPath)
}

// Validate fetches the trust file for the domain and classifies the outcome.
// This is a total classification: connection failures, bad status codes,
// redirects, unparsable bodies, and statement-level problems all come back as
// a Validation value, never as an error.
func (v *Validator) Validate(ctx context.Context, domain string) Validation {
	result := Validation{
		Domain:    domain,
		SourceURL: v.WellKnownURL(domain),
	}

	var chain []string

	// Per-call shallow copy so the redirect chain capture stays local to this fetch
	client := *v.httpClient
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= v.maxRedirects {
			return http.ErrUseLastResponse
		}

		chain = append(chain, req.URL.String())

		return nil
	}

	requester := httpsling.MustNew(
		httpsling.URL(result.SourceURL),
		httpsling.Get(),
		httpsling.Header("User-Agent", v.userAgent),
		httpsling.Header("Accept", jsonContentType),
		httpsling.WithDoer(&client),
	)

	resp, err := requester.SendWithContext(ctx)
	if err != nil {
		return v.classifyTransportError(ctx, result, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	result.RedirectChain = chain

	if resp.StatusCode == http.StatusNotFound {
		result.Status = StatusNotFound
		return result
	}

	// A 3xx final response means the hop limit stopped the client mid-chain
	if resp.StatusCode >= http.StatusMultipleChoices && resp.StatusCode < http.StatusBadRequest {
		result.Status = StatusRedirect
		result.addIssue(SeverityError, IssueRedirected, fmt.Sprintf("trust file fetch exceeded %d redirect hops", v.maxRedirects))

		return result
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		result.Status = StatusNetworkError
		result.addIssue(SeverityError, IssueUnexpectedStatus, fmt.Sprintf("unexpected HTTP status %d fetching %s", resp.StatusCode, result.SourceURL))

		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		result.Status = StatusNetworkError
		result.addIssue(SeverityError, IssueBodyReadFailed, fmt.Sprintf("reading trust file body: %v", err))

		return result
	}

	result.RawBody = string(body)

	wrongContentType := false

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), jsonContentType) {
		wrongContentType = true

		result.addIssue(SeverityWarning, IssueWrongContentType, fmt.Sprintf("trust file served with content type %q, expected %q", ct, jsonContentType))
	}

	var statements []Statement
	if err := json.Unmarshal(body, &statements); err != nil {
		result.Status = StatusInvalidJSON
		result.addIssue(SeverityError, IssueInvalidJSONSyntax, fmt.Sprintf("trust file is not a valid JSON statement list: %v", err))

		return result
	}

	result.Content = &Content{Statements: statements}

	v.validateStatements(&result, statements)
	v.annotateCDN(ctx, &result)

	switch {
	case len(chain) > 0:
		// Android's verifier refuses redirected trust files, so a redirect is
		// reported ahead of an otherwise valid body.
		result.Status = StatusRedirect
		result.addIssue(SeverityWarning, IssueRedirected, fmt.Sprintf("trust file fetch was redirected %d time(s); App Links verification requires a direct HTTP 200", len(chain)))
	case wrongContentType:
		result.Status = StatusInvalidContentType
	default:
		result.Status = StatusValid
	}

	return result
}

// ValidateForPackage validates the domain's trust file and additionally checks
// the declared fingerprints for the package against an expected fingerprint.
// A declared-but-unmatched fingerprint narrows the status to fingerprint_mismatch.
func (v *Validator) ValidateForPackage(ctx context.Context, domain, packageName, expectedFingerprint string) Validation {
	result := v.Validate(ctx, domain)

	if result.Content == nil || packageName == "" || expectedFingerprint == "" {
		return result
	}

	declared := result.Content.FingerprintsFor(packageName)
	if len(declared) == 0 {
		return result
	}

	want := normalizeHex(expectedFingerprint)
	for _, fp := range declared {
		if normalizeHex(fp) == want {
			return result
		}
	}

	result.Status = StatusFingerprintMismatch
	result.addIssue(SeverityError, IssueFingerprintMismatch, fmt.Sprintf("none of the %d fingerprint(s) declared for %s match the expected certificate fingerprint", len(declared), packageName))

	return result
}

// validateStatements appends statement-level findings to the validation
func (v *Validator) validateStatements(result *Validation, statements []Statement) {
	if len(statements) > 1 {
		result.addIssue(SeverityInfo, IssueMultipleStatements, fmt.Sprintf("trust file declares %d statements", len(statements)))
	}

	for i, stmt := range statements {
		if len(stmt.Relation) == 0 {
			result.addIssue(SeverityError, IssueMissingRelation, fmt.Sprintf("statement %d has no relation list", i))
		}

		if stmt.Target.PackageName == "" {
			result.addIssue(SeverityError, IssueMissingPackageName, fmt.Sprintf("statement %d has no target package name", i))
		}

		if len(stmt.Target.SHA256CertFingerprints) == 0 {
			result.addIssue(SeverityError, IssueMissingFingerprint, fmt.Sprintf("statement %d declares no certificate fingerprints", i))
		}

		if stmt.Target.Namespace != AndroidAppNamespace {
			result.addIssue(SeverityError, IssueInvalidNamespace, fmt.Sprintf("statement %d has namespace %q, expected %q", i, stmt.Target.Namespace, AndroidAppNamespace))
		}

		if len(stmt.Target.SHA256CertFingerprints) > 1 {
			result.addIssue(SeverityInfo, IssueMultipleFingerprints, fmt.Sprintf("statement %d declares %d fingerprints for %s", i, len(stmt.Target.SHA256CertFingerprints), stmt.Target.PackageName))
		}
	}
}

// classifyTransportError maps a fetch error to a network_error validation,
// sub-classifying DNS problems so the analyzer can suggest the right fix.
func (v *Validator) classifyTransportError(ctx context.Context, result Validation, fetchErr error) Validation {
	result.Status = StatusNetworkError
	result.addIssue(SeverityError, IssueConnectionFailed, fmt.Sprintf("fetching %s: %v", result.SourceURL, fetchErr))

	var dnsErr *net.DNSError
	if errors.As(fetchErr, &dnsErr) || !v.domainResolves(ctx, result.Domain) {
		result.addIssue(SeverityError, IssueDNSResolutionFailed, fmt.Sprintf("%s does not resolve", result.Domain))
	}

	return result
}

// domainResolves probes the domain with an A query against the configured resolver
func (v *Validator) domainResolves(ctx context.Context, domain string) bool {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := v.dnsClient.ExchangeContext(ctx, msg, v.dnsServer)
	if err != nil || resp == nil {
		// Resolver unreachable: inconclusive, don't claim a DNS failure
		return true
	}

	return len(resp.Answer) > 0
}

// annotateCDN records an informational issue when the domain is fronted by a
// CDN, since a stale CDN cache is a common reason a freshly published trust
// file still fails verification.
func (v *Validator) annotateCDN(ctx context.Context, result *Validation) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(result.Domain), dns.TypeA)
	msg.RecursionDesired = true

	resp, _, err := v.dnsClient.ExchangeContext(ctx, msg, v.dnsServer)
	if err != nil || resp == nil {
		return
	}

	for _, rr := range resp.Answer {
		a, ok := rr.(*dns.A)
		if !ok {
			continue
		}

		matched, provider, _, checkErr := v.cdnClient.Check(a.A)
		if checkErr != nil || !matched || provider == "" {
			continue
		}

		log.Debug().Str("domain", result.Domain).Str("provider", provider).Msg("trust file host is CDN-fronted")
		result.addIssue(SeverityInfo, IssueServedViaCDN, fmt.Sprintf("%s is served via %s; a cached copy of the trust file may lag behind the published one", result.Domain, provider))

		return
	}
}

// normalizeHex uppercases a fingerprint and strips colon separators
func normalizeHex(fingerprint string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fingerprint), ":", ""))
}
