package assetlinks

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodTrustFile = `[{
  "relation": ["delegate_permission/common.handle_all_urls"],
  "target": {
    "namespace": "android_app",
    "package_name": "com.example.app",
    "sha256_cert_fingerprints": ["AA:BB:CC:DD"]
  }
}]`

// newFixtureValidator wires a validator at an httptest server. The server's
// host:port stands in for the domain, and the scheme is dropped to plain HTTP
// so no TLS fixtures are needed.
func newFixtureValidator(t *testing.T, handler http.HandlerFunc) (*Validator, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v := NewValidator(
		WithScheme("http"),
		WithHTTPClient(srv.Client()),
		// Unroutable resolver keeps classification probes off the network;
		// an unreachable resolver is treated as inconclusive.
		WithDNSServer("127.0.0.1:1"),
	)

	return v, strings.TrimPrefix(srv.URL, "http://")
}

func wellKnownHandler(t *testing.T, status int, contentType, body string) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, WellKnownPath, r.URL.Path)

		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}

		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestValidate_Valid(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", goodTrustFile))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusValid, result.Status)
	require.NotNil(t, result.Content)
	require.Len(t, result.Content.Statements, 1)
	assert.Equal(t, []string{"AA:BB:CC:DD"}, result.Content.FingerprintsFor("com.example.app"))
	assert.Empty(t, result.RedirectChain)

	for _, issue := range result.Issues {
		assert.NotEqual(t, SeverityError, issue.Severity, "valid file must carry no error issues: %+v", issue)
	}
}

func TestValidate_NotFound(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusNotFound, "text/plain", "nothing here"))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusNotFound, result.Status)
	assert.Nil(t, result.Content)
}

func TestValidate_InvalidJSON(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", "{not json"))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusInvalidJSON, result.Status)
	assert.True(t, result.HasIssue(IssueInvalidJSONSyntax))
	assert.Nil(t, result.Content)
	assert.NotEmpty(t, result.RawBody, "raw body retained for debugging")
}

func TestValidate_ObjectInsteadOfList(t *testing.T) {
	// A single statement object is not a statement list
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", `{"relation": []}`))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusInvalidJSON, result.Status)
}

func TestValidate_WrongContentType(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "text/html", goodTrustFile))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusInvalidContentType, result.Status)
	assert.True(t, result.HasIssue(IssueWrongContentType))
	// Content is still usable despite the header problem
	require.NotNil(t, result.Content)
	assert.Len(t, result.Content.Statements, 1)
}

func TestValidate_Redirect(t *testing.T) {
	var addr string

	mux := http.NewServeMux()
	mux.HandleFunc(WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, fmt.Sprintf("http://%s/real.json", addr), http.StatusMovedPermanently)
	})
	mux.HandleFunc("/real.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, goodTrustFile)
	})

	v, domain := newFixtureValidator(t, mux.ServeHTTP)
	addr = domain

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusRedirect, result.Status)
	assert.True(t, result.HasIssue(IssueRedirected))
	assert.NotEmpty(t, result.RedirectChain)
	// The final body is still parsed and surfaced for fingerprint comparison
	require.NotNil(t, result.Content)
	assert.Len(t, result.Content.Statements, 1)
}

func TestValidate_NetworkError(t *testing.T) {
	// A closed port makes the fetch fail at the transport layer
	srv := httptest.NewServer(http.NotFoundHandler())
	domain := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	v := NewValidator(WithScheme("http"), WithDNSServer("127.0.0.1:1"))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusNetworkError, result.Status)
	assert.True(t, result.HasIssue(IssueConnectionFailed))
	assert.Nil(t, result.Content)
}

func TestValidate_ServerError(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusInternalServerError, "text/plain", "boom"))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusNetworkError, result.Status)
	assert.True(t, result.HasIssue(IssueUnexpectedStatus))
}

func TestValidate_StatementIssues(t *testing.T) {
	body := `[
  {"target": {"namespace": "android_app", "package_name": "com.example.app", "sha256_cert_fingerprints": ["AA", "BB"]}},
  {"relation": ["delegate_permission/common.handle_all_urls"], "target": {"namespace": "web", "sha256_cert_fingerprints": []}}
]`

	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", body))

	result := v.Validate(context.Background(), domain)

	assert.Equal(t, StatusValid, result.Status)
	assert.True(t, result.HasIssue(IssueMissingRelation))
	assert.True(t, result.HasIssue(IssueMissingPackageName))
	assert.True(t, result.HasIssue(IssueMissingFingerprint))
	assert.True(t, result.HasIssue(IssueInvalidNamespace))
	assert.True(t, result.HasIssue(IssueMultipleStatements))
	assert.True(t, result.HasIssue(IssueMultipleFingerprints))
}

func TestValidateForPackage_Mismatch(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", goodTrustFile))

	result := v.ValidateForPackage(context.Background(), domain, "com.example.app", "11:22:33:44")

	assert.Equal(t, StatusFingerprintMismatch, result.Status)
	assert.True(t, result.HasIssue(IssueFingerprintMismatch))
}

func TestValidateForPackage_MatchKeepsStatus(t *testing.T) {
	v, domain := newFixtureValidator(t, wellKnownHandler(t, http.StatusOK, "application/json", goodTrustFile))

	// Same fingerprint, lowercased and unseparated
	result := v.ValidateForPackage(context.Background(), domain, "com.example.app", "aabbccdd")

	assert.Equal(t, StatusValid, result.Status)
	assert.False(t, result.HasIssue(IssueFingerprintMismatch))
}

func TestFingerprintsFor_RelationAndPackageGated(t *testing.T) {
	content := &Content{Statements: []Statement{
		{
			Relation: []string{HandleAllURLsRelation},
			Target:   Target{Namespace: AndroidAppNamespace, PackageName: "com.a", SHA256CertFingerprints: []string{"AA"}},
		},
		{
			Relation: []string{"delegate_permission/common.get_login_creds"},
			Target:   Target{Namespace: AndroidAppNamespace, PackageName: "com.a", SHA256CertFingerprints: []string{"BB"}},
		},
		{
			Relation: []string{HandleAllURLsRelation},
			Target:   Target{Namespace: AndroidAppNamespace, PackageName: "com.b", SHA256CertFingerprints: []string{"CC"}},
		},
	}}

	assert.Equal(t, []string{"AA"}, content.FingerprintsFor("com.a"))
	assert.Equal(t, []string{"CC"}, content.FingerprintsFor("com.b"))
	assert.Empty(t, content.FingerprintsFor("com.c"))

	var nilContent *Content

	assert.Empty(t, nilContent.FingerprintsFor("com.a"))
}

func TestWellKnownURL(t *testing.T) {
	v := NewValidator()

	assert.Equal(t, "https://example.com/.well-known/assetlinks.json", v.WellKnownURL("example.com"))
}
