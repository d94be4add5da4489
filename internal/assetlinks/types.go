package assetlinks

import "strings"

// WellKnownPath is the path component of the Digital Asset Links well-known
// URL, as defined by the Android App Links specification.
const WellKnownPath = "/.well-known/assetlinks.json"

// HandleAllURLsRelation is the delegation tag a statement must carry for the
// target package to be considered an App Links handler for the domain.
const HandleAllURLsRelation = "delegate_permission/common.handle_all_urls"

// AndroidAppNamespace is the only target namespace valid for App Links statements.
const AndroidAppNamespace = "android_app"

// Status classifies the outcome of fetching and validating a trust file.
type Status string

const (
	StatusValid               Status = "valid"
	StatusInvalidJSON         Status = "invalid_json"
	StatusNotFound            Status = "not_found"
	StatusRedirect            Status = "redirect"
	StatusNetworkError        Status = "network_error"
	StatusFingerprintMismatch Status = "fingerprint_mismatch"
	StatusInvalidContentType  Status = "invalid_content_type"
)

// Severity is the weight of a validation issue
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// IssueCode identifies a specific validation problem
type IssueCode string

const (
	IssueInvalidJSONSyntax    IssueCode = "INVALID_JSON_SYNTAX"
	IssueWrongContentType     IssueCode = "WRONG_CONTENT_TYPE"
	IssueMissingRelation      IssueCode = "MISSING_RELATION"
	IssueMissingPackageName   IssueCode = "MISSING_PACKAGE_NAME"
	IssueMissingFingerprint   IssueCode = "MISSING_FINGERPRINT"
	IssueInvalidNamespace     IssueCode = "INVALID_NAMESPACE"
	IssueMultipleStatements   IssueCode = "MULTIPLE_STATEMENTS"
	IssueMultipleFingerprints IssueCode = "MULTIPLE_FINGERPRINTS"
	IssueFingerprintMismatch  IssueCode = "FINGERPRINT_MISMATCH"
	IssueRedirected           IssueCode = "REDIRECTED"
	IssueDNSResolutionFailed  IssueCode = "DNS_RESOLUTION_FAILED"
	IssueServedViaCDN         IssueCode = "SERVED_VIA_CDN"
	IssueUnexpectedStatus     IssueCode = "UNEXPECTED_HTTP_STATUS"
	IssueBodyReadFailed       IssueCode = "BODY_READ_FAILED"
	IssueConnectionFailed     IssueCode = "CONNECTION_FAILED"
)

// Issue is a single validation finding
type Issue struct {
	// Severity is the weight of the issue (ERROR/WARNING/INFO)
	Severity Severity `json:"severity"`
	// Code identifies the issue type
	Code IssueCode `json:"code"`
	// Message is a human-readable description of the issue
	Message string `json:"message"`
}

// Target identifies the app a statement endorses
type Target struct {
	// Namespace is the target namespace; must be "android_app" for App Links
	Namespace string `json:"namespace"`
	// PackageName is the Android application package the statement endorses
	PackageName string `json:"package_name"`
	// SHA256CertFingerprints lists the signing certificate fingerprints endorsed for the package
	SHA256CertFingerprints []string `json:"sha256_cert_fingerprints"`
}

// Statement is one entry of a trust file binding a relation set to a target
type Statement struct {
	// Relation lists the delegation tags granted to the target
	Relation []string `json:"relation"`
	// Target is the app the statement endorses
	Target Target `json:"target"`
}

// Content holds the parsed statement list of a trust file
type Content struct {
	// Statements is the ordered statement list as published
	Statements []Statement `json:"statements"`
}

// FingerprintsFor returns the certificate fingerprints declared for the given
// package across all statements that both target the package and carry the
// handle-all-URLs delegation tag.
func (c *Content) FingerprintsFor(packageName string) []string {
	if c == nil {
		return nil
	}

	var fingerprints []string

	for _, stmt := range c.Statements {
		if stmt.Target.PackageName != packageName {
			continue
		}

		if !hasRelation(stmt.Relation, HandleAllURLsRelation) {
			continue
		}

		fingerprints = append(fingerprints, stmt.Target.SHA256CertFingerprints...)
	}

	return fingerprints
}

// hasRelation reports whether the relation list contains the given tag
func hasRelation(relations []string, tag string) bool {
	for _, r := range relations {
		if strings.EqualFold(strings.TrimSpace(r), tag) {
			return true
		}
	}

	return false
}

// Validation is the complete outcome of one trust file fetch attempt.
// Exactly one Validation is produced per domain; all failure modes are
// representable here and never escape the validator as an error.
type Validation struct {
	// Domain is the domain whose trust file was fetched
	Domain string `json:"domain"`
	// SourceURL is the canonical well-known URL that was requested
	SourceURL string `json:"source_url"`
	// Status classifies the fetch and parse outcome
	Status Status `json:"status"`
	// Issues lists validation findings in discovery order
	Issues []Issue `json:"issues,omitempty"`
	// Content holds the parsed statements when the body parsed successfully
	Content *Content `json:"content,omitempty"`
	// RawBody is the response body as fetched, retained for debugging
	RawBody string `json:"raw_body,omitempty"`
	// RedirectChain lists intermediate URLs when the request was redirected
	RedirectChain []string `json:"redirect_chain,omitempty"`
}

// HasIssue reports whether the validation recorded an issue with the given code
func (v Validation) HasIssue(code IssueCode) bool {
	for _, issue := range v.Issues {
		if issue.Code == code {
			return true
		}
	}

	return false
}

// addIssue appends a validation finding
func (v *Validation) addIssue(severity Severity, code IssueCode, message string) {
	v.Issues = append(v.Issues, Issue{Severity: severity, Code: code, Message: message})
}
