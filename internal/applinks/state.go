// Package applinks implements the App Links verification diagnostics engine:
// it queries a device for its reported domain verification state in an OS
// generation aware way, cross-checks every claimed domain against the
// published assetlinks.json trust file, and classifies failures into
// actionable reasons.
package applinks

import (
	"github.com/samber/lo"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
)

// OsGeneration distinguishes the two incompatible generations of Android's
// domain verification subsystem. The split point is SDK 31, where the legacy
// intent filter verifier was replaced by the domain verification service.
type OsGeneration string

const (
	// GenerationLegacy covers API levels up to and including 30
	GenerationLegacy OsGeneration = "legacy"
	// GenerationModern covers API levels 31 and above
	GenerationModern OsGeneration = "modern"
)

// modernAPIFloor is the first API level of the modern verification subsystem
const modernAPIFloor = 31

// GenerationFor maps an API level to its verification subsystem generation
func GenerationFor(apiLevel int) OsGeneration {
	if apiLevel >= modernAPIFloor {
		return GenerationModern
	}

	return GenerationLegacy
}

// DomainVerificationState is the normalized verification state of one claimed
// domain. Both OS generations' native vocabularies map into this single enum:
// modern verified/none and legacy always/never/failure.
type DomainVerificationState string

const (
	StateVerified      DomainVerificationState = "verified"
	StateApproved      DomainVerificationState = "approved"
	StateDenied        DomainVerificationState = "denied"
	StateUnverified    DomainVerificationState = "unverified"
	StateLegacyFailure DomainVerificationState = "legacy_failure"
	StateUnknown       DomainVerificationState = "unknown"
)

// IsSuccessful reports whether the state means the domain opens in the app
func (s DomainVerificationState) IsSuccessful() bool {
	return s == StateVerified || s == StateApproved
}

// DomainRecord is the device-reported verification state of one claimed domain
type DomainRecord struct {
	// Domain is the claimed host
	Domain string `json:"domain"`
	// State is the normalized verification state
	State DomainVerificationState `json:"state"`
	// Fingerprint is the signing certificate fingerprint the device reported,
	// when the dump carried one. Legacy dumps never do.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// AppLinkProfile is the per-package unit a parser produces: the package name
// and the ordered list of domains it claims. A package with App Links
// configured but zero domains still yields a profile with an empty list.
type AppLinkProfile struct {
	// PackageName is the Android application package
	PackageName string `json:"package_name"`
	// Domains lists the claimed domains in dump order
	Domains []DomainRecord `json:"domains"`
}

// ComparisonOutcome is the closed set of fingerprint comparison verdicts
type ComparisonOutcome string

const (
	ComparisonMatch               ComparisonOutcome = "match"
	ComparisonMismatch            ComparisonOutcome = "mismatch"
	ComparisonNoLocalFingerprint  ComparisonOutcome = "no_local_fingerprint"
	ComparisonRemoteUnavailable   ComparisonOutcome = "remote_unavailable"
	ComparisonNoRemoteFingerprint ComparisonOutcome = "no_remote_fingerprint"
)

// FingerprintComparison is the join point between device state and trust file
// state for one domain. Exactly one outcome holds; Local and Remote are only
// populated for a mismatch.
type FingerprintComparison struct {
	// Outcome is the comparison verdict
	Outcome ComparisonOutcome `json:"outcome"`
	// Local is the device-reported fingerprint, present on mismatch
	Local string `json:"local,omitempty"`
	// Remote lists the fingerprints declared for the package, present on mismatch
	Remote []string `json:"remote,omitempty"`
}

// FailureReason identifies one root cause of a failing domain
type FailureReason string

const (
	ReasonAssetLinksMissing      FailureReason = "asset_links_missing"
	ReasonAssetLinksInvalidJSON  FailureReason = "asset_links_invalid_json"
	ReasonAssetLinksNetworkError FailureReason = "asset_links_network_error"
	ReasonDNSFailure             FailureReason = "dns_failure"
	ReasonAssetLinksRedirect     FailureReason = "asset_links_redirect"
	ReasonFingerprintMismatch    FailureReason = "fingerprint_mismatch"
	ReasonPackageNotInAssetLinks FailureReason = "package_not_in_asset_links"
	ReasonUnknown                FailureReason = "unknown"
)

// DomainDiagnostic is the complete per-domain diagnosis
type DomainDiagnostic struct {
	// Domain is the claimed host
	Domain string `json:"domain"`
	// State is the device-reported verification state
	State DomainVerificationState `json:"state"`
	// Fingerprint is the fingerprint comparison verdict for this domain
	Fingerprint FingerprintComparison `json:"fingerprint"`
	// TrustStatus classifies the trust file fetch outcome
	TrustStatus assetlinks.Status `json:"trust_status"`
	// TrustIssues lists the trust file validation findings
	TrustIssues []assetlinks.Issue `json:"trust_issues,omitempty"`
	// FailureReasons lists the diagnosed root causes in rule order
	FailureReasons []FailureReason `json:"failure_reasons,omitempty"`
	// Suggestions lists advisory remediation text, parallel to the reasons
	Suggestions []string `json:"suggestions,omitempty"`
}

// HasIssues reports whether the domain has at least one diagnosed failure
func (d DomainDiagnostic) HasIssues() bool {
	return len(d.FailureReasons) > 0
}

// DiagnosticsReport is the assembled outcome of one diagnostic run
type DiagnosticsReport struct {
	// PackageName is the diagnosed package
	PackageName string `json:"package_name"`
	// DeviceID is the device serial the diagnosis ran against
	DeviceID string `json:"device_id"`
	// Domains lists the per-domain diagnostics in the order the device reported them
	Domains []DomainDiagnostic `json:"domains"`
	// DeviceFingerprint is the device-wide signing fingerprint, when reported
	DeviceFingerprint string `json:"device_fingerprint,omitempty"`
	// Generation is the OS generation the device query used
	Generation OsGeneration `json:"generation"`
	// APILevel is the device SDK level
	APILevel int `json:"api_level"`
}

// DomainCount is the number of claimed domains covered by the report
func (r *DiagnosticsReport) DomainCount() int {
	return len(r.Domains)
}

// VerifiedCount is the number of domains in a successful verification state
func (r *DiagnosticsReport) VerifiedCount() int {
	return lo.CountBy(r.Domains, func(d DomainDiagnostic) bool {
		return d.State.IsSuccessful()
	})
}

// FailedCount is the number of domains not in a successful state
func (r *DiagnosticsReport) FailedCount() int {
	return r.DomainCount() - r.VerifiedCount()
}

// HasIssues reports whether any domain carries at least one failure reason
func (r *DiagnosticsReport) HasIssues() bool {
	return lo.SomeBy(r.Domains, DomainDiagnostic.HasIssues)
}
