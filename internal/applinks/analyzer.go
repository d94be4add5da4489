package applinks

import (
	"fmt"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
)

// AnalyzeFailure maps a domain's verification state, fingerprint comparison,
// and trust file validation onto root-cause reasons and remediation
// suggestions. Rules are evaluated independently and accumulate: a domain can
// carry several simultaneous reasons. A fully healthy domain (successful
// state, valid trust file, matching fingerprint) produces nothing.
func AnalyzeFailure(state DomainVerificationState, comparison FingerprintComparison, validation assetlinks.Validation, packageName, domain string) ([]FailureReason, []string) {
	var (
		reasons     []FailureReason
		suggestions []string
	)

	add := func(reason FailureReason, suggestion string) {
		reasons = append(reasons, reason)
		suggestions = append(suggestions, suggestion)
	}

	switch validation.Status {
	case assetlinks.StatusNotFound:
		add(ReasonAssetLinksMissing,
			fmt.Sprintf("Publish an assetlinks.json at https://%s%s endorsing %s.", domain, assetlinks.WellKnownPath, packageName))
	case assetlinks.StatusInvalidJSON:
		add(ReasonAssetLinksInvalidJSON,
			fmt.Sprintf("The trust file at https://%s%s is not valid JSON; fix the syntax so it parses as a statement list.", domain, assetlinks.WellKnownPath))
	case assetlinks.StatusNetworkError:
		if validation.HasIssue(assetlinks.IssueDNSResolutionFailed) {
			add(ReasonDNSFailure,
				fmt.Sprintf("%s does not resolve; check the domain's DNS configuration and registration.", domain))
		} else {
			add(ReasonAssetLinksNetworkError,
				fmt.Sprintf("Fetching the trust file for %s failed; check that the host is reachable over HTTPS and not blocking requests.", domain))
		}
	case assetlinks.StatusRedirect:
		add(ReasonAssetLinksRedirect,
			fmt.Sprintf("Serve https://%s%s directly with HTTP 200; App Links verification does not follow redirects.", domain, assetlinks.WellKnownPath))
	}

	switch comparison.Outcome {
	case ComparisonMismatch:
		add(ReasonFingerprintMismatch,
			fmt.Sprintf("The device reports certificate fingerprint %s but the trust file declares %v for %s; update the published fingerprint or re-sign the app with the expected certificate.", comparison.Local, comparison.Remote, packageName))
	case ComparisonNoRemoteFingerprint:
		add(ReasonPackageNotInAssetLinks,
			fmt.Sprintf("The trust file for %s has no handle-all-URLs statement targeting %s; add one with the app's signing fingerprint.", domain, packageName))
	}

	if len(reasons) == 0 && !state.IsSuccessful() {
		add(ReasonUnknown,
			fmt.Sprintf("%s is in state %q although the trust file checks out; re-run verification and inspect the device's verification log.", domain, state))
	}

	return reasons, suggestions
}
