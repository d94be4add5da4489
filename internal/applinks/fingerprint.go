package applinks

import (
	"strings"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
)

// NormalizeFingerprint canonicalizes a SHA-256 certificate fingerprint for
// comparison: colon separators stripped, hex uppercased. Idempotent.
func NormalizeFingerprint(fingerprint string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(fingerprint), ":", ""))
}

// CompareFingerprints joins the device-reported fingerprint with the trust
// file's declared fingerprints for the package. The empty string means no
// local fingerprint was reported; a nil content means the trust file could not
// be obtained.
//
// The decision order is significant: a missing trust file is a distinct,
// higher-priority problem than any fingerprint verdict, so remote_unavailable
// wins even when a local fingerprint exists.
func CompareFingerprints(local, packageName string, content *assetlinks.Content) FingerprintComparison {
	if content == nil {
		return FingerprintComparison{Outcome: ComparisonRemoteUnavailable}
	}

	if local == "" {
		return FingerprintComparison{Outcome: ComparisonNoLocalFingerprint}
	}

	remote := content.FingerprintsFor(packageName)
	if len(remote) == 0 {
		return FingerprintComparison{Outcome: ComparisonNoRemoteFingerprint}
	}

	want := NormalizeFingerprint(local)
	for _, fp := range remote {
		if NormalizeFingerprint(fp) == want {
			return FingerprintComparison{Outcome: ComparisonMatch}
		}
	}

	return FingerprintComparison{
		Outcome: ComparisonMismatch,
		Local:   local,
		Remote:  remote,
	}
}
