package applinks

import (
	"strings"
	"testing"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
)

const testFingerprint = "AA:BB:CC:DD:EE:FF:00:11"

func contentFor(pkg string, fingerprints ...string) *assetlinks.Content {
	return &assetlinks.Content{
		Statements: []assetlinks.Statement{{
			Relation: []string{assetlinks.HandleAllURLsRelation},
			Target: assetlinks.Target{
				Namespace:              assetlinks.AndroidAppNamespace,
				PackageName:            pkg,
				SHA256CertFingerprints: fingerprints,
			},
		}},
	}
}

func TestNormalizeFingerprint(t *testing.T) {
	canonical := NormalizeFingerprint(testFingerprint)

	if canonical != "AABBCCDDEEFF0011" {
		t.Fatalf("unexpected canonical form: %q", canonical)
	}

	// Idempotent, case-insensitive, separator-insensitive
	if NormalizeFingerprint(canonical) != canonical {
		t.Error("normalization must be idempotent")
	}

	if NormalizeFingerprint(strings.ToLower(testFingerprint)) != canonical {
		t.Error("normalization must be case-insensitive")
	}

	if NormalizeFingerprint("aabbccddeeff0011") != canonical {
		t.Error("normalization must be separator-insensitive")
	}
}

func TestCompareFingerprints_DecisionOrder(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		content  *assetlinks.Content
		expected ComparisonOutcome
	}{
		{"remote unavailable wins over everything", testFingerprint, nil, ComparisonRemoteUnavailable},
		{"remote unavailable with no local either", "", nil, ComparisonRemoteUnavailable},
		{"no local fingerprint", "", contentFor("com.example.app", testFingerprint), ComparisonNoLocalFingerprint},
		{"package absent from trust file", testFingerprint, contentFor("com.other.app", testFingerprint), ComparisonNoRemoteFingerprint},
		{"match exact", testFingerprint, contentFor("com.example.app", testFingerprint), ComparisonMatch},
		{"match across separators and case", testFingerprint, contentFor("com.example.app", "aabbccddeeff0011"), ComparisonMatch},
		{"mismatch", testFingerprint, contentFor("com.example.app", "11:22:33:44:55:66:77:88"), ComparisonMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CompareFingerprints(tc.local, "com.example.app", tc.content)
			if got.Outcome != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got.Outcome)
			}
		})
	}
}

func TestCompareFingerprints_MismatchCarriesBothSides(t *testing.T) {
	got := CompareFingerprints(testFingerprint, "com.example.app", contentFor("com.example.app", "11:22", "33:44"))

	if got.Outcome != ComparisonMismatch {
		t.Fatalf("expected mismatch, got %q", got.Outcome)
	}

	if got.Local != testFingerprint {
		t.Errorf("mismatch must carry the local fingerprint, got %q", got.Local)
	}

	if len(got.Remote) != 2 {
		t.Errorf("mismatch must carry all declared fingerprints, got %v", got.Remote)
	}
}

func TestCompareFingerprints_RelationGated(t *testing.T) {
	// A statement targeting the package but without the handle-all-URLs
	// delegation does not endorse it as a link handler.
	content := &assetlinks.Content{
		Statements: []assetlinks.Statement{{
			Relation: []string{"delegate_permission/common.get_login_creds"},
			Target: assetlinks.Target{
				Namespace:              assetlinks.AndroidAppNamespace,
				PackageName:            "com.example.app",
				SHA256CertFingerprints: []string{testFingerprint},
			},
		}},
	}

	got := CompareFingerprints(testFingerprint, "com.example.app", content)
	if got.Outcome != ComparisonNoRemoteFingerprint {
		t.Errorf("expected no_remote_fingerprint for non-handler statement, got %q", got.Outcome)
	}
}
