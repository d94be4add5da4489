package applinks

import (
	"bufio"
	"regexp"
	"strings"
)

// packageHeaderPattern matches a per-package block header in the modern dump:
// a java-style package name followed by a bare colon, e.g. "com.example.app:".
var packageHeaderPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)+):$`)

// fingerprintPattern extracts a colon-separated hex fingerprint from a signatures line
var fingerprintPattern = regexp.MustCompile(`[0-9A-Fa-f]{2}(?::[0-9A-Fa-f]{2})+`)

// domainStateLinePattern matches a per-domain state line inside the domain
// verification block, e.g. "example.com: verified".
var domainStateLinePattern = regexp.MustCompile(`^(\S+):\s+(\S+)$`)

// domainVerificationHeader opens the per-domain state block of a package
const domainVerificationHeader = "Domain verification state:"

// signaturesPrefix opens the signatures line of a package block
const signaturesPrefix = "Signatures:"

// modernStateFor maps a modern dump state token to the normalized vocabulary.
// Anything unrecognized (numeric carry-over states, future additions) is unknown.
func modernStateFor(token string) DomainVerificationState {
	switch strings.ToLower(token) {
	case "verified":
		return StateVerified
	case "none":
		return StateUnverified
	default:
		return StateUnknown
	}
}

// ParseModernDump parses `pm get-app-links` output into profiles. The dump is
// a sequence of per-package blocks whose sections (signatures, domain state,
// user state) can appear in any order; packages claiming zero domains still
// produce a profile. Malformed or empty input yields an empty slice, never an
// error: no matches is the legitimate "no app links configured" outcome.
func ParseModernDump(raw string) []AppLinkProfile {
	var (
		profiles  []AppLinkProfile
		current   = -1
		inDomains bool
	)

	// Signature blocks may precede or follow the domain block, so fingerprints
	// are stamped onto the records only once the whole dump is scanned.
	fingerprints := make(map[int]string)

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := packageHeaderPattern.FindStringSubmatch(line); m != nil {
			profiles = append(profiles, AppLinkProfile{PackageName: m[1]})
			current = len(profiles) - 1
			inDomains = false

			continue
		}

		if current < 0 {
			continue
		}

		if line == domainVerificationHeader {
			inDomains = true
			continue
		}

		if strings.HasPrefix(line, signaturesPrefix) {
			inDomains = false

			if fp := fingerprintPattern.FindString(line); fp != "" {
				fingerprints[current] = fp
			}

			continue
		}

		if !inDomains {
			continue
		}

		m := domainStateLinePattern.FindStringSubmatch(line)
		if m == nil {
			// Some other section header ends the domain block
			inDomains = false
			continue
		}

		profiles[current].Domains = append(profiles[current].Domains, DomainRecord{
			Domain: m[1],
			State:  modernStateFor(m[2]),
		})
	}

	for idx, fp := range fingerprints {
		for i := range profiles[idx].Domains {
			profiles[idx].Domains[i].Fingerprint = fp
		}
	}

	return profiles
}
