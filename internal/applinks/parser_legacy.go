package applinks

import (
	"bufio"
	"regexp"
	"strings"
)

// legacyPackagePattern matches a preference record's package line in the
// legacy dump, e.g. "Package: com.example.app".
var legacyPackagePattern = regexp.MustCompile(`^Package:\s+(\S+)$`)

// legacyDomainsPattern matches the space-separated domain list line
var legacyDomainsPattern = regexp.MustCompile(`^Domains:\s+(.+)$`)

// legacyStatusPattern matches the status line; the status token may be
// followed by an opaque numeric value, e.g. "Status:  always : 200000002".
var legacyStatusPattern = regexp.MustCompile(`^Status:\s+(\S+)`)

// legacyStateFor maps a legacy preference token to the normalized vocabulary
func legacyStateFor(token string) DomainVerificationState {
	switch strings.ToLower(token) {
	case "always":
		return StateApproved
	case "never":
		return StateDenied
	case "ask", "always-ask", "undefined":
		return StateUnverified
	default:
		if strings.Contains(strings.ToLower(token), "failure") {
			return StateLegacyFailure
		}

		return StateUnverified
	}
}

// ParseLegacyDump parses `dumpsys package domain-preferred-apps` output. The
// legacy dump is loose text where a preference record is the line-adjacent
// triple Package / Domains / Status; a record with no status line means no
// preference was set. Legacy dumps never carry a certificate fingerprint.
// Malformed or empty input yields an empty slice, never an error.
func ParseLegacyDump(raw string) []AppLinkProfile {
	var profiles []AppLinkProfile

	index := make(map[string]int)

	var (
		currentPackage string
		currentDomains []string
	)

	flush := func(state DomainVerificationState) {
		if currentPackage == "" {
			return
		}

		idx, ok := index[currentPackage]
		if !ok {
			profiles = append(profiles, AppLinkProfile{PackageName: currentPackage})
			idx = len(profiles) - 1
			index[currentPackage] = idx
		}

		for _, domain := range currentDomains {
			profiles[idx].Domains = append(profiles[idx].Domains, DomainRecord{
				Domain: domain,
				State:  state,
			})
		}

		currentPackage = ""
		currentDomains = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := legacyPackagePattern.FindStringSubmatch(line); m != nil {
			// A new record before the previous one saw a status line means
			// the previous record had no preference set.
			flush(StateUnverified)
			currentPackage = m[1]

			continue
		}

		if currentPackage == "" {
			continue
		}

		if m := legacyDomainsPattern.FindStringSubmatch(line); m != nil {
			currentDomains = append(currentDomains, strings.Fields(m[1])...)
			continue
		}

		if m := legacyStatusPattern.FindStringSubmatch(line); m != nil {
			flush(legacyStateFor(m[1]))
		}
	}

	flush(StateUnverified)

	return profiles
}
