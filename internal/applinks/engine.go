package applinks

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tpakis/link-ops-sub001/internal/assetlinks"
)

// sdkPropertyCommand queries the device's integer API level
const sdkPropertyCommand = "getprop ro.build.version.sdk"

// DeviceRunner executes one shell command on a device and returns its combined
// output. Implementations must be safe for concurrent use.
type DeviceRunner interface {
	Run(ctx context.Context, deviceID, command string) (string, error)
}

// TrustValidator fetches and classifies a domain's trust file. Implementations
// must be safe for concurrent use and must encode every failure in the
// returned value.
type TrustValidator interface {
	Validate(ctx context.Context, domain string) assetlinks.Validation
}

// RegistrationProbe optionally checks whether a domain is registered at all,
// used to sharpen DNS failure suggestions. May be nil.
type RegistrationProbe interface {
	Registered(ctx context.Context, domain string) (bool, error)
}

// Engine composes the strategy selector, parsers, trust file validator,
// fingerprint comparator, and failure analyzer into the single diagnostic
// entry point.
type Engine struct {
	runner       DeviceRunner
	validator    TrustValidator
	registration RegistrationProbe
}

// EngineOption configures the Engine
type EngineOption func(*Engine)

// WithRegistrationProbe enables RDAP-backed registration checks for DNS failures
func WithRegistrationProbe(probe RegistrationProbe) EngineOption {
	return func(e *Engine) {
		e.registration = probe
	}
}

// NewEngine creates a diagnostics engine over the given device channel and
// trust file validator.
func NewEngine(runner DeviceRunner, validator TrustValidator, opts ...EngineOption) (*Engine, error) {
	if runner == nil {
		return nil, ErrNoRunner
	}

	if validator == nil {
		return nil, ErrNoValidator
	}

	e := &Engine{
		runner:    runner,
		validator: validator,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// AnalyzeVerification diagnoses why App Links verification for the package is
// in its current state on the device. Run-global steps (SDK query, device
// dump, package lookup) are fatal when they fail; everything per-domain is
// folded into that domain's diagnostic. The report preserves the device's
// domain ordering regardless of completion order.
func (e *Engine) AnalyzeVerification(ctx context.Context, deviceID, packageName string) (*DiagnosticsReport, error) {
	apiLevel, err := e.queryAPILevel(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	strategy := SelectStrategy(apiLevel)
	log.Debug().Str("device", deviceID).Int("api_level", apiLevel).Str("generation", string(strategy.Generation())).Msg("strategy selected")

	raw, err := e.runner.Run(ctx, deviceID, strategy.ListCommand(packageName))
	if err != nil {
		return nil, fmt.Errorf("listing app links on %s: %w", deviceID, err)
	}

	profile, err := locateProfile(parseDump(strategy.Generation(), raw), packageName)
	if err != nil {
		return nil, err
	}

	deviceFingerprint := profileFingerprint(profile)

	report := &DiagnosticsReport{
		PackageName:       packageName,
		DeviceID:          deviceID,
		Domains:           make([]DomainDiagnostic, len(profile.Domains)),
		DeviceFingerprint: deviceFingerprint,
		Generation:        strategy.Generation(),
		APILevel:          apiLevel,
	}

	// One concurrent unit of work per domain; disjoint result slots, so the
	// join is the only synchronization needed and source order is preserved.
	var wg sync.WaitGroup
	for i, record := range profile.Domains {
		wg.Go(func() {
			report.Domains[i] = e.diagnoseDomain(ctx, packageName, record, deviceFingerprint)
		})
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info().Str("device", deviceID).Str("package", packageName).Int("domains", report.DomainCount()).Int("verified", report.VerifiedCount()).Msg("diagnostics run complete")

	return report, nil
}

// Reverify asks the OS to redo domain verification for the package, using the
// generation-correct command.
func (e *Engine) Reverify(ctx context.Context, deviceID, packageName string) error {
	apiLevel, err := e.queryAPILevel(ctx, deviceID)
	if err != nil {
		return err
	}

	command := SelectStrategy(apiLevel).ReverifyCommand(packageName)

	if _, err := e.runner.Run(ctx, deviceID, command); err != nil {
		return fmt.Errorf("requesting re-verification of %s on %s: %w", packageName, deviceID, err)
	}

	return nil
}

// VerificationLogFilter returns the logcat tag carrying verification activity
// for the device's OS generation.
func (e *Engine) VerificationLogFilter(ctx context.Context, deviceID string) (string, error) {
	apiLevel, err := e.queryAPILevel(ctx, deviceID)
	if err != nil {
		return "", err
	}

	return SelectStrategy(apiLevel).LogFilter(), nil
}

// queryAPILevel reads and parses the device's SDK property. Non-numeric
// output invalidates the whole run.
func (e *Engine) queryAPILevel(ctx context.Context, deviceID string) (int, error) {
	out, err := e.runner.Run(ctx, deviceID, sdkPropertyCommand)
	if err != nil {
		return 0, fmt.Errorf("querying SDK level of %s: %w", deviceID, err)
	}

	level, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrSdkLevelUnparseable, strings.TrimSpace(out))
	}

	return level, nil
}

// diagnoseDomain runs the strictly sequential per-domain pipeline:
// fetch/validate the trust file, compare fingerprints, classify the failure.
func (e *Engine) diagnoseDomain(ctx context.Context, packageName string, record DomainRecord, deviceFingerprint string) DomainDiagnostic {
	local := record.Fingerprint
	if local == "" {
		local = deviceFingerprint
	}

	validation := e.validator.Validate(ctx, record.Domain)
	comparison := CompareFingerprints(local, packageName, validation.Content)
	reasons, suggestions := AnalyzeFailure(record.State, comparison, validation, packageName, record.Domain)

	suggestions = e.enrichDNSFailure(ctx, record.Domain, reasons, suggestions)

	return DomainDiagnostic{
		Domain:         record.Domain,
		State:          record.State,
		Fingerprint:    comparison,
		TrustStatus:    validation.Status,
		TrustIssues:    validation.Issues,
		FailureReasons: reasons,
		Suggestions:    suggestions,
	}
}

// enrichDNSFailure sharpens a DNS failure suggestion with an RDAP registration
// probe when one is configured: an unregistered domain needs a very different
// fix than broken DNS records.
func (e *Engine) enrichDNSFailure(ctx context.Context, domain string, reasons []FailureReason, suggestions []string) []string {
	if e.registration == nil {
		return suggestions
	}

	hasDNSFailure := false
	for _, r := range reasons {
		if r == ReasonDNSFailure {
			hasDNSFailure = true
			break
		}
	}

	if !hasDNSFailure {
		return suggestions
	}

	registered, err := e.registration.Registered(ctx, domain)
	if err != nil {
		log.Debug().Err(err).Str("domain", domain).Msg("registration probe failed")
		return suggestions
	}

	if !registered {
		suggestions = append(suggestions, fmt.Sprintf("%s does not appear to be registered at all; register the domain before configuring App Links.", domain))
	}

	return suggestions
}

// parseDump dispatches to the generation-matching parser
func parseDump(generation OsGeneration, raw string) []AppLinkProfile {
	if generation == GenerationModern {
		return ParseModernDump(raw)
	}

	return ParseLegacyDump(raw)
}

// locateProfile finds the requested package among the parsed profiles. Absence
// is fatal: it is distinct from a present package claiming zero domains, which
// is a legitimate success case.
func locateProfile(profiles []AppLinkProfile, packageName string) (AppLinkProfile, error) {
	for _, p := range profiles {
		if p.PackageName == packageName {
			return p, nil
		}
	}

	return AppLinkProfile{}, fmt.Errorf("%w: %s", ErrPackageNotFound, packageName)
}

// profileFingerprint extracts the device-wide fingerprint from the first
// record that carries one. Legacy profiles never do, which is expected.
func profileFingerprint(profile AppLinkProfile) string {
	for _, record := range profile.Domains {
		if record.Fingerprint != "" {
			return record.Fingerprint
		}
	}

	return ""
}
