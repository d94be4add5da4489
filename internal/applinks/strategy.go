package applinks

import "fmt"

// Strategy supplies the shell command templates and log filter appropriate for
// one OS generation. This is the single version-skew switch point; everything
// downstream is generation-agnostic and only consumes the parser output.
type Strategy interface {
	// Generation identifies which verification subsystem the commands target
	Generation() OsGeneration
	// ListCommand returns the shell command that dumps App Links state,
	// optionally narrowed to one package
	ListCommand(packageFilter string) string
	// ReverifyCommand returns the shell command that forces the OS to redo
	// verification for the package
	ReverifyCommand(packageName string) string
	// LogFilter returns the logcat tag carrying verification activity
	LogFilter() string
}

// SelectStrategy returns the command strategy for an API level. Pure and total
// over all integers: anything below 31, including zero and negatives, is legacy.
func SelectStrategy(apiLevel int) Strategy {
	if GenerationFor(apiLevel) == GenerationModern {
		return modernStrategy{}
	}

	return legacyStrategy{}
}

// modernStrategy targets the consolidated domain verification subsystem
// introduced in SDK 31: structured per-package output, one verb per concern.
type modernStrategy struct{}

func (modernStrategy) Generation() OsGeneration { return GenerationModern }

func (modernStrategy) ListCommand(packageFilter string) string {
	if packageFilter == "" {
		return "pm get-app-links"
	}

	return fmt.Sprintf("pm get-app-links %s", packageFilter)
}

func (modernStrategy) ReverifyCommand(packageName string) string {
	return fmt.Sprintf("pm verify-app-links --re-verify %s", packageName)
}

func (modernStrategy) LogFilter() string {
	return "IntentFilterIntentOp"
}

// legacyStrategy targets the pre-31 intent filter verifier, which only exposes
// state through the multi-purpose package dump and per-link preference verbs.
type legacyStrategy struct{}

func (legacyStrategy) Generation() OsGeneration { return GenerationLegacy }

func (legacyStrategy) ListCommand(string) string {
	// The legacy dump has no per-package filter; the parser narrows by
	// correlating preference records with package names.
	return "dumpsys package domain-preferred-apps"
}

func (legacyStrategy) ReverifyCommand(packageName string) string {
	return fmt.Sprintf("pm set-app-link %s undefined", packageName)
}

func (legacyStrategy) LogFilter() string {
	return "IntentFilterVerification"
}
