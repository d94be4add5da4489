// Package adb is the device command channel: it shells out to the adb binary
// to run one-shot commands, list attached devices, and stream filtered logs.
// It carries no diagnostic logic.
package adb

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// defaultADBPath resolves the adb binary via PATH
	defaultADBPath = "adb"
	// defaultCommandTimeout bounds a one-shot shell command
	defaultCommandTimeout = 20 * time.Second
)

// Runner executes shell commands on a device. Safe for concurrent use.
type Runner interface {
	Run(ctx context.Context, deviceID, command string) (string, error)
}

// Device is one attached device as reported by the adb server
type Device struct {
	// Serial is the device identifier used to address commands
	Serial string `json:"serial"`
	// State is the adb connection state (device, offline, unauthorized)
	State string `json:"state"`
	// Model is the device model when adb reports one
	Model string `json:"model,omitempty"`
}

// ExecRunner runs commands by invoking the adb binary
type ExecRunner struct {
	adbPath string
	timeout time.Duration
}

// RunnerOption configures the ExecRunner
type RunnerOption func(*ExecRunner)

// WithADBPath overrides the adb binary location
func WithADBPath(path string) RunnerOption {
	return func(r *ExecRunner) {
		if path != "" {
			r.adbPath = path
		}
	}
}

// WithCommandTimeout overrides the one-shot command timeout
func WithCommandTimeout(timeout time.Duration) RunnerOption {
	return func(r *ExecRunner) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewExecRunner creates a runner backed by the adb binary
func NewExecRunner(opts ...RunnerOption) *ExecRunner {
	r := &ExecRunner{
		adbPath: defaultADBPath,
		timeout: defaultCommandTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes one shell command on the device and returns combined output
func (r *ExecRunner) Run(ctx context.Context, deviceID, command string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, r.adbPath, "-s", deviceID, "shell", command)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: adb -s %s shell %q: %v", ErrCommandFailed, deviceID, command, err)
	}

	return string(out), nil
}

// Devices lists attached devices via `adb devices -l`
func (r *ExecRunner) Devices(ctx context.Context) ([]Device, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(runCtx, r.adbPath, "devices", "-l").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%w: adb devices: %v", ErrCommandFailed, err)
	}

	return parseDeviceList(string(out)), nil
}

// StreamLog streams logcat lines for the given tag filter until the context is
// cancelled. The returned channel is closed when the stream ends.
func (r *ExecRunner) StreamLog(ctx context.Context, deviceID, tagFilter string) (<-chan string, error) {
	cmd := exec.CommandContext(ctx, r.adbPath, "-s", deviceID, "logcat", "-s", fmt.Sprintf("%s:*", tagFilter))

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: opening logcat pipe: %v", ErrCommandFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting logcat: %v", ErrCommandFailed, err)
	}

	lines := make(chan string)

	go func() {
		defer close(lines)
		defer func() {
			if waitErr := cmd.Wait(); waitErr != nil && ctx.Err() == nil {
				log.Warn().Err(waitErr).Str("device", deviceID).Msg("logcat stream ended abnormally")
			}
		}()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines, nil
}

// parseDeviceList parses `adb devices -l` output. The first line is a banner;
// each subsequent non-empty line is "serial state key:value...".
func parseDeviceList(out string) []Device {
	var devices []Device

	for i, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if i == 0 || line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		device := Device{Serial: fields[0], State: fields[1]}

		for _, f := range fields[2:] {
			if model, ok := strings.CutPrefix(f, "model:"); ok {
				device.Model = model
			}
		}

		devices = append(devices, device)
	}

	return devices
}
