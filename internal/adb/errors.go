package adb

import "errors"

var (
	// ErrCommandFailed is returned when an adb invocation fails
	ErrCommandFailed = errors.New("adb command failed")
)
