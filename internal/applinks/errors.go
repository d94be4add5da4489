package applinks

import "errors"

var (
	// ErrSdkLevelUnparseable is returned when the device's SDK property is not an integer
	ErrSdkLevelUnparseable = errors.New("device SDK level is not numeric")
	// ErrPackageNotFound is returned when the requested package is absent from the device's profiles
	ErrPackageNotFound = errors.New("package not found on device")
	// ErrNoRunner is returned when an engine is constructed without a device runner
	ErrNoRunner = errors.New("device runner is required")
	// ErrNoValidator is returned when an engine is constructed without a trust file validator
	ErrNoValidator = errors.New("trust file validator is required")
)
