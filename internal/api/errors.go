package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrDeviceRequired is returned when a diagnose request omits the device serial
	ErrDeviceRequired = errors.New("device_id required")
	// ErrPackageRequired is returned when a diagnose request omits the package name
	ErrPackageRequired = errors.New("package required")
	// ErrDomainRequired is returned when a trust file validation request omits the domain
	ErrDomainRequired = errors.New("domain required")
	// ErrFavoritesNotConfigured is returned when the favorites store is nil
	ErrFavoritesNotConfigured = errors.New("favorites store not configured")
	// ErrFavoriteNotFound is returned when removing a favorite that does not exist
	ErrFavoriteNotFound = errors.New("favorite not found")
)
