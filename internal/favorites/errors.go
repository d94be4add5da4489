package favorites

import "errors"

var (
	// ErrEmptyPath is returned when a store is created without a file path
	ErrEmptyPath = errors.New("favorites store path must not be empty")
	// ErrCorruptStore is returned when the persisted favorites file cannot be decoded
	ErrCorruptStore = errors.New("favorites store is corrupt")
	// ErrIncompleteFavorite is returned when a favorite lacks a device or package
	ErrIncompleteFavorite = errors.New("favorite requires a device id and package name")
)
