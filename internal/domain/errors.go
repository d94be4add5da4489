package domain

import "errors"

var (
	// ErrInvalidDomain is returned when the input cannot be reduced to a host name
	ErrInvalidDomain = errors.New("invalid domain")
	// ErrNoPublicSuffix is returned when the host has no recognized public suffix
	ErrNoPublicSuffix = errors.New("domain has no public suffix")
)
