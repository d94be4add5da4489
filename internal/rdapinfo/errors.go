package rdapinfo

import "errors"

var (
	// ErrEmptyDomain is returned when an empty domain is given to a probe
	ErrEmptyDomain = errors.New("domain must not be empty")
)
