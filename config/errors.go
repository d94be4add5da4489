package config

import "errors"

var (
	// ErrConfigFileRead is returned when the config file or environment cannot be loaded
	ErrConfigFileRead = errors.New("failed to load configuration")
	// ErrConfigUnmarshal is returned when config unmarshalling fails
	ErrConfigUnmarshal = errors.New("failed to unmarshal configuration")
)
