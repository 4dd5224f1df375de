package config

import (
	"errors"
	"fmt"
)

// Error kinds returned by Load and Validate. ErrInvalidLocale also matches
// ErrInvalidConfig.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
	ErrInvalidLocale = fmt.Errorf("%w: sort_locale", ErrInvalidConfig)
)
