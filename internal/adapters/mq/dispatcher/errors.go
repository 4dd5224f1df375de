package dispatcher

import "errors"

// Sentinel kinds for dispatcher errors.
var (
	ErrEngineUnavailable = errors.New("no live engine")
	ErrBackpressure      = errors.New("engine queue full")
	ErrEngineStart       = errors.New("engine failed to start")
)
