package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	ErrEngineNotFound = errors.New("engine entry point not found")
	ErrDuplicatePath  = errors.New("engine entry point already registered")
	ErrInvalidPath    = errors.New("invalid engine entry point")
)
