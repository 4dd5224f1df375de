package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrReadSnapshot      = errors.New("failed to read snapshot")
	ErrWriteSnapshot     = errors.New("failed to write snapshot")
	ErrInvalidCount      = errors.New("invalid product count")
)
