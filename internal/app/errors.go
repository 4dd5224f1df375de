package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrStart              = errors.New("service failed to start")
	ErrNoResponse         = errors.New("no response from engine")
	ErrUnexpectedResponse = errors.New("unexpected engine response")
)

func isTimeout(err error) bool {
	return errors.Is(err, ErrNoResponse)
}
