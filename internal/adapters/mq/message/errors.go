package message

import "errors"

// Sentinel kinds for message errors.
var (
	ErrUnknownType = errors.New("unknown message type")
	ErrEncode      = errors.New("encode message failed")
	ErrDecode      = errors.New("decode message failed")
)
