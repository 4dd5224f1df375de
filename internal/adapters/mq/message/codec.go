package message

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// Envelope is the wire shape {type, data}. Data holds the msgpack encoding
// of the payload and belongs to whoever holds the envelope.
type Envelope struct {
	Type Type
	Data []byte
}

// wireEnvelope is the JSON rendering of an Envelope.
type wireEnvelope struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Marshal encodes v with msgpack.
func Marshal(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return b, nil
}

// Unmarshal decodes msgpack data into v. Untyped numbers decode as int64,
// uint64 or float64 and untyped maps as map[string]any.
func Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// New wraps an arbitrary payload under an arbitrary type. It is how callers
// build envelopes the engine may not recognize.
func New(t Type, data any) (Envelope, error) {
	b, err := Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Data: b}, nil
}

// EncodeRequest copies req into an envelope.
func EncodeRequest(req Request) (Envelope, error) {
	if req == nil {
		return Envelope{}, fmt.Errorf("%w: nil request", ErrEncode)
	}
	return New(req.Type(), req)
}

// DecodeRequest rebuilds the request carried by env. Unrecognized types
// return ErrUnknownType.
func DecodeRequest(env Envelope) (Request, error) {
	switch env.Type {
	case TypeFilterProducts:
		var r FilterRequest
		if err := Unmarshal(env.Data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case TypeSortProducts:
		var r SortRequest
		if err := Unmarshal(env.Data, &r); err != nil {
			return nil, err
		}
		return r, nil
	case TypeCalculateStatistics:
		var r StatisticsRequest
		if err := Unmarshal(env.Data, &r); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// EncodeResponse copies resp into an envelope whose data is the bare result.
func EncodeResponse(resp Response) (Envelope, error) {
	if resp == nil {
		return Envelope{}, fmt.Errorf("%w: nil response", ErrEncode)
	}
	return New(resp.Type(), resp.payload())
}

// DecodeResponse rebuilds the response carried by env.
func DecodeResponse(env Envelope) (Response, error) {
	switch env.Type {
	case TypeFilterProductsDone:
		var r FilterResult
		if err := Unmarshal(env.Data, &r.Products); err != nil {
			return nil, err
		}
		return r, nil
	case TypeSortProductsDone:
		var r SortResult
		if err := Unmarshal(env.Data, &r.Products); err != nil {
			return nil, err
		}
		return r, nil
	case TypeCalculateStatisticsDone:
		var r StatisticsResult
		if err := Unmarshal(env.Data, &r.Report); err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// FromJSON parses the JSON wire shape {"type": ..., "data": ...}.
func FromJSON(b []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if w.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrDecode)
	}
	if w.Type.IsResponse() {
		return Envelope{}, fmt.Errorf("%w: %q is a response type", ErrDecode, w.Type)
	}
	return New(w.Type, w.Data)
}

// ToJSON renders env in the JSON wire shape.
func ToJSON(env Envelope) ([]byte, error) {
	w := wireEnvelope{Type: env.Type}
	if len(env.Data) > 0 {
		if err := Unmarshal(env.Data, &w.Data); err != nil {
			return nil, err
		}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return b, nil
}
