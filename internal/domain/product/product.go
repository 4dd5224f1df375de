// Package product contains the product record shape consumed by the compute
// operations, plus the criteria and sort key types that parameterize them.
package product

import (
	"math"
)

// Well-known field names read by the compute operations.
const (
	FieldID       = "id"
	FieldName     = "name"
	FieldPrice    = "price"
	FieldCategory = "category"
)

// Product is an opaque record of named fields. Only the fields an operation
// reads are interpreted; everything else is carried through untouched.
type Product map[string]any

// ID returns the identifier field rendered as given, or nil when absent.
func (p Product) ID() any { return p[FieldID] }

// Name returns the name field, or "" when absent or not a string.
func (p Product) Name() string {
	s, _ := p[FieldName].(string)
	return s
}

// Price returns the price field as float64. ok is false when the field is
// absent or not numeric.
func (p Product) Price() (price float64, ok bool) {
	return ToFloat64(p[FieldPrice])
}

// Category returns the category field and whether it was a string.
func (p Product) Category() (string, bool) {
	s, ok := p[FieldCategory].(string)
	return s, ok
}

// Clone returns a shallow copy of the record.
func (p Product) Clone() Product {
	if p == nil {
		return nil
	}
	out := make(Product, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Report is the statistics aggregate over a product collection.
type Report struct {
	TotalProducts int            `json:"totalProducts" msgpack:"totalProducts"`
	AveragePrice  float64        `json:"averagePrice" msgpack:"averagePrice"`
	Categories    map[string]int `json:"categories" msgpack:"categories"`
}

// ToFloat64 converts the numeric kinds that JSON and msgpack decoders produce
// to float64.
func ToFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

func isNaN(value any) bool {
	f, ok := ToFloat64(value)
	return ok && math.IsNaN(f)
}
