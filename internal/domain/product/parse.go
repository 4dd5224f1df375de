package product

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// ParseValue reads a criterion value typed by a person. JSON scalars keep
// their type, so 10 is a number, true a bool and "10" a string; anything
// else is taken verbatim as a string.
func ParseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	switch v.(type) {
	case map[string]any, []any:
		return raw
	default:
		return v
	}
}

// ParseCriterion splits a "field=value" pair.
func ParseCriterion(pair string) (string, any, error) {
	field, raw, ok := strings.Cut(pair, "=")
	field = strings.TrimSpace(field)
	if !ok || field == "" {
		return "", nil, fmt.Errorf("criterion %q: want field=value", pair)
	}
	return field, ParseValue(raw), nil
}
