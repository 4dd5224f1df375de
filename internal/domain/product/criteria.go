package product

// Criteria maps a field name to the value a product must carry in that field.
// Pairs whose value is not truthy impose no constraint.
type Criteria map[string]any

// Matches reports whether p satisfies every active pair in c.
// A field missing from p never equals an active value.
func (c Criteria) Matches(p Product) bool {
	for field, want := range c {
		if !Truthy(want) {
			continue
		}
		got, ok := p[field]
		if !ok || !ValuesEqual(got, want) {
			return false
		}
	}
	return true
}

// Active returns the pairs of c that constrain a match.
func (c Criteria) Active() Criteria {
	out := make(Criteria, len(c))
	for field, want := range c {
		if Truthy(want) {
			out[field] = want
		}
	}
	return out
}

// Truthy reports whether v constrains a filter: nil, "", false, numeric zero
// and NaN do not.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	if f, ok := ToFloat64(v); ok {
		return f != 0 && !isNaN(v)
	}
	return true
}

// ValuesEqual compares two field values without cross-kind coercion: strings
// equal strings byte for byte, booleans equal booleans, and numbers compare by
// value regardless of the integer or float width a decoder chose for them.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	af, aNum := ToFloat64(a)
	bf, bNum := ToFloat64(b)
	if aNum || bNum {
		return aNum && bNum && af == bf
	}
	return false
}
