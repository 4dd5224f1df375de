package product

// SortKey selects the comparison rule for a sort.
type SortKey string

// Recognized sort keys. Any other value sorts nothing.
const (
	SortByPrice SortKey = "price"
	SortByName  SortKey = "name"
)

// Known reports whether k selects a comparison rule.
func (k SortKey) Known() bool {
	return k == SortByPrice || k == SortByName
}
