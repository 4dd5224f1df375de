// Package compute implements the pure product collection operations run by
// the compute engine: filtering, sorting and statistics.
//
// None of the operations mutate their input slice; filter and sort always
// return a freshly allocated slice.
package compute

import (
	"cmp"
	"slices"

	"github.com/okian/storefront/internal/domain/product"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Computer runs the collection operations. It holds a collator and is not
// safe for concurrent use; each engine owns its own.
type Computer struct {
	tag      language.Tag
	collator *collate.Collator
}

// Option applies a configuration option to the Computer.
type Option func(*Computer)

// WithLocale sets the collation locale used by name sorting.
func WithLocale(tag language.Tag) Option {
	return func(c *Computer) {
		c.tag = tag
	}
}

// New creates a Computer. The default locale is English.
func New(opts ...Option) *Computer {
	c := &Computer{tag: language.English}
	for _, opt := range opts {
		opt(c)
	}
	c.collator = collate.New(c.tag)
	return c
}

// Locale returns the collation locale.
func (c *Computer) Locale() language.Tag { return c.tag }

// Filter returns the products matching criteria in their original order.
func (c *Computer) Filter(products []product.Product, criteria product.Criteria) []product.Product {
	active := criteria.Active()
	out := make([]product.Product, 0, len(products))
	for _, p := range products {
		if active.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a sorted copy of products. Unknown keys return the copy in
// original order. Both sorts are stable.
func (c *Computer) Sort(products []product.Product, key product.SortKey) []product.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []product.Product{}
	}
	switch key {
	case product.SortByPrice:
		slices.SortStableFunc(out, comparePrice)
	case product.SortByName:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return c.collator.CompareString(a.Name(), b.Name())
		})
	}
	return out
}

// comparePrice orders by ascending price; records without a numeric price
// sort after every priced record.
func comparePrice(a, b product.Product) int {
	ap, aok := a.Price()
	bp, bok := b.Price()
	switch {
	case aok && bok:
		return cmp.Compare(ap, bp)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}

// Statistics aggregates count, mean price and per-category counts. An empty
// collection reports an average of 0. Missing prices count as 0; records
// without a string category are left out of Categories.
func (c *Computer) Statistics(products []product.Product) product.Report {
	report := product.Report{
		TotalProducts: len(products),
		Categories:    make(map[string]int),
	}
	var sum float64
	for _, p := range products {
		if price, ok := p.Price(); ok {
			sum += price
		}
		if category, ok := p.Category(); ok {
			report.Categories[category]++
		}
	}
	if report.TotalProducts > 0 {
		report.AveragePrice = sum / float64(report.TotalProducts)
	}
	return report
}
