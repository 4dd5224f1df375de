package compute_test

import (
	"testing"

	"github.com/okian/storefront/internal/domain/compute"
	"github.com/okian/storefront/internal/domain/product"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func sampleProducts() []product.Product {
	return []product.Product{
		{"id": 1, "name": "ezra", "price": 30.0, "category": "b"},
		{"id": 2, "name": "éclair", "price": 10.0, "category": "a"},
		{"id": 3, "name": "Dog", "price": 20.0, "category": "a"},
		{"id": 4, "name": "apple", "price": 10.0, "category": "c"},
	}
}

func ids(products []product.Product) []any {
	out := make([]any, len(products))
	for i, p := range products {
		out[i] = p.ID()
	}
	return out
}

func TestFilter(t *testing.T) {
	Convey("Given a computer and a product list", t, func() {
		c := compute.New()
		products := sampleProducts()

		Convey("When filtering by category", func() {
			got := c.Filter(products, product.Criteria{"category": "a"})

			Convey("Then the matching subsequence keeps its order", func() {
				So(ids(got), ShouldResemble, []any{2, 3})
			})
		})

		Convey("When filtering with several pairs", func() {
			got := c.Filter(products, product.Criteria{"category": "a", "price": 20})

			Convey("Then all pairs must match", func() {
				So(ids(got), ShouldResemble, []any{3})
			})
		})

		Convey("When filtering with empty criteria", func() {
			got := c.Filter(products, product.Criteria{})

			Convey("Then the collection is returned unchanged", func() {
				So(got, ShouldResemble, products)
			})
		})

		Convey("When every criterion value is empty", func() {
			got := c.Filter(products, product.Criteria{"category": "", "brand": nil})

			Convey("Then nothing is filtered out", func() {
				So(ids(got), ShouldResemble, ids(products))
			})
		})

		Convey("When filtering on a field no product has", func() {
			got := c.Filter(products, product.Criteria{"brand": "acme"})

			Convey("Then nothing matches", func() {
				So(got, ShouldBeEmpty)
			})
		})

		Convey("Then the input is never mutated", func() {
			before := ids(products)
			_ = c.Filter(products, product.Criteria{"category": "c"})
			So(ids(products), ShouldResemble, before)
		})
	})
}

func TestLocale(t *testing.T) {
	Convey("Given computers with and without a locale", t, func() {
		Convey("Then the configured tag is reported", func() {
			So(compute.New(compute.WithLocale(language.Swedish)).Locale(), ShouldEqual, language.Swedish)
			So(compute.New().Locale(), ShouldEqual, language.English)
		})
	})
}

func TestSort(t *testing.T) {
	Convey("Given a computer and a product list", t, func() {
		c := compute.New(compute.WithLocale(language.English))
		products := sampleProducts()
		before := ids(products)

		Convey("When sorting by price", func() {
			got := c.Sort(products, product.SortByPrice)

			Convey("Then prices ascend and ties keep their order", func() {
				So(ids(got), ShouldResemble, []any{2, 4, 3, 1})
			})

			Convey("And the input is untouched", func() {
				So(ids(products), ShouldResemble, before)
				got[0] = product.Product{"id": 99}
				So(products[0].ID(), ShouldEqual, 1)
			})
		})

		Convey("When sorting by name", func() {
			got := c.Sort(products, product.SortByName)

			Convey("Then names follow locale collation rather than byte order", func() {
				So(ids(got), ShouldResemble, []any{4, 3, 2, 1})
			})
		})

		Convey("When the sort key is unknown", func() {
			got := c.Sort(products, product.SortKey("rating"))

			Convey("Then a copy in original order is returned", func() {
				So(ids(got), ShouldResemble, before)
			})
		})

		Convey("When some prices are missing", func() {
			mixed := []product.Product{
				{"id": "x"},
				{"id": "y", "price": 5},
				{"id": "z", "price": "n/a"},
				{"id": "w", "price": 1},
			}
			got := c.Sort(mixed, product.SortByPrice)

			Convey("Then unpriced records trail in their original order", func() {
				So(ids(got), ShouldResemble, []any{"w", "y", "x", "z"})
			})
		})

		Convey("When sorting nothing", func() {
			got := c.Sort(nil, product.SortByName)

			Convey("Then an empty slice is returned", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})
	})
}

func TestStatistics(t *testing.T) {
	Convey("Given a computer", t, func() {
		c := compute.New()

		Convey("When computing statistics over three products", func() {
			report := c.Statistics([]product.Product{
				{"price": 10, "category": "a"},
				{"price": 20, "category": "a"},
				{"price": 30, "category": "b"},
			})

			Convey("Then totals, mean and category counts are reported", func() {
				So(report.TotalProducts, ShouldEqual, 3)
				So(report.AveragePrice, ShouldEqual, 20.0)
				So(report.Categories, ShouldResemble, map[string]int{"a": 2, "b": 1})
			})
		})

		Convey("When computing statistics over nothing", func() {
			report := c.Statistics(nil)

			Convey("Then the average is zero rather than NaN", func() {
				So(report.TotalProducts, ShouldEqual, 0)
				So(report.AveragePrice, ShouldEqual, 0.0)
				So(report.Categories, ShouldBeEmpty)
			})
		})

		Convey("When fields are missing", func() {
			report := c.Statistics([]product.Product{
				{"price": 9},
				{"category": "a"},
			})

			Convey("Then missing prices count as zero and missing categories are skipped", func() {
				So(report.TotalProducts, ShouldEqual, 2)
				So(report.AveragePrice, ShouldEqual, 4.5)
				So(report.Categories, ShouldResemble, map[string]int{"a": 1})
			})
		})
	})
}
