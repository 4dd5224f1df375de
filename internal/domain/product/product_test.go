package product_test

import (
	"math"
	"testing"

	"github.com/okian/storefront/internal/domain/product"
	. "github.com/smartystreets/goconvey/convey"
)

func TestProductAccessors(t *testing.T) {
	Convey("Given a product record", t, func() {
		p := product.Product{"id": "p-1", "name": "Lamp", "price": int64(25), "category": "home", "sku": "X"}

		Convey("Then the known fields are read", func() {
			So(p.ID(), ShouldEqual, "p-1")
			So(p.Name(), ShouldEqual, "Lamp")
			price, ok := p.Price()
			So(ok, ShouldBeTrue)
			So(price, ShouldEqual, 25.0)
			category, ok := p.Category()
			So(ok, ShouldBeTrue)
			So(category, ShouldEqual, "home")
		})

		Convey("When a field is missing or mistyped", func() {
			q := product.Product{"price": "cheap"}

			Convey("Then the accessors report absence", func() {
				So(q.Name(), ShouldEqual, "")
				_, ok := q.Price()
				So(ok, ShouldBeFalse)
				_, ok = q.Category()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When cloned", func() {
			c := p.Clone()
			c["name"] = "Desk"

			Convey("Then the original is untouched", func() {
				So(p.Name(), ShouldEqual, "Lamp")
			})
		})
	})
}

func TestCriteria(t *testing.T) {
	Convey("Given filter criteria", t, func() {
		p := product.Product{"category": "shoes", "price": float64(40), "inStock": true}

		Convey("When every active pair matches", func() {
			c := product.Criteria{"category": "shoes", "price": int64(40)}
			So(c.Matches(p), ShouldBeTrue)
		})

		Convey("When one pair differs", func() {
			c := product.Criteria{"category": "hats"}
			So(c.Matches(p), ShouldBeFalse)
		})

		Convey("When the product lacks the field", func() {
			c := product.Criteria{"brand": "acme"}
			So(c.Matches(p), ShouldBeFalse)
		})

		Convey("When values are empty or falsy", func() {
			c := product.Criteria{"category": "", "brand": nil, "inStock": false, "price": 0, "rank": math.NaN()}

			Convey("Then they impose no constraint", func() {
				So(c.Matches(p), ShouldBeTrue)
				So(c.Active(), ShouldBeEmpty)
			})
		})

		Convey("When kinds differ", func() {
			So(product.ValuesEqual("40", float64(40)), ShouldBeFalse)
			So(product.ValuesEqual(true, 1), ShouldBeFalse)
			So(product.ValuesEqual("Shoes", "shoes"), ShouldBeFalse)
			So(product.ValuesEqual(int8(3), uint64(3)), ShouldBeTrue)
		})
	})
}

func TestSortKey(t *testing.T) {
	Convey("Given sort keys", t, func() {
		So(product.SortByPrice.Known(), ShouldBeTrue)
		So(product.SortByName.Known(), ShouldBeTrue)
		So(product.SortKey("rating").Known(), ShouldBeFalse)
	})
}

func TestParseValue(t *testing.T) {
	Convey("Given raw criterion values", t, func() {
		So(product.ParseValue("10"), ShouldEqual, 10.0)
		So(product.ParseValue("true"), ShouldEqual, true)
		So(product.ParseValue(`"10"`), ShouldEqual, "10")
		So(product.ParseValue("home"), ShouldEqual, "home")
		So(product.ParseValue(`{"a":1}`), ShouldEqual, `{"a":1}`)
		So(product.ParseValue("null"), ShouldBeNil)
	})

	Convey("Given field=value pairs", t, func() {
		field, value, err := product.ParseCriterion("price=12.5")
		So(err, ShouldBeNil)
		So(field, ShouldEqual, "price")
		So(value, ShouldEqual, 12.5)

		field, value, err = product.ParseCriterion("note=a=b")
		So(err, ShouldBeNil)
		So(field, ShouldEqual, "note")
		So(value, ShouldEqual, "a=b")

		_, _, err = product.ParseCriterion("=x")
		So(err, ShouldNotBeNil)
		_, _, err = product.ParseCriterion("nofield")
		So(err, ShouldNotBeNil)
	})
}
