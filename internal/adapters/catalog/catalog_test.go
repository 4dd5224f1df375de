package catalog

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/storefront/internal/domain/product"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a store seeded with products", t, func() {
		seed := []product.Product{
			{"id": "a", "price": 1.0},
			{"id": "b", "price": 2.0},
		}
		s := NewStore(seed)

		Convey("Then it reports the count and first version", func() {
			So(s.Count(), ShouldEqual, 2)
			So(s.Version(), ShouldEqual, uint64(1))
			So(s.UpdatedAt().IsZero(), ShouldBeFalse)
		})

		Convey("When the caller mutates the seed or a read copy", func() {
			seed[0]["price"] = 99.0
			all := s.All()
			all[1]["price"] = 42.0

			Convey("Then the stored catalog is unaffected", func() {
				fresh := s.All()
				So(fresh[0]["price"], ShouldEqual, 1.0)
				So(fresh[1]["price"], ShouldEqual, 2.0)
			})
		})

		Convey("When the catalog is replaced", func() {
			v := s.Replace([]product.Product{{"id": "c"}})

			Convey("Then the version advances and the contents change", func() {
				So(v, ShouldEqual, uint64(2))
				So(s.Count(), ShouldEqual, 1)
				So(s.All()[0]["id"], ShouldEqual, "c")
			})
		})
	})
}

func TestSnapshots(t *testing.T) {
	products := []product.Product{
		{"id": "p1", "name": "Lamp", "price": 15.5, "category": "home"},
		{"id": "p2", "name": "Mug", "category": "kitchen"},
	}

	for _, ext := range []string{".json", ".msgpack", ".lz4"} {
		Convey("Given a catalog saved as "+ext, t, func() {
			path := filepath.Join(t.TempDir(), "catalog"+ext)
			So(Save(path, products), ShouldBeNil)

			Convey("When it is loaded back", func() {
				loaded, err := Load(path)

				Convey("Then the records keep their fields", func() {
					So(err, ShouldBeNil)
					So(len(loaded), ShouldEqual, 2)
					So(loaded[0].Name(), ShouldEqual, "Lamp")
					price, ok := loaded[0].Price()
					So(ok, ShouldBeTrue)
					So(price, ShouldEqual, 15.5)
					_, ok = loaded[1].Price()
					So(ok, ShouldBeFalse)
					category, _ := loaded[1].Category()
					So(category, ShouldEqual, "kitchen")
				})
			})
		})
	}

	Convey("Given an unknown extension", t, func() {
		path := filepath.Join(t.TempDir(), "catalog.csv")

		Convey("Then saving and loading fail with ErrUnsupportedFormat", func() {
			So(errors.Is(Save(path, products), ErrUnsupportedFormat), ShouldBeTrue)
			_, err := Load(path)
			So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
		})
	})

	Convey("Given a missing file", t, func() {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))

		Convey("Then ErrReadSnapshot is returned", func() {
			So(errors.Is(err, ErrReadSnapshot), ShouldBeTrue)
		})
	})

	Convey("Given an empty catalog", t, func() {
		var buf bytes.Buffer
		So(Encode(&buf, FormatLZ4, nil), ShouldBeNil)

		Convey("Then it decodes to an empty, non-nil list", func() {
			loaded, err := Decode(&buf, FormatLZ4)
			So(err, ShouldBeNil)
			So(loaded, ShouldNotBeNil)
			So(len(loaded), ShouldEqual, 0)
		})
	})

	Convey("Given corrupt msgpack", t, func() {
		_, err := Decode(bytes.NewReader([]byte{0xc1}), FormatMsgpack)

		Convey("Then ErrReadSnapshot is returned", func() {
			So(errors.Is(err, ErrReadSnapshot), ShouldBeTrue)
		})
	})
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		products, err := Generate(200, WithSeed(7))
		So(err, ShouldBeNil)

		Convey("Then every record has a unique id and the core fields", func() {
			So(len(products), ShouldEqual, 200)
			seen := make(map[any]bool, len(products))
			for _, p := range products {
				So(seen[p.ID()], ShouldBeFalse)
				seen[p.ID()] = true
				So(p.Name(), ShouldNotBeEmpty)
				price, ok := p.Price()
				So(ok, ShouldBeTrue)
				So(price, ShouldBeBetweenOrEqual, minPrice, maxPrice)
				_, ok = p.Category()
				So(ok, ShouldBeTrue)
			}
		})
	})

	Convey("Given sparse generation", t, func() {
		products, err := Generate(2000, WithSeed(11), WithSparseFields(true))
		So(err, ShouldBeNil)

		Convey("Then some records lack a price", func() {
			missing := 0
			for _, p := range products {
				if _, ok := p.Price(); !ok {
					missing++
				}
			}
			So(missing, ShouldBeGreaterThan, 0)
			So(missing, ShouldBeLessThan, len(products)/2)
		})
	})

	Convey("Given a negative count", t, func() {
		_, err := Generate(-1)

		Convey("Then ErrInvalidCount is returned", func() {
			So(errors.Is(err, ErrInvalidCount), ShouldBeTrue)
		})
	})
}
