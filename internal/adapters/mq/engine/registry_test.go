package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/storefront/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/text/language"
)

func TestRegistry(t *testing.T) {
	Convey("Given the default registry", t, func() {
		r := NewDefaultRegistry(language.English, WithLogger(logger.Nop()))

		Convey("Then the product engine is bound to the default path", func() {
			So(r.Paths(), ShouldResemble, []string{DefaultEnginePath})

			factory, err := r.Resolve(DefaultEnginePath)
			So(err, ShouldBeNil)

			e, err := factory(context.Background())
			So(err, ShouldBeNil)
			So(e.Terminate(context.Background()), ShouldBeNil)
		})

		Convey("When an unknown path is resolved", func() {
			_, err := r.Resolve("workers/missing")

			Convey("Then ErrEngineNotFound is returned", func() {
				So(errors.Is(err, ErrEngineNotFound), ShouldBeTrue)
			})
		})

		Convey("When the default path is registered twice", func() {
			err := r.Register(DefaultEnginePath, ProductFactory(language.English))

			Convey("Then ErrDuplicatePath is returned", func() {
				So(errors.Is(err, ErrDuplicatePath), ShouldBeTrue)
			})
		})

		Convey("When a blank path is registered", func() {
			err := r.Register("  ", ProductFactory(language.English))

			Convey("Then ErrInvalidPath is returned", func() {
				So(errors.Is(err, ErrInvalidPath), ShouldBeTrue)
			})
		})
	})
}
