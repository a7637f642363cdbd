package hints

import (
	"testing"

	"github.com/agrisiti/agrikit/internal/domain/localstore"
	. "github.com/smartystreets/goconvey/convey"
)

func TestHints(t *testing.T) {
	Convey("Given an empty storage", t, func() {
		s := localstore.NewMap()

		Convey("Load falls back to defaults", func() {
			r := Load(s)
			So(r.Version, ShouldEqual, Version)
			So(r.Match(), ShouldEqual, "")
			So(r.Total(), ShouldEqual, 0)
			So(r.Price(), ShouldEqual, 0)
		})

		Convey("Updates from different activities merge", func() {
			Update(s, func(r *Record) { r.SetMatch("fish") })
			Update(s, func(r *Record) { r.SetCosts("rice", 45000, []int{1, 0}) })
			Update(s, func(r *Record) { r.SetBreakEven(10000, 5) })

			r := Load(s)
			So(r.Match(), ShouldEqual, "fish")
			So(r.Costs(), ShouldEqual, "rice")
			So(r.Total(), ShouldEqual, 45000)
			So(r.CostsSelected, ShouldResemble, []int{0, 1})
			So(r.Price(), ShouldEqual, 10000)
			So(*r.BreakEvenUnits, ShouldEqual, 5)
		})

		Convey("A corrupt record is replaced rather than propagated", func() {
			s.SetItem(localstore.KeyHints, "garbage")
			So(Load(s).Match(), ShouldEqual, "")

			Update(s, func(r *Record) { r.SetMatch("rice") })
			So(Load(s).Match(), ShouldEqual, "rice")
		})
	})
}
