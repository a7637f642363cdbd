package localstore

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMap(t *testing.T) {
	Convey("Given an empty map storage", t, func() {
		m := NewMap()

		Convey("Missing keys are absent", func() {
			_, ok := m.GetItem("nope")
			So(ok, ShouldBeFalse)
		})

		Convey("Set, update and remove round trip", func() {
			m.SetItem("k", "1")
			m.UpdateItem("k", func(cur string, ok bool) string {
				So(ok, ShouldBeTrue)
				return cur + "2"
			})
			v, _ := m.GetItem("k")
			So(v, ShouldEqual, "12")

			m.RemoveItem("k")
			m.RemoveItem("k")
			_, ok := m.GetItem("k")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestJSONHelpers(t *testing.T) {
	Convey("Given JSON stored values", t, func() {
		m := NewMap()
		SetJSON(m, KeyBadges, []string{"im_an_agripreneur"})

		var badges []string
		So(GetJSON(m, KeyBadges, &badges), ShouldBeTrue)
		So(badges, ShouldResemble, []string{"im_an_agripreneur"})

		Convey("Corrupt values read as absent", func() {
			m.SetItem(KeyBadges, "{not json")
			var again []string
			So(GetJSON(m, KeyBadges, &again), ShouldBeFalse)
		})
	})
}
