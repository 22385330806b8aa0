package numerology_test

import (
	"testing"

	"github.com/okian/birthprofile/internal/domain/numerology"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReduce(t *testing.T) {
	Convey("Given the digit reducer", t, func() {
		Convey("Then single digits are returned unchanged", func() {
			for n := 0; n < 10; n++ {
				So(numerology.Reduce(n), ShouldEqual, n)
			}
		})

		Convey("And master numbers are never reduced", func() {
			So(numerology.Reduce(11), ShouldEqual, 11)
			So(numerology.Reduce(22), ShouldEqual, 22)
			So(numerology.Reduce(33), ShouldEqual, 33)
		})

		Convey("And sums reduce until single digit", func() {
			So(numerology.Reduce(16), ShouldEqual, 7)
			So(numerology.Reduce(44), ShouldEqual, 8)
			So(numerology.Reduce(99), ShouldEqual, 9)
			So(numerology.Reduce(1990), ShouldEqual, 1)
		})

		Convey("And reduction stops at an intermediate master number", func() {
			So(numerology.Reduce(29), ShouldEqual, 11)
			So(numerology.Reduce(38), ShouldEqual, 11)
		})

		Convey("And the result is idempotent", func() {
			for n := 0; n < 500; n++ {
				r := numerology.Reduce(n)
				So(numerology.Reduce(r), ShouldEqual, r)
				So(r < 10 || numerology.IsMaster(r), ShouldBeTrue)
			}
		})
	})
}

func TestLifePath(t *testing.T) {
	Convey("Given a birthdate string", t, func() {
		Convey("When it is 1990-05-15", func() {
			Convey("Then the digits 30 reduce to 3", func() {
				So(numerology.LifePath("1990-05-15"), ShouldEqual, 3)
			})
		})

		Convey("When separators differ", func() {
			So(numerology.LifePath("1990/05/15"), ShouldEqual, numerology.LifePath("1990-05-15"))
			So(numerology.LifePath("19900515"), ShouldEqual, 3)
		})

		Convey("When the digits sum to a two-digit ordinary number", func() {
			// 20 -> 2
			So(numerology.LifePath("2000-09-18"), ShouldEqual, 2)
		})

		Convey("When the digits sum to a master number", func() {
			// 22 stays
			So(numerology.LifePath("2009-09-02"), ShouldEqual, 22)
		})
	})
}

func TestKabbalah(t *testing.T) {
	Convey("Given a name", t, func() {
		Convey("When it is Alice", func() {
			k := numerology.Kabbalah("Alice")

			Convey("Then soul counts vowels and destiny counts all letters", func() {
				So(k.Soul, ShouldEqual, 7)
				So(k.Destiny, ShouldEqual, 4)
			})
		})

		Convey("When it has spaces and mixed case", func() {
			So(numerology.Kabbalah("Bob Smith"), ShouldResemble, numerology.KabbalahNumbers{Soul: 8, Destiny: 1})
			So(numerology.Kabbalah("bob smith"), ShouldResemble, numerology.Kabbalah("BOB SMITH"))
		})

		Convey("When it contains characters outside the table", func() {
			So(numerology.Kabbalah("山田 Taro"), ShouldResemble, numerology.KabbalahNumbers{Soul: 8, Destiny: 5})
		})

		Convey("When a letter upper-cases to two letters", func() {
			// ß -> SS, 3 + 3
			So(numerology.Kabbalah("ß"), ShouldResemble, numerology.KabbalahNumbers{Soul: 0, Destiny: 6})
			So(numerology.Kabbalah("Straße"), ShouldResemble, numerology.Kabbalah("STRASSE"))
		})

		Convey("When it is empty", func() {
			So(numerology.Kabbalah(""), ShouldResemble, numerology.KabbalahNumbers{})
		})
	})
}
