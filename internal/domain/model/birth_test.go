package model_test

import (
	"testing"
	"time"

	model "github.com/okian/birthprofile/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestBirth(t *testing.T) {
	convey.Convey("Given a birth late in the evening east of UTC", t, func() {
		zone := time.FixedZone("+09:00", 9*3600)
		birth := model.Birth{
			Name:   "Alice",
			Local:  time.Date(1990, time.May, 15, 23, 30, 0, 0, zone),
			Offset: "+09:00",
			Lat:    35.68,
			Lon:    139.77,
		}

		convey.Convey("Then the local calendar year is used", func() {
			convey.So(birth.Year(), convey.ShouldEqual, 1990)
		})

		convey.Convey("Then the date keeps the local day at UTC midnight", func() {
			d := birth.Date()
			convey.So(d, convey.ShouldEqual, time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC))
			convey.So(d.Location(), convey.ShouldEqual, time.UTC)
		})
	})

	convey.Convey("Given a birth on new year's eve west of UTC", t, func() {
		zone := time.FixedZone("-05:00", -5*3600)
		birth := model.Birth{Local: time.Date(1999, time.December, 31, 22, 0, 0, 0, zone)}

		convey.Convey("Then the year is not shifted by the offset", func() {
			convey.So(birth.Year(), convey.ShouldEqual, 1999)
			convey.So(birth.Date().Day(), convey.ShouldEqual, 31)
		})
	})
}
