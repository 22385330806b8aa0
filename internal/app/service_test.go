package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	service "github.com/okian/birthprofile/internal/app"
	"github.com/okian/birthprofile/internal/adapters/ephemeris"
	"github.com/okian/birthprofile/internal/domain/chart"
	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	goleak.VerifyTestMain(m)
}

func alice() types.BirthInput {
	return types.BirthInput{
		Name:      "Alice",
		Birthdate: "1990-05-15",
		Birthtime: "12:00",
		Timezone:  "+09:00",
		Latitude:  35.68,
		Longitude: 139.77,
	}
}

// fakeChart places bodies at fixed longitudes with thirty-degree houses from 0° Aries.
type fakeChart struct {
	lons    map[chart.Body]float64
	noHouse map[float64]bool
}

func (f *fakeChart) Get(b chart.Body) (chart.Position, error) {
	lon, ok := f.lons[b]
	if !ok {
		return chart.Position{}, errors.New("not computed")
	}
	return chart.Position{Body: b, Sign: chart.SignOf(lon), Lon: lon}, nil
}

func (f *fakeChart) HouseOf(lon float64) (int, bool) {
	if f.noHouse[lon] {
		return 0, false
	}
	return int(lon/30) + 1, true
}

// fakeBuilder records requests and returns a fixed chart or error.
type fakeBuilder struct {
	mu    sync.Mutex
	reqs  []ephemeris.Request
	chart *fakeChart
	err   error
}

func (b *fakeBuilder) Build(_ context.Context, req ephemeris.Request) (chart.Chart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reqs = append(b.reqs, req)
	if b.err != nil {
		return nil, b.err
	}
	return b.chart, nil
}

func (b *fakeBuilder) Supported() []chart.Body {
	return []chart.Body{chart.Sun, chart.Moon, chart.Mars, chart.Pluto, chart.NorthNode, chart.Asc}
}

func newFakeBuilder() *fakeBuilder {
	return &fakeBuilder{chart: &fakeChart{
		lons: map[chart.Body]float64{
			chart.Sun:       54.25,  // Taurus, house 2
			chart.Moon:      200.5,  // Libra, house 7
			chart.Mars:      10.0,   // Aries, house 1
			chart.Pluto:     226.75, // Scorpio, house 8
			chart.NorthNode: 305.0,  // Aquarius, house 11
			chart.Asc:       160.0,  // Virgo
		},
		noHouse: map[float64]bool{},
	}}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it reports every chart object", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Bodies(), ShouldResemble, chart.Objects)
			So(svc.Bodies(), ShouldContain, chart.Mercury)
			So(svc.Bodies(), ShouldContain, chart.Neptune)
		})
	})

	Convey("Given a service with a custom builder and body list", t, func() {
		svc := service.New(
			service.WithChartBuilder(newFakeBuilder()),
			service.WithBodies(chart.Sun, chart.Moon),
			service.WithLogger(logger.Get()),
		)

		Convey("Then the body list is used as given", func() {
			So(svc.Bodies(), ShouldResemble, []chart.Body{chart.Sun, chart.Moon})
		})
	})

	Convey("Given a custom builder without a body list", t, func() {
		svc := service.New(service.WithChartBuilder(newFakeBuilder()))

		Convey("Then the default list is restricted to what the builder supports", func() {
			So(svc.Bodies(), ShouldResemble, []chart.Body{chart.Sun, chart.Moon, chart.Mars, chart.Pluto, chart.NorthNode})
		})
	})
}

func TestDiagnose_EndToEnd(t *testing.T) {
	Convey("Given the service with the built-in ephemeris", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When diagnosing Alice", func() {
			p, err := svc.Diagnose(ctx, alice())
			So(err, ShouldBeNil)

			Convey("Then the input fields are echoed", func() {
				So(p.Name, ShouldEqual, "Alice")
				So(p.Birthdate, ShouldEqual, "1990-05-15")
				So(p.Birthtime, ShouldEqual, "12:00")
				So(p.Timezone, ShouldEqual, "+09:00")
				So(p.Latitude, ShouldEqual, 35.68)
				So(p.Longitude, ShouldEqual, 139.77)
			})

			Convey("And the calendar and numerology sections are filled", func() {
				So(p.LifePathNumber, ShouldEqual, 3)
				So(p.EtoYear, ShouldEqual, "庚午")
				So(p.Sukuyou, ShouldEqual, "房宿")
				So(p.Maya, ShouldResemble, types.Maya{
					Kin:       226,
					Sigil:     "白い世界の橋渡し",
					Color:     "白",
					Tone:      5,
					Wavespell: "白い風",
				})
				So(p.Kabbalah, ShouldResemble, types.Kabbalah{SoulNumber: 7, DestinyNumber: 4})
			})

			Convey("And the chart section is consistent", func() {
				So(p.SunSign, ShouldEqual, "Taurus")
				So(p.Ascendant, ShouldEqual, "Virgo")
				So(p.MoonSign, ShouldNotBeEmpty)
				So(p.NorthNodeSign, ShouldNotBeEmpty)
				So(len(p.Planets), ShouldEqual, len(chart.Objects))
				So(p.Planets["Sun"].Sign, ShouldEqual, "Taurus")
				So(p.Planets["Mercury"].Sign, ShouldEqual, "Taurus")
				So(p.Planets["Venus"].Sign, ShouldEqual, "Aries")
				So(p.Planets["Mars"].Sign, ShouldEqual, "Pisces")
				So(p.Planets["Jupiter"].Sign, ShouldEqual, "Cancer")
				So(p.Planets["Saturn"].Sign, ShouldEqual, "Capricorn")
				So(p.Planets["Syzygy"].Sign, ShouldEqual, "Scorpio")

				total := 0
				for _, n := range p.ElementBalance {
					total += n
				}
				So(total, ShouldEqual, len(p.Planets))
				So(p.ElementBalance, ShouldContainKey, "Fire")
				So(p.ElementBalance, ShouldContainKey, "Water")
				for _, n := range p.ElementBalance {
					So(p.ElementBalance[p.DominantElement], ShouldBeGreaterThanOrEqualTo, n)
				}

				housed := 0
				for _, bodies := range p.HousePlanets {
					housed += len(bodies)
				}
				So(housed, ShouldEqual, len(p.Planets))
			})
		})

		Convey("When diagnosing the same input twice", func() {
			first, err := svc.Diagnose(ctx, alice())
			So(err, ShouldBeNil)
			second, err := svc.Diagnose(ctx, alice())
			So(err, ShouldBeNil)

			Convey("Then the profiles are identical", func() {
				So(cmp.Diff(first, second), ShouldBeEmpty)
			})
		})

		Convey("When diagnosing a date before every epoch", func() {
			in := alice()
			in.Birthdate = "1900-01-01"
			p, err := svc.Diagnose(ctx, in)
			So(err, ShouldBeNil)

			Convey("Then the cycles wrap to valid labels", func() {
				So(p.EtoYear, ShouldEqual, "庚子")
				So(p.Sukuyou, ShouldEqual, "觜宿")
				So(p.Maya.Kin, ShouldEqual, 240)
				So(p.Maya.Tone, ShouldEqual, 6)
			})
		})
	})
}

func TestDiagnose_ChartCollaborator(t *testing.T) {
	Convey("Given a service over a fake builder", t, func() {
		b := newFakeBuilder()
		svc := service.New(service.WithChartBuilder(b))
		ctx := context.Background()

		Convey("When diagnosing", func() {
			p, err := svc.Diagnose(ctx, alice())
			So(err, ShouldBeNil)

			Convey("Then the builder receives the literal formats it expects", func() {
				So(b.reqs, ShouldHaveLength, 1)
				req := b.reqs[0]
				So(req.Date, ShouldEqual, "1990/05/15")
				So(req.Time, ShouldEqual, "12:00")
				So(req.Offset, ShouldEqual, "+09:00")
				So(req.Lat, ShouldEqual, "+35:40:48")
				So(req.Lon, ShouldEqual, "+139:46:12")
				So(req.Bodies, ShouldResemble, svc.Bodies())
			})

			Convey("And placements are grouped by house in request order", func() {
				So(p.HousePlanets, ShouldResemble, map[int][]string{
					1: {"Mars"}, 2: {"Sun"}, 7: {"Moon"}, 8: {"Pluto"}, 11: {"North Node"},
				})
				So(*p.Planets["Pluto"].House, ShouldEqual, 8)
				So(p.Planets["Pluto"].Degree, ShouldEqual, 226.75)
				So(p.ElementBalance, ShouldResemble, map[string]int{"Fire": 1, "Earth": 1, "Air": 2, "Water": 1})
				So(p.DominantElement, ShouldEqual, "Air")
				So(p.Ascendant, ShouldEqual, "Virgo")
			})
		})

		Convey("When one body's house cannot be determined", func() {
			b.chart.noHouse[226.75] = true
			p, err := svc.Diagnose(ctx, alice())
			So(err, ShouldBeNil)

			Convey("Then that body is placed without a house", func() {
				So(p.Planets["Pluto"].Sign, ShouldEqual, "Scorpio")
				So(p.Planets["Pluto"].House, ShouldBeNil)
				So(p.HousePlanets, ShouldNotContainKey, 8)
				So(p.HousePlanets[2], ShouldResemble, []string{"Sun"})
			})
		})

		Convey("When the builder fails", func() {
			b.err = ephemeris.ErrEphemeris
			_, err := svc.Diagnose(ctx, alice())

			Convey("Then the whole diagnosis fails as a chart error", func() {
				So(errors.Is(err, service.ErrChart), ShouldBeTrue)
				So(errors.Is(err, ephemeris.ErrEphemeris), ShouldBeTrue)
				So(svc.GetStats().ChartFailures, ShouldEqual, int64(1))
			})
		})

		Convey("When a requested body is missing from the chart", func() {
			delete(b.chart.lons, chart.Mars)
			_, err := svc.Diagnose(ctx, alice())

			Convey("Then the diagnosis fails", func() {
				So(errors.Is(err, service.ErrChart), ShouldBeTrue)
				So(errors.Is(err, chart.ErrBodyUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestDiagnose_InvalidInput(t *testing.T) {
	Convey("Given a service over a fake builder", t, func() {
		b := newFakeBuilder()
		svc := service.New(service.WithChartBuilder(b))
		ctx := context.Background()

		Convey("When the input is malformed", func() {
			for _, mutate := range []func(*types.BirthInput){
				func(in *types.BirthInput) { in.Birthdate = "1990/05/15" },
				func(in *types.BirthInput) { in.Birthdate = "1990-02-30" },
				func(in *types.BirthInput) { in.Birthtime = "25:00" },
				func(in *types.BirthInput) { in.Birthtime = "" },
				func(in *types.BirthInput) { in.Timezone = "JST" },
				func(in *types.BirthInput) { in.Latitude = 91 },
				func(in *types.BirthInput) { in.Longitude = -181 },
				func(in *types.BirthInput) { in.Latitude = math.NaN() },
			} {
				in := alice()
				mutate(&in)
				_, err := svc.Diagnose(ctx, in)
				So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			}

			Convey("Then it fails before the chart is requested", func() {
				So(b.reqs, ShouldBeEmpty)
				stats := svc.GetStats()
				So(stats.InvalidInputs, ShouldEqual, int64(8))
				So(stats.DiagnosesServed, ShouldEqual, int64(0))
			})
		})
	})
}

func TestService_Concurrent(t *testing.T) {
	Convey("Given concurrent diagnoses", t, func() {
		svc := service.New()
		ctx := context.Background()
		want, err := svc.Diagnose(ctx, alice())
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		diffs := make([]string, 8)
		for i := range diffs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				got, err := svc.Diagnose(ctx, alice())
				if err != nil {
					diffs[i] = err.Error()
					return
				}
				diffs[i] = cmp.Diff(want, got)
			}(i)
		}
		wg.Wait()

		Convey("Then every result matches", func() {
			for _, d := range diffs {
				So(d, ShouldBeEmpty)
			}
			So(svc.GetStats().DiagnosesServed, ShouldEqual, int64(9))
		})
	})
}
