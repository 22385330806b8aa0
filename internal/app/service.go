// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/okian/birthprofile/internal/adapters/ephemeris"
	"github.com/okian/birthprofile/internal/domain/calendar"
	"github.com/okian/birthprofile/internal/domain/chart"
	"github.com/okian/birthprofile/internal/domain/model"
	"github.com/okian/birthprofile/internal/domain/numerology"
	"github.com/okian/birthprofile/internal/domain/types"
	"github.com/okian/birthprofile/pkg/logger"
	"github.com/okian/birthprofile/pkg/metrics"
)

// Literal formats of BirthInput.
const (
	BirthdateLayout = "2006-01-02"
	BirthtimeLayout = "15:04"
)

// ChartBuilder produces the chart object for a birth moment and place.
type ChartBuilder interface {
	Build(ctx context.Context, req ephemeris.Request) (chart.Chart, error)
	Supported() []chart.Body
}

// Service computes birth profiles. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	charts ChartBuilder
	bodies []chart.Body
	logger logger.Logger

	served       atomic.Int64
	invalid      atomic.Int64
	chartFailure atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChartBuilder replaces the default ephemeris builder.
func WithChartBuilder(b ChartBuilder) Option {
	return func(s *Service) {
		if b != nil {
			s.charts = b
		}
	}
}

// WithBodies sets the bodies reported under planets. By default every body
// of chart.Objects the builder supports is reported.
func WithBodies(bodies ...chart.Body) Option {
	return func(s *Service) {
		if len(bodies) > 0 {
			s.bodies = append([]chart.Body(nil), bodies...)
		}
	}
}

// New constructs a new Service.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Discard()
	}
	if s.charts == nil {
		s.charts = ephemeris.New()
	}
	if s.bodies == nil {
		s.bodies = defaultBodies(s.charts.Supported())
	}
	return s
}

// defaultBodies is chart.Objects restricted to what the builder supports.
func defaultBodies(supported []chart.Body) []chart.Body {
	ok := make(map[chart.Body]bool, len(supported))
	for _, b := range supported {
		ok[b] = true
	}
	out := make([]chart.Body, 0, len(chart.Objects))
	for _, b := range chart.Objects {
		if ok[b] {
			out = append(out, b)
		}
	}
	return out
}

// Bodies returns the bodies reported under planets.
func (s *Service) Bodies() []chart.Body {
	return append([]chart.Body(nil), s.bodies...)
}

// Diagnose computes the profile for in. Malformed input fails with
// ErrInvalidInput; a chart that cannot be built fails with ErrChart. A body
// whose house cannot be determined is reported without one.
func (s *Service) Diagnose(ctx context.Context, in types.BirthInput) (types.Profile, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDiagnosisLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	birth, err := parseBirth(in)
	if err != nil {
		s.invalid.Add(1)
		metrics.RecordDiagnosisFailure("invalid_input")
		s.logger.Debug(ctx, "rejected birth input", logger.Error(err))
		return types.Profile{}, err
	}

	summary, err := s.classify(ctx, birth)
	if err != nil {
		s.chartFailure.Add(1)
		metrics.RecordDiagnosisFailure("chart")
		metrics.RecordErrorByComponent("ephemeris", kindOf(err))
		s.logger.Warn(ctx, "chart unavailable",
			logger.String("birthdate", in.Birthdate),
			logger.Error(err),
		)
		return types.Profile{}, err
	}

	tz := calendar.Maya(birth.Date())
	kab := numerology.Kabbalah(birth.Name)
	p := types.Profile{
		Name:      in.Name,
		Birthdate: in.Birthdate,
		Birthtime: in.Birthtime,
		Timezone:  in.Timezone,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,

		SunSign:         string(summary.SunSign),
		MoonSign:        string(summary.MoonSign),
		Ascendant:       string(summary.AscSign),
		NorthNodeSign:   string(summary.NorthNodeSign),
		HousePlanets:    housePlanets(summary),
		ElementBalance:  elementBalance(summary),
		DominantElement: string(summary.Dominant),
		Planets:         placements(summary),

		LifePathNumber: numerology.LifePath(in.Birthdate),
		EtoYear:        calendar.Eto(birth.Year()),
		Sukuyou:        calendar.Sukuyou(birth.Date()),
		Kabbalah:       types.Kabbalah{SoulNumber: kab.Soul, DestinyNumber: kab.Destiny},
		Maya: types.Maya{
			Kin:       tz.Kin,
			Sigil:     tz.Sigil,
			Color:     tz.Color,
			Tone:      tz.Tone,
			Wavespell: tz.Wavespell,
		},
	}

	s.served.Add(1)
	metrics.RecordDiagnosis()
	metrics.RecordDominantElement(p.DominantElement)
	s.logger.Debug(ctx, "profile computed",
		logger.String("sun", p.SunSign),
		logger.Int("kin", p.Maya.Kin),
		logger.Int("house_misses", summary.HouseMisses),
	)
	return p, nil
}

// classify builds the chart for birth and summarizes it.
func (s *Service) classify(ctx context.Context, birth model.Birth) (chart.Summary, error) {
	req := ephemeris.Request{
		Date:   birth.Local.Format(ephemeris.DateLayout),
		Time:   birth.Local.Format(ephemeris.TimeLayout),
		Offset: birth.Offset,
		Lat:    ephemeris.FormatDMS(birth.Lat),
		Lon:    ephemeris.FormatDMS(birth.Lon),
		Bodies: s.bodies,
	}

	buildStart := time.Now()
	ch, err := s.charts.Build(ctx, req)
	metrics.RecordChartBuildLatency(float64(time.Since(buildStart).Microseconds()) / 1000)
	if err != nil {
		return chart.Summary{}, fmt.Errorf("%w: %w", ErrChart, err)
	}

	summary, err := chart.Classify(ch, s.bodies)
	if err != nil {
		return chart.Summary{}, fmt.Errorf("%w: %w", ErrChart, err)
	}
	for _, b := range summary.Bodies {
		if !summary.Planets[b].HasHouse() {
			metrics.RecordHouseMiss(string(b))
		}
	}
	return summary, nil
}

// parseBirth checks in and resolves its local birth moment.
func parseBirth(in types.BirthInput) (model.Birth, error) {
	day, err := time.Parse(BirthdateLayout, in.Birthdate)
	if err != nil {
		return model.Birth{}, fmt.Errorf("%w: birthdate %q", ErrInvalidInput, in.Birthdate)
	}
	clock, err := time.Parse(BirthtimeLayout, in.Birthtime)
	if err != nil {
		return model.Birth{}, fmt.Errorf("%w: birthtime %q", ErrInvalidInput, in.Birthtime)
	}
	loc, err := ephemeris.ParseOffset(in.Timezone)
	if err != nil {
		return model.Birth{}, fmt.Errorf("%w: timezone %q", ErrInvalidInput, in.Timezone)
	}
	if !finite(in.Latitude) || in.Latitude < -90 || in.Latitude > 90 {
		return model.Birth{}, fmt.Errorf("%w: latitude %v", ErrInvalidInput, in.Latitude)
	}
	if !finite(in.Longitude) || in.Longitude < -180 || in.Longitude > 180 {
		return model.Birth{}, fmt.Errorf("%w: longitude %v", ErrInvalidInput, in.Longitude)
	}

	y, m, d := day.Date()
	return model.Birth{
		Name:   in.Name,
		Local:  time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc),
		Offset: in.Timezone,
		Lat:    in.Latitude,
		Lon:    in.Longitude,
	}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// kindOf labels an ephemeris failure for metrics.
func kindOf(err error) string {
	switch {
	case errors.Is(err, ephemeris.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ephemeris.ErrUnsupportedBody):
		return "unsupported_body"
	case errors.Is(err, ephemeris.ErrEphemeris):
		return "ephemeris"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "classify"
	}
}

func housePlanets(s chart.Summary) map[int][]string {
	out := make(map[int][]string, len(s.HousePlanets))
	for house, bodies := range s.HousePlanets {
		names := make([]string, len(bodies))
		for i, b := range bodies {
			names[i] = string(b)
		}
		out[house] = names
	}
	return out
}

func elementBalance(s chart.Summary) map[string]int {
	out := make(map[string]int, len(s.ElementBalance))
	for e, n := range s.ElementBalance {
		out[string(e)] = n
	}
	return out
}

func placements(s chart.Summary) map[string]types.Placement {
	out := make(map[string]types.Placement, len(s.Planets))
	for b, pl := range s.Planets {
		tp := types.Placement{Sign: string(pl.Sign), Degree: pl.Degree}
		if pl.HasHouse() {
			house := pl.House
			tp.House = &house
		}
		out[string(b)] = tp
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.ServiceStats {
	bodies := make([]string, len(s.bodies))
	for i, b := range s.bodies {
		bodies[i] = string(b)
	}
	return types.ServiceStats{
		DiagnosesServed: s.served.Load(),
		InvalidInputs:   s.invalid.Load(),
		ChartFailures:   s.chartFailure.Load(),
		Bodies:          bodies,
	}
}
