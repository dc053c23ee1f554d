// Package service answers weather queries by combining stored readings with
// the derived metric, the chart sampler and the forecast.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meteo-server/internal/modules/weather/chart"
	"meteo-server/internal/modules/weather/derive"
	"meteo-server/internal/modules/weather/forecast"
	"meteo-server/internal/modules/weather/repository"
	"meteo-server/internal/modules/weather/types"
)

// DefaultHistoryLimit is the number of rows returned by History.
const DefaultHistoryLimit = 24

// ErrMissingField is returned by Ingest when a payload lacks a measurement.
var ErrMissingField = errors.New("missing field")

// Sink receives every reading after it has been stored.
type Sink interface {
	Write(ctx context.Context, p types.DerivedPoint) error
}

type Options struct {
	ChartWindow       time.Duration
	ChartPolicy       chart.Policy
	HistoryLimit      int
	ForecastThreshold float64
	// Now is the clock; time.Now when nil.
	Now func() time.Time
}

// DefaultOptions mirrors the built-in policy values.
func DefaultOptions() Options {
	return Options{
		ChartWindow:       chart.DefaultWindow,
		ChartPolicy:       chart.DefaultPolicy(),
		HistoryLimit:      DefaultHistoryLimit,
		ForecastThreshold: forecast.DefaultThreshold,
	}
}

type Service struct {
	repository repository.WeatherRepository
	opts       Options
	sinks      []Sink
}

func NewService(repository repository.WeatherRepository, opts Options, sinks ...Sink) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{repository: repository, opts: opts, sinks: sinks}
}

// Current returns the newest reading. It returns repository.ErrNotFound when
// nothing has been stored yet.
func (s *Service) Current(ctx context.Context) (types.DerivedPoint, error) {
	r, err := s.repository.GetLatestReading(ctx)
	if err != nil {
		return types.DerivedPoint{}, err
	}
	return derive.Point(r), nil
}

// History returns the newest readings, oldest first.
func (s *Service) History(ctx context.Context) ([]types.DerivedPoint, error) {
	readings, err := s.repository.GetLatestReadings(ctx, s.opts.HistoryLimit)
	if err != nil {
		return nil, err
	}
	points := derive.Points(readings)
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	for i := range points {
		points[i].ID = 0
	}
	return points, nil
}

// Chart samples the readings of the configured window into chart points.
func (s *Service) Chart(ctx context.Context) ([]types.ChartPoint, error) {
	now := s.opts.Now()
	readings, err := s.repository.GetReadingsSince(ctx, now.Add(-s.opts.ChartWindow))
	if err != nil {
		return nil, err
	}
	return chart.Sample(now, readings, s.opts.ChartPolicy), nil
}

// Forecast classifies the trend of the two newest pressure values.
func (s *Service) Forecast(ctx context.Context) (types.Forecast, error) {
	pressures, err := s.repository.GetLatestPressures(ctx, 2)
	if err != nil {
		return types.Forecast{}, err
	}
	return forecast.FromPressures(pressures, s.opts.ForecastThreshold), nil
}

// Ingest stores a payload stamped with the current time and forwards the
// stored reading to the sinks. Sink failures are logged only.
func (s *Service) Ingest(ctx context.Context, p types.Payload) (types.Reading, error) {
	switch {
	case p.Temperature == nil:
		return types.Reading{}, fmt.Errorf("%w: temperature", ErrMissingField)
	case p.Humidity == nil:
		return types.Reading{}, fmt.Errorf("%w: humidity", ErrMissingField)
	case p.Pressure == nil:
		return types.Reading{}, fmt.Errorf("%w: pressure", ErrMissingField)
	}

	rec, err := s.repository.InsertReading(ctx, *p.Temperature, *p.Humidity, *p.Pressure, s.opts.Now())
	if err != nil {
		return types.Reading{}, err
	}

	point := derive.Point(rec)
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, point); err != nil {
			slog.Warn("reading sink failed", "id", rec.ID, "error", err)
		}
	}
	return rec, nil
}
