package controller

import (
	"context"
	"net/http"

	"meteo-server/internal/modules/weather/types"
	"meteo-server/internal/usage"
)

// WeatherService is the part of service.Service the handlers use.
type WeatherService interface {
	Current(ctx context.Context) (types.DerivedPoint, error)
	History(ctx context.Context) ([]types.DerivedPoint, error)
	Chart(ctx context.Context) ([]types.ChartPoint, error)
	Forecast(ctx context.Context) (types.Forecast, error)
	Ingest(ctx context.Context, p types.Payload) (types.Reading, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service  WeatherService
	counters *usage.Counters
	visits   usage.VisitStore
	metrics  *usage.Metrics
}

func NewWeatherController(service WeatherService, counters *usage.Counters, visits usage.VisitStore, metrics *usage.Metrics) WeatherController {
	return &weatherControllerImpl{
		service:  service,
		counters: counters,
		visits:   visits,
		metrics:  metrics,
	}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleDashboard)
	mux.HandleFunc("GET /partials/current", c.handleCurrentPartial)
	mux.HandleFunc("GET /partials/chart", c.handleChartPartial)
	mux.HandleFunc("GET /partials/forecast", c.handleForecastPartial)

	mux.HandleFunc("POST /api/data", c.handleData)
	mux.HandleFunc("GET /api/current", c.handleCurrent)
	mux.HandleFunc("GET /api/history", c.handleHistory)
	mux.HandleFunc("GET /api/simple_chart", c.handleSimpleChart)
	mux.HandleFunc("GET /api/forecast", c.handleForecast)

	mux.HandleFunc("GET /api/stats", c.handleStats)
	mux.HandleFunc("GET /api/visits", c.handleVisits)
	mux.HandleFunc("DELETE /api/reset_stats", c.handleResetStats)
}
