package weather

import (
	"database/sql"
	"net/http"

	"meteo-server/internal/config"
	"meteo-server/internal/modules/weather/chart"
	"meteo-server/internal/modules/weather/controller"
	"meteo-server/internal/modules/weather/live"
	"meteo-server/internal/modules/weather/repository"
	"meteo-server/internal/modules/weather/service"
	"meteo-server/internal/mqtt"
	"meteo-server/internal/usage"
)

// Feature holds what the weather module needs besides the mux.
type Feature struct {
	DB      *sql.DB
	Config  config.Config
	Visits  usage.VisitStore
	Metrics *usage.Metrics
	// Subscriber is nil when MQTT ingestion is disabled.
	Subscriber mqtt.ReadingSubscriber
	// Live is nil when the dashboard push channel is disabled.
	Live  *live.Hub
	Sinks []service.Sink
}

// ServiceOptions maps configuration onto service options.
func ServiceOptions(cfg config.Config) service.Options {
	opts := service.DefaultOptions()
	if cfg.ChartWindow > 0 {
		opts.ChartWindow = cfg.ChartWindow
	}
	if cfg.ChartMatchTolerance > 0 {
		opts.ChartPolicy = chart.Policy{Tolerance: cfg.ChartMatchTolerance}
	}
	if cfg.HistoryLimit > 0 {
		opts.HistoryLimit = cfg.HistoryLimit
	}
	if cfg.ForecastThreshold > 0 {
		opts.ForecastThreshold = cfg.ForecastThreshold
	}
	return opts
}

func RegisterFeature(mux *http.ServeMux, f Feature) *service.Service {
	sinks := f.Sinks
	if f.Live != nil {
		sinks = append(sinks[:len(sinks):len(sinks)], f.Live)
		mux.Handle("GET /ws/readings", f.Live)
	}

	weatherRepository := repository.NewRepository(f.DB, f.Config.Location)
	weatherService := service.NewService(weatherRepository, ServiceOptions(f.Config), sinks...)
	counters := usage.NewCounters(f.Metrics)

	weatherController := controller.NewWeatherController(weatherService, counters, f.Visits, f.Metrics)
	weatherController.RegisterRoutes(mux)

	if f.Subscriber != nil {
		registerMQTTHandler(f.Subscriber, weatherService, f.Metrics)
	}
	return weatherService
}
