package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"meteo-server/internal/config"
	"meteo-server/internal/db"
	"meteo-server/internal/httpapi"
	"meteo-server/internal/migrate"
	weather "meteo-server/internal/modules/weather"
	"meteo-server/internal/modules/weather/live"
	"meteo-server/internal/modules/weather/mirror"
	"meteo-server/internal/modules/weather/service"
	weatherviews "meteo-server/internal/modules/weather/views"
	"meteo-server/internal/mqtt"
	"meteo-server/internal/usage"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteLogSQL", cfg.SQLiteLogSQL,
		"timezone", cfg.Location.String(),
		"visitsFile", cfg.VisitsFile,
		"redisAddr", cfg.RedisAddr,
		"chartWindow", cfg.ChartWindow,
		"chartMatchTolerance", cfg.ChartMatchTolerance,
		"forecastThreshold", cfg.ForecastThreshold,
		"historyLimit", cfg.HistoryLimit,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
		"influxURL", cfg.InfluxURL,
		"kafkaBrokers", cfg.KafkaBrokers,
		"kafkaTopic", cfg.KafkaTopic,
	)

	dbConn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(ctx, dbConn); err != nil {
		return err
	}
	slog.Info("database ready")

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	visits, closeVisits, err := openVisitStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeVisits()

	var sinks []service.Sink
	if cfg.InfluxURL != "" {
		influx := mirror.NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		defer influx.Close()
		if err := influx.Ping(ctx); err != nil {
			slog.Warn("influx not healthy (mirroring anyway)", "error", err)
		}
		sinks = append(sinks, influx)
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink := mirror.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaSink.Close(); err != nil {
				slog.Error("kafka writer close", "error", err)
			}
		}()
		sinks = append(sinks, kafkaSink)
	}

	metrics := usage.NewMetrics()
	mux := httpapi.NewMux(dbConn, cfg.StaticDir, metrics.Handler())

	hub := live.NewHub(cfg.CORSAllowedOrigins)
	feature := weather.Feature{
		DB:      dbConn,
		Config:  cfg,
		Visits:  visits,
		Metrics: metrics,
		Live:    hub,
		Sinks:   sinks,
	}
	var subscriber *mqtt.Subscriber
	if cfg.MQTTBroker != "" {
		subscriber = mqtt.NewSubscriber(cfg, slog.Default())
		feature.Subscriber = subscriber
	}
	// The handler must be set before connecting: the broker may deliver
	// queued messages right after CONNACK.
	weather.RegisterFeature(mux, feature)

	if subscriber != nil {
		// Retries in the background; HTTP ingestion works while the broker is down.
		go func() {
			if err := subscriber.Connect(ctx); err != nil && ctx.Err() == nil {
				slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
			}
		}()
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	// Shutdown does not wait for hijacked websocket connections.
	hub.Close()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openVisitStore picks Redis when configured, else the visits file.
func openVisitStore(ctx context.Context, cfg config.Config) (usage.VisitStore, func(), error) {
	if cfg.RedisAddr != "" {
		store := usage.NewRedisVisitStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.RedisVisitsKey)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		slog.Info("visit statistics in redis", "addr", cfg.RedisAddr, "key", cfg.RedisVisitsKey)
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("redis close", "error", err)
			}
		}, nil
	}

	store := usage.NewFileVisitStore(cfg.VisitsFile)
	created, err := store.Init()
	if err != nil {
		return nil, nil, fmt.Errorf("init visits file: %w", err)
	}
	if created {
		slog.Info("visit statistics file created", "path", cfg.VisitsFile)
	}
	return store, func() {}, nil
}
