// Command sensorsim feeds simulated station readings to a meteo-server over
// HTTP or MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"meteo-server/internal/config"
	"meteo-server/internal/logging"
	"meteo-server/internal/mqtt"
	"meteo-server/internal/sensorsim"
)

const appName = "meteo-sensorsim"

var version = "dev"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	simCfg, err := config.LoadSimFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg, version, appName).With("node_id", simCfg.NodeID))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, simCfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}

func run(ctx context.Context, cfg config.Config, simCfg config.SimConfig) error {
	var pub sensorsim.Publisher
	switch simCfg.Mode {
	case config.SimModeMQTT:
		if cfg.MQTTBroker == "" {
			return errors.New("SIM_MODE=mqtt needs MQTT_BROKER")
		}
		cfg.MQTTClientID = simCfg.NodeID
		mqttPub := mqtt.NewPublisher(cfg, slog.Default())
		defer mqttPub.Disconnect()
		if err := mqttPub.Connect(ctx); err != nil {
			return err
		}
		pub = mqttPub
		slog.Info("publishing over mqtt", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic, "interval", simCfg.Interval)
	default:
		pub = sensorsim.NewHTTPPublisher(simCfg.TargetURL, simCfg.NodeID)
		slog.Info("publishing over http", "url", simCfg.TargetURL, "interval", simCfg.Interval)
	}

	return sensorsim.Run(ctx, sensorsim.NewGenerator(simCfg.Seed), pub, simCfg.Interval)
}
