package weather

import (
	"context"
	"log/slog"

	"meteo-server/internal/modules/weather/service"
	"meteo-server/internal/modules/weather/types"
	"meteo-server/internal/mqtt"
	"meteo-server/internal/usage"
)

type ingester interface {
	Ingest(ctx context.Context, p types.Payload) (types.Reading, error)
}

// registerMQTTHandler stores every MQTT payload the same way POST /api/data does.
func registerMQTTHandler(subscriber mqtt.ReadingSubscriber, svc ingester, metrics *usage.Metrics) {
	subscriber.SetMessageHandler(func(ctx context.Context, p types.Payload) error {
		rec, err := svc.Ingest(ctx, p)
		if err != nil {
			metrics.Rejected("mqtt")
			return err
		}
		metrics.Ingested("mqtt")
		slog.Debug("reading stored", "id", rec.ID, "source", "mqtt", "timestamp", rec.Timestamp)
		return nil
	})
}

var _ ingester = (*service.Service)(nil)
