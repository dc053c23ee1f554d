package sensorsim

import (
	"context"
	"log/slog"
	"time"

	"meteo-server/internal/modules/weather/types"
)

// Publisher delivers one reading.
type Publisher interface {
	Publish(ctx context.Context, p types.Payload) error
}

// Run publishes a reading immediately and then once per interval until ctx
// is done. Failed publishes are logged and the loop continues.
func Run(ctx context.Context, gen *Generator, pub Publisher, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		publishOnce(ctx, gen, pub, interval)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func publishOnce(ctx context.Context, gen *Generator, pub Publisher, interval time.Duration) {
	p := gen.Next()
	timeout := min(interval, 10*time.Second)
	pubCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := pub.Publish(pubCtx, p); err != nil {
		slog.Warn("publish reading failed", "error", err)
		return
	}
	slog.Info("reading published",
		"temperature", *p.Temperature,
		"humidity", *p.Humidity,
		"pressure", *p.Pressure,
	)
}
