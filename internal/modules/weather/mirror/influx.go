// Package mirror copies stored readings to InfluxDB and Kafka for long-term
// dashboards and downstream consumers. The SQLite store stays the source of
// truth.
package mirror

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"meteo-server/internal/modules/weather/types"
)

const measurement = "weather"

type InfluxSink struct {
	client influxdb2.Client
	write  api.WriteAPIBlocking
	org    string
	bucket string
}

func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	client := influxdb2.NewClientWithOptions(url, token,
		influxdb2.DefaultOptions().SetHTTPRequestTimeout(10))
	return &InfluxSink{
		client: client,
		write:  client.WriteAPIBlocking(org, bucket),
		org:    org,
		bucket: bucket,
	}
}

// Ping reports an error unless the server health check passes.
func (s *InfluxSink) Ping(ctx context.Context) error {
	health, err := s.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx health: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("influx health: status %s: %s", health.Status, msg)
	}
	return nil
}

// Write stores p as one point with all measurements as fields.
func (s *InfluxSink) Write(ctx context.Context, p types.DerivedPoint) error {
	ts := p.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	point := influxdb2.NewPoint(
		measurement,
		nil,
		map[string]interface{}{
			"temperature": p.Temperature,
			"humidity":    p.Humidity,
			"pressure":    p.Pressure,
			"feels_like":  p.FeelsLike,
		},
		ts,
	)
	if err := s.write.WritePoint(ctx, point); err != nil {
		return fmt.Errorf("write %s to %s/%s: %w", measurement, s.org, s.bucket, err)
	}
	return nil
}

func (s *InfluxSink) Close() {
	s.client.Close()
}
