package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"meteo-server/internal/modules/weather/types"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes each stored reading as a JSON message keyed by its id.
type KafkaSink struct {
	writer kafkaMessageWriter
	topic  string
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			MaxAttempts:            3,
			BatchTimeout:           20 * time.Millisecond,
			WriteTimeout:           5 * time.Second,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (s *KafkaSink) Write(ctx context.Context, p types.DerivedPoint) error {
	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal reading %d: %w", p.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(p.ID, 10)),
		Value: value,
		Time:  p.Time,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish reading %d to %s: %w", p.ID, s.topic, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
