package mqtt

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"meteo-server/internal/config"
)

// clientOptions holds the broker, session and retry settings shared by the
// subscriber and the publisher. Callers add their own callbacks.
func clientOptions(cfg config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	return opts
}

// waitConnect waits for token while honoring ctx and stop. On either it
// aborts the client's retry loop.
func waitConnect(ctx context.Context, client mqtt.Client, token mqtt.Token, stop <-chan struct{}, stoppedErr error) error {
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			client.Disconnect(0)
			return ctx.Err()
		case <-stop:
			client.Disconnect(0)
			return stoppedErr
		default:
		}
	}
}
