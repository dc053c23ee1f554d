package sensorsim

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"meteo-server/internal/modules/weather/types"
)

// HTTPPublisher posts readings to the server's data endpoint.
type HTTPPublisher struct {
	url    string
	client *resty.Client
}

func NewHTTPPublisher(url, nodeID string) *HTTPPublisher {
	client := resty.New().
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Node-ID", nodeID)
	return &HTTPPublisher{url: url, client: client}
}

func (p *HTTPPublisher) Publish(ctx context.Context, payload types.Payload) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("post reading: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		body := resp.String()
		if len(body) > 512 {
			body = body[:512]
		}
		return fmt.Errorf("post reading: %s: %s", resp.Status(), strings.TrimSpace(body))
	}
	return nil
}
