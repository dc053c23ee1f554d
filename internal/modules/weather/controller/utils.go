package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"meteo-server/internal/modules/weather/types"
)

const maxPayloadBytes = 1 << 20

type statsResponse struct {
	APICalls      map[string]int64 `json:"api_calls"`
	TotalAPICalls int64            `json:"total_api_calls"`
	TotalVisits   int64            `json:"total_visits"`
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

func decodePayload(body io.Reader) (types.Payload, error) {
	var p types.Payload
	dec := json.NewDecoder(io.LimitReader(body, maxPayloadBytes))
	if err := dec.Decode(&p); err != nil {
		return types.Payload{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return p, nil
}
