package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Sim modes.
const (
	SimModeHTTP = "http"
	SimModeMQTT = "mqtt"
)

// SimConfig configures the sensor simulator. Broker settings come from Config.
type SimConfig struct {
	Mode      string
	TargetURL string
	Interval  time.Duration
	NodeID    string
	// Seed 0 picks a random seed.
	Seed int64
}

func LoadSimFromEnv() (SimConfig, error) {
	mode := envString("SIM_MODE", SimModeHTTP)
	switch mode {
	case SimModeHTTP, SimModeMQTT:
	default:
		return SimConfig{}, fmt.Errorf("invalid SIM_MODE %q (allowed: http, mqtt)", mode)
	}

	target := envString("SIM_TARGET_URL", "http://localhost:5000/api/data")
	if u, err := url.Parse(target); err != nil || u.Scheme == "" || u.Host == "" {
		return SimConfig{}, fmt.Errorf("invalid SIM_TARGET_URL %q", target)
	}

	interval, err := envDuration("SIM_INTERVAL", 5*time.Minute)
	if err != nil {
		return SimConfig{}, err
	}
	if interval <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_INTERVAL must be positive, got %v", interval)
	}

	seed, err := envInt("SIM_SEED", 0)
	if err != nil {
		return SimConfig{}, err
	}

	nodeID := envString("SIM_NODE_ID", "")
	if nodeID == "" {
		nodeID = "meteo-sim-" + uuid.NewString()[:8]
	}

	return SimConfig{
		Mode:      mode,
		TargetURL: target,
		Interval:  interval,
		NodeID:    nodeID,
		Seed:      int64(seed),
	}, nil
}
