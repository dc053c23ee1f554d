package config

import (
	"strings"
	"testing"
	"time"
)

func clearSimEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SIM_MODE", "SIM_TARGET_URL", "SIM_INTERVAL", "SIM_SEED", "SIM_NODE_ID"} {
		t.Setenv(k, "")
	}
}

func TestLoadSimFromEnv_Defaults(t *testing.T) {
	clearSimEnv(t)

	got, err := LoadSimFromEnv()
	if err != nil {
		t.Fatalf("LoadSimFromEnv() error = %v", err)
	}
	if got.Mode != SimModeHTTP || got.TargetURL != "http://localhost:5000/api/data" || got.Interval != 5*time.Minute || got.Seed != 0 {
		t.Errorf("defaults = %+v", got)
	}
	if !strings.HasPrefix(got.NodeID, "meteo-sim-") || len(got.NodeID) != len("meteo-sim-")+8 {
		t.Errorf("NodeID = %q", got.NodeID)
	}
}

func TestLoadSimFromEnv_Overrides(t *testing.T) {
	clearSimEnv(t)
	t.Setenv("SIM_MODE", "mqtt")
	t.Setenv("SIM_INTERVAL", "30s")
	t.Setenv("SIM_SEED", "42")
	t.Setenv("SIM_NODE_ID", "balcony")

	got, err := LoadSimFromEnv()
	if err != nil {
		t.Fatalf("LoadSimFromEnv() error = %v", err)
	}
	if got.Mode != SimModeMQTT || got.Interval != 30*time.Second || got.Seed != 42 || got.NodeID != "balcony" {
		t.Errorf("got %+v", got)
	}
}

func TestLoadSimFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SIM_MODE", "carrier-pigeon"},
		{"SIM_TARGET_URL", "localhost"},
		{"SIM_INTERVAL", "often"},
		{"SIM_INTERVAL", "-1s"},
		{"SIM_SEED", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearSimEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := LoadSimFromEnv()
			if err == nil {
				t.Fatal("LoadSimFromEnv() error = nil")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name %s", err, tt.key)
			}
		})
	}
}
