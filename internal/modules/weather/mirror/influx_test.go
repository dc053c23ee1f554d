package mirror

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"meteo-server/internal/modules/weather/types"
)

type fakeInflux struct {
	mu      sync.Mutex
	status  int
	queries []string
	bodies  []string
	health  string
}

func (f *fakeInflux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, f.health)
	case "/api/v2/write":
		b, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.queries = append(f.queries, r.URL.RawQuery)
		f.bodies = append(f.bodies, string(b))
		status := f.status
		f.mu.Unlock()
		if status >= 400 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"code":"invalid","message":"bucket not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func newSink(t *testing.T, f *fakeInflux) *InfluxSink {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	s := NewInfluxSink(ts.URL, "token", "home", "meteo")
	t.Cleanup(s.Close)
	return s
}

func TestInfluxSink_Write(t *testing.T) {
	f := &fakeInflux{}
	s := newSink(t, f)

	at := time.Date(2025, 7, 10, 15, 0, 0, 0, time.UTC)
	err := s.Write(t.Context(), types.DerivedPoint{
		Temperature: 30, Humidity: 70, Pressure: 1008.5, FeelsLike: 35, Time: at,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if len(f.bodies) != 1 {
		t.Fatalf("writes = %d; want 1", len(f.bodies))
	}
	body := f.bodies[0]
	for _, want := range []string{"weather ", "temperature=30", "humidity=70", "pressure=1008.5", "feels_like=35", "1752159600000000000"} {
		if !strings.Contains(body, want) {
			t.Errorf("line %q missing %q", body, want)
		}
	}
	if q := f.queries[0]; !strings.Contains(q, "org=home") || !strings.Contains(q, "bucket=meteo") {
		t.Errorf("query = %q", q)
	}
}

func TestInfluxSink_WriteError(t *testing.T) {
	s := newSink(t, &fakeInflux{status: http.StatusNotFound})

	err := s.Write(t.Context(), types.DerivedPoint{Temperature: 1, Time: time.Now()})
	if err == nil {
		t.Fatal("Write error = nil; want non-nil")
	}
	if !strings.Contains(err.Error(), "home/meteo") {
		t.Errorf("error %q does not name org/bucket", err)
	}
}

func TestInfluxSink_Ping(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		s := newSink(t, &fakeInflux{health: `{"name":"influxdb","status":"pass","checks":[]}`})
		if err := s.Ping(t.Context()); err != nil {
			t.Fatalf("Ping: %v", err)
		}
	})

	t.Run("fail", func(t *testing.T) {
		s := newSink(t, &fakeInflux{health: `{"name":"influxdb","status":"fail","message":"starting","checks":[]}`})
		if err := s.Ping(t.Context()); err == nil || !strings.Contains(err.Error(), "starting") {
			t.Fatalf("Ping = %v; want failure mentioning message", err)
		}
	})
}
