// Package usage tracks API call counts and dashboard visits.
package usage

import "sync/atomic"

// Counted endpoints, in report order.
const (
	EndpointData        = "data"
	EndpointCurrent     = "current"
	EndpointHistory     = "history"
	EndpointForecast    = "forecast"
	EndpointSimpleChart = "simple_chart"
)

var endpoints = []string{
	EndpointData,
	EndpointCurrent,
	EndpointHistory,
	EndpointForecast,
	EndpointSimpleChart,
}

// Counters holds per-endpoint call counts. Increments are atomic; Reset and
// Snapshot are not a single atomic step across endpoints.
type Counters struct {
	counts  map[string]*atomic.Int64
	metrics *Metrics
}

// NewCounters returns zeroed counters. Every increment is mirrored to
// metrics when it is non-nil.
func NewCounters(metrics *Metrics) *Counters {
	c := &Counters{
		counts:  make(map[string]*atomic.Int64, len(endpoints)),
		metrics: metrics,
	}
	for _, e := range endpoints {
		c.counts[e] = new(atomic.Int64)
	}
	return c
}

// Inc counts one call. Unknown endpoints are ignored.
func (c *Counters) Inc(endpoint string) int64 {
	n, ok := c.counts[endpoint]
	if !ok {
		return 0
	}
	c.metrics.APICall(endpoint)
	return n.Add(1)
}

// Snapshot returns the current count of every endpoint.
func (c *Counters) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(c.counts))
	for e, n := range c.counts {
		out[e] = n.Load()
	}
	return out
}

// Total returns the sum of all endpoint counts.
func (c *Counters) Total() int64 {
	var total int64
	for _, n := range c.counts {
		total += n.Load()
	}
	return total
}

func (c *Counters) Reset() {
	for _, n := range c.counts {
		n.Store(0)
	}
}
