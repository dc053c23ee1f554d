// Package sensorsim generates plausible station readings and sends them to
// the server, for local development without hardware.
package sensorsim

import (
	"math"
	"math/rand/v2"
	"time"

	"meteo-server/internal/modules/weather/derive"
	"meteo-server/internal/modules/weather/types"
)

// Generator produces a daily temperature cycle with humidity moving
// against it and pressure drifting slowly.
type Generator struct {
	rng      *rand.Rand
	now      func() time.Time
	pressure float64
}

// NewGenerator returns a generator seeded with seed; 0 seeds randomly.
func NewGenerator(seed int64) *Generator {
	s := uint64(seed)
	if seed == 0 {
		s = rand.Uint64()
	}
	return &Generator{
		rng:      rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)),
		now:      time.Now,
		pressure: 1013,
	}
}

// Next returns the reading for the current time.
func (g *Generator) Next() types.Payload {
	t := g.now()
	hour := float64(t.Hour()) + float64(t.Minute())/60
	// Coldest around 03:00, warmest around 15:00.
	cycle := math.Sin(2 * math.Pi * (hour - 9) / 24)

	temp := 15 + 8*cycle + g.rng.NormFloat64()*0.3
	hum := clamp(60-20*cycle+g.rng.NormFloat64()*2, 5, 100)
	g.pressure = clamp(g.pressure+g.rng.NormFloat64()*0.8, 970, 1050)

	temp, hum, pres := derive.Round1(temp), derive.Round1(hum), derive.Round1(g.pressure)
	return types.Payload{Temperature: &temp, Humidity: &hum, Pressure: &pres}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
