// Package forecast classifies the short-term pressure trend.
package forecast

import (
	"meteo-server/internal/modules/weather/derive"
	"meteo-server/internal/modules/weather/types"
)

// DefaultThreshold is the pressure change, in the sensor's unit, that counts
// as a trend.
const DefaultThreshold = 2.0

const insufficientData = "Insufficient data"

type trend struct {
	title       string
	description string
}

var (
	rising  = trend{"📈 Weather improvement", "Atmospheric pressure rising, clear weather expected"}
	falling = trend{"📉 Weather worsening", "Atmospheric pressure falling, precipitation possible"}
	steady  = trend{"➡️ No changes", "Weather stable, no significant changes expected"}
)

// FromPressures classifies pressures given newest first. Only the first two
// values are used.
func FromPressures(pressures []float64, threshold float64) types.Forecast {
	if len(pressures) < 2 {
		return types.Forecast{Forecast: insufficientData}
	}

	diff := pressures[0] - pressures[1]
	tr := steady
	switch {
	case diff > threshold:
		tr = rising
	case diff < -threshold:
		tr = falling
	}

	change := derive.Round1(diff)
	return types.Forecast{
		Forecast:       tr.title,
		Description:    tr.description,
		PressureChange: &change,
	}
}
