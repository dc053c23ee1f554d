// Package derive computes values derived from raw sensor readings.
package derive

import (
	"strconv"

	"meteo-server/internal/modules/weather/types"
)

// HeatIndexThreshold is the temperature (°C) below which the heat index model
// does not apply and the raw temperature is reported as feels-like.
const HeatIndexThreshold = 20.0

// NOAA heat index regression coefficients for °C and relative humidity.
const (
	c1 = -8.78469475556
	c2 = 1.61139411
	c3 = 2.33854883889
	c4 = -0.14611605
	c5 = -0.012308094
	c6 = -0.0164248277778
	c7 = 0.002211732
	c8 = 0.00072546
	c9 = -0.000003582
)

// FeelsLike returns the apparent temperature for a temperature in °C and a
// relative humidity in percent. Inputs are not range checked.
func FeelsLike(temperature, humidity float64) float64 {
	if temperature < HeatIndexThreshold {
		return temperature
	}
	t, r := temperature, humidity
	hi := c1 + c2*t + c3*r + c4*t*r +
		c5*t*t + c6*r*r +
		c7*t*t*r + c8*t*r*r +
		c9*t*t*r*r
	return Round1(hi)
}

// Round1 rounds x to one decimal place, ties to even on the exact binary
// value of x.
func Round1(x float64) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil {
		// NaN and ±Inf format to text ParseFloat accepts; unreachable otherwise.
		return x
	}
	return v
}

// Point annotates a single reading.
func Point(r types.Reading) types.DerivedPoint {
	return types.DerivedPoint{
		ID:          r.ID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Pressure:    r.Pressure,
		FeelsLike:   FeelsLike(r.Temperature, r.Humidity),
		Timestamp:   r.Timestamp,
		Time:        r.Time,
	}
}

// Points annotates readings, preserving order.
func Points(readings []types.Reading) []types.DerivedPoint {
	out := make([]types.DerivedPoint, len(readings))
	for i, r := range readings {
		out[i] = Point(r)
	}
	return out
}
