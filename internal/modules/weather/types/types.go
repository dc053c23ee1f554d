package types

import "time"

// Reading is one stored sensor observation. Timestamp keeps the text exactly
// as it sits in the database; Time is its parsed form.
type Reading struct {
	ID          int64     `json:"id"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Pressure    float64   `json:"pressure"`
	Timestamp   string    `json:"timestamp"`
	Time        time.Time `json:"-"`
}

// DerivedPoint is a Reading annotated with its feels-like temperature.
type DerivedPoint struct {
	ID          int64   `json:"id,omitempty"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	FeelsLike   float64 `json:"feels_like"`
	Timestamp   string  `json:"timestamp"`

	Time time.Time `json:"-"`
}

// ChartPoint is one labelled sample of the four-point chart.
type ChartPoint struct {
	Label         string  `json:"label"`
	TimeSuffix    string  `json:"time_suffix"`
	DisplayTime   string  `json:"display_time"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Pressure      float64 `json:"pressure"`
	FeelsLike     float64 `json:"feels_like"`
	FullTimestamp string  `json:"full_timestamp"`
	SecondsAgo    int64   `json:"seconds_ago"`
}

// Payload is the ingestion body sent by a sensor node, over HTTP or MQTT.
// Pointers distinguish a missing field from a zero value.
type Payload struct {
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Pressure    *float64 `json:"pressure"`
}

// Forecast is the pressure-trend classification of the two newest readings.
// Description and PressureChange are absent when there is not enough data.
type Forecast struct {
	Forecast       string   `json:"forecast"`
	Description    string   `json:"description,omitempty"`
	PressureChange *float64 `json:"pressure_change,omitempty"`
}
