// Package chart reduces a window of readings to the four labelled points of
// the dashboard chart: 1.5h, 1h and 30m ago, and now.
package chart

import (
	"fmt"
	"math"
	"sort"
	"time"

	"meteo-server/internal/modules/weather/derive"
	"meteo-server/internal/modules/weather/types"
)

const (
	// DefaultTolerance is the largest distance (exclusive) between a target
	// instant and the reading chosen for it.
	DefaultTolerance = 10 * time.Minute
	// DefaultWindow is how far back callers should fetch readings.
	DefaultWindow = 2 * time.Hour
)

// targetOffsets are the chart targets relative to now, oldest first.
var targetOffsets = [...]time.Duration{
	90 * time.Minute,
	60 * time.Minute,
	30 * time.Minute,
	0,
}

// nowSlot is the index of the "now" target; it is always labelled "Now".
const nowSlot = len(targetOffsets) - 1

// Policy holds the tunable parts of sampling.
type Policy struct {
	Tolerance time.Duration
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{Tolerance: DefaultTolerance}
}

// Sample picks up to four chart points from readings, which must be ordered
// newest first. The result is sorted by FullTimestamp, oldest first.
//
// Targets without a reading inside the tolerance are backfilled by walking
// the readings from the newest, reusing the newest once they run out. The
// backfilled points are not matched against the target they stand in for and
// may repeat a reading.
func Sample(now time.Time, readings []types.Reading, p Policy) []types.ChartPoint {
	if len(readings) == 0 {
		return []types.ChartPoint{}
	}

	all := derive.Points(readings)
	var find nearestFunc = linearNearest
	if newestFirst(all) {
		find = bisectNearest
	}

	points := make([]types.ChartPoint, 0, len(targetOffsets))
	for slot, off := range targetOffsets {
		idx := find(all, now.Add(-off), p.Tolerance)
		if idx < 0 {
			continue
		}
		points = append(points, newPoint(now, all[idx], slot))
	}

	missing := len(targetOffsets) - len(points)
	for i := 0; i < missing; i++ {
		rec := all[0]
		if i < len(all) {
			rec = all[i]
		}
		points = append(points, newPoint(now, rec, i))
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].FullTimestamp < points[j].FullTimestamp
	})
	return points
}

func newPoint(now time.Time, p types.DerivedPoint, slot int) types.ChartPoint {
	elapsed := now.Sub(p.Time)
	label, suffix := "Now", ""
	if slot != nowSlot {
		label, suffix = ElapsedLabel(elapsed), "ago"
	}
	return types.ChartPoint{
		Label:         label,
		TimeSuffix:    suffix,
		DisplayTime:   p.Time.Format("15:04"),
		Temperature:   p.Temperature,
		Humidity:      p.Humidity,
		Pressure:      p.Pressure,
		FeelsLike:     p.FeelsLike,
		FullTimestamp: p.Timestamp,
		SecondsAgo:    int64(elapsed / time.Second),
	}
}

// ElapsedLabel formats d as "1h 5m" or "42m". Hours and minutes are floored,
// so a negative d yields a negative hour count.
func ElapsedLabel(d time.Duration) string {
	secs := d.Seconds()
	hours := int(math.Floor(secs / 3600))
	rem := math.Mod(secs, 3600)
	if rem < 0 {
		rem += 3600
	}
	minutes := int(math.Floor(rem / 60))
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
