package chart

import (
	"sort"
	"time"

	"meteo-server/internal/modules/weather/types"
)

// nearestFunc returns the index of the point closest to target with a
// distance strictly below tol, or -1. On equal distances the lowest index
// wins.
type nearestFunc func(points []types.DerivedPoint, target time.Time, tol time.Duration) int

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

func linearNearest(points []types.DerivedPoint, target time.Time, tol time.Duration) int {
	best := -1
	minDiff := tol
	for i := range points {
		if d := distance(points[i].Time, target); d < minDiff {
			minDiff = d
			best = i
		}
	}
	return best
}

// bisectNearest is linearNearest for points ordered newest first.
func bisectNearest(points []types.DerivedPoint, target time.Time, tol time.Duration) int {
	n := len(points)
	// First point at or before target.
	at := sort.Search(n, func(i int) bool { return !points[i].Time.After(target) })

	best := -1
	minDiff := tol
	if at > 0 {
		// Closest point after target, moved to the first of its equal run.
		t := points[at-1].Time
		first := sort.Search(at, func(i int) bool { return !points[i].Time.After(t) })
		if d := distance(t, target); d < minDiff {
			minDiff = d
			best = first
		}
	}
	if at < n {
		if d := distance(points[at].Time, target); d < minDiff {
			best = at
		}
	}
	return best
}

func newestFirst(points []types.DerivedPoint) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Time.After(points[i-1].Time) {
			return false
		}
	}
	return true
}
