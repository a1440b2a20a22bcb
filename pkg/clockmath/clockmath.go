// Package clockmath provides foolproof conversions between dial angles and
// wall-clock minutes on a 24-hour circle.
// The dial maps 1440 minutes onto 360 degrees, so one degree is four minutes
// and midnight sits at zero degrees. All helpers here are pure and total:
// angles are folded into [0, 360) and minutes into [0, 1440) before use.
package clockmath

import (
	"math"
	"time"
)

// MinutesPerDay is the size of the dial in minutes.
const MinutesPerDay = 1440

// NormalizeAngle folds any real angle into [0, 360).
// Example: NormalizeAngle(-90) returns 270
// Example: NormalizeAngle(725.5) returns 5.5
func NormalizeAngle(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

// AngleToMinutes maps an angle to a minute-of-day on the 24-hour dial.
// The angle may be un-normalized; the result is in [0, 1440).
// Example: AngleToMinutes(90) returns 360 (06:00)
// Example: AngleToMinutes(-90) returns 1080 (18:00)
func AngleToMinutes(deg float64) float64 {
	// Multiply first: one degree is exactly four minutes, so whole-degree
	// input stays exact in floating point.
	return NormalizeAngle(deg) * MinutesPerDay / 360
}

// MinutesToAngle maps a minute-of-day to its dial angle in [0, 360).
// Example: MinutesToAngle(360) returns 90 (06:00 sits a quarter turn in)
func MinutesToAngle(minutes float64) float64 {
	m := math.Mod(math.Mod(minutes, MinutesPerDay)+MinutesPerDay, MinutesPerDay)
	return m * 360 / MinutesPerDay
}

// RoundToStep snaps a non-negative minute value to the nearest multiple of
// step, with ties rounding up (half-up on the non-negative value).
// Example: RoundToStep(247, 5) returns 245; RoundToStep(248, 5) returns 250
// Example: RoundToStep(247.5, 5) returns 250 (the half-up boundary)
// A step of 1 leaves the value at whole-minute precision.
func RoundToStep(minutes float64, step int) int {
	return int(math.Floor(minutes/float64(step)+0.5)) * step
}

// WrapMinutes folds a signed minute count into [0, 1440).
// Example: WrapMinutes(-10) returns 1430
// Example: WrapMinutes(1450) returns 10
func WrapMinutes(m int) int {
	return ((m % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

// MinuteOfDay returns the minute-of-day for t, ignoring seconds.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
