package math3d

import "math"

// Interval is the closed range [Min, Max].
type Interval struct {
	Min, Max float64
}

// NewInterval creates an interval.
func NewInterval(min, max float64) Interval {
	return Interval{Min: min, Max: max}
}

// EmptyInterval returns an interval that contains nothing.
func EmptyInterval() Interval {
	return Interval{math.Inf(1), math.Inf(-1)}
}

// UniverseInterval returns an interval that contains every number.
func UniverseInterval() Interval {
	return Interval{math.Inf(-1), math.Inf(1)}
}

// Size returns Max - Min.
func (i Interval) Size() float64 {
	return i.Max - i.Min
}

// Contains reports whether Min <= x <= Max.
func (i Interval) Contains(x float64) bool {
	return i.Min <= x && x <= i.Max
}

// Surrounds reports whether Min < x < Max.
func (i Interval) Surrounds(x float64) bool {
	return i.Min < x && x < i.Max
}

// Clamp limits x to the interval.
func (i Interval) Clamp(x float64) float64 {
	if x < i.Min {
		return i.Min
	}
	if x > i.Max {
		return i.Max
	}
	return x
}
