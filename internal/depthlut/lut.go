// Package depthlut converts raw depth sensor units to distances in metres.
package depthlut

import (
	"math"

	"github.com/bft-labs/kingrid/internal/domain"
)

// Size is the number of table slots. One slot past the top raw value keeps
// interpolation at index 2047 in bounds.
const Size = domain.RawLevels + 1

// MonotonicLimit is the last raw value before the fit crosses the tangent
// asymptote. Distances increase strictly over 0..MonotonicLimit; above it the
// fit turns negative, which the sensor never reports for a measurable pixel.
const MonotonicLimit = 1092

// Table maps raw depth units to metres. It is read-only after Build.
type Table struct {
	dist [Size]float64
}

// Build fills the table with the empirical gamma-correction fit for
// Kinect-class sensors.
func Build() *Table {
	t := &Table{}
	for i := range t.dist {
		t.dist[i] = Distance(float64(i))
	}
	return t
}

// Distance evaluates the raw-to-metres fit directly.
func Distance(raw float64) float64 {
	return 0.1236 * math.Tan(raw/2842.5+1.1863)
}

// Len returns the number of slots in the table.
func (t *Table) Len() int {
	return len(t.dist)
}

// At returns the distance for a raw value, clamped to the sensor range.
func (t *Table) At(raw uint16) float64 {
	if raw > domain.RawSentinel {
		raw = domain.RawSentinel
	}
	return t.dist[raw]
}

// Interp returns the linearly interpolated distance for a fractional raw
// value such as a region average. x is clamped to [0, 2047].
func (t *Table) Interp(x float64) float64 {
	if math.IsNaN(x) || x <= 0 {
		return t.dist[0]
	}
	top := float64(domain.RawSentinel)
	if x >= top {
		return t.dist[domain.RawSentinel]
	}
	i := int(x)
	frac := x - float64(i)
	return t.dist[i]*(1-frac) + t.dist[i+1]*frac
}
