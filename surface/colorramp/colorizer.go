package colorramp

import (
	"image/color"
	"math"
)

// Colorizer assigns height colours through a Ramp.
type Colorizer struct {
	Ramp Ramp
}

func New(r Ramp) Colorizer { return Colorizer{Ramp: r} }

// ColorFor normalizes h into [lo, hi] and reads the ramp there.
//
// A degenerate range (lo == hi) or a NaN height yields the ramp midpoint, so flat surfaces come
// out uniformly in the middle colour.
func (c Colorizer) ColorFor(h, lo, hi float64) color.RGBA {
	return c.Ramp.At(Normalize(h, lo, hi))
}

// Normalize returns (h-lo)/(hi-lo) clamped to [0, 1], or 0.5 when the range is empty or h is NaN.
func Normalize(h, lo, hi float64) float64 {
	if math.IsNaN(h) || !(hi > lo) {
		return 0.5
	}
	// Halved operands keep the span finite near ±MaxFloat64.
	t := (h/2 - lo/2) / (hi/2 - lo/2)
	switch {
	case math.IsNaN(t):
		return 0.5
	case t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
