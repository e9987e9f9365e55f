// Package colorramp maps surface heights to colours.
package colorramp

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

var ErrRamp = errors.New("colorramp: invalid ramp")

// Stop pins a colour at a normalized position in [0, 1].
type Stop struct {
	At    float64
	Color color.RGBA
}

// Ramp is a piecewise-linear colour gradient. The zero Ramp is the default blue, yellow, red ramp.
type Ramp struct {
	stops []Stop
}

var (
	Blue   = color.RGBA{R: 0x00, G: 0x00, B: 0xff, A: 0xff}
	Yellow = color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
	Red    = color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}
)

var defaultStops = []Stop{
	{At: 0, Color: Blue},
	{At: 0.5, Color: Yellow},
	{At: 1, Color: Red},
}

// Default returns the blue (low), yellow (middle), red (high) ramp.
func Default() Ramp { return Ramp{stops: defaultStops} }

// NewRamp validates stops: at least two, positions within [0, 1] and non-decreasing, starting at 0
// and ending at 1.
func NewRamp(stops []Stop) (Ramp, error) {
	if len(stops) < 2 {
		return Ramp{}, fmt.Errorf("%w: need at least 2 stops, got %d", ErrRamp, len(stops))
	}
	for i, s := range stops {
		if math.IsNaN(s.At) || s.At < 0 || s.At > 1 {
			return Ramp{}, fmt.Errorf("%w: stop %d position %g outside [0,1]", ErrRamp, i, s.At)
		}
		if i > 0 && s.At < stops[i-1].At {
			return Ramp{}, fmt.Errorf("%w: stop %d position %g decreases", ErrRamp, i, s.At)
		}
	}
	if stops[0].At != 0 || stops[len(stops)-1].At != 1 {
		return Ramp{}, fmt.Errorf("%w: stops must start at 0 and end at 1", ErrRamp)
	}
	return Ramp{stops: append([]Stop(nil), stops...)}, nil
}

// Stops returns a copy of the ramp's stops.
func (r Ramp) Stops() []Stop {
	return append([]Stop(nil), r.list()...)
}

func (r Ramp) list() []Stop {
	if len(r.stops) == 0 {
		return defaultStops
	}
	return r.stops
}

// At returns the colour at normalized position t. t is clamped to [0, 1]; NaN reads as 0.5.
func (r Ramp) At(t float64) color.RGBA {
	stops := r.list()
	switch {
	case math.IsNaN(t):
		t = 0.5
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	if t <= stops[0].At {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		b := stops[i]
		if t > b.At {
			continue
		}
		a := stops[i-1]
		span := b.At - a.At
		if span <= 0 {
			return b.Color
		}
		return lerp(a.Color, b.Color, (t-a.At)/span)
	}
	return stops[len(stops)-1].Color
}

func lerp(a, b color.RGBA, f float64) color.RGBA {
	ch := func(x, y uint8) uint8 {
		v := float64(x) + (float64(y)-float64(x))*f
		return uint8(math.Round(v))
	}
	return color.RGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// ParseHex parses "#rrggbb" or "#rrggbbaa" (the '#' is optional).
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 && len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("%w: colour %q is not #rrggbb", ErrRamp, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: colour %q: %v", ErrRamp, s, err)
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as "#rrggbb", appending alpha only when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
