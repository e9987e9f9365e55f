package colorramp

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestColorFor_Endpoints(t *testing.T) {
	c := New(Default())
	tests := []struct {
		h    float64
		want color.RGBA
	}{
		{h: -1, want: Blue},
		{h: 0, want: Yellow},
		{h: 1, want: Red},
		{h: -5, want: Blue},
		{h: 5, want: Red},
		{h: math.NaN(), want: Yellow},
		{h: math.Inf(1), want: Red},
		{h: math.Inf(-1), want: Blue},
		{h: -0.5, want: color.RGBA{R: 128, G: 128, B: 128, A: 255}},
		{h: 0.5, want: color.RGBA{R: 255, G: 128, B: 0, A: 255}},
	}
	for _, tt := range tests {
		if got := c.ColorFor(tt.h, -1, 1); got != tt.want {
			t.Fatalf("ColorFor(%v, -1, 1) = %v, want %v", tt.h, got, tt.want)
		}
	}
}

func TestColorFor_FlatRangeIsMidpoint(t *testing.T) {
	c := New(Default())
	for _, h := range []float64{-3, 0, 2, 1e9} {
		if got := c.ColorFor(h, 2, 2); got != Yellow {
			t.Fatalf("ColorFor(%v, 2, 2) = %v, want midpoint %v", h, got, Yellow)
		}
	}
	var zero Colorizer
	if got := zero.ColorFor(1, 1, 1); got != Yellow {
		t.Fatalf("zero Colorizer midpoint = %v, want %v", got, Yellow)
	}
}

func TestColorFor_Monotone(t *testing.T) {
	c := New(Default())
	prevR, prevB := -1, 256
	for k := 0; k <= 100; k++ {
		got := c.ColorFor(float64(k), 0, 100)
		// Red never falls and blue never rises along the default ramp.
		if int(got.R) < prevR || int(got.B) > prevB {
			t.Fatalf("ColorFor(%d) = %v after R=%d B=%d", k, got, prevR, prevB)
		}
		prevR, prevB = int(got.R), int(got.B)
	}
}

func TestNormalize_HugeRange(t *testing.T) {
	lo, hi := -1.5e308, 1.5e308
	tests := []struct{ h, want float64 }{
		{h: lo, want: 0},
		{h: 0, want: 0.5},
		{h: hi, want: 1},
	}
	for _, tt := range tests {
		if got := Normalize(tt.h, lo, hi); got != tt.want {
			t.Fatalf("Normalize(%g, %g, %g) = %v, want %v", tt.h, lo, hi, got, tt.want)
		}
	}
}

func TestNewRamp(t *testing.T) {
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	r, err := NewRamp([]Stop{{At: 0, Color: black}, {At: 1, Color: white}})
	if err != nil {
		t.Fatalf("NewRamp error: %v", err)
	}
	if got := r.At(0.5); got != (color.RGBA{R: 128, G: 128, B: 128, A: 255}) {
		t.Fatalf("At(0.5) = %v", got)
	}
	if diff := cmp.Diff([]Stop{{At: 0, Color: black}, {At: 1, Color: white}}, r.Stops()); diff != "" {
		t.Fatalf("Stops (-want +got):\n%s", diff)
	}

	hard, err := NewRamp([]Stop{{At: 0, Color: black}, {At: 0.5, Color: black}, {At: 0.5, Color: white}, {At: 1, Color: white}})
	if err != nil {
		t.Fatalf("NewRamp hard edge: %v", err)
	}
	if hard.At(0.49) != black || hard.At(0.51) != white {
		t.Fatalf("hard edge = %v / %v", hard.At(0.49), hard.At(0.51))
	}

	bad := [][]Stop{
		nil,
		{{At: 0, Color: black}},
		{{At: 0.1, Color: black}, {At: 1, Color: white}},
		{{At: 0, Color: black}, {At: 0.9, Color: white}},
		{{At: 0, Color: black}, {At: 0.7, Color: white}, {At: 0.3, Color: white}, {At: 1, Color: white}},
		{{At: 0, Color: black}, {At: math.NaN(), Color: white}, {At: 1, Color: white}},
		{{At: -0.5, Color: black}, {At: 1, Color: white}},
	}
	for i, stops := range bad {
		if _, err := NewRamp(stops); !errors.Is(err, ErrRamp) {
			t.Fatalf("case %d: NewRamp err = %v, want ErrRamp", i, err)
		}
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{in: "#0000ff", want: Blue},
		{in: "ffff00", want: Yellow},
		{in: " #FF0000 ", want: Red},
		{in: "#10203040", want: color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if err != nil {
			t.Fatalf("ParseHex(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, in := range []string{"", "#fff", "#gg0000", "#12345"} {
		if _, err := ParseHex(in); !errors.Is(err, ErrRamp) {
			t.Fatalf("ParseHex(%q) err = %v, want ErrRamp", in, err)
		}
	}
	if got := Hex(Yellow); got != "#ffff00" {
		t.Fatalf("Hex(Yellow) = %q", got)
	}
}
