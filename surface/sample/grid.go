package sample

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrConfig reports a domain or resolution the sampler refuses to evaluate.
var ErrConfig = errors.New("sample: invalid configuration")

// MaxResolution bounds the number of samples per axis.
const MaxResolution = 1024

// Domain is the rectangle [XMin, XMax] × [YMin, YMax] the surface is sampled over.
type Domain struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Symmetric returns the square domain [-r, r]².
func Symmetric(r float64) Domain {
	return Domain{XMin: -r, XMax: r, YMin: -r, YMax: r}
}

func (d Domain) Validate() error {
	for _, v := range [...]float64{d.XMin, d.XMax, d.YMin, d.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: domain bounds must be finite", ErrConfig)
		}
	}
	if d.XMin >= d.XMax {
		return fmt.Errorf("%w: xmin %g must be < xmax %g", ErrConfig, d.XMin, d.XMax)
	}
	if d.YMin >= d.YMax {
		return fmt.Errorf("%w: ymin %g must be < ymax %g", ErrConfig, d.YMin, d.YMax)
	}
	if math.IsInf(d.XMax-d.XMin, 0) || math.IsInf(d.YMax-d.YMin, 0) {
		return fmt.Errorf("%w: domain %v span overflows", ErrConfig, d)
	}
	return nil
}

func (d Domain) String() string {
	return fmt.Sprintf("[%g,%g]x[%g,%g]", d.XMin, d.XMax, d.YMin, d.YMax)
}

// Resolution is the number of sample points along each axis.
type Resolution struct {
	NX, NY int
}

// Square returns an n×n resolution.
func Square(n int) Resolution { return Resolution{NX: n, NY: n} }

func (r Resolution) Validate() error {
	if r.NX < 2 || r.NY < 2 {
		return fmt.Errorf("%w: resolution %dx%d must be at least 2x2", ErrConfig, r.NX, r.NY)
	}
	if r.NX > MaxResolution || r.NY > MaxResolution {
		return fmt.Errorf("%w: resolution %dx%d exceeds %d per axis", ErrConfig, r.NX, r.NY, MaxResolution)
	}
	return nil
}

// Cells is the number of grid vertices.
func (r Resolution) Cells() int { return r.NX * r.NY }

// Grid holds one sampling pass. Storage is row-major: k = j*NX + i, i along x and j along y.
type Grid struct {
	Domain Domain
	NX, NY int
	Xs     []float64
	Ys     []float64

	// Heights holds the raw evaluated values, including NaN and ±Inf.
	Heights []float64
	// Valid is false where the height is NaN or infinite.
	Valid []bool
	// Clamp caps |height| for rendering when > 0. Capped cells stay valid.
	Clamp float64

	Invalid int
	Clamped int
	// Min and Max span RenderHeight over valid cells; both are 0 when no cell is valid.
	Min, Max float64

	Gen     uint64
	Elapsed time.Duration
}

func (g *Grid) Index(i, j int) int { return j*g.NX + i }

func (g *Grid) Len() int { return len(g.Heights) }

// At returns the render height at column i, row j and whether the cell is valid.
func (g *Grid) At(i, j int) (float64, bool) {
	k := g.Index(i, j)
	return g.RenderHeight(k), g.Valid[k]
}

// RenderHeight is Heights[k] capped to ±Clamp. The result is meaningless for invalid cells.
func (g *Grid) RenderHeight(k int) float64 {
	return capHeight(g.Heights[k], g.Clamp)
}

// Flat reports whether every valid cell has the same render height.
func (g *Grid) Flat() bool { return g.Min == g.Max }

// ValidCount is the number of valid cells.
func (g *Grid) ValidCount() int { return g.Len() - g.Invalid }

func capHeight(z, clamp float64) float64 {
	if clamp <= 0 {
		return z
	}
	if z > clamp {
		return clamp
	}
	if z < -clamp {
		return -clamp
	}
	return z
}

// axis returns n evenly spaced points from lo to hi. The last point is exactly hi.
func axis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for k := range out {
		out[k] = lo + float64(k)*step
	}
	out[n-1] = hi
	return out
}
