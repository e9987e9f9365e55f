package sample

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"grapher/surface/expr"
)

// DefaultClamp is the render cap applied when Options.Clamp is zero.
const DefaultClamp = 1e6

const defaultMinParallelCells = 4096

type Options struct {
	// Workers bounds concurrent row bands. Zero means runtime.GOMAXPROCS(0).
	Workers int
	// MinParallelCells is the grid size below which sampling runs on the calling goroutine.
	// Zero selects a default; 1 always fans out.
	MinParallelCells int
	// Clamp caps |height| for rendering. Zero selects DefaultClamp, negative disables capping.
	Clamp float64
}

// Sampler evaluates expressions over grids. A Sampler may be shared; each pass gets the next
// generation number.
type Sampler struct {
	opts Options
	gen  atomic.Uint64
}

func NewSampler(opts Options) *Sampler {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.MinParallelCells <= 0 {
		opts.MinParallelCells = defaultMinParallelCells
	}
	switch {
	case opts.Clamp == 0:
		opts.Clamp = DefaultClamp
	case opts.Clamp < 0 || math.IsNaN(opts.Clamp):
		opts.Clamp = 0
	}
	return &Sampler{opts: opts}
}

func (s *Sampler) Options() Options { return s.opts }

// Generation is the number of the most recent pass.
func (s *Sampler) Generation() uint64 { return s.gen.Load() }

// Sample evaluates e at every grid point of d with resolution r.
//
// Non-finite values mark their cell invalid and never fail the pass. Only an invalid domain or
// resolution is an error.
func (s *Sampler) Sample(e *expr.Expr, d Domain, r Resolution) (*Grid, error) {
	if e == nil {
		return nil, fmt.Errorf("%w: nil expression", ErrConfig)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	g := &Grid{
		Domain:  d,
		NX:      r.NX,
		NY:      r.NY,
		Xs:      axis(d.XMin, d.XMax, r.NX),
		Ys:      axis(d.YMin, d.YMax, r.NY),
		Heights: make([]float64, r.Cells()),
		Valid:   make([]bool, r.Cells()),
		Clamp:   s.opts.Clamp,
	}

	bands := s.bands(r)
	stats := make([]bandStats, len(bands))
	if len(bands) == 1 {
		stats[0] = fillBand(e, g, bands[0])
	} else {
		var eg errgroup.Group
		eg.SetLimit(s.opts.Workers)
		for n, b := range bands {
			n, b := n, b
			eg.Go(func() error {
				stats[n] = fillBand(e, g, b)
				return nil
			})
		}
		_ = eg.Wait()
	}

	first := true
	for _, st := range stats {
		g.Invalid += st.invalid
		g.Clamped += st.clamped
		if st.valid == 0 {
			continue
		}
		if first || st.min < g.Min {
			g.Min = st.min
		}
		if first || st.max > g.Max {
			g.Max = st.max
		}
		first = false
	}

	g.Gen = s.gen.Add(1)
	g.Elapsed = time.Since(start)
	return g, nil
}

type band struct{ j0, j1 int }

// bands splits the rows into at most Workers contiguous ranges.
func (s *Sampler) bands(r Resolution) []band {
	n := s.opts.Workers
	if r.Cells() < s.opts.MinParallelCells || n <= 1 {
		return []band{{0, r.NY}}
	}
	if n > r.NY {
		n = r.NY
	}
	rows := (r.NY + n - 1) / n
	out := make([]band, 0, n)
	for j := 0; j < r.NY; j += rows {
		out = append(out, band{j, min(j+rows, r.NY)})
	}
	return out
}

type bandStats struct {
	valid, invalid, clamped int
	min, max                float64
}

// fillBand evaluates rows [b.j0, b.j1) and classifies them. It writes only inside the band.
func fillBand(e *expr.Expr, g *Grid, b band) bandStats {
	lo, hi := b.j0*g.NX, b.j1*g.NX
	e.EvalGridInto(g.Heights[lo:hi], g.Xs, g.Ys[b.j0:b.j1])

	var st bandStats
	for k := lo; k < hi; k++ {
		z := g.Heights[k]
		if math.IsNaN(z) || math.IsInf(z, 0) {
			st.invalid++
			continue
		}
		g.Valid[k] = true
		if g.Clamp > 0 && math.Abs(z) > g.Clamp {
			st.clamped++
		}
		h := capHeight(z, g.Clamp)
		if st.valid == 0 || h < st.min {
			st.min = h
		}
		if st.valid == 0 || h > st.max {
			st.max = h
		}
		st.valid++
	}
	return st
}
