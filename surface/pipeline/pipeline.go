// Package pipeline turns explicit view state into renderable frames.
//
// A Pipeline runs text → AST → grid → coloured, projected, ordered geometry on the caller's
// goroutine. It caches the last parse and grid so rotating or zooming does not resample, and it
// keeps the last good geometry when a new expression fails to parse.
package pipeline

import (
	"image/color"
	"time"

	"grapher/surface/colorramp"
	"grapher/surface/expr"
	"grapher/surface/mesh"
	"grapher/surface/sample"
	"grapher/surface/view"
)

// State is everything a frame depends on.
type State struct {
	Expr       string
	Domain     sample.Domain
	Resolution sample.Resolution
	View       view.Transform

	Fill      bool
	Wireframe bool
	Points    bool
}

// Stats summarises the grid and geometry behind a frame.
type Stats struct {
	Cells   int
	Invalid int
	Clamped int
	Min     float64
	Max     float64

	Triangles int
	Lines     int
	Points    int

	Gen     uint64
	Elapsed time.Duration
	// Resampled is false when the grid came from the cache.
	Resampled bool
}

// Frame is the ordered geometry for one state.
type Frame struct {
	// Canonical is the parenthesised form of the expression the geometry was built from.
	Canonical  string
	Triangles  []mesh.Primitive
	Lines      []mesh.Line
	Points     []mesh.Point
	Stats      Stats
	Projection view.Projection
}

// Empty reports whether the frame has nothing to draw.
func (f Frame) Empty() bool {
	return len(f.Triangles) == 0 && len(f.Lines) == 0 && len(f.Points) == 0
}

type Options struct {
	Sampler   sample.Options
	Ramp      colorramp.Ramp
	WireColor color.RGBA
	// NoFit projects raw domain and height coordinates instead of the unit cube.
	NoFit bool
}

// DefaultWireColor is the wireframe colour when Options.WireColor is unset.
var DefaultWireColor = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}

type gridKey struct {
	source string
	domain sample.Domain
	res    sample.Resolution
}

// Pipeline is not safe for concurrent use.
type Pipeline struct {
	sampler *sample.Sampler
	color   colorramp.Colorizer
	wire    color.RGBA
	mesh    mesh.Options

	parsed *expr.Expr
	grid   *sample.Grid
	key    gridKey
	last   Frame
}

func New(opts Options) *Pipeline {
	wire := opts.WireColor
	if wire == (color.RGBA{}) {
		wire = DefaultWireColor
	}
	return &Pipeline{
		sampler: sample.NewSampler(opts.Sampler),
		color:   colorramp.New(opts.Ramp),
		wire:    wire,
		mesh:    mesh.Options{Fit: !opts.NoFit},
	}
}

// Validate checks the numeric configuration of s without parsing the expression.
// Errors wrap sample.ErrConfig or view.ErrZoom.
func Validate(s State) error {
	if err := s.Domain.Validate(); err != nil {
		return err
	}
	if err := s.Resolution.Validate(); err != nil {
		return err
	}
	return s.View.Validate()
}

// Frame builds the frame for s.
//
// On a parse or configuration error the previous frame is returned unchanged alongside the error,
// so callers can keep showing the last good surface.
func (p *Pipeline) Frame(s State) (Frame, error) {
	if err := Validate(s); err != nil {
		return p.last, err
	}
	e, err := p.parse(s.Expr)
	if err != nil {
		return p.last, err
	}

	key := gridKey{source: e.Source, domain: s.Domain, res: s.Resolution}
	g, resampled := p.grid, false
	if g == nil || p.key != key {
		g, err = p.sampler.Sample(e, s.Domain, s.Resolution)
		if err != nil {
			return p.last, err
		}
		p.Offer(e, g)
		resampled = true
	}

	f := Frame{Canonical: e.String(), Projection: s.View.Projection}
	if s.Fill {
		f.Triangles = mesh.Assemble(g, s.View, p.color, p.mesh)
	}
	if s.Wireframe {
		f.Lines = mesh.Wireframe(g, s.View, p.mesh, p.wire)
	}
	if s.Points {
		f.Points = mesh.Points(g, s.View, p.color, p.mesh)
	}
	f.Stats = Stats{
		Cells:     g.Len(),
		Invalid:   g.Invalid,
		Clamped:   g.Clamped,
		Min:       g.Min,
		Max:       g.Max,
		Triangles: len(f.Triangles),
		Lines:     len(f.Lines),
		Points:    len(f.Points),
		Gen:       g.Gen,
		Elapsed:   g.Elapsed,
		Resampled: resampled,
	}
	p.last = f
	return f, nil
}

// Offer installs a grid sampled for e. Grids older than the one already held are dropped and
// Offer reports false.
func (p *Pipeline) Offer(e *expr.Expr, g *sample.Grid) bool {
	if g == nil || e == nil {
		return false
	}
	if p.grid != nil && g.Gen < p.grid.Gen {
		return false
	}
	p.parsed = e
	p.grid = g
	p.key = gridKey{source: e.Source, domain: g.Domain, res: sample.Resolution{NX: g.NX, NY: g.NY}}
	return true
}

// Sampler exposes the pipeline's sampler so grids sampled elsewhere share its generation counter.
func (p *Pipeline) Sampler() *sample.Sampler { return p.sampler }

// Last returns the most recent successful frame.
func (p *Pipeline) Last() Frame { return p.last }

// Grid returns the grid behind the most recent frame, or nil.
func (p *Pipeline) Grid() *sample.Grid { return p.grid }

func (p *Pipeline) parse(src string) (*expr.Expr, error) {
	if p.parsed != nil && p.parsed.Source == src {
		return p.parsed, nil
	}
	return expr.Parse(src)
}
