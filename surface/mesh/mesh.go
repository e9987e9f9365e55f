// Package mesh turns a sampled grid into ordered screen-space primitives.
//
// Triangles, lines and points come back sorted back-to-front (ascending depth), ready for a
// painter's-algorithm renderer without a depth buffer.
package mesh

import (
	"cmp"
	"image/color"
	"math"
	"slices"

	"grapher/surface/colorramp"
	"grapher/surface/sample"
	"grapher/surface/view"
)

// Cell identifies the grid cell a primitive came from by its lower-left vertex.
type Cell struct {
	I, J int
}

// Primitive is a projected triangle.
type Primitive struct {
	V [3]view.Vertex2D
	// Colors are the per-vertex ramp colours.
	Colors [3]color.RGBA
	// Color is the ramp colour of the triangle's average height, for flat shading.
	Color color.RGBA
	Depth float64
	Cell  Cell
}

// Line is a projected wireframe segment.
type Line struct {
	A, B  view.Vertex2D
	Color color.RGBA
	Depth float64
}

// Point is a projected grid vertex.
type Point struct {
	V     view.Vertex2D
	Color color.RGBA
}

type Options struct {
	// Fit maps x and y by the domain and z by the valid height range into [-1, 1] before
	// projecting.
	Fit bool
}

// projected holds each grid vertex after the view transform.
type projected struct {
	v  []view.Vertex2D
	ok []bool
}

func project(g *sample.Grid, t view.Transform, opts Options) projected {
	p := t.Projector()
	f := newFitter(g, opts.Fit)
	out := projected{
		v:  make([]view.Vertex2D, g.Len()),
		ok: make([]bool, g.Len()),
	}
	for j, y := range g.Ys {
		for i, x := range g.Xs {
			k := g.Index(i, j)
			if !g.Valid[k] {
				continue
			}
			out.v[k], out.ok[k] = p.Project(f.vertex(x, y, g.RenderHeight(k)))
		}
	}
	return out
}

// fitter centres each axis and divides by its half-range. A degenerate range divides by 1.
type fitter struct {
	on     bool
	xc, xr float64
	yc, yr float64
	zc, zr float64
}

func newFitter(g *sample.Grid, on bool) fitter {
	if !on {
		return fitter{}
	}
	half := func(lo, hi float64) (c, r float64) {
		c, r = lo/2+hi/2, hi/2-lo/2
		if !(r > 0) || math.IsInf(r, 0) {
			r = 1
		}
		return c, r
	}
	f := fitter{on: true}
	f.xc, f.xr = half(g.Domain.XMin, g.Domain.XMax)
	f.yc, f.yr = half(g.Domain.YMin, g.Domain.YMax)
	f.zc, f.zr = half(g.Min, g.Max)
	return f
}

func (f fitter) vertex(x, y, z float64) view.Vertex3D {
	if !f.on {
		return view.Vertex3D{X: x, Y: y, Z: z}
	}
	return view.Vertex3D{X: (x - f.xc) / f.xr, Y: (y - f.yc) / f.yr, Z: (z - f.zc) / f.zr}
}

// mean3 averages without overflowing near ±MaxFloat64.
func mean3(a, b, c float64) float64 {
	if m := (a + b + c) / 3; !math.IsInf(m, 0) {
		return m
	}
	return a/3 + b/3 + c/3
}

// Assemble emits two triangles, (k00,k10,k11) and (k00,k11,k01), for every grid cell whose four
// vertices are valid and projectable. Other cells are left as holes.
func Assemble(g *sample.Grid, t view.Transform, c colorramp.Colorizer, opts Options) []Primitive {
	if g == nil || g.NX < 2 || g.NY < 2 {
		return nil
	}
	pr := project(g, t, opts)
	colors := make([]color.RGBA, g.Len())
	for k := range colors {
		if pr.ok[k] {
			colors[k] = c.ColorFor(g.RenderHeight(k), g.Min, g.Max)
		}
	}

	out := make([]Primitive, 0, 2*(g.NX-1)*(g.NY-1))
	tri := func(cell Cell, a, b, d int) Primitive {
		p := Primitive{
			V:      [3]view.Vertex2D{pr.v[a], pr.v[b], pr.v[d]},
			Colors: [3]color.RGBA{colors[a], colors[b], colors[d]},
			Cell:   cell,
		}
		p.Depth = mean3(p.V[0].Depth, p.V[1].Depth, p.V[2].Depth)
		h := mean3(g.RenderHeight(a), g.RenderHeight(b), g.RenderHeight(d))
		p.Color = c.ColorFor(h, g.Min, g.Max)
		return p
	}
	for j := 0; j < g.NY-1; j++ {
		for i := 0; i < g.NX-1; i++ {
			k00, k10 := g.Index(i, j), g.Index(i+1, j)
			k01, k11 := g.Index(i, j+1), g.Index(i+1, j+1)
			if !pr.ok[k00] || !pr.ok[k10] || !pr.ok[k01] || !pr.ok[k11] {
				continue
			}
			cell := Cell{I: i, J: j}
			out = append(out, tri(cell, k00, k10, k11), tri(cell, k00, k11, k01))
		}
	}
	slices.SortStableFunc(out, func(a, b Primitive) int { return cmp.Compare(a.Depth, b.Depth) })
	return out
}

// Wireframe returns the row and column segments between adjacent valid vertices, back-to-front.
func Wireframe(g *sample.Grid, t view.Transform, opts Options, col color.RGBA) []Line {
	if g == nil {
		return nil
	}
	pr := project(g, t, opts)
	var out []Line
	seg := func(a, b int) {
		if !pr.ok[a] || !pr.ok[b] {
			return
		}
		out = append(out, Line{A: pr.v[a], B: pr.v[b], Color: col, Depth: pr.v[a].Depth/2 + pr.v[b].Depth/2})
	}
	for j := 0; j < g.NY; j++ {
		for i := 0; i+1 < g.NX; i++ {
			seg(g.Index(i, j), g.Index(i+1, j))
		}
	}
	for i := 0; i < g.NX; i++ {
		for j := 0; j+1 < g.NY; j++ {
			seg(g.Index(i, j), g.Index(i, j+1))
		}
	}
	slices.SortStableFunc(out, func(a, b Line) int { return cmp.Compare(a.Depth, b.Depth) })
	return out
}

// Points returns one coloured point per valid, projectable vertex, back-to-front.
func Points(g *sample.Grid, t view.Transform, c colorramp.Colorizer, opts Options) []Point {
	if g == nil {
		return nil
	}
	pr := project(g, t, opts)
	out := make([]Point, 0, g.ValidCount())
	for k, ok := range pr.ok {
		if ok {
			out = append(out, Point{V: pr.v[k], Color: c.ColorFor(g.RenderHeight(k), g.Min, g.Max)})
		}
	}
	slices.SortStableFunc(out, func(a, b Point) int { return cmp.Compare(a.V.Depth, b.V.Depth) })
	return out
}
