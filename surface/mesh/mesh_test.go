package mesh

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"grapher/surface/colorramp"
	"grapher/surface/expr"
	"grapher/surface/sample"
	"grapher/surface/view"
)

func grid(t *testing.T, src string, d sample.Domain, r sample.Resolution) *sample.Grid {
	t.Helper()
	g, err := sample.NewSampler(sample.Options{}).Sample(expr.MustParse(src), d, r)
	if err != nil {
		t.Fatalf("Sample(%q) error: %v", src, err)
	}
	return g
}

var ramp = colorramp.New(colorramp.Default())

func TestAssemble_SingleCellWinding(t *testing.T) {
	g := grid(t, "x+y", sample.Symmetric(1), sample.Square(2))
	prims := Assemble(g, view.Identity(), ramp, Options{})
	if len(prims) != 2 {
		t.Fatalf("len = %d, want 2", len(prims))
	}
	// k00=(-1,-1) k10=(1,-1) k01=(-1,1) k11=(1,1); heights -2, 0, 0, 2.
	v00 := view.Vertex2D{X: -1, Y: -1, Depth: -2}
	v10 := view.Vertex2D{X: 1, Y: -1, Depth: 0}
	v01 := view.Vertex2D{X: -1, Y: 1, Depth: 0}
	v11 := view.Vertex2D{X: 1, Y: 1, Depth: 2}
	want := map[[3]view.Vertex2D]bool{
		{v00, v10, v11}: true,
		{v00, v11, v01}: true,
	}
	for _, p := range prims {
		if !want[p.V] {
			t.Fatalf("unexpected triangle %v", p.V)
		}
		if p.Cell != (Cell{0, 0}) {
			t.Fatalf("cell = %v, want {0 0}", p.Cell)
		}
		if p.Colors[0] != colorramp.Blue {
			t.Fatalf("k00 colour = %v, want blue (grid minimum)", p.Colors[0])
		}
	}
	// Both triangles average to depth 0; stable order keeps (k00,k10,k11) first.
	if prims[0].V != [3]view.Vertex2D{v00, v10, v11} {
		t.Fatalf("first triangle = %v", prims[0].V)
	}
}

func TestAssemble_TriangleCount(t *testing.T) {
	for _, n := range []int{2, 3, 7, 20} {
		g := grid(t, "sin(x) * cos(y)", sample.Symmetric(3), sample.Square(n))
		if got, want := len(Assemble(g, view.Identity(), ramp, Options{Fit: true})), 2*(n-1)*(n-1); got != want {
			t.Fatalf("n=%d: %d triangles, want %d", n, got, want)
		}
	}
}

func TestAssemble_FlatSurfaceIsMidpoint(t *testing.T) {
	g := grid(t, "1", sample.Symmetric(2), sample.Square(5))
	tr := view.Transform{Rot: view.Angles{X: 0.4, Y: 1.1}, Zoom: 0.8}
	for _, fit := range []bool{false, true} {
		for _, p := range Assemble(g, tr, ramp, Options{Fit: fit}) {
			for _, c := range p.Colors {
				if c != colorramp.Yellow {
					t.Fatalf("fit=%v: vertex colour %v, want midpoint", fit, c)
				}
			}
			if p.Color != colorramp.Yellow {
				t.Fatalf("fit=%v: flat colour %v, want midpoint", fit, p.Color)
			}
		}
	}
}

func TestAssemble_Holes(t *testing.T) {
	// x = -1 is invalid for sqrt, so only the right-hand cell survives.
	g := grid(t, "sqrt(x)", sample.Domain{XMin: -1, XMax: 1, YMin: 0, YMax: 1}, sample.Resolution{NX: 3, NY: 2})
	prims := Assemble(g, view.Identity(), ramp, Options{})
	if len(prims) != 2 {
		t.Fatalf("len = %d, want 2", len(prims))
	}
	for _, p := range prims {
		if p.Cell != (Cell{1, 0}) {
			t.Fatalf("cell = %v, want {1 0}", p.Cell)
		}
	}

	// Perspective drops cells with a vertex behind the near plane.
	g = grid(t, "5x", sample.Domain{XMin: 0, XMax: 1, YMin: 0, YMax: 1}, sample.Resolution{NX: 3, NY: 2})
	prims = Assemble(g, view.Transform{Zoom: 1, Projection: view.Perspective}, ramp, Options{})
	for _, p := range prims {
		if p.Cell.I != 0 {
			t.Fatalf("cell %v with z >= distance was emitted", p.Cell)
		}
	}
	if len(prims) != 2 {
		t.Fatalf("perspective len = %d, want 2", len(prims))
	}
}

func TestAssemble_BackToFront(t *testing.T) {
	g := grid(t, "x^2 - y^2", sample.Symmetric(2), sample.Square(12))
	tr := view.Transform{Rot: view.Angles{X: view.Radians(30), Y: view.Radians(30)}, Zoom: 0.8}
	prims := Assemble(g, tr, ramp, Options{Fit: true})
	for i := 1; i < len(prims); i++ {
		if prims[i].Depth < prims[i-1].Depth {
			t.Fatalf("primitive %d depth %v < previous %v", i, prims[i].Depth, prims[i-1].Depth)
		}
	}
}

func TestAssemble_StableOnTies(t *testing.T) {
	g := grid(t, "0", sample.Symmetric(1), sample.Square(3))
	prims := Assemble(g, view.Identity(), ramp, Options{})
	var got []Cell
	for _, p := range prims {
		got = append(got, p.Cell)
	}
	want := []Cell{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {0, 1}, {0, 1}, {1, 1}, {1, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("tie order (-want +got):\n%s", diff)
	}
}

func TestAssemble_FitBoundsGeometry(t *testing.T) {
	g := grid(t, "100 * x * y", sample.Domain{XMin: 10, XMax: 30, YMin: -5, YMax: 5}, sample.Square(9))
	for _, p := range Assemble(g, view.Identity(), ramp, Options{Fit: true}) {
		for _, v := range p.V {
			if math.Abs(v.X) > 1+1e-12 || math.Abs(v.Y) > 1+1e-12 || math.Abs(v.Depth) > 1+1e-12 {
				t.Fatalf("fitted vertex %v outside the unit cube", v)
			}
		}
	}
}

func TestAssemble_HugeHeightsStayFinite(t *testing.T) {
	g, err := sample.NewSampler(sample.Options{Clamp: -1}).Sample(expr.MustParse("1.5e308*x"), sample.Symmetric(1), sample.Square(3))
	if err != nil {
		t.Fatalf("Sample error: %v", err)
	}
	if g.Invalid != 0 || g.Max != 1.5e308 {
		t.Fatalf("invalid = %d, max = %g", g.Invalid, g.Max)
	}
	tr := view.Transform{Rot: view.Angles{X: 0.5, Y: 0.5}, Zoom: 1}
	prims := Assemble(g, tr, ramp, Options{Fit: true})
	if len(prims) != 8 {
		t.Fatalf("len = %d, want 8", len(prims))
	}
	finite := func(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
	for _, p := range prims {
		if !finite(p.Depth) {
			t.Fatalf("primitive depth = %g", p.Depth)
		}
		for _, v := range p.V {
			if !finite(v.X) || !finite(v.Y) || !finite(v.Depth) || math.Abs(v.Depth) > 2 {
				t.Fatalf("vertex %v not fitted", v)
			}
		}
	}

	// Unfitted, the mean of three near-maximal depths must not overflow either.
	for _, p := range Assemble(g, view.Identity(), ramp, Options{}) {
		if !finite(p.Depth) {
			t.Fatalf("raw primitive depth = %g", p.Depth)
		}
	}
}

func TestAssemble_Empty(t *testing.T) {
	if got := Assemble(nil, view.Identity(), ramp, Options{}); got != nil {
		t.Fatalf("nil grid = %v", got)
	}
	g := grid(t, "sqrt(-1)", sample.Symmetric(1), sample.Square(4))
	if got := Assemble(g, view.Identity(), ramp, Options{Fit: true}); len(got) != 0 {
		t.Fatalf("all-invalid grid produced %d triangles", len(got))
	}
}

func TestWireframe(t *testing.T) {
	col := colorramp.Red
	g := grid(t, "x+y", sample.Symmetric(1), sample.Square(3))
	lines := Wireframe(g, view.Identity(), Options{}, col)
	if len(lines) != 12 {
		t.Fatalf("len = %d, want 12", len(lines))
	}
	for i, l := range lines {
		if l.Color != col {
			t.Fatalf("line %d colour = %v", i, l.Color)
		}
		if i > 0 && l.Depth < lines[i-1].Depth {
			t.Fatalf("line %d not back-to-front", i)
		}
	}

	// The centre vertex is 1/0 = +Inf, removing its four segments.
	g = grid(t, "1/(x^2 + y^2)", sample.Symmetric(1), sample.Square(3))
	if got := len(Wireframe(g, view.Identity(), Options{}, col)); got != 8 {
		t.Fatalf("holed wireframe len = %d, want 8", got)
	}
}

func TestPoints(t *testing.T) {
	g := grid(t, "sqrt(x)", sample.Domain{XMin: -1, XMax: 1, YMin: 0, YMax: 1}, sample.Resolution{NX: 3, NY: 2})
	pts := Points(g, view.Identity(), ramp, Options{})
	if len(pts) != g.ValidCount() || len(pts) != 4 {
		t.Fatalf("len = %d, want %d", len(pts), g.ValidCount())
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].V.Depth < pts[i-1].V.Depth {
			t.Fatalf("point %d not back-to-front", i)
		}
	}
	if pts[len(pts)-1].Color != colorramp.Red {
		t.Fatalf("highest point colour = %v, want red", pts[len(pts)-1].Color)
	}
}
