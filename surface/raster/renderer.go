package raster

import (
	"image/color"
	"math"

	"grapher/surface/mesh"
	"grapher/surface/pipeline"
	"grapher/surface/view"
)

// Mode selects how triangles are filled.
type Mode uint8

const (
	// ModeVertexColor interpolates the per-vertex ramp colours.
	ModeVertexColor Mode = iota
	// ModeFlat fills each triangle with its average-height colour.
	ModeFlat
)

// Viewport maps view coordinates to pixels: px = CX + x*Scale, py = CY - y*Scale.
type Viewport struct {
	Scale  float64
	CX, CY float64
}

// FitViewport centres the view in a w×h target so the rotated unit cube fits at zoom 1.
func FitViewport(w, h int) Viewport {
	return Viewport{
		Scale: float64(min(w, h)) * 28 / 100,
		CX:    float64(w) / 2,
		CY:    float64(h) / 2,
	}
}

func (vp Viewport) Pixel(v view.Vertex2D) (x, y int) {
	return int(math.Round(vp.CX + v.X*vp.Scale)), int(math.Round(vp.CY - v.Y*vp.Scale))
}

// pixelLimit bounds triangle coordinates so edge function products stay well inside int range.
const pixelLimit = 1 << 20

// Renderer paints frames. The zero value fills with vertex colours on black.
type Renderer struct {
	Mode       Mode
	Background color.RGBA
	// PointSize is the side of the square drawn per point; zero means 3.
	PointSize int
	// NoClear skips clearing the target before drawing.
	NoClear bool
}

// Draw clears t and paints f's triangles, then lines, then points, each in the frame's order.
func (r *Renderer) Draw(t Target, f pipeline.Frame, vp Viewport) {
	if r == nil || t == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	if !r.NoClear {
		bg := r.Background
		if bg.A == 0 {
			bg.A = 0xff
		}
		t.Clear(bg)
	}
	for _, p := range f.Triangles {
		r.drawTriangle(t, w, h, vp, p)
	}
	for _, l := range f.Lines {
		x0, y0 := vp.Pixel(l.A)
		x1, y1 := vp.Pixel(l.B)
		if offscreen(x0, y0, x1, y1, w, h) || tooFar(x0, y0, x1, y1) {
			continue
		}
		drawLine(t, x0, y0, x1, y1, l.Color)
	}
	size := r.PointSize
	if size <= 0 {
		size = 3
	}
	for _, pt := range f.Points {
		x, y := vp.Pixel(pt.V)
		for dy := 0; dy < size; dy++ {
			for dx := 0; dx < size; dx++ {
				t.SetPixel(x+dx-size/2, y+dy-size/2, pt.Color)
			}
		}
	}
}

func (r *Renderer) drawTriangle(t Target, w, h int, vp Viewport, p mesh.Primitive) {
	x0, y0 := vp.Pixel(p.V[0])
	x1, y1 := vp.Pixel(p.V[1])
	x2, y2 := vp.Pixel(p.V[2])
	if tooFar(x0, y0, x1, y1, x2, y2) {
		return
	}
	c0, c1, c2 := p.Colors[0], p.Colors[1], p.Colors[2]
	if r.Mode == ModeFlat {
		c0, c1, c2 = p.Color, p.Color, p.Color
	}
	// Edge functions below expect one winding; rotation can flip it.
	if edgeFn(x0, y0, x1, y1, x2, y2) < 0 {
		x1, y1, x2, y2 = x2, y2, x1, y1
		c1, c2 = c2, c1
	}
	fillTriangle(t, w, h, x0, y0, c0, x1, y1, c1, x2, y2, c2)
}

func fillTriangle(t Target, w, h int, x0, y0 int, c0 color.RGBA, x1, y1 int, c1 color.RGBA, x2, y2 int, c2 color.RGBA) {
	minX, maxX := max(min(x0, x1, x2), 0), min(max(x0, x1, x2), w-1)
	minY, maxY := max(min(y0, y1, y2), 0), min(max(y0, y1, y2), h-1)
	if minX > maxX || minY > maxY {
		return
	}

	area := edgeFn(x0, y0, x1, y1, x2, y2)
	if area == 0 {
		return
	}
	flat := c0 == c1 && c1 == c2
	inv := 1.0 / float32(area)
	r0, g0, b0 := float32(c0.R), float32(c0.G), float32(c0.B)
	r1, g1, b1 := float32(c1.R), float32(c1.G), float32(c1.B)
	r2, g2, b2 := float32(c2.R), float32(c2.G), float32(c2.B)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			w0 := edgeFn(x1, y1, x2, y2, x, y)
			w1 := edgeFn(x2, y2, x0, y0, x, y)
			w2 := edgeFn(x0, y0, x1, y1, x, y)
			if (w0 | w1 | w2) < 0 {
				continue
			}
			if flat {
				t.SetPixel(x, y, c0)
				continue
			}
			a0, a1, a2 := float32(w0)*inv, float32(w1)*inv, float32(w2)*inv
			t.SetPixel(x, y, color.RGBA{
				R: channel(a0*r0 + a1*r1 + a2*r2),
				G: channel(a0*g0 + a1*g1 + a2*g2),
				B: channel(a0*b0 + a1*b1 + a2*b2),
				A: 0xff,
			})
		}
	}
}

func drawLine(t Target, x0, y0, x1, y1 int, c color.RGBA) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// offscreen reports segments entirely on one side of the target, which Bresenham would otherwise
// walk pixel by pixel.
func offscreen(x0, y0, x1, y1, w, h int) bool {
	return (x0 < 0 && x1 < 0) || (y0 < 0 && y1 < 0) || (x0 >= w && x1 >= w) || (y0 >= h && y1 >= h)
}

func tooFar(coords ...int) bool {
	for _, c := range coords {
		if absInt(c) > pixelLimit {
			return true
		}
	}
	return false
}

// edgeFn is positive when (x, y) lies to the right of the edge 0→1 in pixel space.
func edgeFn(x0, y0, x1, y1, x, y int) int {
	return (x-x0)*(y1-y0) - (y-y0)*(x1-x0)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func channel(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
