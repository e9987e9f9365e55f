package stream

import (
	"errors"
	"fmt"
	"image/color"

	"grapher/surface/colorramp"
	"grapher/surface/expr"
	"grapher/surface/pipeline"
	"grapher/surface/sample"
	"grapher/surface/view"
)

// Request asks for one frame. Omitted fields keep the server's base state.
type Request struct {
	Expr       string      `json:"expr"`
	Domain     *Domain     `json:"domain,omitempty"`
	Resolution *Resolution `json:"resolution,omitempty"`
	// Rotation is in degrees.
	Rotation   *Rotation `json:"rotation,omitempty"`
	Zoom       float64   `json:"zoom,omitempty"`
	Projection string    `json:"projection,omitempty"`
	Wireframe  *bool     `json:"wireframe,omitempty"`
	Fill       *bool     `json:"fill,omitempty"`
	Points     bool      `json:"points,omitempty"`
}

type Domain struct {
	XMin float64 `json:"xmin"`
	XMax float64 `json:"xmax"`
	YMin float64 `json:"ymin"`
	YMax float64 `json:"ymax"`
}

type Resolution struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Rotation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Response carries either a frame or an error.
type Response struct {
	// Seq numbers requests in arrival order on the connection. Superseded requests never get a
	// response, so gaps are normal.
	Seq       uint64     `json:"seq"`
	Gen       uint64     `json:"gen"`
	Canonical string     `json:"canonical,omitempty"`
	Triangles []Triangle `json:"triangles,omitempty"`
	Lines     []Line     `json:"lines,omitempty"`
	Points    []Point    `json:"points,omitempty"`
	Stats     *Stats     `json:"stats,omitempty"`
	Error     *Error     `json:"error,omitempty"`
}

// Triangle vertices are [x, y, depth] in view space.
type Triangle struct {
	V      [3][3]float64 `json:"v"`
	Colors [3]string     `json:"colors"`
	Color  string        `json:"color"`
	Depth  float64       `json:"depth"`
}

type Line struct {
	A     [3]float64 `json:"a"`
	B     [3]float64 `json:"b"`
	Color string     `json:"color"`
}

type Point struct {
	V     [3]float64 `json:"v"`
	Color string     `json:"color"`
}

type Stats struct {
	Cells     int     `json:"cells"`
	Invalid   int     `json:"invalid"`
	Clamped   int     `json:"clamped"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Triangles int     `json:"triangles"`
	Lines     int     `json:"lines"`
	Points    int     `json:"points"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Resampled bool    `json:"resampled"`
}

// Error kinds outside the parser's own.
const (
	KindRequest = "Request"
	KindConfig  = "Config"
)

type Error struct {
	Kind string `json:"kind"`
	// Offset is the byte offset into expr for parse errors and -1 otherwise.
	Offset  int    `json:"offset"`
	Message string `json:"message"`
}

// state applies r over base.
func (r Request) state(base pipeline.State) (pipeline.State, error) {
	s := base
	if r.Expr != "" {
		s.Expr = r.Expr
	}
	if r.Domain != nil {
		s.Domain = sample.Domain{XMin: r.Domain.XMin, XMax: r.Domain.XMax, YMin: r.Domain.YMin, YMax: r.Domain.YMax}
	}
	if r.Resolution != nil {
		s.Resolution = sample.Resolution{NX: r.Resolution.X, NY: r.Resolution.Y}
	}
	if r.Rotation != nil {
		s.View.Rot = view.Angles{
			X: view.NormalizeAngle(view.Radians(r.Rotation.X)),
			Y: view.NormalizeAngle(view.Radians(r.Rotation.Y)),
			Z: view.NormalizeAngle(view.Radians(r.Rotation.Z)),
		}
	}
	if r.Zoom != 0 {
		s.View.Zoom = r.Zoom
	}
	if r.Projection != "" {
		p, err := view.ParseProjection(r.Projection)
		if err != nil {
			return s, err
		}
		s.View.Projection = p
	}
	if r.Wireframe != nil {
		s.Wireframe = *r.Wireframe
	}
	if r.Fill != nil {
		s.Fill = *r.Fill
	}
	s.Points = r.Points
	return s, nil
}

func errorOf(err error) *Error {
	var pe *expr.ParseError
	if errors.As(err, &pe) {
		return &Error{Kind: pe.Kind.String(), Offset: pe.Offset, Message: pe.Msg}
	}
	return &Error{Kind: KindConfig, Offset: -1, Message: err.Error()}
}

func encodeFrame(seq uint64, f pipeline.Frame) Response {
	resp := Response{Seq: seq, Gen: f.Stats.Gen, Canonical: f.Canonical}
	if n := len(f.Triangles); n > 0 {
		resp.Triangles = make([]Triangle, n)
		for i, p := range f.Triangles {
			t := Triangle{Color: hex(p.Color), Depth: p.Depth}
			for k := range p.V {
				t.V[k] = vec(p.V[k])
				t.Colors[k] = hex(p.Colors[k])
			}
			resp.Triangles[i] = t
		}
	}
	if n := len(f.Lines); n > 0 {
		resp.Lines = make([]Line, n)
		for i, l := range f.Lines {
			resp.Lines[i] = Line{A: vec(l.A), B: vec(l.B), Color: hex(l.Color)}
		}
	}
	if n := len(f.Points); n > 0 {
		resp.Points = make([]Point, n)
		for i, p := range f.Points {
			resp.Points[i] = Point{V: vec(p.V), Color: hex(p.Color)}
		}
	}
	st := f.Stats
	resp.Stats = &Stats{
		Cells:     st.Cells,
		Invalid:   st.Invalid,
		Clamped:   st.Clamped,
		Min:       st.Min,
		Max:       st.Max,
		Triangles: st.Triangles,
		Lines:     st.Lines,
		Points:    st.Points,
		ElapsedMS: float64(st.Elapsed.Microseconds()) / 1000,
		Resampled: st.Resampled,
	}
	return resp
}

func vec(v view.Vertex2D) [3]float64 { return [3]float64{v.X, v.Y, v.Depth} }

func hex(c color.RGBA) string { return colorramp.Hex(c) }

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
