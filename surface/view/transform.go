// Package view rotates, zooms and projects surface vertices into screen space.
//
// Screen coordinates are unitless: the renderer maps them onto pixels. Depth increases toward the
// viewer, so sorting ascending by depth draws far primitives first.
package view

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

var ErrZoom = errors.New("view: invalid zoom")

const (
	DefaultDistance = 4.0
	DefaultNear     = 0.05
)

// Projection selects how rotated vertices map onto the screen plane.
type Projection uint8

const (
	Orthographic Projection = iota
	Perspective
)

func (p Projection) String() string {
	switch p {
	case Orthographic:
		return "ortho"
	case Perspective:
		return "persp"
	default:
		return fmt.Sprintf("Projection(%d)", uint8(p))
	}
}

// ParseProjection accepts "ortho"/"orthographic" and "persp"/"perspective".
func ParseProjection(s string) (Projection, error) {
	switch s {
	case "ortho", "orthographic", "":
		return Orthographic, nil
	case "persp", "perspective":
		return Perspective, nil
	}
	return Orthographic, fmt.Errorf("view: unknown projection %q", s)
}

// Vertex3D is a point in surface space: x and y from the domain, z the height.
type Vertex3D struct {
	X, Y, Z float64
}

// Vertex2D is a projected vertex. Depth grows toward the viewer.
type Vertex2D struct {
	X, Y  float64
	Depth float64
}

// Angles are rotations in radians about the X, Y and Z axes.
type Angles struct {
	X, Y, Z float64
}

// Transform is the view state. Rotations apply about X, then Y, then Z.
type Transform struct {
	Rot        Angles
	Zoom       float64
	Projection Projection
	// Distance is the camera distance for Perspective; zero means DefaultDistance.
	Distance float64
	// Near rejects vertices closer than this to the camera plane; zero means DefaultNear.
	Near float64
}

// Identity is the unrotated orthographic view at zoom 1.
func Identity() Transform { return Transform{Zoom: 1} }

// ValidateZoom reports whether z is usable as a zoom factor.
func ValidateZoom(z float64) error {
	if math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		return fmt.Errorf("%w: %g must be finite and > 0", ErrZoom, z)
	}
	return nil
}

func (t Transform) Validate() error {
	if err := ValidateZoom(t.Zoom); err != nil {
		return err
	}
	if t.Projection == Perspective {
		d, near := t.distance(), t.near()
		if !(d > near) || !(near > 0) || math.IsInf(d, 0) {
			return fmt.Errorf("view: perspective distance %g must exceed near %g > 0", d, near)
		}
	}
	return nil
}

func (t Transform) distance() float64 {
	if t.Distance == 0 {
		return DefaultDistance
	}
	return t.Distance
}

func (t Transform) near() float64 {
	if t.Near == 0 {
		return DefaultNear
	}
	return t.Near
}

// Rotate returns t with the given deltas added to its angles, normalized into [0, 2π).
func (t Transform) Rotate(dx, dy, dz float64) Transform {
	t.Rot.X = NormalizeAngle(t.Rot.X + dx)
	t.Rot.Y = NormalizeAngle(t.Rot.Y + dy)
	t.Rot.Z = NormalizeAngle(t.Rot.Z + dz)
	return t
}

// NormalizeAngle maps a into [0, 2π). Non-finite angles become 0.
func NormalizeAngle(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return 0
	}
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	if a >= 2*math.Pi {
		a = 0
	}
	return a
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Project maps v to screen space. ok is false when v is not finite or, in perspective, lies at or
// behind the near plane.
func (t Transform) Project(v Vertex3D) (Vertex2D, bool) {
	return t.Projector().Project(v)
}

// Projector is a Transform with its rotations prepared, for projecting many vertices.
type Projector struct {
	rx, ry, rz r3.Rotation
	zoom       float64
	persp      bool
	dist, near float64
}

var (
	axisX = r3.Vec{X: 1}
	axisY = r3.Vec{Y: 1}
	axisZ = r3.Vec{Z: 1}
)

func (t Transform) Projector() Projector {
	return Projector{
		rx:    r3.NewRotation(t.Rot.X, axisX),
		ry:    r3.NewRotation(t.Rot.Y, axisY),
		rz:    r3.NewRotation(t.Rot.Z, axisZ),
		zoom:  t.Zoom,
		persp: t.Projection == Perspective,
		dist:  t.distance(),
		near:  t.near(),
	}
}

// Rotated returns v after the X, Y and Z rotations and zoom, before projection.
func (p Projector) Rotated(v Vertex3D) r3.Vec {
	w := r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
	w = p.rx.Rotate(w)
	w = p.ry.Rotate(w)
	w = p.rz.Rotate(w)
	return r3.Scale(p.zoom, w)
}

func (p Projector) Project(v Vertex3D) (Vertex2D, bool) {
	if !finite(v.X) || !finite(v.Y) || !finite(v.Z) {
		return Vertex2D{}, false
	}
	w := p.Rotated(v)
	if !p.persp {
		return checked(Vertex2D{X: w.X, Y: w.Y, Depth: w.Z})
	}
	denom := p.dist - w.Z
	if denom <= p.near {
		return Vertex2D{}, false
	}
	s := p.dist / denom
	return checked(Vertex2D{X: w.X * s, Y: w.Y * s, Depth: w.Z})
}

// checked rejects vertices that overflowed during rotation, zoom or the perspective divide.
func checked(v Vertex2D) (Vertex2D, bool) {
	if !finite(v.X) || !finite(v.Y) || !finite(v.Depth) {
		return Vertex2D{}, false
	}
	return v, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
