package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"grapher/surface/raster"
	"grapher/surface/sample"
	"grapher/surface/view"
)

const consoleHelp = "zoom Z | rot X Y [Z] | domain R | domain X0 X1 Y0 Y1 | res N [M] | proj ortho|persp | " +
	"example N | history [N] | fill | wire | points | flat | spin | reset | quit"

// runCommand executes one console line. Failures are reported in the message row.
func (a *App) runCommand(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		a.setMessage("console: %v", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	if args[0] == "quit" || args[0] == "q" {
		return ErrQuit
	}
	if err := a.command(args[0], args[1:]); err != nil {
		a.setMessage("%s: %v", args[0], err)
	}
	return nil
}

func (a *App) command(name string, args []string) error {
	switch name {
	case "help", "?":
		a.setMessage("%s", consoleHelp)
	case "zoom":
		v, err := floats(args, 1, 1)
		if err != nil {
			return err
		}
		if err := view.ValidateZoom(v[0]); err != nil {
			return err
		}
		a.setZoom(v[0])
	case "rot":
		v, err := floats(args, 2, 3)
		if err != nil {
			return err
		}
		v = append(v, 0)
		s := a.state
		s.View.Rot = view.Angles{
			X: view.NormalizeAngle(view.Radians(v[0])),
			Y: view.NormalizeAngle(view.Radians(v[1])),
			Z: view.NormalizeAngle(view.Radians(v[2])),
		}
		a.apply(s)
	case "domain":
		v, err := floats(args, 1, 4)
		if err != nil {
			return err
		}
		var d sample.Domain
		switch len(v) {
		case 1:
			d = sample.Symmetric(v[0])
		case 4:
			d = sample.Domain{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}
		default:
			return fmt.Errorf("want 1 or 4 values, got %d", len(v))
		}
		if err := d.Validate(); err != nil {
			return err
		}
		s := a.state
		s.Domain = d
		a.apply(s)
	case "res":
		v, err := floats(args, 1, 2)
		if err != nil {
			return err
		}
		r := sample.Square(int(v[0]))
		if len(v) == 2 {
			r.NY = int(v[1])
		}
		if err := r.Validate(); err != nil {
			return err
		}
		s := a.state
		s.Resolution = r
		a.apply(s)
	case "proj":
		if len(args) != 1 {
			return fmt.Errorf("want ortho or persp")
		}
		p, err := view.ParseProjection(args[0])
		if err != nil {
			return err
		}
		s := a.state
		s.View.Projection = p
		a.apply(s)
	case "example":
		v, err := floats(args, 1, 1)
		if err != nil {
			return err
		}
		i := int(v[0]) - 1
		if i < 0 || i >= len(a.cfg.Examples) {
			return fmt.Errorf("want 1..%d", len(a.cfg.Examples))
		}
		a.example = i
		if a.commit(a.cfg.Examples[i]) {
			a.line.set(a.state.Expr)
		}
	case "history":
		n := 5
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v <= 0 {
				return fmt.Errorf("bad count %q", args[0])
			}
			n = v
		}
		h := a.line.hist
		if len(h) > n {
			h = h[len(h)-n:]
		}
		if len(h) == 0 {
			a.setMessage("history is empty")
		} else {
			a.setMessage("%s", strings.Join(h, " | "))
		}
	case "fill":
		a.state.Fill = !a.state.Fill
		a.dirty = true
	case "wire":
		a.state.Wireframe = !a.state.Wireframe
		a.dirty = true
	case "points":
		a.state.Points = !a.state.Points
		a.dirty = true
	case "flat":
		if a.rend.Mode == raster.ModeFlat {
			a.rend.Mode = raster.ModeVertexColor
		} else {
			a.rend.Mode = raster.ModeFlat
		}
		a.dirty = true
	case "spin":
		a.autoRotate = !a.autoRotate
		a.dirty = true
	case "reset":
		a.autoRotate = a.cfg.Render.AutoRotate
		a.apply(a.start)
		a.line.set(a.state.Expr)
	default:
		return fmt.Errorf("unknown command (try help)")
	}
	return nil
}

// floats parses between lo and hi numeric arguments.
func floats(args []string, lo, hi int) ([]float64, error) {
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return nil, fmt.Errorf("want %d value(s), got %d", lo, len(args))
		}
		return nil, fmt.Errorf("want %d to %d values, got %d", lo, hi, len(args))
	}
	out := make([]float64, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", s)
		}
		out[i] = v
	}
	return out, nil
}
