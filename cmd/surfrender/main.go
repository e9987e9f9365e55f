// Command surfrender renders one surface to a PNG without opening a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"grapher/internal/buildinfo"
	"grapher/internal/config"
	"grapher/internal/logging"
	"grapher/surface/colorramp"
	"grapher/surface/expr"
	"grapher/surface/pipeline"
	"grapher/surface/raster"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	expr       string
	domain     string
	res        string
	rot        string
	zoom       float64
	proj       string
	size       string
	out        string
	wire       bool
	points     bool
	flat       bool
	stats      bool
	version    bool
	logLevel   string
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("surfrender", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVar(&o.configPath, "config", "", "YAML settings file.")
	fs.StringVar(&o.expr, "expr", "", "Expression in x and y.")
	fs.StringVar(&o.domain, "domain", "", "Domain as R (square -R..R) or XMIN,XMAX,YMIN,YMAX.")
	fs.StringVar(&o.res, "res", "", "Samples per axis as N or NXxNY.")
	fs.StringVar(&o.rot, "rot", "", "Rotation in degrees as X,Y[,Z].")
	fs.Float64Var(&o.zoom, "zoom", 0, "Zoom factor.")
	fs.StringVar(&o.proj, "proj", "", "Projection: ortho or persp.")
	fs.StringVar(&o.size, "size", "640x480", "Image size as WxH.")
	fs.StringVar(&o.out, "o", "surface.png", "Output PNG path (- for stdout).")
	fs.BoolVar(&o.wire, "wire", true, "Draw the wireframe.")
	fs.BoolVar(&o.points, "points", false, "Draw grid points.")
	fs.BoolVar(&o.flat, "flat", false, "Fill each triangle with one colour.")
	fs.BoolVar(&o.stats, "stats", false, "Print grid statistics.")
	fs.BoolVar(&o.version, "version", false, "Print version and exit.")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn or error.")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if o.version {
		fmt.Fprintln(stdout, buildinfo.String("surfrender"))
		return 0
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := render(o, set, stdout, stderr); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func render(o options, set map[string]bool, stdout, stderr io.Writer) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cfg, o, set); err != nil {
		return err
	}
	if _, err := expr.Parse(cfg.Expr); err != nil {
		return &sourceError{src: cfg.Expr, err: err}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	w, h, err := parseSize(o.size)
	if err != nil {
		return err
	}
	log := logging.New(stderr, cfg.Level())

	p := pipeline.New(cfg.PipelineOptions())
	f, err := p.Frame(cfg.State())
	if err != nil {
		return err
	}
	log.Debug("frame",
		logging.String("expr", f.Canonical),
		logging.Int("triangles", f.Stats.Triangles),
		logging.Duration("elapsed", f.Stats.Elapsed),
	)

	tgt := raster.NewImageTarget(w, h)
	r := raster.Renderer{}
	r.Background, _ = colorramp.ParseHex(cfg.Render.Background)
	if cfg.Render.Flat {
		r.Mode = raster.ModeFlat
	}
	r.Draw(tgt, f, raster.FitViewport(w, h))

	if err := writePNG(o.out, stdout, tgt.Img); err != nil {
		return err
	}
	if o.stats {
		st := f.Stats
		fmt.Fprintf(stderr, "expr      %s\n", f.Canonical)
		fmt.Fprintf(stderr, "cells     %d (invalid %d, clamped %d)\n", st.Cells, st.Invalid, st.Clamped)
		fmt.Fprintf(stderr, "height    %g .. %g\n", st.Min, st.Max)
		fmt.Fprintf(stderr, "geometry  %d triangles, %d lines, %d points\n", st.Triangles, st.Lines, st.Points)
		fmt.Fprintf(stderr, "sampled   %s\n", st.Elapsed)
	}
	if o.out != "-" {
		log.Info("wrote", logging.String("path", o.out), logging.Int("width", w), logging.Int("height", h))
	}
	return nil
}

// applyFlags overrides settings with the flags given on the command line.
func applyFlags(cfg *config.Config, o options, set map[string]bool) error {
	if set["expr"] {
		cfg.Expr = o.expr
	}
	if set["domain"] {
		v, err := parseFloats(o.domain, 1, 4)
		if err != nil {
			return fmt.Errorf("-domain: %w", err)
		}
		switch len(v) {
		case 1:
			cfg.Domain = config.DomainConfig{XMin: -v[0], XMax: v[0], YMin: -v[0], YMax: v[0]}
		case 4:
			cfg.Domain = config.DomainConfig{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}
		default:
			return fmt.Errorf("-domain: want 1 or 4 values")
		}
	}
	if set["res"] {
		nx, ny, err := parsePair(o.res)
		if err != nil {
			return fmt.Errorf("-res: %w", err)
		}
		cfg.Resolution = config.ResolutionConfig{X: nx, Y: ny}
	}
	if set["rot"] {
		v, err := parseFloats(o.rot, 2, 3)
		if err != nil {
			return fmt.Errorf("-rot: %w", err)
		}
		v = append(v, 0)
		cfg.Rotation = config.RotationConfig{X: v[0], Y: v[1], Z: v[2]}
	}
	if set["zoom"] {
		cfg.Zoom = o.zoom
	}
	if set["proj"] {
		cfg.Projection = o.proj
	}
	if set["wire"] {
		cfg.Render.Wireframe = o.wire
	}
	if set["points"] {
		cfg.Render.Points = o.points
	}
	if set["flat"] {
		cfg.Render.Flat = o.flat
	}
	if set["log-level"] {
		cfg.LogLevel = o.logLevel
	}
	return nil
}

func parseFloats(s string, lo, hi int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < lo || len(parts) > hi {
		return nil, fmt.Errorf("want %d to %d comma-separated values, got %d", lo, hi, len(parts))
	}
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out[i] = v
	}
	return out, nil
}

// parsePair reads "N" as N×N or "AxB".
func parsePair(s string) (int, int, error) {
	a, b, found := strings.Cut(strings.ToLower(s), "x")
	x, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("bad size %q", s)
	}
	if !found {
		return x, x, nil
	}
	y, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("bad size %q", s)
	}
	return x, y, nil
}

func parseSize(s string) (int, int, error) {
	w, h, err := parsePair(s)
	if err != nil {
		return 0, 0, fmt.Errorf("-size: %w", err)
	}
	if w <= 0 || h <= 0 || w > 8192 || h > 8192 {
		return 0, 0, fmt.Errorf("-size: %dx%d out of range", w, h)
	}
	return w, h, nil
}

// sourceError ties a parse error to the text it came from.
type sourceError struct {
	src string
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

// printError reports err, with the expression and a caret under the offending offset for parse errors.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, "error:", err)
	var se *sourceError
	var pe *expr.ParseError
	if errors.As(err, &se) && errors.As(err, &pe) {
		fmt.Fprintf(w, "  %s\n  %s^\n", se.src, strings.Repeat(" ", caretColumn(se.src, pe.Offset)))
	}
}

func caretColumn(src string, offset int) int {
	offset = max(0, min(offset, len(src)))
	return utf8.RuneCountInString(src[:offset])
}

// writePNG encodes img to path, or to stdout when path is "-".
func writePNG(path string, stdout io.Writer, img image.Image) error {
	if path == "-" {
		if err := png.Encode(stdout, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
