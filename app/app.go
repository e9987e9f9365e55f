// Package app is the interactive grapher: an expression line, a rotating surface and a status
// overlay, stepped once per frame by the hal runner.
package app

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"

	"grapher/hal"
	"grapher/internal/config"
	"grapher/internal/history"
	"grapher/internal/logging"
	"grapher/surface/colorramp"
	"grapher/surface/pipeline"
	"grapher/surface/raster"
	"grapher/surface/view"
)

// ErrQuit is returned by the step function after the quit console command.
var ErrQuit = errors.New("app: quit")

const (
	// rotateStep is the arrow-key rotation in degrees.
	rotateStep = 5.0
	// dragDegrees is the rotation per pixel of mouse drag.
	dragDegrees = 0.5
	zoomFactor  = 1.1
	MinZoom     = 0.1
	MaxZoom     = 5.0
	// recallSize bounds the in-memory history list.
	recallSize = 200
)

type Config struct {
	// Settings is the startup configuration; nil uses config.Default().
	Settings *config.Config
	// History persists committed expressions; nil keeps them in memory only.
	History *history.Store
	// HistoryLimit is the number of stored expressions kept; zero uses 200.
	HistoryLimit int
	Logger       *logging.Logger
}

type App struct {
	h    hal.HAL
	log  *logging.Logger
	cfg  *config.Config
	hist *history.Store
	keep int

	fb     hal.Framebuffer
	target *raster.RGB565Target
	vp     raster.Viewport
	rend   raster.Renderer
	text   *textLayer

	p     *pipeline.Pipeline
	start pipeline.State
	state pipeline.State
	frame pipeline.Frame
	// err is the last rejected commit; the frame still shows the previous surface.
	err error
	msg string

	line    editLine
	editing bool
	console bool
	example int

	autoRotate bool
	autoStep   float64

	dirty    bool
	panicked bool
	tick     uint64
}

// New builds the app and returns its step function. Setup failures are returned by every step.
func New(h hal.HAL, cfg Config) func() error {
	a, err := newApp(h, cfg)
	if err != nil {
		if h != nil && h.Logger() != nil {
			h.Logger().WriteLineString("grapher: " + err.Error())
		}
		return func() error { return err }
	}
	return a.Step
}

func newApp(h hal.HAL, cfg Config) (*App, error) {
	if h == nil || h.Display() == nil {
		return nil, errors.New("app: no display")
	}
	fb := h.Display().Framebuffer()
	if fb == nil || fb.Format() != hal.PixelFormatRGB565 {
		return nil, errors.New("app: RGB565 framebuffer required")
	}
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil && h.Logger() != nil {
		log = logging.HAL(h.Logger(), settings.Level())
	}

	a := &App{
		h:    h,
		log:  log,
		cfg:  settings,
		hist: cfg.History,
		keep: cfg.HistoryLimit,
		fb:   fb,
		target: &raster.RGB565Target{
			Buf:    fb.Buffer(),
			Stride: fb.StrideBytes(),
			W:      fb.Width(),
			H:      fb.Height(),
		},
		vp:         raster.FitViewport(fb.Width(), fb.Height()),
		p:          pipeline.New(settings.PipelineOptions()),
		start:      settings.State(),
		autoRotate: settings.Render.AutoRotate,
		autoStep:   settings.Render.AutoRotateStep,
		example:    -1,
	}
	a.rend.Background, _ = colorramp.ParseHex(settings.Render.Background)
	if settings.Render.Flat {
		a.rend.Mode = raster.ModeFlat
	}
	a.rend.PointSize = 2
	text, ok := newTextLayer(a.target)
	if !ok {
		return nil, errors.New("app: font unavailable")
	}
	a.text = text

	if a.hist != nil {
		recent, err := a.hist.Texts(recallSize)
		if err != nil {
			a.log.Warn("history unavailable", logging.Error(err))
		}
		for _, s := range recent {
			a.line.remember(s, recallSize)
		}
	}

	if a.keep <= 0 {
		a.keep = recallSize
	}
	a.state = a.start
	a.line.set(a.state.Expr)
	a.rebuild()
	a.render()
	a.log.Info("grapher started",
		logging.String("expr", a.state.Expr),
		logging.Int("width", fb.Width()),
		logging.Int("height", fb.Height()),
	)
	return a, nil
}

// Step runs one frame: input, auto-rotation, and a redraw when anything changed.
func (a *App) Step() (err error) {
	if a.panicked {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			a.panicked = true
			a.showPanic(r, debug.Stack())
			err = nil
		}
	}()

	a.drainTicks()
	if err := a.handleKeys(); err != nil {
		return err
	}
	a.handlePointer()
	if a.autoRotate {
		a.rotate(0, a.autoStep, 0)
	}
	if a.dirty {
		a.rebuild()
		a.render()
	}
	return nil
}

func (a *App) drainTicks() {
	t := a.h.Time()
	if t == nil {
		return
	}
	ch := t.Ticks()
	for {
		select {
		case seq := <-ch:
			a.tick = seq
		default:
			return
		}
	}
}

// rotate adds degrees to the view angles.
func (a *App) rotate(dx, dy, dz float64) {
	if dx == 0 && dy == 0 && dz == 0 {
		return
	}
	a.state.View = a.state.View.Rotate(view.Radians(dx), view.Radians(dy), view.Radians(dz))
	a.dirty = true
}

// zoomBy multiplies the zoom, clamped to [MinZoom, MaxZoom].
func (a *App) zoomBy(f float64) {
	a.setZoom(a.state.View.Zoom * f)
}

func (a *App) setZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	z = math.Max(MinZoom, math.Min(MaxZoom, z))
	if z != a.state.View.Zoom {
		a.state.View.Zoom = z
		a.dirty = true
	}
}

// commit tries the edit line as the new expression. A rejected expression leaves the surface and
// state untouched and records the error for the overlay.
func (a *App) commit(src string) bool {
	next := a.state
	next.Expr = src
	return a.apply(next)
}

// apply switches to s if it produces a frame.
func (a *App) apply(s pipeline.State) bool {
	f, err := a.p.Frame(s)
	a.dirty = true
	if err != nil {
		a.err = err
		a.log.Debug("rejected", logging.String("expr", s.Expr), logging.Error(err))
		return false
	}
	exprChanged := s.Expr != a.state.Expr
	a.state, a.frame, a.err = s, f, nil
	if exprChanged {
		a.remember(s.Expr)
	}
	a.logFrame()
	return true
}

func (a *App) remember(src string) {
	a.line.remember(src, recallSize)
	if a.hist == nil {
		return
	}
	if _, err := a.hist.Add(src); err != nil {
		a.log.Warn("history write failed", logging.Error(err))
		return
	}
	if err := a.hist.Trim(a.keep); err != nil {
		a.log.Warn("history trim failed", logging.Error(err))
	}
}

// rebuild recomputes the frame for the current state.
func (a *App) rebuild() {
	f, err := a.p.Frame(a.state)
	if err != nil {
		a.err = err
		return
	}
	a.frame = f
	if f.Stats.Resampled {
		a.logFrame()
	}
}

func (a *App) logFrame() {
	st := a.frame.Stats
	if !st.Resampled {
		return
	}
	a.log.Info("sampled",
		logging.String("expr", a.frame.Canonical),
		logging.Int("cells", st.Cells),
		logging.Uint64("gen", st.Gen),
		logging.Duration("elapsed", st.Elapsed),
	)
	if st.Invalid > 0 || st.Clamped > 0 {
		a.log.Debug("grid anomalies",
			logging.Uint64("gen", st.Gen),
			logging.Int("invalid", st.Invalid),
			logging.Int("clamped", st.Clamped),
		)
	}
}

func (a *App) render() {
	a.dirty = false
	a.rend.Draw(a.target, a.frame, a.vp)
	a.drawOverlay()
	if err := a.fb.Present(); err != nil {
		a.log.Error("present failed", logging.Error(err))
	}
}

// State returns the committed view state.
func (a *App) State() pipeline.State { return a.state }

// Frame returns the geometry currently on screen.
func (a *App) Frame() pipeline.Frame { return a.frame }

// Err returns the last rejected commit, or nil.
func (a *App) Err() error { return a.err }

func (a *App) setMessage(format string, args ...any) {
	a.msg = fmt.Sprintf(format, args...)
	a.dirty = true
}
