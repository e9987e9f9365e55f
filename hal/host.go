package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Default framebuffer size in pixels.
const (
	DefaultWidth  = 480
	DefaultHeight = 400
)

// Size is a framebuffer size. Zero fields take the defaults.
type Size struct {
	Width, Height int
}

func (s Size) orDefault() Size {
	if s.Width <= 0 {
		s.Width = DefaultWidth
	}
	if s.Height <= 0 {
		s.Height = DefaultHeight
	}
	return s
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	ptr    *hostPointer
	t      *hostTime
}

// New returns a host HAL logging to stderr.
func New(size Size) HAL {
	return newHost(size, os.Stderr)
}

func newHost(size Size, w io.Writer) *hostHAL {
	size = size.orDefault()
	return &hostHAL{
		logger: &hostLogger{w: w},
		fb:     newHostFramebuffer(size.Width, size.Height),
		kbd:    newHostKeyboard(),
		ptr:    &hostPointer{},
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd, ptr: h.ptr} }
func (h *hostHAL) Time() Time       { return h.t }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, 64)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

// emit drops the event when the queue is full.
func (k *hostKeyboard) emit(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

type hostPointer struct {
	mu     sync.Mutex
	state  PointerState
	lastX  int
	lastY  int
	lastOn bool
}

// observe folds one polled sample into the pending state.
func (p *hostPointer) observe(x, y int, down bool, wheel float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if down && p.lastOn {
		p.state.DX += x - p.lastX
		p.state.DY += y - p.lastY
	}
	p.state.X, p.state.Y = x, y
	p.state.Down = down
	p.state.Wheel += wheel
	p.lastX, p.lastY, p.lastOn = x, y, down
}

func (p *hostPointer) Take() PointerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	p.state.DX, p.state.DY, p.state.Wheel = 0, 0, 0
	return s
}
