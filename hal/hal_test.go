package hal

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func TestRGB565RoundTrip(t *testing.T) {
	tests := []struct {
		r, g, b uint8
		want    uint16
	}{
		{0xff, 0x00, 0x00, 0xf800},
		{0x00, 0xff, 0x00, 0x07e0},
		{0x00, 0x00, 0xff, 0x001f},
		{0xff, 0xff, 0xff, 0xffff},
	}
	for _, tt := range tests {
		p := rgb565(tt.r, tt.g, tt.b)
		if p != tt.want {
			t.Fatalf("rgb565(%#x,%#x,%#x) = %#04x, want %#04x", tt.r, tt.g, tt.b, p, tt.want)
		}
		if r, g, b := rgb888From565(p); r != tt.r || g != tt.g || b != tt.b {
			t.Fatalf("rgb888From565(%#04x) = %#x,%#x,%#x", p, r, g, b)
		}
	}
}

func TestFramebuffer_PresentAndExpand(t *testing.T) {
	fb := newHostFramebuffer(3, 2)
	if fb.StrideBytes() != 6 || len(fb.Buffer()) != 12 || fb.Format() != PixelFormatRGB565 {
		t.Fatalf("framebuffer geometry: stride %d, len %d", fb.StrideBytes(), len(fb.Buffer()))
	}
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))

	fb.ClearRGB(0xff, 0, 0)
	if _, changed := fb.expand(img, 0); changed {
		t.Fatalf("expand reported a change before Present")
	}
	fb.Present()
	seq, changed := fb.expand(img, 0)
	if !changed || seq != 1 {
		t.Fatalf("expand after Present = %d, %v", seq, changed)
	}
	if got := img.RGBAAt(2, 1); got.R != 0xff || got.G != 0 || got.B != 0 || got.A != 0xff {
		t.Fatalf("expanded pixel = %v, want red", got)
	}

	// Drawing into the back buffer does not reach the presented frame.
	fb.ClearRGB(0, 0, 0xff)
	if _, changed := fb.expand(img, seq); changed {
		t.Fatalf("unpresented draw leaked to the front buffer")
	}
}

func TestPointer_AccumulatesDrag(t *testing.T) {
	var p hostPointer
	p.observe(10, 10, false, 0)
	p.observe(20, 15, false, 1)
	p.observe(20, 15, true, 0)
	p.observe(25, 12, true, 0)
	p.observe(30, 20, true, -0.5)

	got := p.Take()
	want := PointerState{X: 30, Y: 20, DX: 10, DY: 5, Wheel: 0.5, Down: true}
	if got != want {
		t.Fatalf("Take() = %+v, want %+v", got, want)
	}
	if again := p.Take(); again.DX != 0 || again.DY != 0 || again.Wheel != 0 || !again.Down {
		t.Fatalf("second Take() = %+v, want deltas reset", again)
	}
}

func TestTime_Advance(t *testing.T) {
	tm := newHostTime()
	start := time.Unix(100, 0)
	tm.advance(start)
	tm.advance(start.Add(2500 * time.Microsecond))
	tm.advance(start.Add(3 * time.Millisecond))

	var last uint64
	for n := len(tm.Ticks()); n > 0; n-- {
		last = <-tm.Ticks()
	}
	if last != 4 {
		t.Fatalf("last tick = %d, want 4 (1 initial + 3 ms)", last)
	}
}

func TestKeyboard_DropsWhenFull(t *testing.T) {
	k := newHostKeyboard()
	for i := 0; i < cap(k.ch)+10; i++ {
		k.emit(KeyEvent{Rune: 'x', Press: true})
	}
	if len(k.Events()) != cap(k.ch) {
		t.Fatalf("queued %d events, want %d", len(k.Events()), cap(k.ch))
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := newHost(Size{}, &buf)
	h.Logger().WriteLineString("a")
	h.Logger().WriteLineBytes([]byte("b"))
	if buf.String() != "a\nb\n" {
		t.Fatalf("log output = %q", buf.String())
	}
	fb := h.Display().Framebuffer()
	if fb.Width() != DefaultWidth || fb.Height() != DefaultHeight {
		t.Fatalf("default size = %dx%d", fb.Width(), fb.Height())
	}
}

func TestRunHeadless(t *testing.T) {
	var steps int
	var fb Framebuffer
	err := RunHeadless(context.Background(), func(h HAL) func() error {
		fb = h.Display().Framebuffer()
		return func() error {
			steps++
			return nil
		}
	}, HeadlessConfig{Size: Size{Width: 64, Height: 32}, Hz: 1000, Ticks: 5})
	if err != nil {
		t.Fatalf("RunHeadless error: %v", err)
	}
	if steps != 5 || fb.Width() != 64 || fb.Height() != 32 {
		t.Fatalf("steps = %d, size = %dx%d", steps, fb.Width(), fb.Height())
	}

	stop := errors.New("stop")
	err = RunHeadless(context.Background(), func(HAL) func() error {
		return func() error { return stop }
	}, HeadlessConfig{Hz: 1000})
	if !errors.Is(err, stop) {
		t.Fatalf("step error = %v, want stop", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := RunHeadless(ctx, func(HAL) func() error { return nil }, HeadlessConfig{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled run = %v", err)
	}
}
