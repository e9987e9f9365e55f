//go:build cgo

package hal

import (
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"grapher/internal/buildinfo"
)

// WindowConfig sizes the desktop window. Scale multiplies the framebuffer size.
type WindowConfig struct {
	Size  Size
	Scale int
	Title string
}

// RunWindow starts a desktop window that displays the framebuffer and forwards keyboard and
// mouse input. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	h := New(cfg.Size).(*hostHAL)
	step := newApp(h)

	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.Title == "" {
		cfg.Title = "grapher"
	}
	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*cfg.Scale, h.fb.height*cfg.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h     *hostHAL
	img   *image.RGBA
	fbImg *ebiten.Image
	seq   uint64
	step  func() error
}

func (g *hostGame) Update() error {
	pollKeyboard(g.h.kbd)
	pollPointer(g.h.ptr)
	g.h.t.advance(time.Now())
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
		g.seq = ^uint64(0)
	}
	if seq, changed := fb.expand(g.img, g.seq); changed {
		g.seq = seq
		g.fbImg.WritePixels(g.img.Pix)
	}
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
