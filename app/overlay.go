package app

import (
	"image/color"
	"unicode/utf8"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"grapher/surface/raster"
)

var (
	colorText  = color.RGBA{R: 0xe0, G: 0xe8, B: 0xff, A: 0xff}
	colorDim   = color.RGBA{R: 0x90, G: 0xa0, B: 0xb8, A: 0xff}
	colorWarn  = color.RGBA{R: 0xff, G: 0xdd, B: 0x66, A: 0xff}
	colorError = color.RGBA{R: 0xff, G: 0x55, B: 0x55, A: 0xff}
	colorBar   = color.RGBA{R: 0x10, G: 0x14, B: 0x1c, A: 0xff}
)

// textLayer draws monospace text over a raster target.
type textLayer struct {
	d          *targetDisplay
	font       tinyfont.Fonter
	fontWidth  int16
	fontHeight int16
	fontOffset int16
}

func newTextLayer(t raster.Target) (*textLayer, bool) {
	l := &textLayer{
		d:          &targetDisplay{t: t},
		font:       &proggy.TinySZ8pt7b,
		fontHeight: 11,
		fontOffset: 8,
	}
	_, outboxWidth := tinyfont.LineWidth(l.font, "0")
	l.fontWidth = int16(outboxWidth)
	return l, l.fontWidth > 0
}

// cols is the number of characters that fit across the target.
func (l *textLayer) cols() int {
	w, _ := l.d.t.Size()
	return w / int(l.fontWidth)
}

// row returns the pixel top of text row n; negative n counts from the bottom.
func (l *textLayer) row(n int) int {
	if n >= 0 {
		return 2 + n*int(l.fontHeight)
	}
	_, h := l.d.t.Size()
	return h - 2 + n*int(l.fontHeight)
}

// bar fills the background band behind text row n.
func (l *textLayer) bar(n int) {
	w, _ := l.d.t.Size()
	y0 := l.row(n) - 1
	for y := y0; y < y0+int(l.fontHeight); y++ {
		for x := 0; x < w; x++ {
			l.d.t.SetPixel(x, y, colorBar)
		}
	}
}

// text draws s on row n starting at character column col. Characters past the right edge are dropped.
func (l *textLayer) text(n, col int, s string, c color.RGBA) {
	s = clipRunes(s, l.cols()-col)
	x := int16(col) * l.fontWidth
	y := int16(l.row(n)) + l.fontOffset
	for _, r := range s {
		tinyfont.DrawChar(l.d, l.font, x, y, r, c)
		x += l.fontWidth
	}
}

// underline marks character column col on row n.
func (l *textLayer) underline(n, col int, c color.RGBA) {
	x0 := col * int(l.fontWidth)
	y := l.row(n) + int(l.fontHeight) - 2
	for x := x0; x < x0+int(l.fontWidth); x++ {
		l.d.t.SetPixel(x, y, c)
	}
}

func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for k := 0; k < n; k++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i]
}

// targetDisplay adapts a raster.Target to the display interface tinyfont draws into.
type targetDisplay struct {
	t raster.Target
}

var _ drivers.Displayer = (*targetDisplay)(nil)

func (d *targetDisplay) Size() (x, y int16) {
	w, h := d.t.Size()
	return int16(w), int16(h)
}

func (d *targetDisplay) SetPixel(x, y int16, c color.RGBA) { d.t.SetPixel(int(x), int(y), c) }

func (d *targetDisplay) Display() error { return nil }
