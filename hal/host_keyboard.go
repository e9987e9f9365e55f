//go:build cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var navKeys = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyArrowUp, KeyUp},
	{ebiten.KeyArrowDown, KeyDown},
	{ebiten.KeyArrowLeft, KeyLeft},
	{ebiten.KeyArrowRight, KeyRight},
	{ebiten.KeyEnter, KeyEnter},
	{ebiten.KeyNumpadEnter, KeyEnter},
	{ebiten.KeyEscape, KeyEscape},
	{ebiten.KeyBackspace, KeyBackspace},
	{ebiten.KeyTab, KeyTab},
	{ebiten.KeyDelete, KeyDelete},
	{ebiten.KeyHome, KeyHome},
	{ebiten.KeyEnd, KeyEnd},
	{ebiten.KeyF1, KeyF1},
	{ebiten.KeyF2, KeyF2},
	{ebiten.KeyF3, KeyF3},
}

func pollKeyboard(k *hostKeyboard) {
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	for _, r := range ebiten.AppendInputChars(nil) {
		k.emit(KeyEvent{Press: true, Rune: r, Shift: shift})
	}

	for _, nk := range navKeys {
		switch {
		case inpututil.IsKeyJustPressed(nk.key):
			k.emit(KeyEvent{Code: nk.code, Press: true, Shift: shift})
		case inpututil.KeyPressDuration(nk.key) > 20 && inpututil.KeyPressDuration(nk.key)%4 == 0:
			// Auto-repeat for held navigation keys.
			k.emit(KeyEvent{Code: nk.code, Press: true, Shift: shift})
		case inpututil.IsKeyJustReleased(nk.key):
			k.emit(KeyEvent{Code: nk.code, Press: false, Shift: shift})
		}
	}
}

func pollPointer(p *hostPointer) {
	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	p.observe(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), wy)
}
