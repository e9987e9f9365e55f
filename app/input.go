package app

import (
	"math"

	"grapher/hal"
)

// handleKeys drains pending keyboard events.
//
// With the edit line idle, arrows rotate (Shift+←/→ about Z), +/- zoom, Tab cycles examples and
// F1-F3 toggle wireframe, points and auto-rotation. Typing, Enter or ':' focuses the line; there
// ←/→ move the cursor, ↑/↓ recall history, Enter commits and Esc reverts.
func (a *App) handleKeys() error {
	in := a.h.Input()
	if in == nil || in.Keyboard() == nil {
		return nil
	}
	ch := in.Keyboard().Events()
	for {
		select {
		case ev := <-ch:
			if !ev.Press {
				continue
			}
			var err error
			if a.editing {
				err = a.editKey(ev)
			} else {
				a.viewKey(ev)
			}
			if err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (a *App) viewKey(ev hal.KeyEvent) {
	switch ev.Code {
	case hal.KeyUp:
		a.rotate(-rotateStep, 0, 0)
	case hal.KeyDown:
		a.rotate(rotateStep, 0, 0)
	case hal.KeyLeft:
		if ev.Shift {
			a.rotate(0, 0, rotateStep)
		} else {
			a.rotate(0, -rotateStep, 0)
		}
	case hal.KeyRight:
		if ev.Shift {
			a.rotate(0, 0, -rotateStep)
		} else {
			a.rotate(0, rotateStep, 0)
		}
	case hal.KeyEnter:
		a.focus(false, a.state.Expr)
	case hal.KeyTab:
		a.nextExample()
	case hal.KeyF1:
		a.state.Wireframe = !a.state.Wireframe
		a.dirty = true
	case hal.KeyF2:
		a.state.Points = !a.state.Points
		a.dirty = true
	case hal.KeyF3:
		a.autoRotate = !a.autoRotate
		a.dirty = true
	case hal.KeyEscape:
		if a.msg != "" || a.err != nil {
			a.msg, a.err = "", nil
			a.dirty = true
		}
	case hal.KeyUnknown:
		switch r := ev.Rune; {
		case r == '+' || r == '=':
			a.zoomBy(zoomFactor)
		case r == '-' || r == '_':
			a.zoomBy(1 / zoomFactor)
		case r == ':':
			a.focus(true, "")
		case r >= ' ' && r != 0x7f:
			a.focus(false, "")
			a.line.insert(r)
		}
	}
}

// focus moves input to the edit line, either as an expression starting from text or as a console.
func (a *App) focus(console bool, text string) {
	a.editing, a.console = true, console
	a.line.set(text)
	a.line.at = len(a.line.hist)
	a.dirty = true
}

func (a *App) blur() {
	a.editing, a.console = false, false
	a.line.set(a.state.Expr)
	a.dirty = true
}

func (a *App) editKey(ev hal.KeyEvent) error {
	a.dirty = true
	switch ev.Code {
	case hal.KeyEnter:
		src := a.line.String()
		if a.console {
			a.blur()
			return a.runCommand(src)
		}
		if a.commit(src) {
			a.blur()
		}
	case hal.KeyEscape:
		a.err = nil
		a.blur()
	case hal.KeyLeft:
		a.line.left()
	case hal.KeyRight:
		a.line.right()
	case hal.KeyHome:
		a.line.home()
	case hal.KeyEnd:
		a.line.end()
	case hal.KeyUp:
		if !a.console {
			a.line.prev()
		}
	case hal.KeyDown:
		if !a.console {
			a.line.next()
		}
	case hal.KeyBackspace:
		a.line.backspace()
	case hal.KeyDelete:
		a.line.del()
	case hal.KeyTab:
		if !a.console {
			a.nextExample()
			a.blur()
		}
	case hal.KeyUnknown:
		switch r := ev.Rune; {
		case r == 0x08 || r == 0x7f:
			a.line.backspace()
		case r == '\n' || r == '\r':
			return a.editKey(hal.KeyEvent{Code: hal.KeyEnter, Press: true})
		case r >= ' ':
			a.line.insert(r)
		}
	}
	return nil
}

// nextExample commits the next configured example expression, skipping any that fail.
func (a *App) nextExample() {
	n := len(a.cfg.Examples)
	for i := 0; i < n; i++ {
		a.example = (a.example + 1) % n
		if a.commit(a.cfg.Examples[a.example]) {
			a.line.set(a.state.Expr)
			return
		}
	}
}

// handlePointer turns drags into rotation and wheel motion into zoom.
func (a *App) handlePointer() {
	in := a.h.Input()
	if in == nil || in.Pointer() == nil {
		return
	}
	ps := in.Pointer().Take()
	if ps.DX != 0 || ps.DY != 0 {
		a.rotate(float64(ps.DY)*dragDegrees, float64(ps.DX)*dragDegrees, 0)
	}
	if ps.Wheel != 0 {
		a.zoomBy(math.Pow(zoomFactor, ps.Wheel))
	}
}
