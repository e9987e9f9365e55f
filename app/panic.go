package app

import (
	"fmt"
	"image/color"
	"strings"
)

// showPanic logs the panic and replaces the screen with it. The app stops stepping afterwards.
func (a *App) showPanic(value any, stack []byte) {
	lines := []string{
		"grapher panic:",
		fmt.Sprintf("panic: %v", value),
		fmt.Sprintf("expr: %s", a.state.Expr),
	}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	if l := a.h.Logger(); l != nil {
		for _, line := range lines {
			l.WriteLineString(line)
		}
	}
	if a.target == nil || a.text == nil {
		return
	}

	a.target.Clear(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	fg := color.RGBA{A: 0xff}
	cols := a.text.cols()
	if cols <= 0 {
		cols = 1
	}
	_, h := a.target.Size()
	rows := (h - 2) / int(a.text.fontHeight)
	row := 0
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\t", "  ")
		for len(line) > 0 && row < rows {
			chunk := clipRunes(line, cols)
			a.text.text(row, 0, chunk, fg)
			row++
			line = strings.TrimLeft(line[len(chunk):], " ")
		}
	}
	_ = a.fb.Present()
}
