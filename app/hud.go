package app

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"grapher/surface/expr"
)

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// drawOverlay paints the expression line, any error with a caret under its offset, and the
// status rows at the bottom.
func (a *App) drawOverlay() {
	t := a.text
	prompt := "> "
	if a.console {
		prompt = ": "
	}
	src := a.state.Expr
	if a.editing {
		src = a.line.String()
	}
	t.bar(0)
	t.text(0, 0, prompt, colorDim)
	t.text(0, 2, src, colorText)
	if a.editing {
		t.underline(0, 2+a.line.cur, colorWarn)
	}

	row := 1
	if a.err != nil {
		var pe *expr.ParseError
		if errors.As(a.err, &pe) {
			t.text(row, 2+caretColumn(src, pe.Offset), "^", colorError)
			row++
			t.text(row, 2, pe.Kind.String()+": "+pe.Msg, colorError)
		} else {
			t.text(row, 2, a.err.Error(), colorError)
		}
		row++
	}
	if a.msg != "" {
		t.text(row, 2, a.msg, colorDim)
	}

	st := a.frame.Stats
	t.bar(-2)
	t.bar(-1)
	t.text(-2, 0, fmt.Sprintf("F1 wire:%s  F2 pts:%s  F3 spin:%s  Tab example  : console",
		onOff(a.state.Wireframe), onOff(a.state.Points), onOff(a.autoRotate)), colorDim)
	stats := fmt.Sprintf("%dx%d  tri %d  z %.3g..%.3g  zoom %.2f %s",
		a.state.Resolution.NX, a.state.Resolution.NY, st.Triangles, st.Min, st.Max,
		a.state.View.Zoom, a.state.View.Projection)
	t.text(-1, 0, stats, colorText)
	col := utf8.RuneCountInString(stats)
	if st.Invalid > 0 {
		s := fmt.Sprintf("  invalid %d/%d", st.Invalid, st.Cells)
		t.text(-1, col, s, colorWarn)
		col += utf8.RuneCountInString(s)
	}
	if st.Clamped > 0 {
		t.text(-1, col, fmt.Sprintf("  clamped %d", st.Clamped), colorWarn)
	}
}

// caretColumn converts a byte offset into src to a character column.
func caretColumn(src string, offset int) int {
	offset = max(0, min(offset, len(src)))
	return utf8.RuneCountInString(src[:offset])
}
