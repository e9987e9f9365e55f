package app

// editLine is a single-line text buffer with a cursor and history recall.
type editLine struct {
	buf []rune
	cur int

	hist []string
	// at indexes hist while recalling; len(hist) is the live line.
	at    int
	draft string
}

func (e *editLine) String() string { return string(e.buf) }

func (e *editLine) set(s string) {
	e.buf = []rune(s)
	e.cur = len(e.buf)
}

func (e *editLine) insert(r rune) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.cur+1:], e.buf[e.cur:])
	e.buf[e.cur] = r
	e.cur++
}

func (e *editLine) backspace() {
	if e.cur == 0 {
		return
	}
	e.buf = append(e.buf[:e.cur-1], e.buf[e.cur:]...)
	e.cur--
}

func (e *editLine) del() {
	if e.cur >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:e.cur], e.buf[e.cur+1:]...)
}

func (e *editLine) left() {
	if e.cur > 0 {
		e.cur--
	}
}

func (e *editLine) right() {
	if e.cur < len(e.buf) {
		e.cur++
	}
}

func (e *editLine) home() { e.cur = 0 }
func (e *editLine) end()  { e.cur = len(e.buf) }

// prev recalls the previous history entry, saving the live line on the first step back.
func (e *editLine) prev() {
	if e.at == 0 || len(e.hist) == 0 {
		return
	}
	if e.at >= len(e.hist) {
		e.at = len(e.hist)
		e.draft = e.String()
	}
	e.at--
	e.set(e.hist[e.at])
}

func (e *editLine) next() {
	if e.at >= len(e.hist) {
		return
	}
	e.at++
	if e.at == len(e.hist) {
		e.set(e.draft)
		return
	}
	e.set(e.hist[e.at])
}

// remember appends s to the recall list unless it repeats the newest entry, keeping at most max.
func (e *editLine) remember(s string, max int) {
	if s != "" && (len(e.hist) == 0 || e.hist[len(e.hist)-1] != s) {
		e.hist = append(e.hist, s)
		if len(e.hist) > max {
			e.hist = append([]string(nil), e.hist[len(e.hist)-max:]...)
		}
	}
	e.at = len(e.hist)
	e.draft = ""
}
