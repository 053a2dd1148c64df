package main

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/aloud/internal/reader"
	"github.com/metcalfc/aloud/internal/tagger"
)

// cell is one word on screen. unit is -1 for text that is shown but not spoken.
type cell struct {
	text  string
	unit  int
	space bool
}

type place struct {
	line, col int
}

// layout wraps the tagged document into terminal lines and implements
// reader.View. The reader calls it from engine goroutines while the UI
// renders it, so every method locks.
type layout struct {
	mu       sync.Mutex
	segments []tagger.Segment
	width    int
	lines    [][]cell
	places   map[int]place
	lit      map[int]lipgloss.Style
	scroll   int
	scrolled bool
}

func newLayout(segments []tagger.Segment, width int) *layout {
	l := &layout{segments: segments, lit: make(map[int]lipgloss.Style)}
	l.SetWidth(width)
	return l
}

// SetWidth rewraps the document to width columns.
func (l *layout) SetWidth(width int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if width < 1 {
		width = 1
	}
	l.width = width
	l.wrap()
}

func (l *layout) wrap() {
	l.lines = [][]cell{nil}
	l.places = make(map[int]place)
	col := 0
	// A break only separates paragraphs once more text follows it.
	pending := false

	newline := func() {
		l.lines = append(l.lines, nil)
		col = 0
	}

	for _, seg := range l.segments {
		if seg.Break {
			pending = len(l.lines[len(l.lines)-1]) > 0
			continue
		}
		for _, c := range cells(seg) {
			if pending {
				newline()
				newline()
				pending = false
			}
			w := lipgloss.Width(c.text)
			if col > 0 && col+w > l.width {
				newline()
			}
			if _, ok := l.places[c.unit]; !ok && c.unit >= 0 {
				l.places[c.unit] = place{line: len(l.lines) - 1, col: col}
			}
			last := len(l.lines) - 1
			l.lines[last] = append(l.lines[last], c)
			col += w
			if c.space {
				col++
			}
		}
	}
}

// cells splits a segment on whitespace. A unit keeps all its words under
// one index.
func cells(seg tagger.Segment) []cell {
	words := strings.Fields(seg.Text)
	if len(words) == 0 {
		return nil
	}
	trailing := strings.TrimRightFunc(seg.Text, isSpace) != seg.Text
	out := make([]cell, len(words))
	for i, w := range words {
		out[i] = cell{text: w, unit: seg.Unit, space: i < len(words)-1 || trailing}
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
}

func (l *layout) Highlight(i int, style reader.HighlightStyle) {
	s := lipgloss.NewStyle().Underline(style.Underline)
	if !style.Underline {
		s = s.Background(lipgloss.Color(style.Background)).Foreground(lipgloss.Color(style.Foreground))
	} else {
		s = s.Foreground(lipgloss.Color(style.Foreground))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lit[i] = s
}

func (l *layout) Unhighlight(i int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.lit, i)
}

// Position is the unit's column. A unit that wraps to a new line reports a
// column no greater than the one before it.
func (l *layout) Position(i int) (float64, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.places[i]
	return float64(p.col), ok
}

func (l *layout) ScrollTo(i int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.places[i]; ok {
		l.scroll = p.line
		l.scrolled = true
	}
}

// TakeScroll returns the line the reader last asked to bring into view.
func (l *layout) TakeScroll() (line int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line, ok = l.scroll, l.scrolled
	l.scrolled = false
	return line, ok
}

// Line returns the line unit i was laid out on.
func (l *layout) Line(i int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p, ok := l.places[i]
	return p.line, ok
}

// UnitAt returns the unit drawn at line, col.
func (l *layout) UnitAt(line, col int) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if line < 0 || line >= len(l.lines) {
		return 0, false
	}
	x := 0
	for _, c := range l.lines[line] {
		w := lipgloss.Width(c.text)
		if col >= x && col < x+w {
			return c.unit, c.unit >= 0
		}
		x += w
		if c.space {
			x++
		}
	}
	return 0, false
}

func (l *layout) Render() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var b strings.Builder
	for n, line := range l.lines {
		if n > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			if s, ok := l.lit[c.unit]; ok && c.unit >= 0 {
				b.WriteString(s.Render(c.text))
			} else {
				b.WriteString(c.text)
			}
			if c.space {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// lazyView forwards to a layout once one is attached.
type lazyView struct {
	l atomic.Pointer[layout]
}

func (v *lazyView) set(l *layout) { v.l.Store(l) }

func (v *lazyView) Highlight(i int, style reader.HighlightStyle) {
	if l := v.l.Load(); l != nil {
		l.Highlight(i, style)
	}
}

func (v *lazyView) Unhighlight(i int) {
	if l := v.l.Load(); l != nil {
		l.Unhighlight(i)
	}
}

func (v *lazyView) Position(i int) (float64, bool) {
	if l := v.l.Load(); l != nil {
		return l.Position(i)
	}
	return 0, false
}

func (v *lazyView) ScrollTo(i int) {
	if l := v.l.Load(); l != nil {
		l.ScrollTo(i)
	}
}
