package reader

import (
	"github.com/metcalfc/aloud/internal/chunk"
	"github.com/metcalfc/aloud/internal/speech"
	"github.com/metcalfc/aloud/internal/text"
)

// cursor is the reading position and what is currently lit.
type cursor struct {
	word  int
	chunk int
	// highlighted is an ordered set of unit indices.
	highlighted []int
	lit         map[int]struct{}
	// lastPos is the position of the last highlighted unit, used to detect
	// line wraps.
	lastPos      float64
	lastBoundary speech.Boundary
	remaining    string
}

func newCursor() cursor {
	return cursor{lit: make(map[int]struct{})}
}

func (c *cursor) mark(i int) bool {
	if _, ok := c.lit[i]; ok {
		return false
	}
	c.lit[i] = struct{}{}
	c.highlighted = append(c.highlighted, i)
	return true
}

// stale reports whether a notification of utterance gen arrived after a
// restart replaced it. Every Speak and Cancel runs under r.mu, so the check
// holds for the rest of the caller's critical section.
func (r *Reader) stale(gen uint64) bool {
	return !r.engine.Current(gen)
}

func (r *Reader) handleStart(gen uint64) {
	r.mu.Lock()
	defer r.unlock()

	if r.stale(gen) {
		return
	}
	if r.highlightOnStart {
		r.highlightOnStart = false
		r.highlightChunk(r.cur.chunk)
	}
}

// handleBoundary advances the cursor by one unit for every accepted word
// boundary. Engines repeat boundaries while reading numbers and dates aloud
// ("one point two three"); those repeats are dropped.
func (r *Reader) handleBoundary(gen uint64, b speech.Boundary) {
	r.mu.Lock()
	defer r.unlock()

	if r.stale(gen) || r.options.ChunkMode || (r.state != Playing && r.state != Paused) {
		return
	}
	if b.Name != speech.BoundaryWord || b.CharLength == 0 {
		return
	}
	if r.cur.word >= len(r.units) {
		return
	}
	if r.cur.word > 0 {
		prev := r.units[r.cur.word-1]
		repeat := b.CharIndex == r.cur.lastBoundary.CharIndex && b.CharLength == r.cur.lastBoundary.CharLength
		if repeat && (text.IsNumber(prev) || text.IsValidDate(prev)) {
			return
		}
	}
	r.cur.lastBoundary = b

	index := r.cur.word
	r.highlight(index)
	r.cur.word++
	r.cur.remaining = r.remainingText(r.cur.word)
	if c, ok := chunk.Find(r.chunks, min(r.cur.word, len(r.units)-1)); ok {
		r.cur.chunk = c.Idx
	}
	r.emit(EventBoundary, BoundaryPayload{Index: index, Boundary: b})
}

// handleEnd moves to the next chunk in chunk mode, or finishes.
func (r *Reader) handleEnd(gen uint64) {
	r.mu.Lock()
	defer r.unlock()

	if r.stale(gen) {
		return
	}
	if r.state != Playing && r.state != Paused {
		return
	}
	if !r.options.ChunkMode || r.cur.chunk >= len(r.chunks)-1 {
		r.engine.StopClock()
		r.state = Ended
		r.emit(EventEnd, nil)
		r.emit(EventStateChange, nil)
		return
	}

	if !r.options.PreserveHighlighting {
		r.clearHighlight()
	}
	r.cur.chunk++
	r.cur.word = r.chunks[r.cur.chunk].Start
	r.cur.remaining = r.remainingText(r.cur.word)
	r.highlightChunk(r.cur.chunk)
	if _, err := r.speak(ReasonNextChunk); err != nil {
		return
	}
	r.emit(EventStateChange, nil)
}

// highlight lights unit i, scrolling the view when the unit wrapped to a new line.
func (r *Reader) highlight(i int) {
	if !r.options.Highlight || i < 0 || i >= len(r.units) {
		return
	}
	pos, laidOut := r.view.Position(i)
	if laidOut && pos <= r.cur.lastPos {
		r.view.ScrollTo(i)
	}
	if !r.options.PreserveHighlighting && !r.options.ChunkMode {
		r.clearHighlight()
	}
	if laidOut {
		r.cur.lastPos = pos
	}
	if r.cur.mark(i) {
		r.view.Highlight(i, r.highlightStyle())
	}
}

func (r *Reader) highlightChunk(idx int) {
	if idx < 0 || idx >= len(r.chunks) {
		return
	}
	c := r.chunks[idx]
	for i := c.Start; i <= c.End; i++ {
		r.highlight(i)
	}
}

func (r *Reader) clearHighlight() {
	for _, i := range r.cur.highlighted {
		r.view.Unhighlight(i)
	}
	r.cur.highlighted = nil
	clear(r.cur.lit)
}
