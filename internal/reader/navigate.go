package reader

import "github.com/metcalfc/aloud/internal/tagger"

// JumpToPrevSentence seeks to the start of the sentence before the cursor.
func (r *Reader) JumpToPrevSentence() error {
	r.mu.Lock()
	target := 0
	for i := len(r.chunks) - 1; i >= 0; i-- {
		if r.chunks[i].Start < r.cur.word {
			target = r.chunks[i].Start
			break
		}
	}
	r.mu.Unlock()
	return r.SeekTo(target)
}

// JumpToNextSentence seeks to the start of the sentence after the cursor.
func (r *Reader) JumpToNextSentence() error {
	r.mu.Lock()
	target := len(r.units) - 1
	for _, c := range r.chunks {
		if c.Start > r.cur.word {
			target = c.Start
			break
		}
	}
	r.mu.Unlock()
	return r.SeekTo(target)
}

// Headings returns the document outline.
func (r *Reader) Headings() []tagger.Heading {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	return append([]tagger.Heading(nil), r.doc.Headings...)
}

// JumpToHeading seeks to the first unit of heading i.
func (r *Reader) JumpToHeading(i int) error {
	headings := r.Headings()
	if i < 0 || i >= len(headings) {
		return ErrSeekOutOfRange
	}
	return r.SeekTo(headings[i].Unit)
}

// CurrentHeading returns the index of the heading the cursor is under, or -1.
func (r *Reader) CurrentHeading() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return -1
	}
	for i := len(r.doc.Headings) - 1; i >= 0; i-- {
		if r.cur.word >= r.doc.Headings[i].Unit {
			return i
		}
	}
	return -1
}

// Progress returns the one-based cursor position and the unit count.
func (r *Reader) Progress() (current, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return min(r.cur.word+1, len(r.units)), len(r.units)
}
