// Package chunk groups units into sentence-sized chunks for engines that
// cannot report word boundaries.
package chunk

import "github.com/metcalfc/aloud/internal/text"

// Chunk is a contiguous run of units spoken as one utterance.
type Chunk struct {
	// Text is what the engine speaks, terminator included.
	Text   string
	Length int
	// Start and End are inclusive unit indices.
	Start int
	End   int
	Idx   int
}

// Contains reports whether unit i falls inside the chunk.
func (c Chunk) Contains(i int) bool {
	return i >= c.Start && i <= c.End
}

// DefaultTerminator closes a trailing chunk when no sentence terminator has
// been seen yet.
const DefaultTerminator = "."

// Split partitions units into chunks. The chunks cover every unit exactly once
// and in order, so for any unit there is exactly one chunk containing it.
func Split(units []string) []Chunk {
	s := splitter{symbol: DefaultTerminator}
	for _, u := range units {
		body, term, ok := cutTerminator(u)
		if !ok {
			s.tokens = append(s.tokens, u)
			continue
		}
		s.tokens = append(s.tokens, body)
		s.emit(term)
	}
	if len(s.tokens) > 0 {
		s.emit("")
	}
	if len(s.carry) > 0 {
		s.push(s.carry, s.carryText, 0)
	}
	return s.chunks
}

// Find returns the chunk containing unit i.
func Find(chunks []Chunk, i int) (Chunk, bool) {
	for _, c := range chunks {
		if c.Contains(i) {
			return c, true
		}
	}
	return Chunk{}, false
}

type splitter struct {
	// symbol closes an unterminated tail. Only punctuation-only segments
	// change it.
	symbol string
	tokens []string
	// carry holds punctuation-only units seen before the first chunk.
	carry     []string
	carryText string
	chunks    []Chunk
	next      int
}

func (s *splitter) emit(term string) {
	tokens := s.tokens
	s.tokens = nil
	joined := text.JoinSentence(tokens)

	if text.IsPunctuation(joined) {
		if term != "" {
			s.symbol = joined + term
		}
		if n := len(s.chunks); n > 0 {
			last := &s.chunks[n-1]
			last.Length += len(tokens)
			last.End += len(tokens)
			s.next += len(tokens)
			return
		}
		s.carry = append(s.carry, tokens...)
		s.carryText += joined + term
		return
	}

	if term == "" {
		term = s.symbol
	}
	s.push(tokens, joined+term, len(s.carry))
	s.carry, s.carryText = nil, ""
}

func (s *splitter) push(tokens []string, body string, carried int) {
	length := len(tokens) + carried
	s.chunks = append(s.chunks, Chunk{
		Text:   body,
		Length: length,
		Start:  s.next,
		End:    s.next + length - 1,
		Idx:    len(s.chunks),
	})
	s.next += length
}

// cutTerminator splits the trailing run of sentence terminators off u.
func cutTerminator(u string) (body, term string, ok bool) {
	j := len(u)
	for j > 0 && text.IsSentenceTerminator(rune(u[j-1])) {
		j--
	}
	switch {
	case j == len(u):
		return u, "", false
	case j > 0:
		return u[:j], u[j:], true
	case len(u) >= 2:
		return u[:1], u[1:], true
	default:
		return u, "", false
	}
}
