// Package speech abstracts the platform speech engine and owns the single
// long-lived utterance, the elapsed-time clock and voice discovery.
package speech

import "errors"

var (
	// ErrNoVoices is returned when the engine reports no voices before the poll deadline.
	ErrNoVoices = errors.New("speech engine reported no voices")
	// ErrUnsupported is returned when an engine is unavailable on this platform.
	ErrUnsupported = errors.New("speech engine unsupported")
	// ErrSuperseded is returned by Pending.Wait when a newer command replaced the utterance.
	ErrSuperseded = errors.New("utterance superseded before it started")
	// ErrInvalidFrequency is returned for tick periods that are not a positive multiple of 10ms.
	ErrInvalidFrequency = errors.New("tick period must be a positive multiple of 10ms")
)

// Voice is one voice offered by an engine.
type Voice struct {
	Name    string
	URI     string
	Lang    string
	Default bool
}

// BoundaryWord is the boundary name engines use for word boundaries.
const BoundaryWord = "word"

// Boundary is a progress notification positioned in the utterance text.
type Boundary struct {
	CharIndex  int
	CharLength int
	Name       string
}

// Utterance is a request to speak text. Engines read its fields when Speak is
// called; later changes only affect the next Speak.
type Utterance struct {
	Text   string
	Lang   string
	Voice  *Voice
	Rate   float64
	Pitch  float64
	Volume float64

	OnStart    func()
	OnBoundary func(Boundary)
	OnEnd      func()
}

// Synthesizer is a speech engine.
//
// Speak must not block on playback, and callbacks must never be invoked from
// inside Speak, Pause, Resume or Cancel. After Cancel the engine may still
// deliver callbacks for the cancelled utterance; callers are expected to
// ignore them.
type Synthesizer interface {
	Speak(u *Utterance) error
	Pause()
	Resume()
	Cancel()
	Voices() []Voice
}

// BoundaryReporter is implemented by engines that know whether they fire
// word boundaries.
type BoundaryReporter interface {
	ReportsBoundaries() bool
}

// ReportsBoundaries reports whether s is expected to deliver word boundaries.
// Engines that do not say are assumed to.
func ReportsBoundaries(s Synthesizer) bool {
	if br, ok := s.(BoundaryReporter); ok {
		return br.ReportsBoundaries()
	}
	return true
}
