// Package speechtest provides a scriptable speech engine for tests.
package speechtest

import (
	"sync"

	"github.com/metcalfc/aloud/internal/speech"
)

// Synth records what it is asked to do and fires callbacks only when told
// to. With AutoStart set, each Speak fires OnStart from a new goroutine.
type Synth struct {
	AutoStart bool

	mu         sync.Mutex
	voices     []speech.Voice
	boundaries bool
	current    speech.Utterance
	spoken     []speech.Utterance
	pauses     int
	resumes    int
	cancels    int
	speakErr   error
}

// New returns an auto-starting engine that reports boundaries.
func New(voices ...speech.Voice) *Synth {
	return &Synth{AutoStart: true, voices: voices, boundaries: true}
}

func (s *Synth) Speak(u *speech.Utterance) error {
	s.mu.Lock()
	if err := s.speakErr; err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = *u
	s.spoken = append(s.spoken, *u)
	auto := s.AutoStart
	s.mu.Unlock()

	if auto {
		go s.Start()
	}
	return nil
}

func (s *Synth) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauses++
}

func (s *Synth) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumes++
}

func (s *Synth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancels++
}

func (s *Synth) Voices() []speech.Voice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]speech.Voice(nil), s.voices...)
}

// FailSpeak makes every later Speak return err. A nil err restores it.
func (s *Synth) FailSpeak(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speakErr = err
}

func (s *Synth) SetVoices(voices ...speech.Voice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voices = voices
}

func (s *Synth) ReportsBoundaries() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundaries
}

func (s *Synth) SetReportsBoundaries(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boundaries = on
}

// Start fires OnStart of the most recent utterance.
func (s *Synth) Start() {
	if cb := s.snapshot().OnStart; cb != nil {
		cb()
	}
}

// Boundary fires a word boundary for the most recent utterance.
func (s *Synth) Boundary(charIndex, charLength int) {
	s.BoundaryEvent(speech.Boundary{CharIndex: charIndex, CharLength: charLength, Name: speech.BoundaryWord})
}

func (s *Synth) BoundaryEvent(b speech.Boundary) {
	if cb := s.snapshot().OnBoundary; cb != nil {
		cb(b)
	}
}

// End fires OnEnd of the most recent utterance.
func (s *Synth) End() {
	if cb := s.snapshot().OnEnd; cb != nil {
		cb()
	}
}

// Stale returns the utterance submitted n calls before the latest one, for
// replaying callbacks that a real engine could still deliver.
func (s *Synth) Stale(n int) speech.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spoken[len(s.spoken)-1-n]
}

// Spoken returns the text of every utterance submitted so far.
func (s *Synth) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	for i, u := range s.spoken {
		out[i] = u.Text
	}
	return out
}

// Last returns the most recent utterance.
func (s *Synth) Last() speech.Utterance {
	return s.snapshot()
}

func (s *Synth) Pauses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pauses
}

func (s *Synth) Resumes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resumes
}

func (s *Synth) Cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func (s *Synth) snapshot() speech.Utterance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
