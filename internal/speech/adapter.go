package speech

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Handlers receive engine notifications for the current utterance only.
// gen identifies the utterance. A handler that serializes with Speak and
// Cancel on its own lock must compare gen with Generation under that lock,
// because a newer utterance can replace this one while it waits.
type Handlers struct {
	OnStart    func(gen uint64)
	OnBoundary func(gen uint64, b Boundary)
	OnEnd      func(gen uint64)
	OnTick     func(elapsed time.Duration)
}

// Settings are the voice parameters copied onto the utterance.
type Settings struct {
	Lang   string
	Voice  *Voice
	Rate   float64
	Pitch  float64
	Volume float64
}

// Adapter drives a Synthesizer with one long-lived utterance. Every Speak
// cancels whatever the engine was doing first, and notifications belonging to
// a cancelled utterance are dropped.
type Adapter struct {
	synth    Synthesizer
	clock    *Clock
	handlers Handlers

	mu      sync.Mutex
	utter   *Utterance
	gen     uint64
	pending *Pending
}

func NewAdapter(synth Synthesizer, tick time.Duration, h Handlers) (*Adapter, error) {
	clock, err := NewClock(tick, h.OnTick)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		synth:    synth,
		clock:    clock,
		handlers: h,
		utter:    &Utterance{Rate: 1, Pitch: 1, Volume: 1},
	}, nil
}

func (a *Adapter) Configure(s Settings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.utter.Lang = s.Lang
	a.utter.Voice = s.Voice
	a.utter.Rate = s.Rate
	a.utter.Pitch = s.Pitch
	a.utter.Volume = s.Volume
}

func (a *Adapter) SetText(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.utter.Text = text
}

func (a *Adapter) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.utter.Text
}

// Speak cancels the engine and submits the utterance as it stands.
func (a *Adapter) Speak() (*Pending, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.synth.Cancel()
	a.supersede()
	gen := a.gen
	p := newPending()
	a.pending = p

	a.utter.OnStart = func() {
		if !a.Current(gen) {
			return
		}
		if a.handlers.OnStart != nil {
			a.handlers.OnStart(gen)
		}
		if a.Current(gen) {
			p.start()
		}
	}
	a.utter.OnBoundary = func(b Boundary) {
		if a.Current(gen) && a.handlers.OnBoundary != nil {
			a.handlers.OnBoundary(gen, b)
		}
	}
	a.utter.OnEnd = func() {
		if a.Current(gen) && a.handlers.OnEnd != nil {
			a.handlers.OnEnd(gen)
		}
	}

	if err := a.synth.Speak(a.utter); err != nil {
		a.supersede()
		return nil, fmt.Errorf("speak: %w", err)
	}
	return p, nil
}

// Cancel stops the engine and drops any notification still in flight.
func (a *Adapter) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.synth.Cancel()
	a.supersede()
}

func (a *Adapter) Pause()  { a.synth.Pause() }
func (a *Adapter) Resume() { a.synth.Resume() }

func (a *Adapter) StartClock()                { a.clock.Start() }
func (a *Adapter) StopClock()                 { a.clock.Stop() }
func (a *Adapter) ResetClock()                { a.clock.Reset() }
func (a *Adapter) SetElapsed(d time.Duration) { a.clock.Set(d) }
func (a *Adapter) Elapsed() time.Duration     { return a.clock.Elapsed() }

func (a *Adapter) supersede() {
	a.gen++
	if a.pending != nil {
		a.pending.abandon()
		a.pending = nil
	}
}

// Generation identifies the utterance submitted by the last Speak. Speak and
// Cancel advance it.
func (a *Adapter) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

// Current reports whether gen is still the live utterance.
func (a *Adapter) Current(gen uint64) bool {
	return a.Generation() == gen
}

// Pending tracks one submitted utterance until the engine starts it.
type Pending struct {
	started   chan struct{}
	abandoned chan struct{}
	startOnce sync.Once
	dropOnce  sync.Once
}

func newPending() *Pending {
	return &Pending{started: make(chan struct{}), abandoned: make(chan struct{})}
}

func (p *Pending) start()   { p.startOnce.Do(func() { close(p.started) }) }
func (p *Pending) abandon() { p.dropOnce.Do(func() { close(p.abandoned) }) }

// Wait blocks until the engine starts the utterance, a newer one replaces it,
// or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.started:
		return nil
	case <-p.abandoned:
		select {
		case <-p.started:
			return nil
		default:
			return ErrSuperseded
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
