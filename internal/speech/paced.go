package speech

import (
	"context"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/metcalfc/aloud/internal/text"
)

// Paced is a silent engine that walks the utterance at the heuristic reading
// speed and reports a boundary for every word. It keeps highlighting usable
// on machines without a speech backend.
type Paced struct {
	voices []Voice

	mu      sync.Mutex
	cancel  context.CancelFunc
	paused  bool
	resumed chan struct{}
}

// NewPaced returns a paced engine offering voices, or a single default voice.
func NewPaced(voices ...Voice) *Paced {
	if len(voices) == 0 {
		voices = []Voice{{Name: "Paced", URI: "paced", Lang: "en-US", Default: true}}
	}
	return &Paced{voices: voices}
}

func (p *Paced) ReportsBoundaries() bool { return true }

func (p *Paced) Voices() []Voice {
	return append([]Voice(nil), p.voices...)
}

func (p *Paced) Speak(u *Utterance) error {
	ctx, cancel := context.WithCancel(context.Background())

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.unpause()
	p.mu.Unlock()

	job := pacedJob{
		text:       u.Text,
		rate:       u.Rate,
		onStart:    u.OnStart,
		onBoundary: u.OnBoundary,
		onEnd:      u.OnEnd,
	}
	go p.run(ctx, job)
	return nil
}

func (p *Paced) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		p.paused = true
		p.resumed = make(chan struct{})
	}
}

func (p *Paced) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unpause()
}

func (p *Paced) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.unpause()
}

func (p *Paced) unpause() {
	if p.paused {
		p.paused = false
		close(p.resumed)
	}
}

type pacedJob struct {
	text       string
	rate       float64
	onStart    func()
	onBoundary func(Boundary)
	onEnd      func()
}

func (p *Paced) run(ctx context.Context, job pacedJob) {
	if job.onStart != nil {
		job.onStart()
	}
	for _, w := range wordSpans(job.text) {
		if !p.awake(ctx) {
			return
		}
		if job.onBoundary != nil {
			job.onBoundary(Boundary{CharIndex: w.index, CharLength: w.length, Name: BoundaryWord})
		}
		if !p.sleep(ctx, text.EstimateDuration(w.word+" ", job.rate)) {
			return
		}
	}
	if ctx.Err() == nil && job.onEnd != nil {
		job.onEnd()
	}
}

// awake blocks while paused and reports whether the job is still live.
func (p *Paced) awake(ctx context.Context) bool {
	for {
		p.mu.Lock()
		if !p.paused {
			p.mu.Unlock()
			return ctx.Err() == nil
		}
		resumed := p.resumed
		p.mu.Unlock()

		select {
		case <-resumed:
		case <-ctx.Done():
			return false
		}
	}
}

const pacedStep = 10 * time.Millisecond

func (p *Paced) sleep(ctx context.Context, d time.Duration) bool {
	for d > 0 {
		if !p.awake(ctx) {
			return false
		}
		step := min(d, pacedStep)
		select {
		case <-time.After(step):
		case <-ctx.Done():
			return false
		}
		d -= step
	}
	return true
}

type wordSpan struct {
	word          string
	index, length int
}

// wordSpans splits s on whitespace, positioning words by character.
func wordSpans(s string) []wordSpan {
	var (
		spans []wordSpan
		start = -1
		pos   int
		from  int
	)
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, wordSpan{word: s[from:i], index: start, length: pos - start})
				start = -1
			}
		} else if start < 0 {
			start, from = pos, i
		}
		pos++
	}
	if start >= 0 {
		spans = append(spans, wordSpan{word: s[from:], index: start, length: utf8.RuneCountInString(s[from:])})
	}
	return spans
}
