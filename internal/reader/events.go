package reader

import (
	"sync"
	"time"

	"github.com/metcalfc/aloud/internal/speech"
)

type EventType string

const (
	EventStart          EventType = "start"
	EventPause          EventType = "pause"
	EventResume         EventType = "resume"
	EventReset          EventType = "reset"
	EventEnd            EventType = "end"
	EventBoundary       EventType = "boundary"
	EventSeek           EventType = "seek"
	EventTimeTick       EventType = "time-tick"
	EventWordClick      EventType = "word-click"
	EventSettingsChange EventType = "settings-change"
	EventOptionsChange  EventType = "options-change"
	EventStyleChange    EventType = "style-change"
	EventStateChange    EventType = "state-change"
)

// EventTypes lists every event a Reader emits.
func EventTypes() []EventType {
	return []EventType{
		EventStart, EventPause, EventResume, EventReset, EventEnd,
		EventBoundary, EventSeek, EventTimeTick, EventWordClick,
		EventSettingsChange, EventOptionsChange, EventStyleChange, EventStateChange,
	}
}

// Event is delivered to listeners after the reader has released its lock.
// Snapshot is the state at the moment the event was raised.
type Event struct {
	Type     EventType
	Snapshot Snapshot
	Payload  any
}

type StartPayload struct {
	Reason string
}

type BoundaryPayload struct {
	Index    int
	Boundary speech.Boundary
}

type SeekPayload struct {
	// Index is the requested unit; Word is where reading resumes, which is
	// the chunk start in chunk mode.
	Index int
	Word  int
	Chunk int
}

type TickPayload struct {
	Elapsed time.Duration
}

type WordClickPayload struct {
	Index int
}

// Handler receives reader events.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

type registry struct {
	mu   sync.RWMutex
	next int
	subs map[EventType][]subscription
}

func newRegistry() *registry {
	return &registry{subs: make(map[EventType][]subscription)}
}

func (r *registry) on(t EventType, fn Handler) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.subs[t] = append(r.subs[t], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { r.off(t, id) })
	}
}

func (r *registry) off(t EventType, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.subs[t]
	for i, s := range subs {
		if s.id == id {
			r.subs[t] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

func (r *registry) dispatch(events []Event) {
	for _, e := range events {
		r.mu.RLock()
		subs := append([]subscription(nil), r.subs[e.Type]...)
		r.mu.RUnlock()
		for _, s := range subs {
			s.fn(e)
		}
	}
}
