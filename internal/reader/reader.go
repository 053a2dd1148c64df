// Package reader reads a tagged document aloud and keeps word highlighting in
// step with the speech engine.
//
// A Reader owns one speech.Adapter and a cursor over the document's units.
// Commands (Play, Pause, SeekTo, setters) and engine notifications are
// serialized on one mutex. Events are queued while the mutex is held and
// delivered once it is released, so listeners may call back into the Reader.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/romdo/go-debounce"
	"golang.org/x/net/html"

	"github.com/metcalfc/aloud/internal/chunk"
	"github.com/metcalfc/aloud/internal/logger"
	"github.com/metcalfc/aloud/internal/speech"
	"github.com/metcalfc/aloud/internal/tagger"
	"github.com/metcalfc/aloud/internal/text"
)

// Config configures a Reader. Zero durations and rates take their defaults.
type Config struct {
	Settings    Settings
	Options     Options
	Style       Style
	ExcludeCode bool

	// RestartDelay coalesces bursts of restarts; zero restarts immediately.
	RestartDelay time.Duration
	// TickPeriod must be a multiple of 10ms.
	TickPeriod        time.Duration
	VoicePollInterval time.Duration
	VoiceTimeout      time.Duration

	View   View
	Logger logger.Logger
}

const (
	DefaultRestartDelay = 300 * time.Millisecond
	DefaultTickPeriod   = 20 * time.Millisecond
	DefaultVoiceTimeout = 3 * time.Second
	DefaultColor1       = "#DEE"
	DefaultColor2       = "#9DE"
)

func DefaultConfig() Config {
	return Config{
		Settings: Settings{Language: "en", Rate: 1, Pitch: 1, Volume: 1},
		Options:  Options{Highlight: true},
		Style:    Style{Color1: DefaultColor1, Color2: DefaultColor2},

		RestartDelay:      DefaultRestartDelay,
		TickPeriod:        DefaultTickPeriod,
		VoicePollInterval: speech.DefaultVoicePollInterval,
		VoiceTimeout:      DefaultVoiceTimeout,
	}
}

type Reader struct {
	cfg      Config
	log      logger.Logger
	view     View
	synth    speech.Synthesizer
	engine   *speech.Adapter
	events   *registry
	validate *validator.Validate

	restart       func()
	cancelRestart func()

	mu            sync.Mutex
	root          *html.Node
	doc           *tagger.Result
	units         []string
	chunks        []chunk.Chunk
	wholeText     string
	duration      time.Duration
	allVoices     []speech.Voice
	voices        []speech.Voice
	voice         *speech.Voice
	settings      Settings
	options       Options
	style         Style
	state         State
	cur           cursor
	restartReason string
	// highlightOnStart defers chunk highlighting of a fresh start until the
	// engine confirms the utterance began.
	highlightOnStart bool
	queued           []Event
}

// New builds a Reader over root. Nothing is tagged and no voice is looked up
// until Init.
func New(root *html.Node, synth speech.Synthesizer, cfg Config) (*Reader, error) {
	if synth == nil {
		return nil, errors.New("reader: nil synthesizer")
	}
	if cfg.Settings.Rate == 0 {
		cfg.Settings.Rate = 1
	}
	if cfg.Settings.Pitch == 0 {
		cfg.Settings.Pitch = 1
	}
	if cfg.TickPeriod == 0 {
		cfg.TickPeriod = DefaultTickPeriod
	}
	if cfg.VoicePollInterval == 0 {
		cfg.VoicePollInterval = speech.DefaultVoicePollInterval
	}
	if cfg.VoiceTimeout == 0 {
		cfg.VoiceTimeout = DefaultVoiceTimeout
	}
	if cfg.View == nil {
		cfg.View = nopView{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg.Settings); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	if err := validate.Struct(cfg.Style); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}

	r := &Reader{
		cfg:      cfg,
		log:      cfg.Logger.With("component", "reader"),
		view:     cfg.View,
		synth:    synth,
		events:   newRegistry(),
		validate: validate,
		root:     root,
		settings: cfg.Settings,
		options:  cfg.Options,
		style:    cfg.Style,
		cur:      newCursor(),
	}
	engine, err := speech.NewAdapter(synth, cfg.TickPeriod, speech.Handlers{
		OnStart:    r.handleStart,
		OnBoundary: r.handleBoundary,
		OnEnd:      r.handleEnd,
		OnTick:     r.handleTick,
	})
	if err != nil {
		return nil, err
	}
	r.engine = engine
	r.restart, r.cancelRestart = debounce.New(cfg.RestartDelay, r.flushRestart)
	return r, nil
}

// Init discovers voices and tags the document. A failure is logged and
// leaves a Ready reader with no units, so callers can keep going.
func (r *Reader) Init(ctx context.Context) error {
	voices, verr := speech.WaitForVoices(ctx, r.synth, r.cfg.VoicePollInterval, r.cfg.VoiceTimeout)
	if verr != nil {
		r.log.Warn("continuing with the engine default voice", "error", verr)
	}

	var (
		doc  *tagger.Result
		terr error
	)
	if r.root == nil {
		terr = errors.New("no document to read")
	} else {
		doc, terr = tagger.Tag(r.root, tagger.Options{ExcludeCode: r.cfg.ExcludeCode})
	}

	r.mu.Lock()
	defer r.unlock()

	r.allVoices = voices
	r.voices = r.languageVoices()
	r.voice = speech.ResolveVoice(r.voices, r.settings.VoiceURI)
	if r.voice != nil && r.settings.VoiceURI == "" {
		r.settings.VoiceURI = r.voice.URI
	}

	r.doc, r.units, r.chunks = nil, nil, nil
	if terr != nil {
		r.log.Error("reader init failed", "error", terr)
	} else {
		r.doc = doc
		r.units = doc.Texts()
		r.chunks = chunk.Split(r.units)
	}
	r.wholeText = r.remainingText(0)
	r.duration = text.EstimateDuration(r.wholeText, r.settings.Rate)
	r.cur = newCursor()
	r.cur.remaining = r.wholeText
	r.engine.ResetClock()
	r.configureEngine()
	r.engine.SetText(r.utteranceText())
	r.state = Ready

	r.log.Debug("reader initialized", "units", len(r.units), "chunks", len(r.chunks), "voices", len(r.voices))
	r.emit(EventStateChange, nil)
	if terr != nil {
		return fmt.Errorf("init reader: %w", terr)
	}
	return nil
}

// Play starts speaking from the cursor and waits until the engine confirms
// the start or ctx is done.
func (r *Reader) Play(ctx context.Context, reason string) error {
	p, err := r.play(reason)
	if err != nil || p == nil {
		return err
	}
	return r.wait(ctx, p)
}

func (r *Reader) play(reason string) (*speech.Pending, error) {
	r.mu.Lock()
	defer r.unlock()

	switch r.state {
	case Idle:
		return nil, ErrNotReady
	case Ended:
		return nil, ErrEnded
	}
	if len(r.units) == 0 {
		r.log.Debug("nothing to read")
		return nil, nil
	}
	if reason == ReasonStart {
		r.highlightOnStart = r.options.ChunkMode
		r.emit(EventStart, StartPayload{Reason: reason})
	}
	return r.speak(reason)
}

func (r *Reader) Pause() {
	r.mu.Lock()
	defer r.unlock()

	if r.state != Playing {
		return
	}
	r.engine.Pause()
	r.engine.StopClock()
	r.state = Paused
	r.emit(EventPause, nil)
	r.emit(EventStateChange, nil)
}

// Resume continues a paused reading. In chunk mode the current chunk is
// spoken again from its start.
func (r *Reader) Resume(ctx context.Context) error {
	p, err := r.resume()
	if err != nil || p == nil {
		return err
	}
	return r.wait(ctx, p)
}

func (r *Reader) resume() (*speech.Pending, error) {
	r.mu.Lock()
	defer r.unlock()

	if r.state != Paused {
		return nil, nil
	}
	var (
		p   *speech.Pending
		err error
	)
	if r.options.ChunkMode {
		p, err = r.speak(ReasonResumeChunk)
		if err != nil {
			return nil, err
		}
	} else {
		r.engine.Resume()
		r.engine.StartClock()
		r.state = Playing
		r.emit(EventStateChange, nil)
	}
	r.emit(EventResume, nil)
	return p, nil
}

// Reset stops speech, clears highlighting and rewinds to the first unit.
func (r *Reader) Reset() {
	r.mu.Lock()
	defer r.unlock()

	if r.state == Idle {
		return
	}
	r.dropRestart()
	r.engine.Cancel()
	r.engine.ResetClock()
	r.clearHighlight()
	r.cur = newCursor()
	r.cur.remaining = r.wholeText
	r.highlightOnStart = false
	r.state = Ready
	r.engine.SetText(r.utteranceText())
	if len(r.units) > 0 {
		r.view.ScrollTo(0)
	}
	r.emit(EventReset, nil)
	r.emit(EventStateChange, nil)
}

// SeekTo moves the cursor to unit index. A playing or paused reading is
// restarted from there and keeps its state.
func (r *Reader) SeekTo(index int) error {
	r.mu.Lock()
	defer r.unlock()

	if r.state == Idle {
		return ErrNotReady
	}
	c, ok := chunk.Find(r.chunks, index)
	if !ok {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSeekOutOfRange, index, len(r.units))
	}

	r.engine.StopClock()
	r.cur.chunk = c.Idx
	r.clearHighlight()
	if r.options.ChunkMode {
		r.cur.word = c.Start
		r.highlightChunk(c.Idx)
	} else {
		r.cur.word = index
		r.highlight(index)
	}
	r.cur.remaining = r.remainingText(r.cur.word)
	r.engine.SetElapsed(r.elapsedAt(r.cur.word))
	r.engine.SetText(r.utteranceText())
	if r.state == Ended {
		r.state = Ready
	}

	r.emit(EventSeek, SeekPayload{Index: index, Word: r.cur.word, Chunk: c.Idx})
	r.emit(EventTimeTick, TickPayload{Elapsed: r.engine.Elapsed()})
	r.scheduleRestart(ReasonSeek)
	r.emit(EventStateChange, nil)
	return nil
}

// ClickWord reports that the user activated unit index.
func (r *Reader) ClickWord(index int) {
	r.mu.Lock()
	defer r.unlock()

	if index < 0 || index >= len(r.units) {
		return
	}
	r.emit(EventWordClick, WordClickPayload{Index: index})
}

// On registers fn for events of type t and returns a function removing it.
func (r *Reader) On(t EventType, fn Handler) (unsubscribe func()) {
	return r.events.on(t, fn)
}

// Close silences the engine and stops all timers.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.unlock()

	r.dropRestart()
	r.engine.Cancel()
	r.engine.StopClock()
	if r.state == Playing || r.state == Paused {
		r.state = Ready
		r.emit(EventStateChange, nil)
	}
}

func (r *Reader) IsPlaying() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == Playing
}

func (r *Reader) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == Paused
}

func (r *Reader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Units returns the unit texts in index order.
func (r *Reader) Units() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.units...)
}

func (r *Reader) Chunks() []chunk.Chunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chunk.Chunk(nil), r.chunks...)
}

// Document returns the tagging result, or nil before a successful Init.
func (r *Reader) Document() *tagger.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.doc
}

// speak submits the utterance for the cursor and marks the reader playing.
func (r *Reader) speak(reason string) (*speech.Pending, error) {
	r.cur.lastBoundary = speech.Boundary{}
	r.engine.SetText(r.utteranceText())
	p, err := r.engine.Speak()
	if err != nil {
		r.log.Error("engine refused utterance", "reason", reason, "error", err)
		return nil, err
	}
	r.log.Debug("speaking", "reason", reason, "word", r.cur.word, "chunk", r.cur.chunk)
	r.engine.StartClock()
	if r.state != Playing {
		r.state = Playing
		r.emit(EventStateChange, nil)
	}
	return p, nil
}

func (r *Reader) wait(ctx context.Context, p *speech.Pending) error {
	if err := p.Wait(ctx); err != nil && !errors.Is(err, speech.ErrSuperseded) {
		return err
	}
	return nil
}

// scheduleRestart silences the engine now and re-speaks from the cursor once
// the burst of changes settles. Idle, Ready and Ended readers stay quiet.
func (r *Reader) scheduleRestart(reason string) {
	if r.state != Playing && r.state != Paused {
		return
	}
	r.engine.Cancel()
	r.restartReason = reason
	if r.cfg.RestartDelay <= 0 {
		r.restartNow()
		return
	}
	r.restart()
}

func (r *Reader) flushRestart() {
	r.mu.Lock()
	defer r.unlock()
	r.restartNow()
}

// restartNow re-speaks from the cursor. An engine that refuses the utterance
// leaves the reader Ready rather than Playing in silence.
func (r *Reader) restartNow() {
	if r.state != Playing && r.state != Paused {
		return
	}
	paused := r.state == Paused
	if _, err := r.speak(r.restartReason); err != nil {
		r.engine.StopClock()
		r.state = Ready
		r.emit(EventStateChange, nil)
		return
	}
	if paused {
		r.engine.Pause()
		r.engine.StopClock()
		r.state = Paused
		r.emit(EventStateChange, nil)
	}
}

// dropRestart discards a pending debounced restart.
func (r *Reader) dropRestart() {
	r.cancelRestart()
	r.restart, r.cancelRestart = debounce.New(r.cfg.RestartDelay, r.flushRestart)
}

func (r *Reader) handleTick(elapsed time.Duration) {
	r.mu.Lock()
	defer r.unlock()
	r.emit(EventTimeTick, TickPayload{Elapsed: elapsed})
}

func (r *Reader) languageVoices() []speech.Voice {
	filtered := speech.FilterByLanguage(r.allVoices, r.settings.Language)
	if len(filtered) == 0 && len(r.allVoices) > 0 {
		r.log.Warn("no voice for language, offering all voices", "language", r.settings.Language)
		return append([]speech.Voice(nil), r.allVoices...)
	}
	return filtered
}

// emit queues an event; it is delivered by unlock.
func (r *Reader) emit(t EventType, payload any) {
	r.queued = append(r.queued, Event{Type: t, Snapshot: r.snapshot(), Payload: payload})
}

func (r *Reader) unlock() {
	events := r.queued
	r.queued = nil
	r.mu.Unlock()
	r.events.dispatch(events)
}

// Snapshot is a copy of the reader state.
type Snapshot struct {
	State             State
	CurrentWordIndex  int
	CurrentChunkIndex int
	CurrentWord       string
	Highlighted       []int
	NumberOfUnits     int
	NumberOfChunks    int
	Elapsed           time.Duration
	Duration          time.Duration
	TextRemaining     string
	Voice             *speech.Voice
	Voices            []speech.Voice
	Settings          Settings
	Options           Options
	Style             Style
}

func (r *Reader) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

func (r *Reader) snapshot() Snapshot {
	s := Snapshot{
		State:             r.state,
		CurrentWordIndex:  r.cur.word,
		CurrentChunkIndex: r.cur.chunk,
		Highlighted:       append([]int(nil), r.cur.highlighted...),
		NumberOfUnits:     len(r.units),
		NumberOfChunks:    len(r.chunks),
		Elapsed:           r.engine.Elapsed(),
		Duration:          r.duration,
		TextRemaining:     r.cur.remaining,
		Voices:            append([]speech.Voice(nil), r.voices...),
		Settings:          r.settings,
		Options:           r.options,
		Style:             r.style,
	}
	if r.cur.word < len(r.units) {
		s.CurrentWord = r.units[r.cur.word]
	}
	if r.voice != nil {
		v := *r.voice
		s.Voice = &v
	}
	return s
}

// remainingText is the text from unit from to the end. The whole text, the
// remaining text and elapsed times all use this one join.
func (r *Reader) remainingText(from int) string {
	if from >= len(r.units) {
		return ""
	}
	return text.JoinReading(r.units[from:])
}

// elapsedAt is the heuristic time spent reading the units before i.
func (r *Reader) elapsedAt(i int) time.Duration {
	i = min(max(i, 0), len(r.units))
	return text.EstimateDuration(text.JoinReading(r.units[:i]), r.settings.Rate)
}

// utteranceText is what the next Speak should say.
func (r *Reader) utteranceText() string {
	if r.options.ChunkMode {
		if r.cur.chunk < len(r.chunks) {
			return r.chunks[r.cur.chunk].Text
		}
		return ""
	}
	return r.cur.remaining
}
