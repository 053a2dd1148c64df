package reader

import (
	"fmt"

	"github.com/metcalfc/aloud/internal/speech"
	"github.com/metcalfc/aloud/internal/text"
)

// Settings are the voice parameters handed to the engine.
type Settings struct {
	Language string  `validate:"omitempty,bcp47_language_tag"`
	VoiceURI string  `validate:"omitempty"`
	Rate     float64 `validate:"gt=0,lte=10"`
	Pitch    float64 `validate:"gte=0,lte=2"`
	Volume   float64 `validate:"gte=0,lte=1"`
}

// Options toggle reading behaviour.
type Options struct {
	// ChunkMode speaks one sentence-sized chunk per utterance and highlights
	// whole chunks instead of following word boundaries.
	ChunkMode            bool
	Highlight            bool
	PreserveHighlighting bool
	Underline            bool
}

// Style is the highlight look.
type Style struct {
	Color1 string `validate:"omitempty,hexcolor"`
	Color2 string `validate:"omitempty,hexcolor"`
	Brush  string
}

func (r *Reader) SetRate(rate float64) error {
	return r.updateSettings(func(s *Settings) { s.Rate = rate })
}

func (r *Reader) SetPitch(pitch float64) error {
	return r.updateSettings(func(s *Settings) { s.Pitch = pitch })
}

func (r *Reader) SetVolume(volume float64) error {
	return r.updateSettings(func(s *Settings) { s.Volume = volume })
}

// SetVoice selects a voice by URI. An unknown URI falls back to the default voice.
func (r *Reader) SetVoice(uri string) error {
	return r.updateSettings(func(s *Settings) { s.VoiceURI = uri })
}

// SetLanguage narrows the voice list to lang.
func (r *Reader) SetLanguage(lang string) error {
	return r.updateSettings(func(s *Settings) { s.Language = lang })
}

func (r *Reader) updateSettings(mutate func(*Settings)) error {
	r.mu.Lock()
	defer r.unlock()

	next := r.settings
	mutate(&next)
	if err := r.validate.Struct(next); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	prev := r.settings
	r.settings = next

	if next.Language != prev.Language {
		r.voices = r.languageVoices()
	}
	if next.VoiceURI != prev.VoiceURI || next.Language != prev.Language {
		r.voice = speech.ResolveVoice(r.voices, next.VoiceURI)
		if r.voice != nil && r.voice.URI != next.VoiceURI && next.VoiceURI != "" {
			r.log.Warn("voice not available, using fallback", "wanted", next.VoiceURI, "using", r.voice.URI)
		}
	}

	if next.Rate != prev.Rate {
		r.engine.StopClock()
		r.duration = text.EstimateDuration(r.wholeText, next.Rate)
		r.engine.SetElapsed(r.elapsedAt(r.cur.word))
		r.emit(EventTimeTick, TickPayload{Elapsed: r.engine.Elapsed()})
	}

	r.configureEngine()
	r.emit(EventSettingsChange, nil)
	r.scheduleRestart(ReasonSettings)
	r.emit(EventStateChange, nil)
	return nil
}

// SetChunkMode switches between chunk and word-boundary reading. The cursor
// snaps to the start of the current chunk and playback keeps its state.
func (r *Reader) SetChunkMode(on bool) {
	r.mu.Lock()
	defer r.unlock()

	if r.options.ChunkMode == on {
		return
	}
	r.options.ChunkMode = on
	r.engine.StopClock()
	if r.cur.chunk < len(r.chunks) {
		r.cur.word = r.chunks[r.cur.chunk].Start
	}
	r.clearHighlight()
	if on {
		r.highlightChunk(r.cur.chunk)
	}
	r.cur.remaining = r.remainingText(r.cur.word)
	r.engine.SetElapsed(r.elapsedAt(r.cur.word))
	r.engine.SetText(r.utteranceText())

	r.emit(EventOptionsChange, nil)
	r.scheduleRestart(ReasonChunkMode)
	r.emit(EventStateChange, nil)
}

func (r *Reader) SetHighlight(on bool) {
	r.setOption(func(o *Options) { o.Highlight = on })
}

func (r *Reader) SetPreserveHighlighting(on bool) {
	r.setOption(func(o *Options) { o.PreserveHighlighting = on })
}

func (r *Reader) SetUnderline(on bool) {
	r.setOption(func(o *Options) { o.Underline = on })
}

func (r *Reader) setOption(mutate func(*Options)) {
	r.mu.Lock()
	defer r.unlock()

	mutate(&r.options)
	if !r.options.Highlight {
		r.clearHighlight()
	} else {
		r.restyle()
	}
	r.emit(EventOptionsChange, nil)
}

// SetColors sets the highlight background and foreground colours.
func (r *Reader) SetColors(background, foreground string) error {
	return r.updateStyle(func(s *Style) { s.Color1, s.Color2 = background, foreground })
}

func (r *Reader) SetBrush(brush string) error {
	return r.updateStyle(func(s *Style) { s.Brush = brush })
}

func (r *Reader) updateStyle(mutate func(*Style)) error {
	r.mu.Lock()
	defer r.unlock()

	next := r.style
	mutate(&next)
	if err := r.validate.Struct(next); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	r.style = next
	r.restyle()
	r.emit(EventStyleChange, nil)
	return nil
}

func (r *Reader) highlightStyle() HighlightStyle {
	return HighlightStyle{
		Background: r.style.Color1,
		Foreground: r.style.Color2,
		Underline:  r.options.Underline,
		Brush:      r.style.Brush,
	}
}

// restyle redraws the currently highlighted units.
func (r *Reader) restyle() {
	style := r.highlightStyle()
	for _, i := range r.cur.highlighted {
		r.view.Highlight(i, style)
	}
}

func (r *Reader) configureEngine() {
	r.engine.Configure(speech.Settings{
		Lang:   r.settings.Language,
		Voice:  r.voice,
		Rate:   r.settings.Rate,
		Pitch:  r.settings.Pitch,
		Volume: r.settings.Volume,
	})
}
