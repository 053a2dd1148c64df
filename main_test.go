package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/aloud/internal/config"
	"github.com/metcalfc/aloud/internal/logger"
	"github.com/metcalfc/aloud/internal/reader"
	"github.com/metcalfc/aloud/internal/speech"
	"github.com/metcalfc/aloud/internal/speech/speechtest"
	"github.com/metcalfc/aloud/internal/tagger"
)

func testLayout(t *testing.T, markup string, width int) *layout {
	t.Helper()
	_, res, err := tagger.TagString(markup, tagger.Options{})
	require.NoError(t, err)
	return newLayout(res.Segments, width)
}

func TestLayoutWrap(t *testing.T) {
	l := testLayout(t, "<p>Hello big world.</p><p>Next line</p>", 10)

	assert.Equal(t, "Hello big \nworld. \n\nNext line ", l.Render())

	pos, ok := l.Position(1)
	require.True(t, ok)
	assert.Equal(t, 6.0, pos)
	pos, ok = l.Position(2)
	require.True(t, ok)
	assert.Equal(t, 0.0, pos, "wrapped unit starts a line")

	line, ok := l.Line(3)
	require.True(t, ok)
	assert.Equal(t, 3, line)

	_, ok = l.Position(99)
	assert.False(t, ok)
}

func TestLayoutRewrap(t *testing.T) {
	l := testLayout(t, "<p>Hello big world.</p>", 10)
	l.SetWidth(80)
	assert.Equal(t, "Hello big world. ", l.Render())
	line, _ := l.Line(2)
	assert.Equal(t, 0, line)
}

func TestLayoutUnitAt(t *testing.T) {
	l := testLayout(t, "<p>Hello big world.</p><p>Next line</p>", 10)

	tests := []struct {
		line, col int
		want      int
		ok        bool
	}{
		{0, 0, 0, true},
		{0, 4, 0, true},
		{0, 5, 0, false},
		{0, 6, 1, true},
		{1, 2, 2, true},
		{2, 0, 0, false},
		{3, 5, 4, true},
		{9, 0, 0, false},
	}
	for _, tt := range tests {
		got, ok := l.UnitAt(tt.line, tt.col)
		assert.Equal(t, tt.ok, ok, "line %d col %d", tt.line, tt.col)
		if tt.ok {
			assert.Equal(t, tt.want, got, "line %d col %d", tt.line, tt.col)
		}
	}
}

func TestLayoutHighlightAndScroll(t *testing.T) {
	l := testLayout(t, "<p>Hello big world.</p>", 10)

	l.Highlight(1, reader.HighlightStyle{Background: "#DEE", Foreground: "#9DE"})
	assert.Len(t, l.lit, 1)
	l.Unhighlight(1)
	assert.Empty(t, l.lit)

	_, ok := l.TakeScroll()
	assert.False(t, ok)
	l.ScrollTo(2)
	line, ok := l.TakeScroll()
	require.True(t, ok)
	assert.Equal(t, 1, line)
	_, ok = l.TakeScroll()
	assert.False(t, ok)
}

func TestLazyView(t *testing.T) {
	v := &lazyView{}
	v.Highlight(0, reader.HighlightStyle{})
	_, ok := v.Position(0)
	assert.False(t, ok)

	l := testLayout(t, "<p>Hi there</p>", 80)
	v.set(l)
	pos, ok := v.Position(1)
	require.True(t, ok)
	assert.Equal(t, 3.0, pos)
}

func testModel(t *testing.T, markup string) (model, *speechtest.Synth) {
	t.Helper()
	root, err := tagger.ParseBody(markup)
	require.NoError(t, err)

	synth := speechtest.New(speech.Voice{Name: "Test", URI: "test", Lang: "en-US", Default: true})
	cfg := reader.DefaultConfig()
	cfg.RestartDelay = 0
	cfg.VoiceTimeout = 100 * time.Millisecond
	view := &lazyView{}
	cfg.View = view

	r, err := reader.New(root, synth, cfg)
	require.NoError(t, err)
	require.NoError(t, r.Init(context.Background()))
	t.Cleanup(r.Close)

	m := newModel(context.Background(), r, "test")
	view.set(m.layout)
	t.Cleanup(seekOnClick(r, logger.Discard()))
	return m, synth
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(model)
	if cmd != nil {
		next, _ = m.Update(cmd())
		m = next.(model)
	}
	return m
}

func TestModelPlayPause(t *testing.T) {
	m, synth := testModel(t, "<p>Hello big world.</p>")

	m = update(t, m, key(" "))
	assert.Equal(t, reader.Playing, m.snap.State)
	require.NoError(t, m.err)
	assert.Len(t, synth.Spoken(), 1)

	m = update(t, m, key(" "))
	assert.Equal(t, reader.Paused, m.snap.State)
	assert.Contains(t, m.status(), "[PAUSED]")
}

func TestModelKeys(t *testing.T) {
	m, _ := testModel(t, "<h1>Intro.</h1><p>One two. Three four.</p>")

	assert.Contains(t, m.status(), "Word 1/5")
	assert.Contains(t, m.status(), "1.00x")
	assert.Contains(t, m.status(), "words")

	m = update(t, m, key("up"))
	assert.Equal(t, 1.25, m.snap.Settings.Rate)

	m = update(t, m, key("c"))
	assert.True(t, m.snap.Options.ChunkMode)
	assert.Contains(t, m.status(), "sentences")

	m = update(t, m, key("u"))
	assert.True(t, m.snap.Options.Underline)

	m = update(t, m, key("right"))
	assert.Equal(t, 1, m.snap.CurrentWordIndex)

	m = update(t, m, key("r"))
	assert.Equal(t, 0, m.snap.CurrentWordIndex)
}

func TestModelClickSeeks(t *testing.T) {
	m, _ := testModel(t, "<p>Hello big world.</p>")

	m = update(t, m, tea.MouseMsg{X: 6, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = update(t, m, eventMsg{Type: reader.EventSeek})
	assert.Equal(t, 1, m.snap.CurrentWordIndex)
}

func TestSeekWordLogsFailure(t *testing.T) {
	m, _ := testModel(t, "<p>Hello big world.</p>")
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: logger.InfoLevel, Output: &buf})

	seekWord(m.r, log, 2)
	assert.Empty(t, buf.String())
	assert.Equal(t, 2, m.r.Snapshot().CurrentWordIndex)

	seekWord(m.r, log, 9)
	assert.Contains(t, buf.String(), "seek failed")
	assert.Contains(t, buf.String(), "index=9")
	assert.Equal(t, 2, m.r.Snapshot().CurrentWordIndex)
}

func TestModelQuit(t *testing.T) {
	m, _ := testModel(t, "<p>Hi.</p>")
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.True(t, next.(model).quitting)
	assert.Empty(t, next.(model).View())
}

func TestApplyFlags(t *testing.T) {
	var f flags
	cmd := &cobra.Command{}
	bindFlags(cmd, &f)
	require.NoError(t, cmd.ParseFlags([]string{"--rate", "1.5", "--chunks", "on", "--exclude-code"}))

	cfg := config.Default()
	cfg.Language = "fr"
	applyFlags(cmd, &f, cfg)

	assert.Equal(t, 1.5, cfg.Rate)
	assert.Equal(t, config.ChunkOn, cfg.ChunkMode)
	assert.True(t, cfg.ExcludeCode)
	assert.Equal(t, "fr", cfg.Language, "unset flags leave config alone")
}

func TestNewEngine(t *testing.T) {
	synth, err := newEngine(config.EnginePaced)
	require.NoError(t, err)
	assert.True(t, speech.ReportsBoundaries(synth))

	_, err = newEngine("festival")
	assert.Error(t, err)
}
