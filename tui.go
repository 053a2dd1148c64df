package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/aloud/internal/logger"
	"github.com/metcalfc/aloud/internal/reader"
	"github.com/metcalfc/aloud/internal/tagger"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000"))
)

const (
	rateStep = 0.25
	minRate  = 0.25
	maxRate  = 4.0

	controls = "SPACE: play/pause  ←/→: sentence  [/]: heading  ↑/↓: rate  c/h/p/u: chunks/highlight/preserve/underline  r: reset  Q: quit"
)

// eventMsg carries a reader event into the bubbletea loop.
type eventMsg reader.Event

type errMsg struct{ err error }

type model struct {
	ctx    context.Context
	r      *reader.Reader
	layout *layout
	vp     viewport.Model
	title  string
	snap   reader.Snapshot
	err    error

	quitting bool
	width    int
	height   int
}

func newModel(ctx context.Context, r *reader.Reader, title string) model {
	var segs []tagger.Segment
	if doc := r.Document(); doc != nil {
		segs = doc.Segments
	}
	m := model{
		ctx:    ctx,
		r:      r,
		title:  title,
		layout: newLayout(segs, 80),
		vp:     viewport.New(80, 22),
		width:  80,
		height: 24,
	}
	m.snap = r.Snapshot()
	m.vp.SetContent(m.layout.Render())
	return m
}

// seekOnClick makes a clicked word the reading position.
func seekOnClick(r *reader.Reader, log logger.Logger) func() {
	return r.On(reader.EventWordClick, func(e reader.Event) {
		if p, ok := e.Payload.(reader.WordClickPayload); ok {
			seekWord(r, log, p.Index)
		}
	})
}

func seekWord(r *reader.Reader, log logger.Logger, index int) {
	if err := r.SeekTo(index); err != nil {
		log.Warn("seek failed", "index", index, "error", err)
	}
}

// forward delivers every reader event to send. Events raised inside Update
// would block the loop if sent synchronously.
func forward(r *reader.Reader, send func(tea.Msg)) func() {
	var offs []func()
	for _, t := range reader.EventTypes() {
		offs = append(offs, r.On(t, func(e reader.Event) {
			go send(eventMsg(e))
		}))
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) run(f func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return errMsg{f(ctx)}
	}
}

func (m model) toggle() tea.Cmd {
	switch m.r.State() {
	case reader.Playing:
		m.r.Pause()
		return nil
	case reader.Paused:
		return m.run(m.r.Resume)
	case reader.Ended:
		m.r.Reset()
	}
	return m.run(func(ctx context.Context) error { return m.r.Play(ctx, reader.ReasonStart) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case " ":
			return m, m.toggle()

		case "r":
			m.r.Reset()

		case "left":
			m.err = m.r.JumpToPrevSentence()

		case "right":
			m.err = m.r.JumpToNextSentence()

		case "[":
			if h := m.r.CurrentHeading(); h > 0 {
				m.err = m.r.JumpToHeading(h - 1)
			} else {
				m.err = m.r.SeekTo(0)
			}

		case "]":
			m.err = m.r.JumpToHeading(m.r.CurrentHeading() + 1)

		case "up", "+", "=":
			m.err = m.r.SetRate(min(m.snap.Settings.Rate+rateStep, maxRate))

		case "down", "-":
			m.err = m.r.SetRate(max(m.snap.Settings.Rate-rateStep, minRate))

		case "c":
			m.r.SetChunkMode(!m.snap.Options.ChunkMode)

		case "h":
			m.r.SetHighlight(!m.snap.Options.Highlight)

		case "p":
			m.r.SetPreserveHighlighting(!m.snap.Options.PreserveHighlighting)

		case "u":
			m.r.SetUnderline(!m.snap.Options.Underline)

		case "q", "Q", "ctrl+c":
			m.quitting = true
			m.r.Close()
			return m, tea.Quit

		default:
			var cmd tea.Cmd
			m.vp, cmd = m.vp.Update(msg)
			return m, cmd
		}
		return m.refresh(), nil

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i, ok := m.layout.UnitAt(msg.Y-1+m.vp.YOffset, msg.X); ok {
				m.r.ClickWord(i)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = max(msg.Height-2, 1)
		m.layout.SetWidth(msg.Width)
		return m.refresh(), nil

	case eventMsg:
		return m.refresh(), nil

	case errMsg:
		m.err = msg.err
		return m.refresh(), nil
	}

	return m, nil
}

// refresh pulls the reader state and redraws the document, following any
// scroll the reader asked for.
func (m model) refresh() model {
	m.snap = m.r.Snapshot()
	m.vp.SetContent(m.layout.Render())
	if line, ok := m.layout.TakeScroll(); ok {
		m.vp.SetYOffset(max(line-m.vp.Height/2, 0))
	}
	return m
}

func (m model) status() string {
	s := m.snap
	var state string
	switch s.State {
	case reader.Paused:
		state = pausedStyle.Render(" [PAUSED]")
	case reader.Ended:
		state = completeStyle.Render(" [DONE]")
	}

	current := min(s.CurrentWordIndex+1, s.NumberOfUnits)
	mode := "words"
	if s.Options.ChunkMode {
		mode = "sentences"
	}
	voice := "no voice"
	if s.Voice != nil {
		voice = s.Voice.Name
	}
	line := fmt.Sprintf("Word %d/%d | %.2fx | %s/%s | %s | %s%s",
		current, s.NumberOfUnits,
		s.Settings.Rate,
		reader.FormatElapsed(s.Elapsed), reader.FormatElapsed(s.Duration),
		mode, voice, state,
	)
	if m.err != nil {
		line += " " + errorStyle.Render(m.err.Error())
	}
	return line
}

func (m model) View() string {
	if m.quitting {
		if m.snap.State == reader.Ended {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}
	if m.snap.NumberOfUnits == 0 {
		return "No text to read."
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString(statusStyle.Render(m.status()))
	sb.WriteString("\n")
	sb.WriteString(m.vp.View())
	sb.WriteString("\n")
	sb.WriteString(controlsStyle.Render(controls))
	return sb.String()
}
