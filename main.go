package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/metcalfc/aloud/internal/config"
	"github.com/metcalfc/aloud/internal/document"
	"github.com/metcalfc/aloud/internal/logger"
	"github.com/metcalfc/aloud/internal/reader"
	"github.com/metcalfc/aloud/internal/speech"
	"github.com/metcalfc/aloud/internal/tagger"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type flags struct {
	rate        float64
	lang        string
	voice       string
	engine      string
	chunks      string
	excludeCode bool
	logLevel    string
	logFile     string
	listVoices  bool
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "aloud [file]",
		Short: "Read documents aloud with word highlighting",
		Long: "aloud reads a document aloud and highlights each word as it is spoken.\n\n" +
			"Supported formats: " + strings.Join(document.SupportedFormats(), ", ") + ", plain text.\n" +
			"Settings come from ALOUD_* environment variables, a .env file and flags.",
		Example: "  aloud book.epub\n" +
			"  aloud --engine espeak --rate 1.25 README.md\n" +
			"  cat notes.txt | aloud",
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}
			applyFlags(cmd, &f, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args, f.listVoices)
		},
	}

	bindFlags(cmd, &f)
	return cmd
}

func bindFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.Float64VarP(&f.rate, "rate", "r", 1, "speech rate (0-10, 1 is normal)")
	fl.StringVarP(&f.lang, "lang", "l", "en", "language tag used to pick voices")
	fl.StringVar(&f.voice, "voice", "", "voice URI")
	fl.StringVarP(&f.engine, "engine", "e", config.EnginePaced, "speech engine: paced or espeak")
	fl.StringVar(&f.chunks, "chunks", config.ChunkAuto, "sentence-at-a-time reading: auto, on or off")
	fl.BoolVar(&f.excludeCode, "exclude-code", false, "do not read code blocks")
	fl.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fl.StringVar(&f.logFile, "log-file", "", "log file (default $XDG_STATE_HOME/aloud/aloud.log)")
	fl.BoolVar(&f.listVoices, "list-voices", false, "print the engine's voices and exit")
}

// applyFlags overrides cfg with the flags the user set.
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("rate") {
		cfg.Rate = f.rate
	}
	if changed("lang") {
		cfg.Language = f.lang
	}
	if changed("voice") {
		cfg.Voice = f.voice
	}
	if changed("engine") {
		cfg.Engine = f.engine
	}
	if changed("chunks") {
		cfg.ChunkMode = f.chunks
	}
	if changed("exclude-code") {
		cfg.ExcludeCode = f.excludeCode
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
}

func newEngine(name string) (speech.Synthesizer, error) {
	switch name {
	case config.EngineEspeak:
		return speech.NewEspeak()
	case config.EnginePaced:
		return speech.NewPaced(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func loadDocument(args []string) (*document.Document, error) {
	if len(args) > 0 {
		return document.Load(args[0])
	}
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Mode()&os.ModeCharDevice != 0 {
		return nil, errors.New("no input provided. Provide a file or pipe text to stdin")
	}
	return document.Read(os.Stdin, "stdin")
}

func run(ctx context.Context, cfg *config.Config, args []string, listVoices bool) error {
	out, err := cfg.Log.OpenLog()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if out != os.Stderr {
		defer out.Close()
	}
	log := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     out,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})

	synth, err := newEngine(cfg.Engine)
	if err != nil {
		return err
	}

	if listVoices {
		voices, err := speech.WaitForVoices(ctx, synth, speech.DefaultVoicePollInterval, cfg.VoiceTimeout)
		if err != nil {
			return err
		}
		for _, v := range voices {
			fmt.Printf("%-24s %-8s %s\n", v.URI, v.Lang, speech.DisplayName(v))
		}
		return nil
	}

	doc, err := loadDocument(args)
	if err != nil {
		return err
	}
	log.Info("loaded document", "title", doc.Title, "format", doc.Format)

	root, err := tagger.ParseBody(doc.Markup)
	if err != nil {
		return err
	}

	rc := cfg.ReaderConfig(speech.ReportsBoundaries(synth))
	rc.Logger = log
	// The layout needs the tagged segments, so the view is attached after Init.
	view := &lazyView{}
	rc.View = view
	r, err := reader.New(root, synth, rc)
	if err != nil {
		return err
	}
	if err := r.Init(ctx); err != nil {
		return err
	}
	if len(r.Units()) == 0 {
		return errors.New("no text to read")
	}

	m := newModel(ctx, r, doc.Title)
	view.set(m.layout)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	defer seekOnClick(r, log)()
	defer forward(r, p.Send)()

	_, err = p.Run()
	r.Close()
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
