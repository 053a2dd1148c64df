// Package config loads aloud settings from defaults, an optional .env file and
// ALOUD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/metcalfc/aloud/internal/reader"
)

const (
	EnvPrefix = "ALOUD_"
	AppName   = "aloud"

	EnginePaced  = "paced"
	EngineEspeak = "espeak"

	ChunkAuto = "auto"
	ChunkOn   = "on"
	ChunkOff  = "off"
)

type Config struct {
	Language string  `koanf:"language" validate:"omitempty,bcp47_language_tag"`
	Voice    string  `koanf:"voice"`
	Rate     float64 `koanf:"rate"     validate:"gt=0,lte=10"`
	Pitch    float64 `koanf:"pitch"    validate:"gte=0,lte=2"`
	Volume   float64 `koanf:"volume"   validate:"gte=0,lte=1"`

	Engine string `koanf:"engine" validate:"oneof=paced espeak"`
	// ChunkMode "auto" turns chunk mode on for engines without word boundaries.
	ChunkMode            string `koanf:"chunk_mode"            validate:"oneof=auto on off"`
	Highlight            bool   `koanf:"highlight"`
	PreserveHighlighting bool   `koanf:"preserve_highlighting"`
	Underline            bool   `koanf:"underline"`
	ExcludeCode          bool   `koanf:"exclude_code"`

	Color1 string `koanf:"color1" validate:"hexcolor"`
	Color2 string `koanf:"color2" validate:"hexcolor"`
	Brush  string `koanf:"brush"`

	RestartDelay time.Duration `koanf:"restart_delay" validate:"gte=0"`
	TickPeriod   time.Duration `koanf:"tick_period"   validate:"gt=0"`
	VoiceTimeout time.Duration `koanf:"voice_timeout" validate:"gt=0"`

	Log LogConfig `koanf:"log"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
	// File receives log output; the terminal belongs to the UI.
	File string `koanf:"file"`
}

// Default mirrors reader.DefaultConfig.
func Default() *Config {
	rc := reader.DefaultConfig()
	return &Config{
		Language:     rc.Settings.Language,
		Rate:         rc.Settings.Rate,
		Pitch:        rc.Settings.Pitch,
		Volume:       rc.Settings.Volume,
		Engine:       EnginePaced,
		ChunkMode:    ChunkAuto,
		Highlight:    rc.Options.Highlight,
		Color1:       rc.Style.Color1,
		Color2:       rc.Style.Color2,
		RestartDelay: rc.RestartDelay,
		TickPeriod:   rc.TickPeriod,
		VoiceTimeout: rc.VoiceTimeout,
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(StateDir(), AppName+".log"),
		},
	}
}

// Load builds a Config. dotenv names a .env file; a missing file is ignored.
// Variables already in the environment win over the file.
func Load(dotenv string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}
	}

	paths := envMappings(k.Keys())
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			if path, ok := paths[key]; ok {
				return path, value
			}
			if path, ok := paths[EnvPrefix+key]; ok {
				return path, value
			}
			return "", nil
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envMappings maps ALOUD_LOG_LEVEL style names to koanf paths such as log.level.
func envMappings(keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		name := EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		out[name] = key
	}
	return out
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// ReaderConfig converts c for reader.New. boundaries reports whether the
// chosen engine emits word boundaries, which decides ChunkAuto.
func (c *Config) ReaderConfig(boundaries bool) reader.Config {
	rc := reader.DefaultConfig()
	rc.Settings = reader.Settings{
		Language: c.Language,
		VoiceURI: c.Voice,
		Rate:     c.Rate,
		Pitch:    c.Pitch,
		Volume:   c.Volume,
	}
	rc.Options = reader.Options{
		ChunkMode:            c.ChunkMode == ChunkOn || (c.ChunkMode == ChunkAuto && !boundaries),
		Highlight:            c.Highlight,
		PreserveHighlighting: c.PreserveHighlighting,
		Underline:            c.Underline,
	}
	rc.Style = reader.Style{Color1: c.Color1, Color2: c.Color2, Brush: c.Brush}
	rc.ExcludeCode = c.ExcludeCode
	rc.RestartDelay = c.RestartDelay
	rc.TickPeriod = c.TickPeriod
	rc.VoiceTimeout = c.VoiceTimeout
	return rc
}

// StateDir returns XDG_STATE_HOME/aloud or ~/.local/state/aloud.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", AppName)
}

// OpenLog opens the configured log file for appending, creating its directory.
// An empty File means stderr.
func (l LogConfig) OpenLog() (*os.File, error) {
	if l.File == "" {
		return os.Stderr, nil
	}
	if err := os.MkdirAll(filepath.Dir(l.File), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(l.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
