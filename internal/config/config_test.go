package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 1.0, cfg.Rate)
	assert.Equal(t, EnginePaced, cfg.Engine)
	assert.Equal(t, ChunkAuto, cfg.ChunkMode)
	assert.True(t, cfg.Highlight)
	assert.Equal(t, 300*time.Millisecond, cfg.RestartDelay)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "/tmp/state/aloud/aloud.log", cfg.Log.File)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("ALOUD_RATE", "1.5")
	t.Setenv("ALOUD_CHUNK_MODE", "on")
	t.Setenv("ALOUD_HIGHLIGHT", "false")
	t.Setenv("ALOUD_RESTART_DELAY", "50ms")
	t.Setenv("ALOUD_LOG_LEVEL", "debug")
	t.Setenv("ALOUD_UNKNOWN", "x")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1.5, cfg.Rate)
	assert.Equal(t, ChunkOn, cfg.ChunkMode)
	assert.False(t, cfg.Highlight)
	assert.Equal(t, 50*time.Millisecond, cfg.RestartDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("ALOUD_PITCH=0.5\nALOUD_VOLUME=0.25\n"), 0o644))
	t.Setenv("ALOUD_VOLUME", "0.75")
	t.Cleanup(func() { os.Unsetenv("ALOUD_PITCH") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Pitch)
	assert.Equal(t, 0.75, cfg.Volume, "environment wins over .env")
}

func TestLoadMissingDotenv(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ".env"))
	assert.NoError(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"rate too high", "ALOUD_RATE", "11"},
		{"unknown engine", "ALOUD_ENGINE", "festival"},
		{"bad chunk mode", "ALOUD_CHUNK_MODE", "sometimes"},
		{"bad color", "ALOUD_COLOR1", "teal"},
		{"bad level", "ALOUD_LOG_LEVEL", "loud"},
		{"bad language", "ALOUD_LANGUAGE", "not a tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestReaderConfig(t *testing.T) {
	cfg := Default()
	cfg.Voice = "paced"
	cfg.Underline = true

	rc := cfg.ReaderConfig(true)
	assert.False(t, rc.Options.ChunkMode)
	assert.True(t, rc.Options.Underline)
	assert.Equal(t, "paced", rc.Settings.VoiceURI)
	assert.Equal(t, cfg.TickPeriod, rc.TickPeriod)

	assert.True(t, cfg.ReaderConfig(false).Options.ChunkMode, "auto without boundaries")

	cfg.ChunkMode = ChunkOff
	assert.False(t, cfg.ReaderConfig(false).Options.ChunkMode)
	cfg.ChunkMode = ChunkOn
	assert.True(t, cfg.ReaderConfig(true).Options.ChunkMode)
}

func TestEnvMappings(t *testing.T) {
	m := envMappings([]string{"rate", "log.level", "chunk_mode"})
	assert.Equal(t, map[string]string{
		"ALOUD_RATE":       "rate",
		"ALOUD_LOG_LEVEL":  "log.level",
		"ALOUD_CHUNK_MODE": "chunk_mode",
	}, m)
}

func TestOpenLog(t *testing.T) {
	f, err := LogConfig{}.OpenLog()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, f)

	path := filepath.Join(t.TempDir(), "nested", "aloud.log")
	f, err = LogConfig{File: path}.OpenLog()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.FileExists(t, path)
}
