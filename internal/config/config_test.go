package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plus3/greet/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greet.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 2*time.Second, cfg.Interval())
	assert.True(t, cfg.Timer.Repeating)
	assert.Zero(t, cfg.Loop.MaxTicks)
	assert.Empty(t, cfg.Roster.Path)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
[timer]
seconds = 0.5

[loop]
tick_rate = "40ms"
max_ticks = 12

[roster]
path = "people.yaml"

[logging]
level = "debug"
format = "json"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Interval())
	assert.True(t, cfg.Timer.Repeating, "keys missing from the file keep their defaults")
	assert.Equal(t, 40*time.Millisecond, cfg.Loop.TickRate)
	assert.Equal(t, uint64(12), cfg.Loop.MaxTicks)
	assert.Equal(t, "people.yaml", cfg.Roster.Path)
	assert.Equal(t, config.LoggingConfig{Level: "debug", Format: "json"}, cfg.Logging)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[timer\nseconds = "))
		assert.ErrorContains(t, err, "parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, `
[timer]
seconds = -1
[logging]
level = "loud"
format = "xml"
`))
		require.Error(t, err)
		assert.ErrorContains(t, err, "logging.level")
		assert.ErrorContains(t, err, "timer.seconds")
		assert.ErrorContains(t, err, "logging.format")
	})
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	assert.NoError(t, cfg.Validate())

	cfg.Loop.TickRate = 0
	assert.ErrorContains(t, cfg.Validate(), "loop.tick_rate")

	cfg = config.Default()
	cfg.Logging.Level = "chatty"
	assert.ErrorContains(t, cfg.Validate(), "logging.level")

	cfg.Logging.Level = ""
	assert.NoError(t, cfg.Validate(), "an empty level means info")
}
