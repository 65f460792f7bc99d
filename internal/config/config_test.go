package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.MaxMicrosteps)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.False(t, cfg.ValidateModel)
	assert.Len(t, cfg.ActorOptions(), 1)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BEEPBOOP_LOG_LEVEL", "debug")
	t.Setenv("BEEPBOOP_MAX_MICROSTEPS", "50")
	t.Setenv("BEEPBOOP_VALIDATE_MODEL", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxMicrosteps)
	assert.True(t, cfg.ValidateModel)
	assert.Len(t, cfg.ActorOptions(), 2)
}

func TestLoadFileOverridesEnv(t *testing.T) {
	t.Setenv("BEEPBOOP_ADDR", ":9000")
	path := filepath.Join(t.TempDir(), "beepboop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: 127.0.0.1:7000\nlog_level: warn\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Addr)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.MaxMicrosteps)
}

func TestLoadErrors(t *testing.T) {
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("BEEPBOOP_MAX_MICROSTEPS", "many")
		_, err := Load("")
		require.ErrorIs(t, err, ErrParsingConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, ErrReadingFile)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed\n"), 0o600))
		_, err := Load(path)
		require.ErrorIs(t, err, ErrReadingFile)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("BEEPBOOP_LOG_LEVEL", "loud")
		_, err := Load("")
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "loud")
	})
}

func TestValidate(t *testing.T) {
	valid := Config{LogLevel: "info", MaxMicrosteps: 1, Addr: ":0"}
	require.NoError(t, valid.Validate())

	zero := valid
	zero.MaxMicrosteps = 0
	require.ErrorIs(t, zero.Validate(), ErrInvalidConfig)

	noAddr := valid
	noAddr.Addr = ""
	require.ErrorIs(t, noAddr.Validate(), ErrInvalidConfig)
}
