package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hesom/ParticleSystem/core"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.ParticleCount)
	assert.Equal(t, 1280, cfg.WindowWidth)
	assert.Equal(t, 720, cfg.WindowHeight)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Empty(t, cfg.FontPath)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("PARTICLES_COUNT", "321")
	t.Setenv("PARTICLES_TITLE", "env title")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 321, cfg.ParticleCount)
	assert.Equal(t, "env title", cfg.Title)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("PARTICLES_COUNT", "321")

	cfg, err := Load([]string{"-n", "500", "-width", "640", "-height", "480", "-seed", "7"})
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.ParticleCount)
	assert.Equal(t, 640, cfg.WindowWidth)
	assert.Equal(t, 480, cfg.WindowHeight)
	assert.Equal(t, int64(7), cfg.Seed)
}

func TestLoad_RejectsNonPositiveCount(t *testing.T) {
	for _, arg := range []string{"0", "-5"} {
		_, err := Load([]string{"-n", arg})
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrValidation), "want ErrValidation for -n %s, got %v", arg, err)
	}
}

func TestLoad_RejectsBadWindowSize(t *testing.T) {
	_, err := Load([]string{"-width", "0"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestLoad_RejectsUnknownFlagsAndArgs(t *testing.T) {
	_, err := Load([]string{"-bogus"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))

	_, err = Load([]string{"stray"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}
