package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	cfg := Config{}.withDefaults()

	require.Equal(t, defaultViewportWidth, cfg.ViewportWidth)
	require.Equal(t, defaultViewportHeight, cfg.ViewportHeight)
	require.Equal(t, defaultLocale, cfg.Locale)
	require.Equal(t, defaultTimezone, cfg.Timezone)
	require.Equal(t, defaultUserAgent, cfg.UserAgent)
}

func TestConfigWithDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := Config{
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		Locale:         "fr-FR",
		Timezone:       "Europe/Paris",
		UserAgent:      "custom-agent",
	}.withDefaults()

	require.Equal(t, 1920, cfg.ViewportWidth)
	require.Equal(t, 1080, cfg.ViewportHeight)
	require.Equal(t, "fr-FR", cfg.Locale)
	require.Equal(t, "Europe/Paris", cfg.Timezone)
	require.Equal(t, "custom-agent", cfg.UserAgent)
}

func TestIsLockConflictDetectsKnownMessages(t *testing.T) {
	require.True(t, isLockConflict(errors.New("SingletonLock: profile in use")))
	require.True(t, isLockConflict(errors.New("profile appears to be in use by another process")))
	require.False(t, isLockConflict(errors.New("net::ERR_CONNECTION_REFUSED")))
}
