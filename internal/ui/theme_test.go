package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/csvx/internal/config"
	"github.com/oakwood-commons/csvx/internal/render"
)

func TestThemeFromConfig_Default(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	th, err := ThemeFromConfig(cfg, "", false)
	require.NoError(t, err)
	assert.Equal(t, "dark", th.Name)
	assert.True(t, th.Style(render.RoleHeader).GetBold())

	th, err = ThemeFromConfig(cfg, "light", false)
	require.NoError(t, err)
	assert.Equal(t, "light", th.Name)
}

func TestThemeFromConfig_UnknownTheme(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)

	_, err = ThemeFromConfig(cfg, "neon", false)
	assert.ErrorContains(t, err, "neon")
}

func TestThemeFromConfig_NoThemesFallsBack(t *testing.T) {
	th, err := ThemeFromConfig(config.File{}, "", false)
	require.NoError(t, err)
	assert.Equal(t, "default", th.Name)
}

func TestNewTheme_NoColorUsesReverseVideo(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	_, tc, err := cfg.SelectedTheme()
	require.NoError(t, err)

	th := NewTheme("dark", tc, true)
	assert.True(t, th.Style(render.RoleSelected).GetReverse())
	assert.True(t, th.Style(render.RoleMatch).GetUnderline())

	colored := NewTheme("dark", tc, false)
	assert.False(t, colored.Style(render.RoleSelected).GetReverse())
}

func TestTheme_UnknownRoleIsPlain(t *testing.T) {
	th := NewTheme("mono", config.ThemeConfig{}, false)
	assert.Equal(t, "x", th.Style(render.Role(99)).Render("x"))
}
