package theme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/toast"
)

func TestGetEmbeddedTheme(t *testing.T) {
	for _, name := range BundledThemes {
		data, found := GetEmbeddedTheme(name)
		require.True(t, found, "%s theme should be found", name)

		p, err := ParsePalette(data)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.NotEmpty(t, p.Dark.Info)
		assert.NotEmpty(t, p.Light.Error)
	}

	data, found := GetEmbeddedTheme("nonexistent")
	assert.False(t, found)
	assert.Empty(t, data)
}

func TestListEmbeddedThemes(t *testing.T) {
	assert.ElementsMatch(t, BundledThemes, ListEmbeddedThemes())
	assert.True(t, IsEmbeddedTheme("catppuccin"))
	assert.False(t, IsEmbeddedTheme("solarized"))
}

func TestParsePalette_Invalid(t *testing.T) {
	_, err := ParsePalette([]byte("name = "))
	assert.Error(t, err)

	_, err = ParsePalette([]byte(`name = "empty"`))
	assert.Error(t, err)
}

func TestTheme_ColorScheme(t *testing.T) {
	th, err := Load("", "default", ColorSchemeLight)
	require.NoError(t, err)
	assert.False(t, th.Dark())
	assert.Equal(t, th.Palette.Light, th.Colors())

	th.Scheme = ColorSchemeDark
	assert.True(t, th.Dark())
	assert.Equal(t, th.Palette.Dark, th.Colors())

	orig := hasDarkBackground
	defer func() { hasDarkBackground = orig }()
	hasDarkBackground = func() bool { return false }
	th.Scheme = ColorSchemeSystem
	assert.False(t, th.Dark())
}

func TestLoad_UserOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	content := `
name = "default"

[dark]
text = "#ffffff"
info = "#000001"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.toml"), []byte(content), 0644))

	th, err := Load(dir, "default", ColorSchemeDark)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "default.toml"), th.Path)
	assert.Equal(t, "#000001", th.Colors().Info)
	assert.False(t, th.IsDefault)
}

func TestLoad_Unknown(t *testing.T) {
	_, err := Load(t.TempDir(), "nope", ColorSchemeDark)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTheme))
}

func TestLoad_EmptyNameIsDefault(t *testing.T) {
	th, err := Load("", "", ColorSchemeDark)
	require.NoError(t, err)
	assert.Equal(t, DefaultThemeName, th.Name)
	assert.True(t, th.IsDefault)
}

func TestLoadFile_NameFromFilename(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocean.toml")
	require.NoError(t, os.WriteFile(path, []byte("[light]\ntext = \"#123456\"\n"), 0644))

	th, err := LoadFile(path, ColorSchemeLight)
	require.NoError(t, err)
	assert.Equal(t, "ocean", th.Name)
}

func TestListAvailableThemes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ocean.toml"), []byte("[dark]\ntext = \"1\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minimal.toml"), []byte("[dark]\ntext = \"1\"\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	themes, err := ListAvailableThemes(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(themes))
	for _, th := range themes {
		names = append(names, th.Name)
	}
	assert.ElementsMatch(t, []string{"catppuccin", "default", "minimal", "ocean"}, names)

	missing, err := ListAvailableThemes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Len(t, missing, len(BundledThemes))
}

func TestResolve(t *testing.T) {
	th, err := Load("", "catppuccin", ColorSchemeDark)
	require.NoError(t, err)
	c := th.Colors()

	tests := []struct {
		level  toast.Level
		border string
	}{
		{toast.LevelInfo, c.Info},
		{toast.LevelSuccess, c.Success},
		{toast.LevelWarning, c.Warning},
		{toast.LevelError, c.Error},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			s := DefaultResolver.Resolve(tt.level, th)
			assert.Equal(t, lipgloss.Color(tt.border), s.Border)
			assert.Equal(t, lipgloss.Color(c.Text), s.Text)
			assert.Equal(t, lipgloss.Color(c.Background), s.Background)
		})
	}
}

func TestResolve_NilThemeUsesDefault(t *testing.T) {
	s := Resolve(toast.LevelError, nil)
	assert.Equal(t, lipgloss.Color(NewDefaultTheme(ColorSchemeDark).Palette.Dark.Error), s.Border)
}

func TestResolverFunc(t *testing.T) {
	r := ResolverFunc(func(level toast.Level, _ *Theme) Style {
		return Style{Border: lipgloss.Color(level.String())}
	})
	assert.Equal(t, lipgloss.Color("warning"), r.Resolve(toast.LevelWarning, nil).Border)
}
