package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownTheme is returned when a theme is neither bundled nor in the
// user's themes directory.
var ErrUnknownTheme = errors.New("unknown theme")

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Colors is one variant (light or dark) of a palette.
// Values are anything lipgloss.Color accepts: "#rrggbb", an ANSI index, or
// empty for the terminal default.
type Colors struct {
	Text       string `toml:"text"`
	Background string `toml:"background"`
	Muted      string `toml:"muted"`
	Info       string `toml:"info"`
	Success    string `toml:"success"`
	Warning    string `toml:"warning"`
	Error      string `toml:"error"`
}

// Palette is the on-disk theme format.
type Palette struct {
	Name  string `toml:"name"`
	Light Colors `toml:"light"`
	Dark  Colors `toml:"dark"`
}

// ParsePalette decodes a TOML palette.
func ParsePalette(data []byte) (Palette, error) {
	var p Palette
	if err := toml.Unmarshal(data, &p); err != nil {
		return Palette{}, fmt.Errorf("failed to parse palette: %w", err)
	}
	if p.Light.Text == "" && p.Dark.Text == "" {
		return Palette{}, errors.New("palette defines no text color")
	}
	return p, nil
}

// Theme is a palette with a chosen color scheme.
type Theme struct {
	Name      string
	Path      string // Empty for bundled themes
	Palette   Palette
	Scheme    ColorScheme
	IsDefault bool
}

// hasDarkBackground is swapped out in tests.
var hasDarkBackground = lipgloss.HasDarkBackground

// Dark reports whether the dark variant is in use.
func (t *Theme) Dark() bool {
	switch t.Scheme {
	case ColorSchemeDark:
		return true
	case ColorSchemeLight:
		return false
	default:
		return hasDarkBackground()
	}
}

// Colors returns the active palette variant.
func (t *Theme) Colors() Colors {
	if t.Dark() {
		return t.Palette.Dark
	}
	return t.Palette.Light
}

// NewDefaultTheme creates the bundled default theme.
func NewDefaultTheme(scheme ColorScheme) *Theme {
	data, _ := GetEmbeddedTheme(DefaultThemeName)
	p, _ := ParsePalette(data)
	return &Theme{
		Name:      DefaultThemeName,
		Palette:   p,
		Scheme:    scheme,
		IsDefault: true,
	}
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toasty", "themes"), nil
}

// Load loads a theme by name.
// Theme resolution order:
//  1. dir (usually ThemesDir), so users can override bundled palettes
//  2. Embedded/bundled themes
func Load(dir, name string, scheme ColorScheme) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}

	if dir != "" {
		path := filepath.Join(dir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path, scheme)
		}
	}

	data, found := GetEmbeddedTheme(name)
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, name)
	}
	p, err := ParsePalette(data)
	if err != nil {
		return nil, fmt.Errorf("bundled theme %q: %w", name, err)
	}

	return &Theme{
		Name:      name,
		Palette:   p,
		Scheme:    scheme,
		IsDefault: name == DefaultThemeName,
	}, nil
}

// LoadFile loads a palette from a TOML file.
func LoadFile(path string, scheme ColorScheme) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme: %w", err)
	}

	p, err := ParsePalette(data)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", path, err)
	}

	name := p.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &Theme{
		Name:    name,
		Path:    path,
		Palette: p,
		Scheme:  scheme,
	}, nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool
}

// ListAvailableThemes lists bundled themes followed by user themes in dir.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	seen := make(map[string]bool)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		seen[name] = true
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if seen[name] {
			continue
		}
		seen[name] = true
		themes = append(themes, ThemeInfo{
			Name: name,
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	return themes, nil
}
