package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedThemes contains all bundled theme palettes.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// BundledThemes lists all embedded theme names.
var BundledThemes = []string{"catppuccin", "default", "minimal"}

// GetEmbeddedTheme retrieves a bundled palette file by name.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + ".toml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns names of all embedded themes.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return BundledThemes // Fallback to known list
	}

	var themes []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".toml" {
			themes = append(themes, strings.TrimSuffix(name, ext))
		}
	}
	return themes
}

// IsEmbeddedTheme checks if a theme name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}
