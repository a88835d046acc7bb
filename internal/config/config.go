// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

// Config is the toasty configuration.
// Loaded from ~/.config/toasty/toasty.toml
type Config struct {
	Display   DisplayConfig   `toml:"display" yaml:"display"`
	Timeouts  TimeoutConfig   `toml:"timeouts" yaml:"timeouts"`
	Behavior  BehaviorConfig  `toml:"behavior" yaml:"behavior"`
	Theme     ThemeConfig     `toml:"theme" yaml:"theme"`
	Mouse     MouseConfig     `toml:"mouse" yaml:"mouse"`
	Clipboard ClipboardConfig `toml:"clipboard" yaml:"clipboard"`
}

// DisplayConfig contains stack geometry settings, in host units.
type DisplayConfig struct {
	Position   string `toml:"position" yaml:"position"`       // "top-right", "bottom-left", etc.
	Padding    int    `toml:"padding" yaml:"padding"`         // Space from the container edge
	Gap        int    `toml:"gap" yaml:"gap"`                 // Gap between stacked toasts
	MaxWidth   int    `toml:"max_width" yaml:"max_width"`     // 0 = container width
	MaxHeight  int    `toml:"max_height" yaml:"max_height"`   // 0 = uncapped
	MinHeight  int    `toml:"min_height" yaml:"min_height"`   // Smallest height a clipped toast is drawn at
	MaxVisible int    `toml:"max_visible" yaml:"max_visible"` // 0 = as many as fit
}

// TimeoutConfig contains timeout settings. Per-level values of 0 fall back
// to Default.
type TimeoutConfig struct {
	Default    Duration `toml:"default" yaml:"default"`
	Info       Duration `toml:"info" yaml:"info"`
	Success    Duration `toml:"success" yaml:"success"`
	Warning    Duration `toml:"warning" yaml:"warning"`
	Error      Duration `toml:"error" yaml:"error"`
	HoverGrace Duration `toml:"hover_grace" yaml:"hover_grace"` // Minimum time left after the pointer leaves
}

// BehaviorConfig contains behavior settings.
type BehaviorConfig struct {
	ExtendOnHover bool `toml:"extend_on_hover" yaml:"extend_on_hover"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name" yaml:"name"`                 // Palette name without .toml extension
	ColorScheme string `toml:"color_scheme" yaml:"color_scheme"` // "system", "light", or "dark"
}

// MouseConfig contains mouse button action mappings.
type MouseConfig struct {
	Left   string `toml:"left" yaml:"left"`
	Middle string `toml:"middle" yaml:"middle"`
	Right  string `toml:"right" yaml:"right"`
}

// ClipboardConfig contains clipboard settings.
type ClipboardConfig struct {
	Command string `toml:"command" yaml:"command"` // e.g. "wl-copy"; empty = auto-detect
}

// MouseAction represents a mouse button action.
type MouseAction string

const (
	MouseActionDismiss  MouseAction = "dismiss"
	MouseActionDoAction MouseAction = "do-action"
	MouseActionCloseAll MouseAction = "close-all"
	MouseActionNone     MouseAction = "none"
)

// ValidMouseActions returns all valid mouse action values.
func ValidMouseActions() []MouseAction {
	return []MouseAction{MouseActionDismiss, MouseActionDoAction, MouseActionCloseAll, MouseActionNone}
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Position:   string(stack.PositionBottomRight),
			Padding:    1,
			Gap:        1,
			MaxWidth:   50,
			MaxHeight:  12,
			MinHeight:  3,
			MaxVisible: 0,
		},
		Timeouts: TimeoutConfig{
			Default:    Duration(5 * time.Second),
			HoverGrace: Duration(2 * time.Second),
		},
		Behavior: BehaviorConfig{
			ExtendOnHover: true,
		},
		Theme: ThemeConfig{
			Name:        theme.DefaultThemeName,
			ColorScheme: string(theme.ColorSchemeSystem),
		},
		Mouse: MouseConfig{
			Left:   string(MouseActionDoAction),
			Middle: string(MouseActionCloseAll),
			Right:  string(MouseActionDismiss),
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "toasty", "toasty.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := stack.Position(c.Display.Position).Alignment(); err != nil {
		return err
	}

	geometry := map[string]int{
		"padding":     c.Display.Padding,
		"gap":         c.Display.Gap,
		"max_width":   c.Display.MaxWidth,
		"max_height":  c.Display.MaxHeight,
		"min_height":  c.Display.MinHeight,
		"max_visible": c.Display.MaxVisible,
	}
	for name, v := range geometry {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	if c.Timeouts.Default.Duration() <= 0 {
		return fmt.Errorf("default timeout must be positive, got %s", c.Timeouts.Default.Duration())
	}
	for _, level := range toast.Levels() {
		if c.levelTimeout(level) < 0 {
			return fmt.Errorf("%s timeout must not be negative", level)
		}
	}
	if c.Timeouts.HoverGrace.Duration() < 0 {
		return fmt.Errorf("hover_grace must not be negative, got %s", c.Timeouts.HoverGrace.Duration())
	}

	validScheme := false
	for _, s := range theme.ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, theme.ValidColorSchemes())
	}

	validActions := make(map[string]bool)
	for _, a := range ValidMouseActions() {
		validActions[string(a)] = true
	}
	for _, action := range []string{c.Mouse.Left, c.Mouse.Middle, c.Mouse.Right} {
		if !validActions[action] {
			return fmt.Errorf("invalid mouse action %q", action)
		}
	}

	return nil
}

func (c *Config) levelTimeout(level toast.Level) time.Duration {
	switch level {
	case toast.LevelSuccess:
		return c.Timeouts.Success.Duration()
	case toast.LevelWarning:
		return c.Timeouts.Warning.Duration()
	case toast.LevelError:
		return c.Timeouts.Error.Duration()
	default:
		return c.Timeouts.Info.Duration()
	}
}

// TimeoutFor returns the auto-dismiss timeout for a toast of the given level.
func (c *Config) TimeoutFor(level toast.Level) time.Duration {
	if d := c.levelTimeout(level); d > 0 {
		return d
	}
	return c.Timeouts.Default.Duration()
}

// HoverGrace returns the hover extension duration.
func (c *Config) HoverGrace() time.Duration {
	return c.Timeouts.HoverGrace.Duration()
}

// StackConfig converts the display section to a layout configuration.
// An invalid position falls back to the default.
func (c *Config) StackConfig() stack.Config {
	alignment, err := stack.Position(c.Display.Position).Alignment()
	if err != nil {
		alignment = stack.DefaultConfig().Alignment
	}
	return stack.Config{
		Alignment:  alignment,
		Padding:    c.Display.Padding,
		Spacing:    c.Display.Gap,
		MaxWidth:   c.Display.MaxWidth,
		MaxHeight:  c.Display.MaxHeight,
		MinHeight:  c.Display.MinHeight,
		MaxVisible: c.Display.MaxVisible,
	}
}

// ColorScheme returns the configured color scheme.
func (c *Config) ColorScheme() theme.ColorScheme {
	return theme.ColorScheme(c.Theme.ColorScheme)
}

// MouseActionFor returns the action bound to a button: "left", "middle" or "right".
func (c *Config) MouseActionFor(button string) MouseAction {
	switch button {
	case "left":
		return MouseAction(c.Mouse.Left)
	case "middle":
		return MouseAction(c.Mouse.Middle)
	case "right":
		return MouseAction(c.Mouse.Right)
	default:
		return MouseActionNone
	}
}
