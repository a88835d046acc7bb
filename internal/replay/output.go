package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Formatter writes a replay trace.
type Formatter interface {
	Format(w io.Writer, events []Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
)

// ValidFormats returns all output formats.
func ValidFormats() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatJSON:
		return JSONFormatter{}, nil
	case FormatYAML:
		return YAMLFormatter{}, nil
	case FormatPlain, "":
		return PlainFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %v)", format, ValidFormats())
	}
}

// JSONFormatter writes the trace as an indented JSON array.
type JSONFormatter struct{}

func (JSONFormatter) Format(w io.Writer, events []Event) error {
	if events == nil {
		events = []Event{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(events)
}

// YAMLFormatter writes the trace as a YAML sequence.
type YAMLFormatter struct{}

func (YAMLFormatter) Format(w io.Writer, events []Event) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(events); err != nil {
		return err
	}
	return encoder.Close()
}

// PlainFormatter writes one line per event.
type PlainFormatter struct{}

func (PlainFormatter) Format(w io.Writer, events []Event) error {
	for _, ev := range events {
		if _, err := fmt.Fprintln(w, formatLine(ev)); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single event: [offset] type key details
func formatLine(ev Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%8s] %-9s", ev.At, ev.Type)

	if ev.Key != "" {
		fmt.Fprintf(&sb, " %s", ev.Key)
	}

	switch ev.Type {
	case EventPushed:
		fmt.Fprintf(&sb, " (%s, expires %s)", ev.Level, relative(ev.At, ev.Expiry))
	case EventExtended:
		fmt.Fprintf(&sb, " until at least %s", relative(ev.At, ev.Expiry))
	case EventActivated:
		fmt.Fprintf(&sb, " -> %s", ev.Token)
	case EventLayout:
		fmt.Fprintf(&sb, " %d shown, %d hidden", len(ev.Placements), ev.Hidden)
		for _, pl := range ev.Placements {
			fmt.Fprintf(&sb, "\n           %s %dx%d+%d+%d", pl.Key, pl.Width, pl.Height, pl.X, pl.Y)
			if pl.Clipped {
				sb.WriteString(" clipped")
			}
		}
	}

	return sb.String()
}

// relative describes then as seen from now, e.g. "5 seconds from now".
func relative(now, then Offset) string {
	base := time.Unix(0, 0)
	return humanize.RelTime(base.Add(time.Duration(then)), base.Add(time.Duration(now)), "ago", "from now")
}
