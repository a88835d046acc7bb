package stack

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Config controls how the stack is arranged.
type Config struct {
	Alignment Alignment
	Padding   int // Space between the container edge and the stack
	Spacing   int // Gap between stacked toasts
	MaxWidth  int // Per-toast width cap (0 = container width)
	MaxHeight int // Per-toast height cap (0 = uncapped)
	MinHeight int // Smallest height a clipped toast may be drawn at

	// MaxVisible caps the number of placements (0 = unlimited).
	// Toasts beyond the cap are skipped like any other overflow.
	MaxVisible int
}

// DefaultConfig returns the default stack configuration.
func DefaultConfig() Config {
	return Config{
		Alignment: Alignment{Horizontal: Right, Vertical: Bottom},
		Padding:   1,
		Spacing:   1,
		MaxWidth:  50,
		MaxHeight: 12,
		MinHeight: 3,
	}
}

// Item is a toast together with its host-measured size.
type Item struct {
	ID   toast.ID
	Size Size
}

// Placement is where a toast should be drawn.
type Placement struct {
	ID    toast.ID
	Index int // Index into the items passed to Layout
	Rect  Rect

	// Clipped is set when the toast was given less height than it measured.
	Clipped bool
}

// Layout arranges items inside container. Items must be in store order
// (oldest first); the newest item is placed nearest the anchored edge.
// Items that do not fit are absent from the result.
func Layout(container Rect, cfg Config, items []Item) []Placement {
	if len(items) == 0 {
		return nil
	}

	inner := Rect{
		X:      cfg.Padding,
		Y:      cfg.Padding,
		Width:  container.Width - 2*cfg.Padding,
		Height: container.Height - 2*cfg.Padding,
	}
	if inner.Empty() {
		return nil
	}

	var placements []Placement
	offset := 0
	for i := len(items) - 1; i >= 0; i-- {
		if cfg.MaxVisible > 0 && len(placements) >= cfg.MaxVisible {
			break
		}

		size := clampSize(items[i].Size, cfg, inner.Width)
		if size.Width <= 0 || size.Height <= 0 {
			continue
		}

		height := size.Height
		remaining := inner.Height - offset
		clipped := false
		if height > remaining {
			height = remaining
			clipped = true
			// Too little room left to draw anything useful: everything
			// older than this stays in the store but off screen.
			if height < min(cfg.MinHeight, size.Height) || height <= 0 {
				break
			}
		}

		r := Rect{
			X:      alignX(cfg.Alignment.Horizontal, inner, size.Width),
			Width:  size.Width,
			Height: height,
		}
		if cfg.Alignment.IsBottom() {
			r.Y = inner.Y + inner.Height - offset - height
		} else {
			r.Y = inner.Y + offset
		}

		placements = append(placements, Placement{
			ID:      items[i].ID,
			Index:   i,
			Rect:    r.Translate(container.X, container.Y),
			Clipped: clipped,
		})

		offset += height + cfg.Spacing
	}

	return placements
}

// clampSize applies the per-toast caps and the available width.
func clampSize(s Size, cfg Config, availWidth int) Size {
	if cfg.MaxWidth > 0 && s.Width > cfg.MaxWidth {
		s.Width = cfg.MaxWidth
	}
	if s.Width > availWidth {
		s.Width = availWidth
	}
	if cfg.MaxHeight > 0 && s.Height > cfg.MaxHeight {
		s.Height = cfg.MaxHeight
	}
	return s
}

func alignX(h Horizontal, inner Rect, width int) int {
	switch h {
	case Left:
		return inner.X
	case Center:
		return inner.X + (inner.Width-width)/2
	default:
		return inner.X + inner.Width - width
	}
}

// HitTest returns the placement containing p, if any.
func HitTest(placements []Placement, p Point) (Placement, bool) {
	for _, pl := range placements {
		if pl.Rect.Contains(p) {
			return pl, true
		}
	}
	return Placement{}, false
}

// Bounds returns the rectangle covering all placements.
func Bounds(placements []Placement) Rect {
	var r Rect
	for _, pl := range placements {
		r = r.Union(pl.Rect)
	}
	return r
}

// Engine holds a stack configuration that can be swapped at runtime.
type Engine struct {
	mu     sync.RWMutex
	config Config
	logger *slog.Logger
}

// NewEngine creates a layout engine.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{config: cfg, logger: logger}
}

// Layout arranges items with the engine's current configuration.
func (e *Engine) Layout(container Rect, items []Item) []Placement {
	e.mu.RLock()
	cfg := e.config
	e.mu.RUnlock()

	placements := Layout(container, cfg, items)
	if skipped := len(items) - len(placements); skipped > 0 {
		e.logger.Debug("toast stack overflow",
			"items", len(items),
			"placed", len(placements),
			"skipped", skipped,
		)
	}
	return placements
}

// Config returns the current configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

// UpdateConfig replaces the configuration used by later layouts.
func (e *Engine) UpdateConfig(cfg Config) {
	e.mu.Lock()
	old := e.config
	e.config = cfg
	e.mu.Unlock()

	e.logger.Debug("stack config updated",
		"old_position", old.Alignment.Position(),
		"new_position", cfg.Alignment.Position(),
	)
}
