package replay

import (
	"context"
	"log/slog"
	"time"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/manager"
	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/toast"
)

// EventType identifies a trace event.
type EventType string

const (
	EventPushed    EventType = "pushed"
	EventExtended  EventType = "extended"
	EventExpired   EventType = "expired"
	EventDismissed EventType = "dismissed"
	EventClosed    EventType = "closed"
	EventActivated EventType = "activated"
	EventLayout    EventType = "layout"
)

// Event is one entry of a replay trace. Times are offsets from the start
// of the script.
type Event struct {
	At         Offset           `json:"at" yaml:"at"`
	Type       EventType        `json:"type" yaml:"type"`
	Key        string           `json:"key,omitempty" yaml:"key,omitempty"`
	ID         toast.ID         `json:"id,omitempty" yaml:"id,omitempty"`
	Level      string           `json:"level,omitempty" yaml:"level,omitempty"`
	Token      string           `json:"token,omitempty" yaml:"token,omitempty"`
	Expiry     Offset           `json:"expiry,omitempty" yaml:"expiry,omitempty"`
	Placements []PlacementEvent `json:"placements,omitempty" yaml:"placements,omitempty"`
	Hidden     int              `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

// Offset is a time relative to the start of a script.
type Offset time.Duration

func (o Offset) String() string {
	return time.Duration(o).String()
}

// MarshalText renders the offset like "1.5s".
func (o Offset) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// PlacementEvent is a rendered toast in a layout event.
type PlacementEvent struct {
	Key     string `json:"key" yaml:"key"`
	X       int    `json:"x" yaml:"x"`
	Y       int    `json:"y" yaml:"y"`
	Width   int    `json:"width" yaml:"width"`
	Height  int    `json:"height" yaml:"height"`
	Clipped bool   `json:"clipped,omitempty" yaml:"clipped,omitempty"`
}

// Options configures a replay.
type Options struct {
	Config    *config.Config // nil uses config.DefaultConfig()
	Container stack.Rect     // Area the stack is laid out in
	ToastSize stack.Size     // Size of toasts that do not give one

	// Drain keeps running after the last step, waking at each next expiry
	// with the pointer gone, until no toasts are left.
	Drain bool

	Logger *slog.Logger
}

// DefaultOptions returns options for an 80x24 terminal.
func DefaultOptions() Options {
	return Options{
		Container: stack.Rect{Width: 80, Height: 24},
		ToastSize: stack.Size{Width: 40, Height: 4},
		Drain:     true,
	}
}

// origin is the simulated instant a script starts at.
var origin = time.Unix(0, 0).UTC()

type player struct {
	opts    Options
	now     time.Time
	mgr     *manager.Manager[string]
	pointer *stack.Point
	keys    map[string]toast.ID
	byID    map[toast.ID]string
	sizes   map[toast.ID]stack.Size
	frame   manager.Frame[string]
	events  []Event
}

// Run replays steps and returns the resulting trace. Steps should come from
// ReadScript or have been checked with Validate.
func Run(ctx context.Context, steps []Step, opts Options) ([]Event, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ToastSize.Width <= 0 || opts.ToastSize.Height <= 0 {
		opts.ToastSize = DefaultOptions().ToastSize
	}

	p := &player{
		opts:  opts,
		now:   origin,
		keys:  make(map[string]toast.ID),
		byID:  make(map[toast.ID]string),
		sizes: make(map[toast.ID]stack.Size),
	}
	p.mgr = manager.New[string](opts.Config,
		manager.WithClock[string](func() time.Time { return p.now }),
		manager.WithLogger[string](opts.Logger),
	)

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return p.events, err
		}
		p.now = origin.Add(step.At.Duration())
		p.step(step)
	}

	if opts.Drain {
		if err := p.drain(ctx); err != nil {
			return p.events, err
		}
	}

	opts.Logger.Debug("replay finished",
		"steps", len(steps),
		"events", len(p.events),
		"remaining", p.mgr.Len(),
	)
	return p.events, nil
}

func (p *player) step(step Step) {
	switch step.Op {
	case OpHover:
		p.pointer = &stack.Point{X: step.X, Y: step.Y}
	case OpLeave:
		p.pointer = nil
	}

	p.tick()

	switch step.Op {
	case OpPush:
		p.push(step)
	case OpDismiss:
		if id, ok := p.keys[step.Key]; ok {
			if token, ok := p.mgr.Dismiss(id); ok {
				p.emit(Event{Type: EventDismissed, Key: token, ID: id})
			}
		}
	case OpActivate:
		if id, ok := p.keys[step.Key]; ok {
			if token, ok := p.mgr.Activate(id); ok {
				p.emit(Event{Type: EventActivated, Key: step.Key, ID: id, Token: token})
			}
		}
	case OpCloseAll:
		for _, token := range p.mgr.DismissAll() {
			p.emit(Event{Type: EventClosed, Key: token, ID: p.keys[token]})
		}
	}

	// Redraw, so the next hover sample tests against current placements.
	p.redraw()

	if step.Op == OpLayout {
		p.emitLayout()
	}
}

// tick applies the current time and pointer sample to the manager.
func (p *player) tick() {
	if p.pointer != nil && p.mgr.Config().Behavior.ExtendOnHover && p.mgr.Hovering(*p.pointer) {
		p.emit(Event{Type: EventExtended, Expiry: p.offset(p.now.Add(p.mgr.Config().HoverGrace()))})
	}
	for _, token := range p.mgr.Tick(p.now, p.pointer) {
		p.emit(Event{Type: EventExpired, Key: token, ID: p.keys[token]})
	}
}

func (p *player) push(step Step) {
	n := toast.Notice[string]{
		Level:        step.level(),
		Title:        step.Title,
		Message:      step.Message,
		DismissToken: step.Key,
	}
	if step.Action != "" {
		n.Action = &toast.Action[string]{Label: step.Action, Token: "activate:" + step.Key}
	}

	var id toast.ID
	if step.Timeout > 0 {
		id = p.mgr.PushTimeout(n, step.Timeout.Duration())
	} else {
		id = p.mgr.Push(n)
	}

	size := p.opts.ToastSize
	if step.Width > 0 {
		size.Width = step.Width
	}
	if step.Height > 0 {
		size.Height = step.Height
	}

	p.keys[step.Key] = id
	p.byID[id] = step.Key
	p.sizes[id] = size

	ev := Event{Type: EventPushed, Key: step.Key, ID: id, Level: n.Level.String()}
	if t, ok := p.mgr.Get(id); ok {
		ev.Expiry = p.offset(t.Expiry)
	}
	p.emit(ev)
}

func (p *player) redraw() {
	p.frame = p.mgr.Frame(p.opts.Container, func(t toast.Toast[string]) stack.Size {
		return p.sizes[t.ID]
	})
}

func (p *player) emitLayout() {
	ev := Event{Type: EventLayout, Hidden: p.frame.Hidden()}
	for _, pl := range p.frame.Placements {
		ev.Placements = append(ev.Placements, PlacementEvent{
			Key:     p.byID[pl.ID],
			X:       pl.Rect.X,
			Y:       pl.Rect.Y,
			Width:   pl.Rect.Width,
			Height:  pl.Rect.Height,
			Clipped: pl.Clipped,
		})
	}
	p.emit(ev)
}

// drain wakes the manager at each next expiry until it is empty.
func (p *player) drain(ctx context.Context) error {
	p.pointer = nil
	p.mgr.WakeupFired()

	for p.mgr.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := p.mgr.NextWakeup(p.now)
		if !ok {
			break
		}
		p.now = p.now.Add(wait)
		p.mgr.WakeupFired()
		p.tick()
		p.redraw()
	}
	return nil
}

func (p *player) emit(ev Event) {
	ev.At = p.offset(p.now)
	p.events = append(p.events, ev)
}

func (p *player) offset(t time.Time) Offset {
	return Offset(t.Sub(origin))
}
