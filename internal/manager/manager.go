// Package manager owns a toast store and drives it from host signals.
//
// A host calls Push and Dismiss in response to its own events, calls Tick
// whenever time may have advanced (with the latest pointer sample), and
// calls Frame once per redraw to get an immutable snapshot plus placements.
package manager

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/toast"
)

// Option configures a Manager.
type Option[M any] func(*Manager[M])

// WithClock sets the time source. Defaults to time.Now.
func WithClock[M any](clock func() time.Time) Option[M] {
	return func(m *Manager[M]) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger[M any](logger *slog.Logger) Option[M] {
	return func(m *Manager[M]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDismissMessage derives each toast's dismiss token from its ID.
func WithDismissMessage[M any](dismissed func(toast.ID) M) Option[M] {
	return func(m *Manager[M]) {
		m.bridge = toast.NewBridge(dismissed)
	}
}

// Frame is a read-only view of one layout pass.
type Frame[M any] struct {
	Toasts     []toast.Toast[M] // Snapshot of active toasts, store order
	Placements []stack.Placement
}

// Toast returns the toast drawn at p.
func (f Frame[M]) Toast(p stack.Placement) toast.Toast[M] {
	return f.Toasts[p.Index]
}

// Hidden returns the number of active toasts that did not fit.
func (f Frame[M]) Hidden() int {
	return len(f.Toasts) - len(f.Placements)
}

// Manager owns the toast store. It is the only place toast state changes.
type Manager[M any] struct {
	mu         sync.Mutex
	config     *config.Config
	store      *toast.Store[M]
	engine     *stack.Engine
	scheduler  *toast.Scheduler
	bridge     toast.Bridge[M]
	placements []stack.Placement // Last rendered placements, for hover hit-testing

	clock  func() time.Time
	logger *slog.Logger
}

// New creates a Manager. A nil cfg uses config.DefaultConfig().
func New[M any](cfg *config.Config, opts ...Option[M]) *Manager[M] {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Manager[M]{
		config: cfg,
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.store = toast.NewStore[M](toast.WithClock(m.clock), toast.WithLogger(m.logger))
	m.engine = stack.NewEngine(cfg.StackConfig(), m.logger)
	m.scheduler = toast.NewScheduler(m.store)
	return m
}

// Push adds a toast using the configured timeout for its level.
func (m *Manager[M]) Push(n toast.Notice[M]) toast.ID {
	return m.PushTimeout(n, m.Config().TimeoutFor(n.Level))
}

// PushTimeout adds a toast with an explicit timeout.
func (m *Manager[M]) PushTimeout(n toast.Notice[M], timeout time.Duration) toast.ID {
	return m.bridge.Push(m.store, n, timeout)
}

// Dismiss removes a toast and returns its dismiss token. Unknown ids are ignored.
func (m *Manager[M]) Dismiss(id toast.ID) (M, bool) {
	token, ok := m.store.Dismiss(id)
	if ok {
		m.forget(id)
	}
	return token, ok
}

// DismissAll removes every toast and returns their dismiss tokens.
func (m *Manager[M]) DismissAll() []M {
	tokens := m.store.DismissAll()

	m.mu.Lock()
	m.placements = nil
	m.mu.Unlock()

	return tokens
}

// Activate returns the action token of a toast, if it has one.
func (m *Manager[M]) Activate(id toast.ID) (M, bool) {
	return m.store.Activate(id)
}

// Tick applies one time sample. If pointer is over a rendered toast the
// stack is extended first, so a hovered toast never expires in the same
// tick that would have saved it. Returns dismiss tokens of expired toasts.
func (m *Manager[M]) Tick(now time.Time, pointer *stack.Point) []M {
	cfg := m.Config()

	if pointer != nil && cfg.Behavior.ExtendOnHover && m.Hovering(*pointer) {
		m.store.ExtendAll(now, cfg.HoverGrace())
	}

	tokens := m.store.Expire(now)
	if len(tokens) > 0 {
		m.prunePlacements()
	}
	return tokens
}

// Hovering reports whether p is over a currently rendered toast.
func (m *Manager[M]) Hovering(p stack.Point) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := stack.HitTest(m.placements, p)
	return ok
}

// At returns the rendered toast under p.
func (m *Manager[M]) At(p stack.Point) (toast.ID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pl, ok := stack.HitTest(m.placements, p)
	return pl.ID, ok
}

// Frame snapshots the active toasts and lays them out inside container.
// measure reports each toast's natural size in host units.
func (m *Manager[M]) Frame(container stack.Rect, measure func(toast.Toast[M]) stack.Size) Frame[M] {
	snapshot := m.store.Active()
	if len(snapshot) == 0 {
		m.mu.Lock()
		m.placements = nil
		m.mu.Unlock()
		return Frame[M]{}
	}

	items := make([]stack.Item, len(snapshot))
	for i, t := range snapshot {
		items[i] = stack.Item{ID: t.ID, Size: measure(t)}
	}
	placements := m.engine.Layout(container, items)

	m.mu.Lock()
	m.placements = placements
	m.mu.Unlock()

	return Frame[M]{Toasts: snapshot, Placements: placements}
}

// NextWakeup returns how long the host should wait before calling Tick.
// The second result is false when there is nothing new to schedule.
func (m *Manager[M]) NextWakeup(now time.Time) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduler.Next(now)
}

// NextExpiry returns the earliest expiry among active toasts.
func (m *Manager[M]) NextExpiry() (time.Time, bool) {
	return m.store.NextWakeup()
}

// WakeupFired tells the manager the scheduled wake-up was delivered.
func (m *Manager[M]) WakeupFired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduler.Fired()
}

// Active returns a snapshot of the active toasts.
func (m *Manager[M]) Active() []toast.Toast[M] {
	return m.store.Active()
}

// Get returns the active toast with the given id.
func (m *Manager[M]) Get(id toast.ID) (toast.Toast[M], bool) {
	return m.store.Get(id)
}

// Len returns the number of active toasts.
func (m *Manager[M]) Len() int {
	return m.store.Len()
}

// Subscribe returns a channel of store change events.
func (m *Manager[M]) Subscribe() <-chan toast.ChangeEvent {
	return m.store.Subscribe()
}

// Unsubscribe closes a channel returned by Subscribe.
func (m *Manager[M]) Unsubscribe(ch <-chan toast.ChangeEvent) {
	m.store.Unsubscribe(ch)
}

// Config returns the current configuration.
func (m *Manager[M]) Config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// UpdateConfig swaps in a new configuration. Existing toasts keep their
// expiries; new timeouts apply to later pushes.
func (m *Manager[M]) UpdateConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()

	m.engine.UpdateConfig(cfg.StackConfig())
	m.logger.Debug("toast manager config updated",
		"position", cfg.Display.Position,
		"default_timeout", cfg.Timeouts.Default.Duration(),
	)
}

// Now returns the manager's current time.
func (m *Manager[M]) Now() time.Time {
	return m.clock()
}

// forget drops a removed toast from the hover placements.
func (m *Manager[M]) forget(id toast.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.placements[:0:0]
	for _, p := range m.placements {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	m.placements = kept
}

// prunePlacements drops placements of toasts no longer in the store.
func (m *Manager[M]) prunePlacements() {
	live := make(map[toast.ID]bool)
	for _, t := range m.store.Active() {
		live[t.ID] = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.placements[:0:0]
	for _, p := range m.placements {
		if live[p.ID] {
			kept = append(kept, p)
		}
	}
	m.placements = kept
}
