package toast

import (
	"log/slog"
	"sync"
	"time"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypePush indicates a toast was added.
	ChangeTypePush ChangeType = iota
	// ChangeTypeRemove indicates a toast was removed.
	ChangeTypeRemove
	// ChangeTypeExtend indicates expiries were pushed back by hover.
	ChangeTypeExtend
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type   ChangeType
	ID     ID     // Zero for ChangeTypeExtend
	Reason Reason // Only meaningful for ChangeTypeRemove
}

// Option configures a Store.
type Option func(*options)

type options struct {
	clock  func() time.Time
	logger *slog.Logger
}

// WithClock sets the time source used by Push. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Store owns the ordered collection of active toasts.
// Order is insertion order and is never re-sorted.
type Store[M any] struct {
	mu     sync.RWMutex
	toasts []Toast[M]
	lastID ID

	clock  func() time.Time
	logger *slog.Logger

	subscribers []chan ChangeEvent
}

// NewStore creates an empty Store.
func NewStore[M any](opts ...Option) *Store[M] {
	o := options{
		clock:  time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[M]{
		toasts: make([]Toast[M], 0),
		clock:  o.clock,
		logger: o.logger,
	}
}

// Push appends a toast that expires timeout from now and returns its ID.
func (s *Store[M]) Push(n Notice[M], timeout time.Duration) ID {
	return s.push(n, timeout, nil)
}

// PushWith is like Push but derives the dismiss token from the newly
// allocated ID. It is what lets a Bridge build host messages that name the toast.
func (s *Store[M]) PushWith(n Notice[M], timeout time.Duration, dismiss func(ID) M) ID {
	return s.push(n, timeout, dismiss)
}

func (s *Store[M]) push(n Notice[M], timeout time.Duration, dismiss func(ID) M) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	id := s.lastID
	now := s.clock()

	token := n.DismissToken
	if dismiss != nil {
		token = dismiss(id)
	}

	s.toasts = append(s.toasts, Toast[M]{
		ID:           id,
		Level:        n.Level,
		Title:        n.Title,
		Message:      n.Message,
		Action:       n.Action,
		DismissToken: token,
		CreatedAt:    now,
		Expiry:       now.Add(timeout),
	})

	s.logger.Debug("pushed toast",
		"id", id,
		"level", n.Level,
		"timeout", timeout,
		"active", len(s.toasts),
	)
	s.notifyChange(ChangeEvent{Type: ChangeTypePush, ID: id})

	return id
}

// Dismiss removes the toast with the given id and returns its dismiss token.
// Removing an absent id is a no-op and returns false.
func (s *Store[M]) Dismiss(id ID) (M, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero M
	idx := s.indexLocked(id)
	if idx < 0 {
		return zero, false
	}

	token := s.toasts[idx].DismissToken
	s.toasts = append(s.toasts[:idx], s.toasts[idx+1:]...)

	s.logger.Debug("dismissed toast", "id", id, "active", len(s.toasts))
	s.notifyChange(ChangeEvent{Type: ChangeTypeRemove, ID: id, Reason: ReasonDismissed})

	return token, true
}

// DismissAll removes every toast and returns their dismiss tokens in store order.
func (s *Store[M]) DismissAll() []M {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.toasts) == 0 {
		return nil
	}

	tokens := make([]M, 0, len(s.toasts))
	for _, t := range s.toasts {
		tokens = append(tokens, t.DismissToken)
		s.notifyChange(ChangeEvent{Type: ChangeTypeRemove, ID: t.ID, Reason: ReasonClosed})
	}
	s.toasts = nil

	s.logger.Debug("closed all toasts", "count", len(tokens))
	return tokens
}

// Expire removes every toast whose expiry is at or before now, in store
// order, and returns their dismiss tokens in removal order.
func (s *Store[M]) Expire(now time.Time) []M {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tokens []M
	kept := s.toasts[:0]
	for _, t := range s.toasts {
		if t.Expired(now) {
			tokens = append(tokens, t.DismissToken)
			s.notifyChange(ChangeEvent{Type: ChangeTypeRemove, ID: t.ID, Reason: ReasonExpired})
			continue
		}
		kept = append(kept, t)
	}
	// Clear the tail so removed tokens are not retained by the backing array.
	var zero Toast[M]
	for i := len(kept); i < len(s.toasts); i++ {
		s.toasts[i] = zero
	}
	s.toasts = kept

	if len(tokens) > 0 {
		s.logger.Debug("expired toasts", "count", len(tokens), "active", len(s.toasts))
	}
	return tokens
}

// ExtendAll raises every expiry to at least now+grace. Expiries already
// further out are left alone.
func (s *Store[M]) ExtendAll(now time.Time, grace time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	floor := now.Add(grace)
	extended := 0
	for i := range s.toasts {
		if s.toasts[i].Expiry.Before(floor) {
			s.toasts[i].Expiry = floor
			extended++
		}
	}

	if extended > 0 {
		s.logger.Debug("extended toasts on hover", "count", extended, "until", floor)
		s.notifyChange(ChangeEvent{Type: ChangeTypeExtend})
	}
}

// NextWakeup returns the earliest expiry among active toasts.
// The second result is false when the store is empty.
func (s *Store[M]) NextWakeup() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.toasts) == 0 {
		return time.Time{}, false
	}

	next := s.toasts[0].Expiry
	for _, t := range s.toasts[1:] {
		if t.Expiry.Before(next) {
			next = t.Expiry
		}
	}
	return next, true
}

// Active returns a snapshot of the active toasts in insertion order.
// The snapshot is not affected by later mutations.
func (s *Store[M]) Active() []Toast[M] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Toast[M], len(s.toasts))
	copy(out, s.toasts)
	return out
}

// Get returns the toast with the given id.
func (s *Store[M]) Get(id ID) (Toast[M], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexLocked(id); idx >= 0 {
		return s.toasts[idx], true
	}
	return Toast[M]{}, false
}

// Activate returns the action token of the toast with the given id.
// The toast stays active; hosts usually dismiss it afterwards.
func (s *Store[M]) Activate(id ID) (M, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero M
	idx := s.indexLocked(id)
	if idx < 0 || s.toasts[idx].Action == nil {
		return zero, false
	}
	return s.toasts[idx].Action.Token, true
}

// Len returns the number of active toasts.
func (s *Store[M]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.toasts)
}

// Subscribe returns a channel that receives store change events.
// Events are dropped for subscribers that fall behind.
func (s *Store[M]) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Store[M]) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// indexLocked returns the slice index of id, or -1. Caller must hold the lock.
func (s *Store[M]) indexLocked(id ID) int {
	for i := range s.toasts {
		if s.toasts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store[M]) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}
