package toast

import "time"

// Bridge builds host-level dismiss messages from store identifiers, so the
// store never needs to know the host's message type.
type Bridge[M any] struct {
	dismissed func(ID) M
}

// NewBridge creates a Bridge that maps a toast ID to a host message.
func NewBridge[M any](dismissed func(ID) M) Bridge[M] {
	return Bridge[M]{dismissed: dismissed}
}

// Push pushes n into s with a dismiss token built from the new ID.
// Any DismissToken already set on n is replaced.
func (b Bridge[M]) Push(s *Store[M], n Notice[M], timeout time.Duration) ID {
	if b.dismissed == nil {
		return s.Push(n, timeout)
	}
	return s.PushWith(n, timeout, b.dismissed)
}

// Message returns the host message for id.
func (b Bridge[M]) Message(id ID) M {
	var zero M
	if b.dismissed == nil {
		return zero
	}
	return b.dismissed(id)
}
