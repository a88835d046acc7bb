package toast

import (
	"fmt"
	"strings"
	"time"
)

// Level is the styling hint attached to a toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

// LevelNames maps levels to their config/script names.
var LevelNames = map[Level]string{
	LevelInfo:    "info",
	LevelSuccess: "success",
	LevelWarning: "warning",
	LevelError:   "error",
}

// String returns the lowercase name of the level.
func (l Level) String() string {
	if name, ok := LevelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel converts a name like "warning" to a Level.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for level, n := range LevelNames {
		if n == name {
			return level, nil
		}
	}
	return LevelInfo, fmt.Errorf("unknown level %q", s)
}

// Levels returns all levels in severity order.
func Levels() []Level {
	return []Level{LevelInfo, LevelSuccess, LevelWarning, LevelError}
}

// ID identifies a toast within a store. IDs are issued in increasing order
// and never reused.
type ID uint64

// Action is the single optional secondary action of a toast.
// Token is forwarded verbatim to the host on activation.
type Action[M any] struct {
	Label string
	Token M
}

// Notice carries everything the caller provides when pushing a toast.
type Notice[M any] struct {
	Level   Level
	Title   string // Optional
	Message string
	Action  *Action[M]

	// DismissToken is returned when the toast is removed for any reason.
	DismissToken M
}

// Toast is a single active notification.
type Toast[M any] struct {
	ID      ID
	Level   Level
	Title   string
	Message string
	Action  *Action[M]

	DismissToken M

	CreatedAt time.Time
	Expiry    time.Time
}

// HasTitle reports whether the toast carries a title.
func (t Toast[M]) HasTitle() bool {
	return t.Title != ""
}

// Expired reports whether the toast is eligible for removal at now.
func (t Toast[M]) Expired(now time.Time) bool {
	return !now.Before(t.Expiry)
}

// Remaining returns the time left before expiry, never negative.
func (t Toast[M]) Remaining(now time.Time) time.Duration {
	if d := t.Expiry.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Reason describes why a toast left the store.
type Reason int

const (
	// ReasonExpired means the toast timed out.
	ReasonExpired Reason = iota
	// ReasonDismissed means the toast was dismissed by id.
	ReasonDismissed
	// ReasonClosed means the toast was removed by a close-all.
	ReasonClosed
)

// String returns the string representation of Reason.
func (r Reason) String() string {
	switch r {
	case ReasonExpired:
		return "expired"
	case ReasonDismissed:
		return "dismissed"
	case ReasonClosed:
		return "closed"
	default:
		return "unknown"
	}
}
