// Package replay drives a toast manager from a recorded script.
//
// A script is JSON lines, one step per line. Blank lines and lines
// starting with '#' are ignored. Every step has an "at" offset from the
// start of the script ("1.5s", "250ms" or integer milliseconds as a
// string) and an "op":
//
//	{"at": "0s", "op": "push", "key": "build", "level": "success", "message": "Build finished", "action": "Open"}
//	{"at": "2s", "op": "hover", "x": 60, "y": 20}
//	{"at": "3s", "op": "leave"}
//	{"at": "4s", "op": "dismiss", "key": "build"}
//	{"at": "9s", "op": "layout"}
//
// Time is simulated, so a replay produces the same trace on every run.
package replay

import (
	"bufio"
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/toast"
)

var (
	// ErrUnknownOp is returned for a step whose op is not recognised.
	ErrUnknownOp = errors.New("unknown op")
	// ErrInvalidEvent is returned for a step that is malformed or out of order.
	ErrInvalidEvent = errors.New("invalid event")
)

// ScriptError reports the script line a step failed on.
type ScriptError struct {
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Op is a script operation.
type Op string

const (
	OpPush     Op = "push"
	OpDismiss  Op = "dismiss"
	OpActivate Op = "activate"
	OpCloseAll Op = "close-all"
	OpHover    Op = "hover"
	OpLeave    Op = "leave"
	OpTick     Op = "tick"
	OpLayout   Op = "layout"
)

// ValidOps returns all script operations.
func ValidOps() []Op {
	return []Op{OpPush, OpDismiss, OpActivate, OpCloseAll, OpHover, OpLeave, OpTick, OpLayout}
}

// Step is one scripted host event.
type Step struct {
	At config.Duration `json:"at"`
	Op Op              `json:"op"`

	// push, dismiss, activate
	Key string `json:"key,omitempty"`

	// push
	Level   string          `json:"level,omitempty"`
	Title   string          `json:"title,omitempty"`
	Message string          `json:"message,omitempty"`
	Action  string          `json:"action,omitempty"`  // Action label; no action when empty
	Timeout config.Duration `json:"timeout,omitempty"` // Zero uses the configured level timeout
	Width   int             `json:"width,omitempty"`   // Measured size; zero uses the default size
	Height  int             `json:"height,omitempty"`

	// hover
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`

	Line int `json:"-"`
}

// level returns the parsed level of a push step.
func (s Step) level() toast.Level {
	level, _ := toast.ParseLevel(s.Level)
	return level
}

// ReadScript parses and validates a script.
// Push steps without a key are given a generated one.
func ReadScript(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var steps []Step
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		step, err := parseStep(line)
		if err != nil {
			return nil, &ScriptError{Line: lineNo, Err: err}
		}
		step.Line = lineNo
		steps = append(steps, step)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if err := Validate(steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseStep(line []byte) (Step, error) {
	var step Step
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&step); err != nil {
		return Step{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	step.Op = Op(strings.ToLower(strings.TrimSpace(string(step.Op))))
	return step, nil
}

// Validate checks steps for ordering and references. Push steps with an
// empty key are assigned a ULID in place.
func Validate(steps []Step) error {
	pushed := make(map[string]bool)
	var last time.Duration

	for i := range steps {
		step := &steps[i]
		fail := func(format string, args ...any) error {
			return &ScriptError{Line: step.Line, Err: fmt.Errorf("%w: "+format, append([]any{ErrInvalidEvent}, args...)...)}
		}

		at := step.At.Duration()
		if at < 0 {
			return fail("negative offset %s", at)
		}
		if at < last {
			return fail("offset %s is before previous step at %s", at, last)
		}
		last = at

		switch step.Op {
		case OpPush:
			if step.Message == "" {
				return fail("push requires a message")
			}
			if step.Level != "" {
				if _, err := toast.ParseLevel(step.Level); err != nil {
					return fail("%v", err)
				}
			}
			if step.Timeout < 0 || step.Width < 0 || step.Height < 0 {
				return fail("timeout and size must not be negative")
			}
			if step.Key == "" {
				key, err := newKey(at)
				if err != nil {
					return fmt.Errorf("failed to generate key: %w", err)
				}
				step.Key = key
			}
			if pushed[step.Key] {
				return fail("duplicate key %q", step.Key)
			}
			pushed[step.Key] = true

		case OpDismiss, OpActivate:
			if step.Key == "" {
				return fail("%s requires a key", step.Op)
			}
			if !pushed[step.Key] {
				return fail("key %q was not pushed earlier", step.Key)
			}

		case OpCloseAll, OpHover, OpLeave, OpTick, OpLayout:

		default:
			return &ScriptError{Line: step.Line, Err: fmt.Errorf("%w: %q", ErrUnknownOp, step.Op)}
		}
	}
	return nil
}

// newKey returns a ULID whose timestamp is the step offset.
func newKey(at time.Duration) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.UnixMilli(0).Add(at)), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
