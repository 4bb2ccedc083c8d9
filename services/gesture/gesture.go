// Package gesture turns consecutive input samples into discrete events.
package gesture

import (
	"time"

	"wledremote/types"
)

// DefaultLongPress is the hold time that opens the configuration portal.
const DefaultLongPress = 10 * time.Second

// Kind identifies an interpreted gesture.
type Kind uint8

const (
	RotationDelta Kind = iota + 1
	ShortPress
	LongPressThreshold
)

func (k Kind) String() string {
	switch k {
	case RotationDelta:
		return "rotation"
	case ShortPress:
		return "short_press"
	case LongPressThreshold:
		return "long_press"
	default:
		return "unknown"
	}
}

// Event is one interpreted gesture. Delta is set for RotationDelta only.
type Event struct {
	Kind  Kind
	Delta int
}

// pressSession tracks one button hold.
type pressSession struct {
	start     time.Time
	active    bool
	longFired bool
}

// Interpreter owns the press session. It is driven once per tick and is
// not safe for concurrent use.
type Interpreter struct {
	longPress time.Duration
	session   pressSession
	buf       []Event
}

func New(longPress time.Duration) *Interpreter {
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	return &Interpreter{longPress: longPress, buf: make([]Event, 0, 2)}
}

// Step compares this tick's sample with the previous one. The returned
// slice is reused by the next call.
func (in *Interpreter) Step(now time.Time, prev, cur types.InputSample) []Event {
	out := in.buf[:0]

	if d := cur.EncoderPosition - prev.EncoderPosition; d != 0 {
		out = append(out, Event{Kind: RotationDelta, Delta: d})
	}

	s := &in.session
	switch {
	case cur.ButtonPressed && !prev.ButtonPressed:
		*s = pressSession{start: now, active: true}
	case cur.ButtonPressed && s.active:
		if !s.longFired && now.Sub(s.start) >= in.longPress {
			s.longFired = true
			out = append(out, Event{Kind: LongPressThreshold})
		}
	case !cur.ButtonPressed && prev.ButtonPressed:
		// A fired long press suppresses the short press for the session.
		// A hold that crossed the threshold on this very tick is still long.
		if s.active && !s.longFired {
			if now.Sub(s.start) < in.longPress {
				out = append(out, Event{Kind: ShortPress})
			} else {
				out = append(out, Event{Kind: LongPressThreshold})
			}
		}
		*s = pressSession{}
	}

	in.buf = out
	return out
}

// Reset drops any open press session, e.g. on mode exit.
func (in *Interpreter) Reset() { in.session = pressSession{} }
