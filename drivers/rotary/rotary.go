// Package rotary decodes a two-channel quadrature encoder into a detent
// position. Edge callbacks feed Update; the control loop reads Position at
// its own pace, so no detent is lost between polls.
package rotary

import (
	"sync"
	"sync/atomic"
)

// transitions maps prev<<2|cur (state = a<<1|b) to a quarter-step.
// Zero entries are either no movement or an invalid double transition.
var transitions = [16]int8{
	0, -1, +1, 0,
	+1, 0, 0, -1,
	-1, 0, 0, +1,
	0, +1, -1, 0,
}

// Config selects the encoder geometry.
type Config struct {
	// StepsPerDetent is the number of quadrature transitions per click.
	// Most mechanical encoders use 4; half-step parts use 2.
	StepsPerDetent int
	// Reverse flips the sign of rotation.
	Reverse bool
}

type Decoder struct {
	mu      sync.Mutex
	state   uint8
	sub     int
	steps   int
	reverse bool

	pos     atomic.Int64
	invalid atomic.Uint32
}

func New(cfg Config) *Decoder {
	steps := cfg.StepsPerDetent
	if steps <= 0 {
		steps = 4
	}
	return &Decoder{steps: steps, reverse: cfg.Reverse}
}

// Reset seeds the decoder with the current line levels without moving.
func (d *Decoder) Reset(a, b bool) {
	d.mu.Lock()
	d.state = level(a, b)
	d.sub = 0
	d.mu.Unlock()
}

// Update consumes the levels of both channels after an edge on either.
// Safe to call from concurrent edge handlers.
func (d *Decoder) Update(a, b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cur := level(a, b)
	if cur == d.state {
		return
	}
	q := transitions[d.state<<2|cur]
	d.state = cur
	if q == 0 {
		// Both channels changed between samples; direction unknown.
		d.invalid.Add(1)
		return
	}
	if d.reverse {
		q = -q
	}
	d.sub += int(q)
	for d.sub >= d.steps {
		d.sub -= d.steps
		d.pos.Add(1)
	}
	for d.sub <= -d.steps {
		d.sub += d.steps
		d.pos.Add(-1)
	}
}

// Position returns the accumulated detent count. It never wraps in practice.
func (d *Decoder) Position() int { return int(d.pos.Load()) }

// Invalid returns how many transitions were skipped as undecodable.
func (d *Decoder) Invalid() uint32 { return d.invalid.Load() }

func level(a, b bool) uint8 {
	var s uint8
	if a {
		s |= 2
	}
	if b {
		s |= 1
	}
	return s
}
