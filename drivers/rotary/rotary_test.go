package rotary

import (
	"sync"
	"testing"
)

// One full clockwise cycle: A leads B.
var cw = [][2]bool{{true, false}, {true, true}, {false, true}, {false, false}}

func turn(d *Decoder, detents int) {
	seq := cw
	if detents < 0 {
		seq = [][2]bool{{false, true}, {true, true}, {true, false}, {false, false}}
		detents = -detents
	}
	for i := 0; i < detents; i++ {
		for _, s := range seq {
			d.Update(s[0], s[1])
		}
	}
}

func TestDecoderCountsDetents(t *testing.T) {
	d := New(Config{StepsPerDetent: 4})
	d.Reset(false, false)

	turn(d, 3)
	if got := d.Position(); got != 3 {
		t.Fatalf("after +3 detents Position = %d, want 3", got)
	}
	turn(d, -5)
	if got := d.Position(); got != -2 {
		t.Fatalf("after -5 detents Position = %d, want -2", got)
	}
}

func TestDecoderPartialDetentDoesNotMove(t *testing.T) {
	d := New(Config{})
	d.Reset(false, false)
	d.Update(true, false)
	d.Update(true, true)
	if got := d.Position(); got != 0 {
		t.Fatalf("half a detent moved position to %d", got)
	}
	// Back out the way we came.
	d.Update(true, false)
	d.Update(false, false)
	if got := d.Position(); got != 0 {
		t.Fatalf("jitter moved position to %d", got)
	}
}

func TestDecoderReverseAndHalfStep(t *testing.T) {
	d := New(Config{StepsPerDetent: 2, Reverse: true})
	d.Reset(false, false)
	turn(d, 1)
	if got := d.Position(); got != -2 {
		t.Fatalf("reversed half-step Position = %d, want -2", got)
	}
}

func TestDecoderCountsInvalidTransitions(t *testing.T) {
	d := New(Config{})
	d.Reset(false, false)
	d.Update(true, true) // both channels flipped
	if d.Invalid() != 1 {
		t.Fatalf("Invalid = %d, want 1", d.Invalid())
	}
	if d.Position() != 0 {
		t.Fatalf("invalid transition moved position")
	}
}

func TestDecoderConcurrentUpdates(t *testing.T) {
	d := New(Config{})
	d.Reset(false, false)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = d.Position()
			}
		}()
	}
	turn(d, 50)
	wg.Wait()
	if got := d.Position(); got != 50 {
		t.Fatalf("Position = %d, want 50", got)
	}
}
