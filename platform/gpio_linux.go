//go:build linux

package platform

import (
	"errors"
	"fmt"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"

	"wledremote/drivers/rotary"
)

const consumer = "wled-remote"

// Pins are line offsets on one GPIO chip. The suspend wake key is not
// among them: it is a gpio-keys line of its own, see Halter.
type Pins struct {
	Chip    string
	EncA    int
	EncB    int
	Button  int
	Reverse bool
	Steps   int
}

// Inputs owns the encoder and button lines for the life of Active mode.
type Inputs struct {
	Decoder *rotary.Decoder

	mu   sync.Mutex
	a, b bool

	chip   *gpiod.Chip
	encA   *gpiod.Line
	encB   *gpiod.Line
	button *gpiod.Line
}

// OpenInputs requests the lines. Encoder edges are decoded in the gpiocdev
// event goroutines, so no detent is lost between control-loop polls.
func OpenInputs(p Pins) (*Inputs, error) {
	chip, err := gpiod.NewChip(p.Chip, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open chip %s: %w", p.Chip, err)
	}
	in := &Inputs{
		Decoder: rotary.New(rotary.Config{StepsPerDetent: p.Steps, Reverse: p.Reverse}),
		chip:    chip,
	}

	in.button, err = chip.RequestLine(p.Button, gpiod.AsInput, gpiod.WithPullUp)
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("request button pin %d: %w", p.Button, err)
	}
	in.encA, err = chip.RequestLine(p.EncA, gpiod.AsInput, gpiod.WithPullUp,
		gpiod.WithBothEdges, gpiod.WithEventHandler(in.edge(true)))
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("request encoder pin %d: %w", p.EncA, err)
	}
	in.encB, err = chip.RequestLine(p.EncB, gpiod.AsInput, gpiod.WithPullUp,
		gpiod.WithBothEdges, gpiod.WithEventHandler(in.edge(false)))
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("request encoder pin %d: %w", p.EncB, err)
	}

	va, errA := in.encA.Value()
	vb, errB := in.encB.Value()
	if err := errors.Join(errA, errB); err != nil {
		in.Close()
		return nil, fmt.Errorf("read encoder: %w", err)
	}
	in.mu.Lock()
	in.a, in.b = va == 1, vb == 1
	in.Decoder.Reset(in.a, in.b)
	in.mu.Unlock()
	return in, nil
}

func (in *Inputs) edge(isA bool) func(gpiod.LineEvent) {
	return func(evt gpiod.LineEvent) {
		level := evt.Type == gpiod.LineEventRisingEdge
		in.mu.Lock()
		if isA {
			in.a = level
		} else {
			in.b = level
		}
		a, b := in.a, in.b
		in.mu.Unlock()
		in.Decoder.Update(a, b)
	}
}

// ButtonLevel returns the raw button line level (high when released).
func (in *Inputs) ButtonLevel() bool {
	if in.button == nil {
		return true
	}
	v, err := in.button.Value()
	if err != nil {
		return true
	}
	return v == 1
}

// Close releases every line and the chip.
func (in *Inputs) Close() error {
	var errs []error
	for _, l := range []*gpiod.Line{in.encA, in.encB, in.button} {
		if l != nil {
			if err := l.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	in.encA, in.encB, in.button = nil, nil, nil
	if in.chip != nil {
		if err := in.chip.Close(); err != nil {
			errs = append(errs, err)
		}
		in.chip = nil
	}
	return errors.Join(errs...)
}
