// Package input polls the encoder position and button level.
package input

import "wledremote/types"

// Encoder reports an accumulated detent position. Implementations buffer
// movement independently of the poll rate (see drivers/rotary).
type Encoder interface {
	Position() int
}

// Button reports the logical (already de-inverted) pressed level.
type Button interface {
	Pressed() bool
}

// Sampler is a pure, non-blocking read of both inputs.
type Sampler struct {
	enc Encoder
	btn Button
}

func NewSampler(enc Encoder, btn Button) *Sampler {
	return &Sampler{enc: enc, btn: btn}
}

func (s *Sampler) Sample() types.InputSample {
	return types.InputSample{
		EncoderPosition: s.enc.Position(),
		ButtonPressed:   s.btn.Pressed(),
	}
}

// LevelButton adapts a raw line level to Button. ActiveLow is the usual
// wiring: pull-up resistor, switch to ground.
type LevelButton struct {
	Level     func() bool
	ActiveLow bool
}

func (b LevelButton) Pressed() bool {
	l := b.Level()
	if b.ActiveLow {
		return !l
	}
	return l
}
