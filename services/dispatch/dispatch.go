// Package dispatch maps gestures to lighting intents and owns the
// in-memory DeviceState.
package dispatch

import (
	"log/slog"

	"wledremote/services/wled"
	"wledremote/types"
	"wledremote/x/mathx"
)

// DefaultStep is the brightness change per encoder detent.
const DefaultStep = 5

type Dispatcher struct {
	state  types.DeviceState
	step   int
	sender wled.Sender
	log    *slog.Logger
}

// New starts from st (restored or default). sender may be swapped later
// with SetSender when the transport is (re)opened.
func New(st types.DeviceState, step int, sender wled.Sender, log *slog.Logger) *Dispatcher {
	if step <= 0 {
		step = DefaultStep
	}
	if log == nil {
		log = slog.Default()
	}
	st.Brightness = mathx.Clamp(st.Brightness, types.MinBrightness, types.MaxBrightness)
	return &Dispatcher{state: st, step: step, sender: sender, log: log.With("svc", "dispatch")}
}

// State returns a copy for persistence.
func (d *Dispatcher) State() types.DeviceState { return d.state }

func (d *Dispatcher) SetSender(s wled.Sender) { d.sender = s }

// OnRotation moves brightness by step per detent, clamped to [0,255].
func (d *Dispatcher) OnRotation(delta int) {
	d.state.Brightness = mathx.StepClamp(d.state.Brightness, delta, d.step, types.MinBrightness, types.MaxBrightness)
	d.send(wled.Brightness(d.state.Brightness))
}

// OnShortPress toggles the light.
func (d *Dispatcher) OnShortPress() {
	d.state.PowerOn = !d.state.PowerOn
	d.send(wled.Power(d.state.PowerOn))
}

// Sync re-announces the full state, e.g. after a wake.
func (d *Dispatcher) Sync() {
	d.send(wled.Full(d.state))
}

// send is best-effort: failures are logged and the state change stands.
func (d *Dispatcher) send(in wled.Intent) {
	if d.sender == nil {
		d.log.Warn("no sender, intent dropped")
		return
	}
	if err := d.sender.Send(in); err != nil {
		d.log.Warn("send failed", "err", err)
	}
}
