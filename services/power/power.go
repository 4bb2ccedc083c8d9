// Package power is the top-level control loop of the remote. It owns the
// operating mode and the inactivity clock, drives the poll loop, and
// performs the Active -> DeepSleep and Active -> Configuration transitions.
package power

import (
	"context"
	"io"
	"log/slog"
	"time"

	"wledremote/services/dispatch"
	"wledremote/services/gesture"
	"wledremote/services/wled"
	"wledremote/types"
	"wledremote/x/timex"
)

// Defaults for Timing.
const (
	DefaultPollInterval      = 10 * time.Millisecond
	DefaultInactivityTimeout = 15 * time.Second
)

type Sampler interface {
	Sample() types.InputSample
}

type Store interface {
	Save(types.DeviceState) error
	Restore() types.DeviceState
}

// Network joins the station network with a bounded number of attempts.
type Network interface {
	Associate(ctx context.Context) error
}

// Halter arms the wake source and suspends the device. On hardware
// DeepSleep does not return; execution resumes in a new process with a
// wake boot. Ready is checked before anything is released.
type Halter interface {
	Ready() error
	DeepSleep() error
}

// ConfigMode runs the access point and configuration portal. It blocks
// for the rest of the process lifetime.
type ConfigMode interface {
	Run(ctx context.Context) error
}

type Deps struct {
	Clock   timex.Clock
	Sampler Sampler
	Store   Store
	Network Network // nil on wired links
	// OpenSender is called once association succeeds.
	OpenSender func(ctx context.Context) wled.Sender
	// Inputs, if set, is closed before any mode transition.
	Inputs io.Closer
	Halter Halter
	Config ConfigMode
	Log    *slog.Logger
}

type Timing struct {
	PollInterval      time.Duration
	InactivityTimeout time.Duration
	LongPress         time.Duration
	Step              int
}

func (t *Timing) defaults() {
	if t.PollInterval <= 0 {
		t.PollInterval = DefaultPollInterval
	}
	if t.InactivityTimeout <= 0 {
		t.InactivityTimeout = DefaultInactivityTimeout
	}
	if t.LongPress <= 0 {
		t.LongPress = gesture.DefaultLongPress
	}
}

type Controller struct {
	d      Deps
	timing Timing
	log    *slog.Logger

	mode         types.Mode
	lastActivity time.Time
	prev         types.InputSample
	sender       wled.Sender

	interp *gesture.Interpreter
	disp   *dispatch.Dispatcher
}

// New restores DeviceState through the store (defaults unless this is a
// wake boot with a readable blob) and applies the boot transition.
func New(d Deps, t Timing) *Controller {
	t.defaults()
	if d.Clock == nil {
		d.Clock = timex.System{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	log := d.Log.With("svc", "power")
	st := d.Store.Restore()
	mode, _ := Next(types.ModeDeepSleep, TriggerBoot)
	log.Info("boot", "brightness", st.Brightness, "on", st.PowerOn)
	return &Controller{
		d:      d,
		timing: t,
		log:    log,
		mode:   mode,
		interp: gesture.New(t.LongPress),
		disp:   dispatch.New(st, t.Step, nil, d.Log),
	}
}

func (c *Controller) Mode() types.Mode         { return c.mode }
func (c *Controller) State() types.DeviceState { return c.disp.State() }
func (c *Controller) LastActivity() time.Time  { return c.lastActivity }

// Run is the whole life of the process: associate, enter Active, poll
// until a transition, perform it. It returns the mode it ended in.
func (c *Controller) Run(ctx context.Context) (types.Mode, error) {
	if c.d.Network != nil {
		if err := c.d.Network.Associate(ctx); err != nil {
			c.log.Warn("association failed", "err", err)
			if ctx.Err() != nil {
				return c.mode, ctx.Err()
			}
			// Nothing was sent yet, so there is no state to persist.
			return c.apply(ctx, TriggerAssociationFailed)
		}
	}
	c.EnterActive(ctx)

	for {
		if err := ctx.Err(); err != nil {
			c.release()
			return c.mode, err
		}
		if trig := c.Tick(); trig != TriggerNone {
			if mode, err := c.apply(ctx, trig); mode != types.ModeActive || err != nil {
				return mode, err
			}
		}
		c.d.Clock.Sleep(c.timing.PollInterval)
	}
}

// EnterActive leaves Boot, opens the sender, re-announces the current
// state and arms the inactivity clock.
func (c *Controller) EnterActive(ctx context.Context) {
	if next, ok := Next(c.mode, TriggerNetworkUp); ok {
		c.log.Info("transition", "from", c.mode, "to", next, "trigger", TriggerNetworkUp)
		c.mode = next
	}
	if c.d.OpenSender != nil {
		c.sender = c.d.OpenSender(ctx)
		c.disp.SetSender(c.sender)
	}
	c.disp.Sync()
	c.prev = c.d.Sampler.Sample()
	c.interp.Reset()
	c.touch()
}

// Tick runs one poll: sample, interpret, dispatch, reset the inactivity
// clock and persist after each gesture, then test for a transition.
func (c *Controller) Tick() Trigger {
	now := c.d.Clock.Now()
	cur := c.d.Sampler.Sample()
	events := c.interp.Step(now, c.prev, cur)
	pressed := cur.ButtonPressed && !c.prev.ButtonPressed
	c.prev = cur

	trig := TriggerNone
	for _, ev := range events {
		switch ev.Kind {
		case gesture.RotationDelta:
			c.disp.OnRotation(ev.Delta)
		case gesture.ShortPress:
			c.disp.OnShortPress()
		case gesture.LongPressThreshold:
			trig = TriggerLongPress
		}
		c.touch()
		if ev.Kind != gesture.LongPressThreshold {
			c.persist()
		}
	}
	if trig != TriggerNone {
		return trig
	}
	// A press-down edge is not a gesture yet, but it resets the clock:
	// otherwise a hold begun after more than 5 s of idle hits the 15 s
	// sleep before the 10 s long-press threshold and can never reach
	// Configuration.
	if pressed {
		c.touch()
	}
	if now.Sub(c.lastActivity) > c.timing.InactivityTimeout {
		return TriggerInactivity
	}
	return TriggerNone
}

// apply performs a transition out of the current mode.
func (c *Controller) apply(ctx context.Context, t Trigger) (types.Mode, error) {
	next, ok := Next(c.mode, t)
	if !ok {
		return c.mode, nil
	}
	if next == types.ModeDeepSleep {
		if err := c.d.Halter.Ready(); err != nil {
			c.log.Warn("deep sleep unavailable, staying active", "err", err)
			c.touch()
			return c.mode, nil
		}
	}
	c.log.Info("transition", "from", c.mode, "to", next, "trigger", t)
	c.mode = next

	switch next {
	case types.ModeDeepSleep:
		c.persist()
		c.release()
		if err := c.d.Halter.DeepSleep(); err != nil {
			c.log.Error("deep sleep", "err", err)
			return c.mode, err
		}
		return c.mode, nil

	case types.ModeConfiguration:
		if t != TriggerAssociationFailed {
			c.persist()
		}
		c.interp.Reset()
		c.release()
		return c.mode, c.d.Config.Run(ctx)
	}
	return c.mode, nil
}

func (c *Controller) touch() { c.lastActivity = c.d.Clock.Now() }

// persist is synchronous: the next tick may halt the device.
func (c *Controller) persist() {
	if err := c.d.Store.Save(c.disp.State()); err != nil {
		c.log.Warn("persist state", "err", err)
	}
}

// release closes the socket and input lines ahead of a mode change.
func (c *Controller) release() {
	if c.sender != nil {
		if err := c.sender.Close(); err != nil {
			c.log.Debug("close sender", "err", err)
		}
		c.sender = nil
		c.disp.SetSender(nil)
	}
	if c.d.Inputs != nil {
		if err := c.d.Inputs.Close(); err != nil {
			c.log.Debug("close inputs", "err", err)
		}
	}
}
