//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"wledremote/errcode"
)

// Sysfs nodes used for suspend.
const (
	PowerStatePath = "/sys/power/state"
	suspendMode    = "mem"
)

// Halter suspends to RAM with the button armed as wake source, then
// re-executes the binary so the wake is a fresh process start.
//
// WakeSysfs is the wakeup node of a wake-capable device, typically a
// gpio-keys entry. gpio-keys and gpiocdev cannot hold the same line, so
// the wake key sits on a separate GPIO wired in parallel with the button.
type Halter struct {
	RunDir    string
	WakeSysfs string // e.g. /sys/devices/platform/gpio-keys/power/wakeup
	StatePath string
	Exec      func(argv0 string, argv []string, envv []string) error
	Log       *slog.Logger
}

// Ready reports whether a wake source is configured. Without one the
// device could never leave suspend.
func (h *Halter) Ready() error {
	if h.WakeSysfs == "" {
		return &errcode.E{C: errcode.Unsupported, Op: "deep sleep", Msg: "no wake source configured"}
	}
	return nil
}

// DeepSleep arms the wake source, leaves the wake marker and suspends.
// If the suspend write fails the process restarts anyway; the marker
// makes that a wake boot, so the saved state is restored and the remote
// comes back Active. The marker is removed only if the restart fails.
func (h *Halter) DeepSleep() error {
	if err := h.Ready(); err != nil {
		return err
	}
	if err := os.WriteFile(h.WakeSysfs, []byte("enabled"), 0o644); err != nil {
		return fmt.Errorf("arm wake source: %w", err)
	}
	if err := markWake(h.RunDir); err != nil {
		return fmt.Errorf("wake marker: %w", err)
	}
	log := h.Log
	if log == nil {
		log = slog.Default()
	}
	state := h.StatePath
	if state == "" {
		state = PowerStatePath
	}
	log.Info("suspending", "svc", "platform", "node", state)
	// Blocks until resume.
	if err := os.WriteFile(state, []byte(suspendMode), 0o644); err != nil {
		log.Error("suspend failed, restarting", "svc", "platform", "err", err)
	}
	if err := h.restart(); err != nil {
		clearWake(h.RunDir)
		return fmt.Errorf("restart: %w", err)
	}
	return nil
}

func (h *Halter) restart() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exec := h.Exec
	if exec == nil {
		exec = syscall.Exec
	}
	return exec(exe, os.Args, os.Environ())
}

// Rebooter restarts the board after a configuration save.
type Rebooter struct {
	Run Runner
}

func (r Rebooter) Reboot() error {
	run := r.Run
	if run == nil {
		run = ExecRunner{}
	}
	if out, err := run.Run("systemctl", "reboot"); err != nil {
		return fmt.Errorf("reboot: %w: %s", err, out)
	}
	return nil
}
