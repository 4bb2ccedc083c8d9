package platform

import (
	"os"
	"path/filepath"

	"wledremote/types"
)

// Scratch layout under the runtime directory. Keep RunDir on a tmpfs so
// both files vanish on power loss, like RTC memory.
const (
	ScratchFile = "state.cbor"
	WakeMarker  = "wake"
)

func ScratchPath(runDir string) string { return filepath.Join(runDir, ScratchFile) }

// ConsumeBootReason reports BootWake when the halter left a wake marker and
// removes it, so a crash-restart afterwards is treated as a cold boot.
func ConsumeBootReason(runDir string) types.BootReason {
	p := filepath.Join(runDir, WakeMarker)
	if _, err := os.Stat(p); err != nil {
		return types.BootCold
	}
	_ = os.Remove(p)
	return types.BootWake
}

func markWake(runDir string) error {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(runDir, WakeMarker), nil, 0o600)
}

func clearWake(runDir string) { _ = os.Remove(filepath.Join(runDir, WakeMarker)) }
