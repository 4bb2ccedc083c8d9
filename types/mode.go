package types

// Mode is the operating mode of the remote. Exactly one holds at a time.
type Mode uint8

const (
	// ModeBoot covers process start up to network association.
	ModeBoot Mode = iota
	ModeActive
	ModeDeepSleep
	ModeConfiguration
)

func (m Mode) String() string {
	switch m {
	case ModeBoot:
		return "boot"
	case ModeActive:
		return "active"
	case ModeDeepSleep:
		return "deep_sleep"
	case ModeConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// BootReason tells the boot path whether scratch memory may hold state.
type BootReason uint8

const (
	BootCold BootReason = iota
	BootWake
)

func (r BootReason) String() string {
	if r == BootWake {
		return "wake"
	}
	return "cold"
}
