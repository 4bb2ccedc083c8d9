package power

import "wledremote/types"

// Trigger is an input to the mode state machine.
type Trigger uint8

const (
	TriggerNone Trigger = iota
	// TriggerBoot is a process start, cold or wake.
	TriggerBoot
	// TriggerNetworkUp means the station associated, or no association is needed.
	TriggerNetworkUp
	// TriggerAssociationFailed means station association ran out of attempts.
	TriggerAssociationFailed
	// TriggerLongPress is a button hold past the long-press threshold.
	TriggerLongPress
	// TriggerInactivity is the inactivity timeout expiring.
	TriggerInactivity
)

func (t Trigger) String() string {
	switch t {
	case TriggerBoot:
		return "boot"
	case TriggerNetworkUp:
		return "network_up"
	case TriggerAssociationFailed:
		return "association_failed"
	case TriggerLongPress:
		return "long_press"
	case TriggerInactivity:
		return "inactivity"
	default:
		return "none"
	}
}

// Next is the single transition function. ok is false when the trigger does
// not apply in mode m. Configuration is terminal: only a reboot (a new
// process, hence TriggerBoot) leaves it.
//
//	any           --boot-->               Boot
//	Boot          --network_up-->         Active
//	Boot          --association_failed--> Configuration
//	Active        --inactivity-->         DeepSleep
//	Active        --long_press-->         Configuration
func Next(m types.Mode, t Trigger) (next types.Mode, ok bool) {
	if t == TriggerBoot {
		return types.ModeBoot, true
	}
	switch m {
	case types.ModeBoot:
		switch t {
		case TriggerNetworkUp:
			return types.ModeActive, true
		case TriggerAssociationFailed:
			return types.ModeConfiguration, true
		}
	case types.ModeActive:
		switch t {
		case TriggerInactivity:
			return types.ModeDeepSleep, true
		case TriggerLongPress:
			return types.ModeConfiguration, true
		}
	}
	return m, false
}
