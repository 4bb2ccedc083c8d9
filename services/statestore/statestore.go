// Package statestore keeps DeviceState in scratch memory across deep sleep.
//
// Scratch memory survives a sleep/wake cycle but not a power loss, so a
// missing, stale or garbled blob is normal and always means "use defaults".
package statestore

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/fxamacker/cbor/v2"

	"wledremote/errcode"
	"wledremote/types"
	"wledremote/x/mathx"
)

const blobVersion = 1

// Scratch is a small byte region that outlives the process but not power.
type Scratch interface {
	Read() ([]byte, error)
	Write(b []byte) error
}

// record is the on-scratch layout. Pointers distinguish absent keys.
type record struct {
	Version    int   `cbor:"v"`
	Brightness *int  `cbor:"brightness"`
	PowerOn    *bool `cbor:"wled_on"`
}

// legacyRecord is the JSON blob written by the first firmware.
type legacyRecord struct {
	Brightness *int  `json:"brightness"`
	PowerOn    *bool `json:"wled_on"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()
	if err != nil {
		panic("statestore: cbor enc mode: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}.DecMode()
	if err != nil {
		panic("statestore: cbor dec mode: " + err.Error())
	}
}

type Store struct {
	scratch Scratch
	reason  types.BootReason
	log     *slog.Logger
}

// New binds a store to scratch memory. reason is the boot reason of the
// current process; only a wake boot may restore state.
func New(s Scratch, reason types.BootReason, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{scratch: s, reason: reason, log: log.With("svc", "statestore")}
}

// Save writes st synchronously. It must complete before the device halts.
func (s *Store) Save(st types.DeviceState) error {
	b, err := Encode(st)
	if err != nil {
		return errcode.Wrap(errcode.Error, "statestore save", err)
	}
	if err := s.scratch.Write(b); err != nil {
		return errcode.Wrap(errcode.Error, "statestore save", err)
	}
	return nil
}

// Load restores the state saved before the last deep sleep. It returns
// errcode.NotFound on any boot other than a wake, and errcode.CorruptState
// when the blob cannot be decoded.
func (s *Store) Load() (types.DeviceState, error) {
	if s.reason != types.BootWake {
		return types.DeviceState{}, errcode.NotFound
	}
	b, err := s.scratch.Read()
	if err != nil {
		if errors.Is(err, errcode.NotFound) {
			return types.DeviceState{}, errcode.NotFound
		}
		return types.DeviceState{}, errcode.Wrap(errcode.CorruptState, "statestore load", err)
	}
	st, err := Decode(b)
	if err != nil {
		return types.DeviceState{}, err
	}
	s.log.Debug("state restored", "brightness", st.Brightness, "on", st.PowerOn)
	return st, nil
}

// Restore is Load with the documented fallback applied.
func (s *Store) Restore() types.DeviceState {
	st, err := s.Load()
	if err != nil {
		if !errors.Is(err, errcode.NotFound) {
			s.log.Warn("discarding saved state", "err", err)
		}
		return types.DefaultDeviceState()
	}
	return st
}

// Encode produces the scratch blob for st.
func Encode(st types.DeviceState) ([]byte, error) {
	bri := mathx.Clamp(st.Brightness, types.MinBrightness, types.MaxBrightness)
	on := st.PowerOn
	return encMode.Marshal(record{Version: blobVersion, Brightness: &bri, PowerOn: &on})
}

// Decode parses a scratch blob. Both the CBOR layout and the legacy JSON
// layout are accepted; anything else is errcode.CorruptState.
func Decode(b []byte) (types.DeviceState, error) {
	if len(b) == 0 {
		return types.DeviceState{}, errcode.NotFound
	}
	var bri *int
	var on *bool
	if b[0] == '{' {
		var lr legacyRecord
		if err := json.Unmarshal(b, &lr); err != nil {
			return types.DeviceState{}, errcode.Wrap(errcode.CorruptState, "statestore decode", err)
		}
		bri, on = lr.Brightness, lr.PowerOn
	} else {
		var r record
		if err := decMode.Unmarshal(b, &r); err != nil {
			return types.DeviceState{}, errcode.Wrap(errcode.CorruptState, "statestore decode", err)
		}
		if r.Version != blobVersion {
			return types.DeviceState{}, &errcode.E{C: errcode.CorruptState, Op: "statestore decode", Msg: "unknown blob version"}
		}
		bri, on = r.Brightness, r.PowerOn
	}
	if bri == nil || on == nil {
		return types.DeviceState{}, &errcode.E{C: errcode.CorruptState, Op: "statestore decode", Msg: "missing field"}
	}
	return types.DeviceState{
		Brightness: mathx.Clamp(*bri, types.MinBrightness, types.MaxBrightness),
		PowerOn:    *on,
	}, nil
}
