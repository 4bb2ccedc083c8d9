package statestore

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"wledremote/errcode"
	"wledremote/types"
)

func quietLog() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestStore_RoundTripOnWake(t *testing.T) {
	for _, st := range []types.DeviceState{
		{Brightness: 0, PowerOn: false},
		{Brightness: 128, PowerOn: true},
		{Brightness: 200, PowerOn: false},
		{Brightness: 255, PowerOn: true},
	} {
		mem := &MemScratch{}
		if err := New(mem, types.BootCold, quietLog()).Save(st); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := New(mem, types.BootWake, quietLog()).Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got != st {
			t.Fatalf("round trip = %+v, want %+v", got, st)
		}
	}
}

func TestStore_ColdBootIgnoresScratch(t *testing.T) {
	mem := &MemScratch{}
	_ = New(mem, types.BootCold, quietLog()).Save(types.DeviceState{Brightness: 10})

	s := New(mem, types.BootCold, quietLog())
	if _, err := s.Load(); !errors.Is(err, errcode.NotFound) {
		t.Fatalf("Load on cold boot err = %v, want not_found", err)
	}
	if got := s.Restore(); got != types.DefaultDeviceState() {
		t.Fatalf("Restore = %+v, want defaults", got)
	}
}

func TestStore_PowerLossIsNotFound(t *testing.T) {
	mem := &MemScratch{}
	_ = New(mem, types.BootCold, quietLog()).Save(types.DeviceState{Brightness: 10})
	mem.Wipe()

	if _, err := New(mem, types.BootWake, quietLog()).Load(); !errors.Is(err, errcode.NotFound) {
		t.Fatalf("Load after wipe err = %v, want not_found", err)
	}
}

func TestStore_CorruptBlobFallsBackToDefaults(t *testing.T) {
	cases := map[string][]byte{
		"garbage":        {0xff, 0x00, 0x13},
		"truncated json": []byte(`{"brightness": 20`),
		"missing key":    []byte(`{"brightness": 20}`),
		"wrong type":     []byte(`{"brightness": "high", "wled_on": true}`),
	}
	for name, blob := range cases {
		mem := &MemScratch{}
		_ = mem.Write(blob)
		s := New(mem, types.BootWake, quietLog())
		if _, err := s.Load(); !errors.Is(err, errcode.CorruptState) {
			t.Errorf("%s: Load err = %v, want corrupt_state", name, err)
		}
		if got := s.Restore(); got != types.DefaultDeviceState() {
			t.Errorf("%s: Restore = %+v, want defaults", name, got)
		}
	}
}

func TestDecode_LegacyJSONBlob(t *testing.T) {
	got, err := Decode([]byte(`{"brightness": 200, "wled_on": false}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if want := (types.DeviceState{Brightness: 200, PowerOn: false}); got != want {
		t.Fatalf("Decode = %+v, want %+v", got, want)
	}
}

func TestDecode_ClampsOutOfRangeBrightness(t *testing.T) {
	got, err := Decode([]byte(`{"brightness": 900, "wled_on": true}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Brightness != types.MaxBrightness {
		t.Fatalf("Brightness = %d, want %d", got.Brightness, types.MaxBrightness)
	}
}

func TestFileScratch(t *testing.T) {
	fs := FileScratch{Path: filepath.Join(t.TempDir(), "run", "state.cbor")}
	if _, err := fs.Read(); !errors.Is(err, errcode.NotFound) {
		t.Fatalf("Read of missing file err = %v, want not_found", err)
	}
	want := types.DeviceState{Brightness: 77, PowerOn: true}
	if err := New(fs, types.BootCold, quietLog()).Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := New(fs, types.BootWake, quietLog()).Load()
	if err != nil || got != want {
		t.Fatalf("Load = %+v, %v; want %+v", got, err, want)
	}
}
