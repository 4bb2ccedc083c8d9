package errcode

import (
	"errors"
	"io"
	"testing"
)

func TestOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", NotFound, NotFound},
		{"wrapped", Wrap(SendFailed, "udp send", io.ErrClosedPipe), SendFailed},
		{"foreign", io.EOF, Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestWrapMatchesCodeAndCause(t *testing.T) {
	err := Wrap(CorruptState, "statestore load", io.ErrUnexpectedEOF)
	if !errors.Is(err, CorruptState) {
		t.Fatalf("errors.Is(err, CorruptState) = false")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if errors.Is(err, NotFound) {
		t.Fatalf("matched unrelated code")
	}
	if got, want := err.Error(), "statestore load: corrupt_state: unexpected EOF"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
