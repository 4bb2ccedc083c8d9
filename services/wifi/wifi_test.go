package wifi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tinygo.org/x/drivers/netlink"

	"wledremote/errcode"
	"wledremote/types"
	"wledremote/x/timex"
)

type fakeLink struct {
	params      []netlink.ConnectParams
	connectErr  error
	upAfter     int // Connected() returns true from this call on; <0 never
	checks      int
	disconnects int
}

func (l *fakeLink) NetConnect(p *netlink.ConnectParams) error {
	l.params = append(l.params, *p)
	return l.connectErr
}
func (l *fakeLink) NetDisconnect() { l.disconnects++ }
func (l *fakeLink) Connected() bool {
	l.checks++
	return l.upAfter >= 0 && l.checks > l.upAfter
}

func opts(clk *timex.Fake) Options {
	return Options{Clock: clk, Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestAssociate_SucceedsWithinBudget(t *testing.T) {
	clk := timex.NewFake(time.Unix(0, 0))
	link := &fakeLink{upAfter: 3}
	err := Associate(context.Background(), link, types.Config{SSID: "home", Password: "pw"}, opts(clk))
	if err != nil {
		t.Fatalf("Associate: %v", err)
	}
	if len(link.params) != 1 || link.params[0].Ssid != "home" || link.params[0].ConnectMode != netlink.ConnectModeSTA {
		t.Fatalf("connect params = %+v", link.params)
	}
	if got := clk.Now().Sub(time.Unix(0, 0)); got != 3*time.Second {
		t.Fatalf("waited %v, want 3s", got)
	}
}

func TestAssociate_BoundedAttempts(t *testing.T) {
	clk := timex.NewFake(time.Unix(0, 0))
	link := &fakeLink{upAfter: -1}
	err := Associate(context.Background(), link, types.Config{SSID: "home"}, opts(clk))
	if !errors.Is(err, errcode.AssociationTimeout) {
		t.Fatalf("err = %v, want association_timeout", err)
	}
	if !errors.Is(err, netlink.ErrConnectTimeout) {
		t.Fatalf("err = %v, want to wrap netlink.ErrConnectTimeout", err)
	}
	if link.checks != DefaultAttempts+1 {
		t.Fatalf("checked %d times, want %d", link.checks, DefaultAttempts+1)
	}
	if got := clk.Now().Sub(time.Unix(0, 0)); got != DefaultAttempts*DefaultInterval {
		t.Fatalf("waited %v", got)
	}
	if link.disconnects != 1 {
		t.Fatalf("disconnects = %d, want 1", link.disconnects)
	}
}

func TestAssociate_MissingSSID(t *testing.T) {
	link := &fakeLink{}
	err := Associate(context.Background(), link, types.DefaultConfig(), opts(timex.NewFake(time.Unix(0, 0))))
	if !errors.Is(err, netlink.ErrMissingSSID) {
		t.Fatalf("err = %v, want ErrMissingSSID", err)
	}
	if len(link.params) != 0 {
		t.Fatal("radio touched without an SSID")
	}
}

func TestAssociate_ConnectError(t *testing.T) {
	link := &fakeLink{connectErr: errors.New("radio off")}
	err := Associate(context.Background(), link, types.Config{SSID: "x"}, opts(timex.NewFake(time.Unix(0, 0))))
	if !errors.Is(err, errcode.AssociationTimeout) {
		t.Fatalf("err = %v", err)
	}
}

func TestStartAccessPoint(t *testing.T) {
	link := &fakeLink{}
	if err := StartAccessPoint(link, nil); err != nil {
		t.Fatalf("StartAccessPoint: %v", err)
	}
	if link.disconnects != 1 {
		t.Fatal("station not torn down first")
	}
	p := link.params[0]
	if p.ConnectMode != netlink.ConnectModeAP || p.Ssid != APSSID || p.Passphrase != APPassphrase {
		t.Fatalf("ap params = %+v", p)
	}
}

func TestStation(t *testing.T) {
	link := &fakeLink{upAfter: 0}
	s := &Station{Link: link, Config: types.Config{SSID: "home"}, Options: opts(timex.NewFake(time.Unix(0, 0)))}
	if err := s.Associate(context.Background()); err != nil {
		t.Fatalf("Associate: %v", err)
	}
}
