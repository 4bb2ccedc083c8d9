package portal

import (
	"context"
	"log/slog"
	"net"

	"wledremote/services/wifi"
)

// AccessPoint is configuration mode: the fixed AP plus the portal. Run
// blocks for the rest of the process; only a reboot leaves it.
type AccessPoint struct {
	Link   wifi.Link
	Addr   string
	Portal *Portal
	Log    *slog.Logger
}

func (a *AccessPoint) Run(ctx context.Context) error {
	log := a.Log
	if log == nil {
		log = slog.Default()
	}
	if err := wifi.StartAccessPoint(a.Link, log); err != nil {
		// Still serve: a wired or already-up interface can reach the form.
		log.Warn("access point", "svc", "portal", "err", err)
	}
	addr := a.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return a.Portal.Serve(ctx, ln)
}
