// Package discovery finds a WLED controller on the local network when the
// configuration leaves the address empty.
package discovery

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/hashicorp/mdns"

	"wledremote/errcode"
	"wledremote/types"
)

// ServiceWLED is the DNS-SD service WLED advertises.
const ServiceWLED = "_wled._tcp"

const DefaultTimeout = 2 * time.Second

// QueryFunc matches mdns.Query; tests substitute it.
type QueryFunc func(*mdns.QueryParam) error

type Resolver struct {
	Timeout time.Duration
	Query   QueryFunc
	Log     *slog.Logger
}

// FindWLED returns the IPv4 address of the first WLED instance that answers
// within the timeout.
func (r Resolver) FindWLED(ctx context.Context) (net.IP, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	query := r.Query
	if query == nil {
		query = mdns.Query
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("svc", "discovery")

	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan error, 1)
	go func() {
		done <- query(&mdns.QueryParam{
			Service:             ServiceWLED,
			Domain:              "local",
			Timeout:             timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
		})
		close(entries)
	}()

	var found net.IP
	for e := range entries {
		if found != nil || ctx.Err() != nil {
			continue // drain so the query goroutine can finish
		}
		if e.AddrV4 == nil || e.AddrV4.IsUnspecified() {
			continue
		}
		log.Info("found controller", "name", e.Name, "addr", e.AddrV4.String())
		found = e.AddrV4
	}
	if err := <-done; err != nil && found == nil {
		return nil, errcode.Wrap(errcode.NoEndpoint, "mdns query", err)
	}
	if found == nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errcode.NoEndpoint
	}
	return found, nil
}

// ResolveEndpoint fills cfg.IP from mDNS when UDP is selected and no
// address is configured. On failure cfg is returned unchanged.
func ResolveEndpoint(ctx context.Context, cfg types.Config, r Resolver) types.Config {
	if cfg.IP != "" || cfg.Transport == types.TransportMQTT {
		return cfg
	}
	ip, err := r.FindWLED(ctx)
	if err != nil {
		if r.Log != nil {
			r.Log.Warn("no lighting endpoint", "svc", "discovery", "err", err)
		}
		return cfg
	}
	cfg.IP = ip.String()
	return cfg
}
