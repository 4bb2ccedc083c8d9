// Package wifi brings the radio up in station or access-point mode.
//
// Connect parameters and sentinel errors are the TinyGo netlink ones, so a
// netdev-backed link and the NetworkManager link are interchangeable.
package wifi

import (
	"context"
	"log/slog"
	"time"

	"tinygo.org/x/drivers/netlink"

	"wledremote/errcode"
	"wledremote/types"
	"wledremote/x/timex"
)

// Access-point identity used in configuration mode.
const (
	APSSID       = "WLED-Config"
	APPassphrase = "wled-config"
	APAddress    = "192.168.4.1"
	APPrefixLen  = 24
)

// Association defaults: ten checks one second apart.
const (
	DefaultAttempts = 10
	DefaultInterval = time.Second
)

// Link is the radio. NetConnect starts association and may return before it
// completes; Connected reports the current association state.
type Link interface {
	NetConnect(params *netlink.ConnectParams) error
	NetDisconnect()
	Connected() bool
}

type Options struct {
	Attempts int
	Interval time.Duration
	Clock    timex.Clock
	Log      *slog.Logger
}

func (o *Options) defaults() {
	if o.Attempts <= 0 {
		o.Attempts = DefaultAttempts
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Clock == nil {
		o.Clock = timex.System{}
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
}

// Associate joins the configured network, polling at most opt.Attempts
// times. Exhaustion returns errcode.AssociationTimeout; the caller falls
// back to configuration mode rather than retrying.
func Associate(ctx context.Context, link Link, cfg types.Config, opt Options) error {
	opt.defaults()
	log := opt.Log.With("svc", "wifi")

	if cfg.SSID == "" {
		return netlink.ErrMissingSSID
	}
	params := &netlink.ConnectParams{
		ConnectMode:    netlink.ConnectModeSTA,
		Ssid:           cfg.SSID,
		Passphrase:     cfg.Password,
		AuthType:       netlink.AuthTypeWPA2,
		ConnectTimeout: time.Duration(opt.Attempts) * opt.Interval,
	}
	if err := link.NetConnect(params); err != nil {
		return errcode.Wrap(errcode.AssociationTimeout, "wifi connect", err)
	}
	for i := 0; i < opt.Attempts; i++ {
		if link.Connected() {
			log.Info("associated", "ssid", cfg.SSID, "attempt", i+1)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		opt.Clock.Sleep(opt.Interval)
	}
	if link.Connected() {
		log.Info("associated", "ssid", cfg.SSID, "attempt", opt.Attempts)
		return nil
	}
	link.NetDisconnect()
	return errcode.Wrap(errcode.AssociationTimeout, "wifi associate", netlink.ErrConnectTimeout)
}

// StartAccessPoint tears down station mode and starts the fixed config AP.
func StartAccessPoint(link Link, log *slog.Logger) error {
	link.NetDisconnect()
	params := &netlink.ConnectParams{
		ConnectMode: netlink.ConnectModeAP,
		Ssid:        APSSID,
		Passphrase:  APPassphrase,
		AuthType:    netlink.AuthTypeWPA2,
	}
	if err := link.NetConnect(params); err != nil {
		return errcode.Wrap(errcode.Error, "wifi ap", err)
	}
	if log != nil {
		log.Info("access point up", "svc", "wifi", "ssid", APSSID, "addr", APAddress)
	}
	return nil
}

// Station binds a link and configuration for the control loop.
type Station struct {
	Link    Link
	Config  types.Config
	Options Options
}

func (s *Station) Associate(ctx context.Context) error {
	return Associate(ctx, s.Link, s.Config, s.Options)
}
