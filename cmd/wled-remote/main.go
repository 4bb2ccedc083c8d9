//go:build linux

// Command wled-remote runs the rotary/button remote on an embedded Linux
// board: GPIO through the character device, Wi-Fi through NetworkManager,
// deep sleep through suspend-to-RAM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"wledremote/platform"
	"wledremote/services/config"
	"wledremote/services/discovery"
	"wledremote/services/input"
	"wledremote/services/portal"
	"wledremote/services/power"
	"wledremote/services/statestore"
	"wledremote/services/wifi"
	"wledremote/services/wled"
)

type settings struct {
	ConfigPath string `env:"WLED_REMOTE_CONFIG"  envDefault:"/etc/wled-remote/wled_config.yaml"`
	RunDir     string `env:"WLED_REMOTE_RUN_DIR" envDefault:"/run/wled-remote"`
	LogLevel   string `env:"WLED_REMOTE_LOG_LEVEL" envDefault:"info"`

	Chip          string `env:"WLED_REMOTE_GPIO_CHIP"  envDefault:"gpiochip0"`
	PinCLK        int    `env:"WLED_REMOTE_PIN_CLK"    envDefault:"17"`
	PinDT         int    `env:"WLED_REMOTE_PIN_DT"     envDefault:"27"`
	PinButton     int    `env:"WLED_REMOTE_PIN_BUTTON" envDefault:"22"`
	StepsPerClick int    `env:"WLED_REMOTE_ENCODER_STEPS" envDefault:"4"`
	Reverse       bool   `env:"WLED_REMOTE_ENCODER_REVERSE"`
	// Wakeup node of a gpio-keys device on its own GPIO, wired in parallel
	// with the button: gpiocdev already holds PinButton. Empty disables
	// deep sleep and the remote stays Active.
	WakeSysfs string `env:"WLED_REMOTE_WAKE_SYSFS"`

	WifiIface  string `env:"WLED_REMOTE_WIFI_IFACE" envDefault:"wlan0"`
	Wired      bool   `env:"WLED_REMOTE_WIRED"`
	PortalAddr string `env:"WLED_REMOTE_PORTAL_ADDR" envDefault:":80"`

	PollInterval time.Duration `env:"WLED_REMOTE_POLL"       envDefault:"10ms"`
	Inactivity   time.Duration `env:"WLED_REMOTE_INACTIVITY" envDefault:"15s"`
	LongPress    time.Duration `env:"WLED_REMOTE_LONG_PRESS" envDefault:"10s"`
	Step         int           `env:"WLED_REMOTE_STEP"       envDefault:"5"`
}

func main() {
	var s settings
	if err := env.Parse(&s); err != nil {
		fmt.Fprintln(os.Stderr, "wled-remote: parse env:", err)
		os.Exit(2)
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		lvl = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	reason := platform.ConsumeBootReason(s.RunDir)
	log.Info("start", "boot", reason)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadOrDefault(s.ConfigPath, log)
	if s.WakeSysfs == "" {
		log.Warn("no wake source configured, deep sleep disabled")
	}

	inputs, err := platform.OpenInputs(platform.Pins{
		Chip:    s.Chip,
		EncA:    s.PinCLK,
		EncB:    s.PinDT,
		Button:  s.PinButton,
		Reverse: s.Reverse,
		Steps:   s.StepsPerClick,
	})
	if err != nil {
		log.Error("gpio", "err", err)
		os.Exit(1)
	}

	link := &platform.NMLink{Iface: s.WifiIface}
	var network power.Network
	if !s.Wired {
		network = &wifi.Station{Link: link, Config: cfg, Options: wifi.Options{Log: log}}
	}

	ctrl := power.New(power.Deps{
		Sampler: input.NewSampler(inputs.Decoder, input.LevelButton{Level: inputs.ButtonLevel, ActiveLow: true}),
		Store:   statestore.New(statestore.FileScratch{Path: platform.ScratchPath(s.RunDir)}, reason, log),
		Network: network,
		OpenSender: func(ctx context.Context) wled.Sender {
			return wled.Open(discovery.ResolveEndpoint(ctx, cfg, discovery.Resolver{Log: log}), log)
		},
		Inputs: inputs,
		Halter: &platform.Halter{RunDir: s.RunDir, WakeSysfs: s.WakeSysfs, Log: log},
		Config: &portal.AccessPoint{
			Link:   link,
			Addr:   s.PortalAddr,
			Portal: portal.New(s.ConfigPath, cfg, platform.Rebooter{}, log),
			Log:    log,
		},
		Log: log,
	}, power.Timing{
		PollInterval:      s.PollInterval,
		InactivityTimeout: s.Inactivity,
		LongPress:         s.LongPress,
		Step:              s.Step,
	})

	mode, err := ctrl.Run(ctx)
	if err != nil && ctx.Err() == nil {
		log.Error("stopped", "mode", mode, "err", err)
		os.Exit(1)
	}
	log.Info("stopped", "mode", mode)
}
