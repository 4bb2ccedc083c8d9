package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"tinygo.org/x/drivers/netlink"

	"wledremote/services/wifi"
)

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(name string, args ...string) ([]byte, error)
}

type ExecRunner struct{}

func (ExecRunner) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

const apConnection = "wled-config"

// NMLink drives the radio through NetworkManager's nmcli.
type NMLink struct {
	Iface string
	Run   Runner
}

func (l *NMLink) run(args ...string) ([]byte, error) {
	r := l.Run
	if r == nil {
		r = ExecRunner{}
	}
	out, err := r.Run("nmcli", args...)
	if err != nil {
		return out, fmt.Errorf("nmcli %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return out, nil
}

// NetConnect starts association (station) or brings up the hotspot (AP).
// Station mode does not wait; Connected reports progress.
func (l *NMLink) NetConnect(p *netlink.ConnectParams) error {
	if p.Ssid == "" {
		return netlink.ErrMissingSSID
	}
	if p.ConnectMode == netlink.ConnectModeAP {
		return l.startAP(p)
	}
	args := []string{"--wait", "0", "device", "wifi", "connect", p.Ssid}
	if p.Passphrase != "" {
		args = append(args, "password", p.Passphrase)
	}
	args = append(args, "ifname", l.Iface)
	_, err := l.run(args...)
	return err
}

func (l *NMLink) startAP(p *netlink.ConnectParams) error {
	if _, err := l.run("device", "wifi", "hotspot", "ifname", l.Iface,
		"con-name", apConnection, "ssid", p.Ssid, "password", p.Passphrase); err != nil {
		return err
	}
	addr := wifi.APAddress + "/" + strconv.Itoa(wifi.APPrefixLen)
	if _, err := l.run("connection", "modify", apConnection,
		"ipv4.method", "shared", "ipv4.addresses", addr); err != nil {
		return err
	}
	_, err := l.run("connection", "up", apConnection)
	return err
}

func (l *NMLink) NetDisconnect() {
	_, _ = l.run("device", "disconnect", l.Iface)
}

// Connected reports whether the interface reached state 100 (connected).
func (l *NMLink) Connected() bool {
	out, err := l.run("-t", "-f", "GENERAL.STATE", "device", "show", l.Iface)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), ":100")
}
