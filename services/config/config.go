// Package config loads and saves the device configuration document.
//
// The document is YAML; since YAML is a superset of JSON, configuration
// files written by older firmware as JSON load unchanged.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"wledremote/errcode"
	"wledremote/types"
	"wledremote/x/mathx"
)

// Form keys accepted by Merge.
const (
	KeyIP       = "ip"
	KeyPort     = "port"
	KeySSID     = "ssid"
	KeyPassword = "pw"
)

// Load reads path. A missing or unparsable file yields the defaults; the
// error is returned only so the caller can log why.
func Load(path string) (types.Config, error) {
	def := types.DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return def, errcode.NotFound
		}
		return def, errcode.Wrap(errcode.InvalidConfig, "config read", err)
	}
	cfg := def
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return def, errcode.Wrap(errcode.InvalidConfig, "config parse", err)
	}
	return normalise(cfg), nil
}

// LoadOrDefault is Load with the fallback logged.
func LoadOrDefault(path string, log *slog.Logger) types.Config {
	cfg, err := Load(path)
	if err != nil {
		log.Info("using default config", "path", path, "reason", err)
	}
	return cfg
}

// Save writes cfg to path atomically.
func Save(path string, cfg types.Config) error {
	b, err := yaml.Marshal(normalise(cfg))
	if err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config encode", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Merge applies submitted form values over cfg. A field that is missing or
// malformed keeps its current value; the request as a whole never fails.
func Merge(cfg types.Config, form url.Values) types.Config {
	if v, ok := field(form, KeyIP); ok {
		cfg.IP = strings.TrimSpace(v)
	}
	if v, ok := field(form, KeyPort); ok {
		if p, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && validPort(p) {
			cfg.Port = p
		}
	}
	if v, ok := field(form, KeySSID); ok {
		cfg.SSID = v
	}
	if v, ok := field(form, KeyPassword); ok {
		cfg.Password = v
	}
	return cfg
}

func field(form url.Values, key string) (string, bool) {
	vs, ok := form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func validPort(p int) bool { return mathx.Between(p, 1, 65535) }

func normalise(cfg types.Config) types.Config {
	if !validPort(cfg.Port) {
		cfg.Port = types.DefaultPort
	}
	switch cfg.Transport {
	case types.TransportUDP, types.TransportMQTT:
	default:
		cfg.Transport = types.TransportUDP
	}
	return cfg
}
