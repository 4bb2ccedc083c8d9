package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"wledremote/errcode"
	"wledremote/types"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, errcode.NotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
	if cfg != types.DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if cfg.Port != 21324 || cfg.IP != "" || cfg.SSID != "" || cfg.Password != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoad_LegacyJSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "wled_config.json")
	if err := os.WriteFile(p, []byte(`{"ip": "192.168.1.50", "port": 21324, "ssid": "home", "pw": "secret"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := types.Config{IP: "192.168.1.50", Port: 21324, SSID: "home", Password: "secret", Transport: types.TransportUDP}
	if cfg != want {
		t.Fatalf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoad_GarbageGivesDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	_ = os.WriteFile(p, []byte("ip: [unterminated"), 0o600)
	cfg, err := Load(p)
	if errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v, want invalid_config", err)
	}
	if cfg != types.DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "etc", "remote.yaml")
	in := types.Config{IP: "10.1.1.1", Port: 4048, SSID: "lab", Password: "p w", Transport: types.TransportMQTT, MQTTBroker: "tcp://10.1.1.2:1883", MQTTTopic: "wled/lab"}
	if err := Save(p, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out != in {
		t.Fatalf("round trip = %+v, want %+v", out, in)
	}
}

func TestMerge(t *testing.T) {
	base := types.Config{IP: "1.1.1.1", Port: 21324, SSID: "old", Password: "oldpw", Transport: types.TransportUDP}

	cases := []struct {
		name string
		form url.Values
		want types.Config
	}{
		{
			name: "all fields",
			form: url.Values{"ip": {"2.2.2.2"}, "port": {"1234"}, "ssid": {"new"}, "pw": {"newpw"}},
			want: types.Config{IP: "2.2.2.2", Port: 1234, SSID: "new", Password: "newpw", Transport: types.TransportUDP},
		},
		{
			name: "missing fields keep values",
			form: url.Values{"ssid": {"new"}},
			want: types.Config{IP: "1.1.1.1", Port: 21324, SSID: "new", Password: "oldpw", Transport: types.TransportUDP},
		},
		{
			name: "garbled port keeps value",
			form: url.Values{"port": {"eighty"}, "ip": {" 3.3.3.3 "}},
			want: types.Config{IP: "3.3.3.3", Port: 21324, SSID: "old", Password: "oldpw", Transport: types.TransportUDP},
		},
		{
			name: "out of range port keeps value",
			form: url.Values{"port": {"70000"}},
			want: base,
		},
		{
			name: "zero port keeps value",
			form: url.Values{"port": {"0"}},
			want: base,
		},
		{
			name: "top of port range",
			form: url.Values{"port": {"65535"}},
			want: types.Config{IP: "1.1.1.1", Port: 65535, SSID: "old", Password: "oldpw", Transport: types.TransportUDP},
		},
	}
	for _, tc := range cases {
		if got := Merge(base, tc.form); got != tc.want {
			t.Errorf("%s: Merge = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}
