// Package wled sends state intents to a WLED controller using its JSON
// state API. Delivery is best-effort: there is no acknowledgement.
package wled

import (
	"encoding/json"
	"log/slog"

	"wledremote/types"
)

// Intent is a partial state update. Nil fields are not sent.
type Intent struct {
	On  *bool `json:"on,omitempty"`
	Bri *int  `json:"bri,omitempty"`
}

func Brightness(b int) Intent { return Intent{Bri: &b} }
func Power(on bool) Intent    { return Intent{On: &on} }

// Full is the sync intent sent when the remote (re)enters Active mode.
func Full(st types.DeviceState) Intent {
	on, bri := st.PowerOn, st.Brightness
	return Intent{On: &on, Bri: &bri}
}

// Encode returns the compact JSON payload, e.g. {"on":true,"bri":128}.
func (i Intent) Encode() ([]byte, error) { return json.Marshal(i) }

// Sender delivers intents to the lighting endpoint.
type Sender interface {
	Send(Intent) error
	Close() error
}

// Connector is a sender with a session to open before use.
type Connector interface {
	Connect() error
}

// New returns the sender selected by cfg.Transport; UDP is the default.
func New(cfg types.Config, log *slog.Logger) Sender {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Transport == types.TransportMQTT {
		return NewMQTTSender(cfg.MQTTBroker, cfg.MQTTTopic, log)
	}
	return NewUDPSender(cfg.IP, cfg.Port, log)
}

// Open is New followed by Connect for senders that need a session. A
// failed connect is logged and the sender is still returned; its sends
// then fail fast.
func Open(cfg types.Config, log *slog.Logger) Sender {
	s := New(cfg, log)
	if c, ok := s.(Connector); ok {
		if err := c.Connect(); err != nil {
			if log == nil {
				log = slog.Default()
			}
			log.Warn("connect", "svc", "wled", "transport", cfg.Transport, "err", err)
		}
	}
	return s
}
