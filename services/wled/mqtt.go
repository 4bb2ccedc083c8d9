package wled

import (
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"wledremote/errcode"
	"wledremote/types"
)

const (
	mqttTimeout      = 2 * time.Second
	mqttWriteTimeout = 5 * time.Millisecond
	mqttDisconnectMs = 250
)

// MQTTSender publishes intents to WLED's "<topic>/api" JSON endpoint.
// Used when the UDP port is firewalled but a broker is reachable.
type MQTTSender struct {
	broker string
	topic  string
	client mqtt.Client
	log    *slog.Logger
}

func NewMQTTSender(broker, topic string, log *slog.Logger) *MQTTSender {
	if topic == "" {
		topic = "wled/all"
	}
	return &MQTTSender{
		broker: broker,
		topic:  strings.TrimSuffix(topic, "/") + "/api",
		log:    log.With("svc", "wled", "transport", types.TransportMQTT),
	}
}

// Topic is the publish topic.
func (s *MQTTSender) Topic() string { return s.topic }

// Connect opens the broker session. It blocks for up to two seconds and
// is called once before the poll loop starts; Send never connects.
func (s *MQTTSender) Connect() error {
	if s.broker == "" {
		return errcode.NoEndpoint
	}
	if s.client != nil && s.client.IsConnected() {
		return nil
	}
	opts := mqtt.NewClientOptions().
		AddBroker(s.broker).
		SetClientID("wled-remote-" + uuid.NewString()).
		SetConnectTimeout(mqttTimeout).
		SetWriteTimeout(mqttWriteTimeout).
		SetAutoReconnect(false).
		SetConnectRetry(false)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(mqttTimeout) {
		return errcode.Wrap(errcode.SendFailed, "mqtt connect", errcode.Timeout)
	}
	if err := tok.Error(); err != nil {
		return errcode.Wrap(errcode.SendFailed, "mqtt connect", err)
	}
	s.client = c
	return nil
}

// Send publishes at QoS 0 without waiting for the token; the only bound
// is the client's write timeout, well under one poll period.
func (s *MQTTSender) Send(in Intent) error {
	if s.broker == "" {
		return errcode.NoEndpoint
	}
	msg, err := in.Encode()
	if err != nil {
		return errcode.Wrap(errcode.SendFailed, "mqtt encode", err)
	}
	if s.client == nil || !s.client.IsConnected() {
		return &errcode.E{C: errcode.SendFailed, Op: "mqtt publish", Msg: "not connected"}
	}
	tok := s.client.Publish(s.topic, 0, false, msg)
	select {
	case <-tok.Done():
		if err := tok.Error(); err != nil {
			return errcode.Wrap(errcode.SendFailed, "mqtt publish", err)
		}
	default:
	}
	s.log.Debug("sent", "topic", s.topic, "payload", string(msg))
	return nil
}

func (s *MQTTSender) Close() error {
	if s.client != nil {
		s.client.Disconnect(mqttDisconnectMs)
		s.client = nil
	}
	return nil
}
