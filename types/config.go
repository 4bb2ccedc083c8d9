package types

// Lighting transports understood by the sender.
const (
	TransportUDP  = "udp"
	TransportMQTT = "mqtt"
)

// DefaultPort is the WLED UDP realtime/JSON port.
const DefaultPort = 21324

// Config is the device configuration document edited through the
// configuration portal. The first four keys are the ones the form exposes.
type Config struct {
	IP       string `yaml:"ip" json:"ip"`
	Port     int    `yaml:"port" json:"port"`
	SSID     string `yaml:"ssid" json:"ssid"`
	Password string `yaml:"pw" json:"pw"`

	Transport  string `yaml:"transport,omitempty" json:"transport,omitempty"`
	MQTTBroker string `yaml:"mqtt_broker,omitempty" json:"mqtt_broker,omitempty"`
	MQTTTopic  string `yaml:"mqtt_topic,omitempty" json:"mqtt_topic,omitempty"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{Port: DefaultPort, Transport: TransportUDP}
}
