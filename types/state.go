package types

// Brightness limits and boot defaults for the lighting endpoint.
const (
	MinBrightness     = 0
	MaxBrightness     = 255
	DefaultBrightness = 128
)

// DeviceState is the only state that survives a deep-sleep cycle.
// Field keys match the blob written by earlier firmware revisions.
type DeviceState struct {
	Brightness int  `cbor:"brightness" json:"brightness"`
	PowerOn    bool `cbor:"wled_on" json:"wled_on"`
}

// DefaultDeviceState is used on cold boot and whenever restore fails.
func DefaultDeviceState() DeviceState {
	return DeviceState{Brightness: DefaultBrightness, PowerOn: true}
}

// InputSample is one poll of the physical inputs.
type InputSample struct {
	EncoderPosition int
	ButtonPressed   bool
}
