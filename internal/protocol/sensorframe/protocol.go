package sensorframe

import (
	"errors"
	"fmt"
	"strings"
)

// Wire constants of the sensor notification characteristic.
const (
	Delimiter = "::"

	KindTouch  SensorKind = "TOUCH"
	KindTilt   SensorKind = "GYRO"
	KindMuscle SensorKind = "EMG"

	touchChannels = 4
)

// SensorKind is the frame prefix naming the physical sensor.
type SensorKind string

var (
	ErrMalformedFrame    = errors.New("malformed frame")
	ErrUnknownSensorKind = errors.New("unknown sensor kind")
)

// ProtocolError describes a frame that could not be turned into an intent.
type ProtocolError struct {
	Raw string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("sensor frame %q: %v", e.Raw, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Frame is one decoded notification.
// Wire format: <Kind>::<CSV payload>, e.g. TOUCH::0,1,0,0
type Frame struct {
	Kind    SensorKind
	Payload string
	Raw     string
}

// Values splits a CSV payload into trimmed fields.
func (f Frame) Values() []string {
	if f.Payload == "" {
		return nil
	}
	parts := strings.Split(f.Payload, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// ParseFrame splits raw notification bytes into kind and payload.
// Exactly one delimiter is allowed.
func ParseFrame(raw []byte) (Frame, error) {
	text := strings.TrimSpace(string(raw))
	parts := strings.Split(text, Delimiter)
	if len(parts) != 2 {
		return Frame{}, &ProtocolError{
			Raw: text,
			Err: fmt.Errorf("%w: want 2 parts, got %d", ErrMalformedFrame, len(parts)),
		}
	}
	return Frame{
		Kind:    SensorKind(strings.TrimSpace(parts[0])),
		Payload: strings.TrimSpace(parts[1]),
		Raw:     text,
	}, nil
}

// BuildFrame renders a frame in wire form. Used by tools and tests that
// need to fake sensor traffic.
func BuildFrame(kind SensorKind, values ...string) []byte {
	return []byte(string(kind) + Delimiter + strings.Join(values, ","))
}

// IsBinaryKind reports whether the sensor is a single on/off switch.
func IsBinaryKind(kind SensorKind) bool {
	return kind == KindTilt || kind == KindMuscle
}
