package sdk

import (
	"time"

	"switchscan/internal/intent"
	"switchscan/internal/transport"
)

const (
	DefaultNamePrefix         = "ESP32-S3-Touch"
	DefaultServiceUUID        = "4fafc201-1d5a-459e-8fcc-c5c9c331914b"
	DefaultCharacteristicUUID = "beb5483e-36e1-4688-b7f5-ea07361b26a8"
)

// DeviceOptions select and bound the sensor connection.
type DeviceOptions struct {
	NamePrefix         string
	ServiceUUID        string
	CharacteristicUUID string
	ConnectTimeout     time.Duration
	ScanWindow         time.Duration
}

// DefaultDeviceOptions targets the stock ESP32 touch sensor firmware.
func DefaultDeviceOptions() DeviceOptions {
	return DeviceOptions{
		NamePrefix:         DefaultNamePrefix,
		ServiceUUID:        DefaultServiceUUID,
		CharacteristicUUID: DefaultCharacteristicUUID,
		ConnectTimeout:     10 * time.Second,
		ScanWindow:         8 * time.Second,
	}
}

func normalizeOptions(opts DeviceOptions) DeviceOptions {
	defaults := DefaultDeviceOptions()
	if opts.ServiceUUID == "" {
		opts.ServiceUUID = defaults.ServiceUUID
	}
	if opts.CharacteristicUUID == "" {
		opts.CharacteristicUUID = defaults.CharacteristicUUID
	}
	if opts.ConnectTimeout < time.Second {
		opts.ConnectTimeout = time.Second
	}
	if opts.ScanWindow <= 0 {
		opts.ScanWindow = defaults.ScanWindow
	}
	return opts
}

// Device is one discovered sensor.
type Device struct {
	ID        string
	Name      string
	RSSI      int16
	Preferred bool
}

func fromTransportDevice(d transport.Device) Device {
	return Device{ID: d.ID, Name: d.Name, RSSI: d.RSSI, Preferred: d.Preferred}
}

// IntentEvent is one decoded, non-none navigation intent from the sensor.
type IntentEvent struct {
	When   time.Time
	Intent intent.Intent
	Kind   string
	Raw    string
	Source intent.Source
}

// StatusEvent is a lightweight progress signal from the client.
type StatusEvent struct {
	When    time.Time
	Message string
}

// Stats captures decoder and link counters.
type Stats struct {
	State     string
	Device    string
	Intents   uint64
	Decoded   uint64
	Dropped   uint64
	LastKind  string
	Listening bool
}
