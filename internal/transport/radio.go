package transport

import (
	"context"
	"time"
)

// Advertisement is one discovery report from the radio.
type Advertisement struct {
	Address string
	Name    string
	RSSI    int16
}

// Target selects the GATT characteristic carrying sensor frames.
type Target struct {
	ServiceUUID        string
	CharacteristicUUID string
}

// Radio abstracts the BLE stack so the manager can be driven by a fake.
type Radio interface {
	Enable() error
	// Scan reports advertisements until ctx is cancelled.
	Scan(ctx context.Context, found func(Advertisement)) error
	Connect(ctx context.Context, address string, target Target) (Link, error)
}

// Link is one open peripheral connection.
type Link interface {
	// Subscribe enables notifications on the target characteristic.
	Subscribe(fn func([]byte)) error
	Disconnect() error
	// Lost is closed when the peripheral drops the connection.
	Lost() <-chan struct{}
}

// Frame is one raw notification payload.
type Frame struct {
	When time.Time
	Data []byte
}
