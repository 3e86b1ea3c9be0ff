package sdk

import (
	"context"
	"fmt"
)

func (c *Client) StartScan() error {
	return c.transport.StartScan()
}

func (c *Client) StopScan() error {
	return c.transport.StopScan()
}

// Devices lists discovered sensors, name-prefix matches first.
func (c *Client) Devices() []Device {
	internal := c.transport.Devices()
	out := make([]Device, 0, len(internal))
	for _, d := range internal {
		out = append(out, fromTransportDevice(d))
	}
	return out
}

// Discover scans for the configured window, or until ctx ends.
func (c *Client) Discover(ctx context.Context) ([]Device, error) {
	if _, err := c.transport.Discover(ctx, c.opts.ScanWindow); err != nil && ctx.Err() == nil {
		return nil, err
	}
	return c.Devices(), nil
}

// QuickConnect scans and connects to the best device matching the name
// prefix. Non-matching devices are never picked automatically. An open
// session is dropped first since the radio cannot scan while connected.
func (c *Client) QuickConnect(ctx context.Context) (Device, error) {
	if c.IsConnected() {
		_ = c.Disconnect()
	}
	devices, err := c.Discover(ctx)
	if err != nil {
		return Device{}, err
	}
	var chosen Device
	found := false
	for _, d := range devices {
		if d.Preferred {
			chosen = d
			found = true
			break
		}
	}
	if !found {
		return Device{}, fmt.Errorf("no device matching %q found (%d seen)", c.opts.NamePrefix, len(devices))
	}
	if err := c.Reconnect(ctx, chosen.ID); err != nil {
		return chosen, err
	}
	return chosen, nil
}
