package sdk

import (
	"context"
	"fmt"

	"switchscan/internal/transport"
)

// Initialize enables the radio.
func (c *Client) Initialize(ctx context.Context) error {
	return c.transport.Initialize(ctx)
}

// Connect attaches the frame listener and makes one connection attempt. A
// live session is left untouched; use Reconnect to switch devices.
func (c *Client) Connect(ctx context.Context, deviceID string) error {
	if state := c.transport.State(); state != transport.Disconnected && state != transport.Scanning {
		return &transport.Error{Op: "connect", Device: deviceID, Err: fmt.Errorf("%w: %s", transport.ErrBusy, state)}
	}
	c.attachListener()
	if err := c.transport.Connect(ctx, deviceID); err != nil {
		c.detachListener()
		return err
	}
	if d, ok := c.ConnectedDevice(); ok {
		name := d.Name
		if name == "" {
			name = d.ID
		}
		c.emitStatus(fmt.Sprintf("connected: %s", name))
	}
	return nil
}

// Reconnect drops the current session and connects to deviceID.
func (c *Client) Reconnect(ctx context.Context, deviceID string) error {
	_ = c.Disconnect()
	return c.Connect(ctx, deviceID)
}

// Disconnect is idempotent; the transport drops every listener.
func (c *Client) Disconnect() error {
	err := c.transport.Disconnect()
	c.clearListener()
	if err == nil {
		c.emitStatus("disconnected")
	}
	return err
}

// Close stops scanning, disconnects and ends the event pump.
func (c *Client) Close() error {
	err := c.transport.Close()
	c.clearListener()
	c.closePump()
	return err
}

func (c *Client) attachListener() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hasListener {
		c.transport.RemoveListener(c.listener)
	}
	c.listener = c.transport.AddListener(c.handleFrame)
	c.hasListener = true
}

func (c *Client) detachListener() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasListener {
		return
	}
	c.transport.RemoveListener(c.listener)
	c.hasListener = false
}
