package sdk

import (
	"log/slog"
	"sync"

	"switchscan/internal/intent"
	"switchscan/internal/protocol/sensorframe"
	"switchscan/internal/transport"
)

// Client is the sensor input facade: it owns the transport manager and the
// frame decoder and publishes decoded intents on a channel.
type Client struct {
	transport *transport.Manager
	decoder   *sensorframe.Decoder
	opts      DeviceOptions
	logger    *slog.Logger

	mu          sync.RWMutex
	listener    transport.ListenerID
	hasListener bool
	intentN     uint64
	lastKind    sensorframe.SensorKind

	intents  chan IntentEvent
	statuses chan StatusEvent
	errs     chan error
	stop     chan struct{}
	once     sync.Once
}

func NewClient(radio transport.Radio, opts DeviceOptions, logger *slog.Logger) *Client {
	opts = normalizeOptions(opts)
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		transport: transport.NewManager(radio, transport.Options{
			NamePrefix: opts.NamePrefix,
			Target: transport.Target{
				ServiceUUID:        opts.ServiceUUID,
				CharacteristicUUID: opts.CharacteristicUUID,
			},
			ConnectTimeout: opts.ConnectTimeout,
			Logger:         logger,
		}),
		decoder:  sensorframe.NewDecoder(logger),
		opts:     opts,
		logger:   logger,
		intents:  make(chan IntentEvent, 256),
		statuses: make(chan StatusEvent, 256),
		errs:     make(chan error, 64),
		stop:     make(chan struct{}),
	}
	go c.pumpEvents()
	return c
}

func (c *Client) Intents() <-chan IntentEvent {
	return c.intents
}

func (c *Client) Statuses() <-chan StatusEvent {
	return c.statuses
}

func (c *Client) Errors() <-chan error {
	return c.errs
}

// Decoder exposes the frame decoder, e.g. to register extra sensor kinds.
func (c *Client) Decoder() *sensorframe.Decoder {
	return c.decoder
}

func (c *Client) Options() DeviceOptions {
	return c.opts
}

func (c *Client) State() transport.ConnectionState {
	return c.transport.State()
}

func (c *Client) IsConnected() bool {
	return c.transport.State() == transport.Connected
}

// ConnectedDevice returns the sensor of the open session.
func (c *Client) ConnectedDevice() (Device, bool) {
	d, ok := c.transport.Connected()
	if !ok {
		return Device{}, false
	}
	return fromTransportDevice(d), true
}

// LastKind is the sensor kind of the most recent valid frame.
func (c *Client) LastKind() sensorframe.SensorKind {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastKind
}

func (c *Client) Stats() Stats {
	ds := c.decoder.Stats()
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Stats{
		State:     c.transport.State().String(),
		Intents:   c.intentN,
		Decoded:   ds.Decoded,
		Dropped:   ds.Dropped,
		LastKind:  string(c.lastKind),
		Listening: c.hasListener,
	}
	if d, ok := c.transport.Connected(); ok {
		st.Device = d.Name
		if st.Device == "" {
			st.Device = d.ID
		}
	}
	return st
}

// handleFrame runs on the transport dispatch goroutine.
func (c *Client) handleFrame(frame transport.Frame) {
	in, decoded, err := c.decoder.DecodeFrame(frame.Data)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.lastKind = decoded.Kind
	if in != intent.None {
		c.intentN++
	}
	c.mu.Unlock()
	if in == intent.None {
		return
	}
	c.emitIntent(IntentEvent{
		When:   frame.When,
		Intent: in,
		Kind:   string(decoded.Kind),
		Raw:    decoded.Raw,
		Source: intent.SourceDevice,
	})
}

func (c *Client) pumpEvents() {
	for {
		select {
		case <-c.stop:
			return
		case ev := <-c.transport.Events():
			switch ev.Kind {
			case transport.EventState:
				c.emitStatus(ev.State.String())
			case transport.EventDevice:
				name := ev.Device.Name
				if name == "" {
					name = ev.Device.ID
				}
				c.emitStatus("found " + name)
			case transport.EventLinkLost:
				c.clearListener()
				c.emitErr(&transport.Error{Op: "link", Device: ev.Device.ID, Err: transport.ErrNotConnected})
			case transport.EventError:
				c.emitErr(ev.Err)
			}
		}
	}
}

func (c *Client) clearListener() {
	c.mu.Lock()
	c.hasListener = false
	c.mu.Unlock()
}

func (c *Client) closePump() {
	c.once.Do(func() { close(c.stop) })
}
