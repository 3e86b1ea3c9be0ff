package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	defaultFrameBuffer    = 256
	drainTimeout          = 1200 * time.Millisecond
)

// Options configure a Manager.
type Options struct {
	// NamePrefix marks the default peripheral; matches sort first.
	NamePrefix     string
	Target         Target
	ConnectTimeout time.Duration
	FrameBuffer    int
	Logger         *slog.Logger
}

// EventKind classifies manager events.
type EventKind string

const (
	EventState    EventKind = "state"
	EventDevice   EventKind = "device"
	EventLinkLost EventKind = "link_lost"
	EventError    EventKind = "error"
)

// Event is published on Events without blocking the radio.
type Event struct {
	Kind   EventKind
	State  ConnectionState
	Device Device
	Err    error
	When   time.Time
}

type session struct {
	device Device
	link   Link
	frames chan Frame
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Manager owns the single radio session: discovery, one connection and the
// raw frame subscription.
type Manager struct {
	radio  Radio
	opts   Options
	logger *slog.Logger

	devices   *registry
	listeners listenerSet
	events    chan Event

	mu            sync.Mutex
	ready         bool
	state         ConnectionState
	scanCancel    context.CancelFunc
	scanDone      chan struct{}
	connectCancel context.CancelFunc
	session       *session
}

func NewManager(radio Radio, opts Options) *Manager {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.FrameBuffer <= 0 {
		opts.FrameBuffer = defaultFrameBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		radio:   radio,
		opts:    opts,
		logger:  logger.With("component", "transport"),
		devices: newRegistry(opts.NamePrefix),
		events:  make(chan Event, 64),
		state:   Disconnected,
	}
}

// Initialize enables the radio. Calling it again after success is a no-op.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	ready := m.ready
	m.mu.Unlock()
	if ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return &Error{Op: "initialize", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	if err := m.radio.Enable(); err != nil {
		kind := classifyEnable(err)
		m.logger.Warn("radio enable failed", "err", err)
		return &Error{Op: "initialize", Err: fmt.Errorf("%w: %v", kind, err)}
	}
	m.mu.Lock()
	m.ready = true
	m.mu.Unlock()
	return nil
}

func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Events() <-chan Event {
	return m.events
}

// Devices returns the discovered devices, preferred ones first.
func (m *Manager) Devices() []Device {
	return m.devices.List()
}

// Connected returns the device of the open session.
func (m *Manager) Connected() (Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Device{}, false
	}
	return m.session.device, true
}

// StartScan begins discovery. It is a no-op while already scanning and
// clears the previous device list otherwise.
func (m *Manager) StartScan() error {
	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return &Error{Op: "scan", Err: ErrUnavailable}
	}
	if m.state == Scanning {
		m.mu.Unlock()
		return nil
	}
	if m.state != Disconnected {
		state := m.state
		m.mu.Unlock()
		return &Error{Op: "scan", Err: fmt.Errorf("%w: %s", ErrBusy, state)}
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.scanCancel = cancel
	m.scanDone = done
	m.devices.Reset()
	m.setStateLocked(Scanning)
	m.mu.Unlock()

	go m.scanLoop(ctx, done)
	return nil
}

func (m *Manager) scanLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	err := m.radio.Scan(ctx, m.observe)

	m.mu.Lock()
	if m.scanDone == done {
		m.scanCancel = nil
		m.scanDone = nil
		if m.state == Scanning {
			m.setStateLocked(Disconnected)
		}
	}
	m.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		m.logger.Warn("scan stopped", "err", err)
		m.emit(Event{Kind: EventError, Err: &Error{Op: "scan", Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}})
	}
}

func (m *Manager) observe(ad Advertisement) {
	dev, added := m.devices.Observe(ad, time.Now())
	if !added {
		return
	}
	m.logger.Debug("device discovered", "id", dev.ID, "name", dev.Name, "rssi", dev.RSSI)
	m.emit(Event{Kind: EventDevice, Device: dev})
}

// StopScan ends discovery. Safe when no scan is running.
func (m *Manager) StopScan() error {
	m.mu.Lock()
	cancel, done := m.scanCancel, m.scanDone
	if cancel == nil {
		m.mu.Unlock()
		return nil
	}
	m.scanCancel = nil
	m.scanDone = nil
	if m.state == Scanning {
		m.setStateLocked(Disconnected)
	}
	m.mu.Unlock()

	cancel()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		m.logger.Warn("scan did not stop in time")
	}
	return nil
}

// Discover scans for window (or until ctx ends) and returns what was found.
func (m *Manager) Discover(ctx context.Context, window time.Duration) ([]Device, error) {
	if err := m.StartScan(); err != nil {
		return nil, err
	}
	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	_ = m.StopScan()
	return m.Devices(), ctx.Err()
}

// Connect makes a single attempt to reach a discovered device, bounded by
// the configured timeout. Scanning is stopped first.
func (m *Manager) Connect(ctx context.Context, id string) error {
	dev, ok := m.devices.Get(id)
	if !ok {
		return &Error{Op: "connect", Device: id, Err: ErrUnknownDevice}
	}

	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return &Error{Op: "connect", Device: id, Err: ErrUnavailable}
	}
	if m.state == Connecting || m.state == Connected {
		state := m.state
		m.mu.Unlock()
		return &Error{Op: "connect", Device: id, Err: fmt.Errorf("%w: %s", ErrBusy, state)}
	}
	m.mu.Unlock()

	_ = m.StopScan()

	cctx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
	defer cancel()

	m.mu.Lock()
	if m.state != Disconnected {
		m.mu.Unlock()
		return &Error{Op: "connect", Device: id, Err: ErrBusy}
	}
	m.connectCancel = cancel
	m.setStateLocked(Connecting)
	m.mu.Unlock()

	m.logger.Info("connecting", "id", dev.ID, "name", dev.Name)
	link, err := m.radio.Connect(cctx, dev.ID, m.opts.Target)
	if err != nil {
		kind := ErrConnectionFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			kind = ErrTimeout
		}
		return m.failConnect(id, fmt.Errorf("%w: %v", kind, err))
	}

	s := &session{
		device: dev,
		link:   link,
		frames: make(chan Frame, m.opts.FrameBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if err := link.Subscribe(s.deliverer(m)); err != nil {
		_ = link.Disconnect()
		return m.failConnect(id, fmt.Errorf("%w: subscribe: %v", ErrConnectionFailed, err))
	}

	m.mu.Lock()
	m.connectCancel = nil
	if m.state != Connecting {
		// Disconnect raced the attempt.
		m.mu.Unlock()
		_ = link.Disconnect()
		return &Error{Op: "connect", Device: id, Err: fmt.Errorf("%w: cancelled", ErrConnectionFailed)}
	}
	m.session = s
	m.setStateLocked(Connected)
	m.mu.Unlock()

	go m.dispatch(s)
	go m.watch(s)
	m.logger.Info("connected", "id", dev.ID, "name", dev.Name)
	return nil
}

func (m *Manager) failConnect(id string, err error) error {
	m.mu.Lock()
	m.connectCancel = nil
	if m.state == Connecting {
		m.setStateLocked(Disconnected)
	}
	m.mu.Unlock()
	terr := &Error{Op: "connect", Device: id, Err: err}
	m.logger.Warn("connect failed", "id", id, "err", err)
	m.emit(Event{Kind: EventError, Err: terr})
	return terr
}

// deliverer copies each notification into the session buffer. It runs on
// the radio's goroutine and never blocks it.
func (s *session) deliverer(m *Manager) func([]byte) {
	return func(b []byte) {
		data := make([]byte, len(b))
		copy(data, b)
		select {
		case <-s.stop:
			return
		default:
		}
		select {
		case s.frames <- Frame{When: time.Now(), Data: data}:
		default:
			m.logger.Warn("frame buffer full, frame dropped", "bytes", len(data))
		}
	}
}

func (m *Manager) dispatch(s *session) {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case frame := <-s.frames:
			for _, l := range m.listeners.snapshot() {
				m.deliver(l, frame)
			}
		}
	}
}

func (m *Manager) deliver(l listenerEntry, frame Frame) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("frame listener panicked", "listener", l.id, "panic", r)
		}
	}()
	l.fn(frame)
}

func (m *Manager) watch(s *session) {
	select {
	case <-s.stop:
	case <-s.link.Lost():
		if m.teardown(s) {
			m.logger.Warn("link lost", "id", s.device.ID)
			m.emit(Event{Kind: EventLinkLost, Device: s.device})
		}
	}
}

// teardown detaches s if it is still the active session. Listeners are
// cleared before the dispatch loop stops.
func (m *Manager) teardown(s *session) bool {
	m.mu.Lock()
	if m.session != s {
		m.mu.Unlock()
		return false
	}
	m.session = nil
	m.setStateLocked(Disconnected)
	m.mu.Unlock()

	m.listeners.clear()
	s.once.Do(func() { close(s.stop) })
	select {
	case <-s.done:
	case <-time.After(drainTimeout):
	}
	return true
}

// Disconnect closes the session and drops every frame listener. It is
// idempotent and also cancels an attempt still in progress.
func (m *Manager) Disconnect() error {
	m.mu.Lock()
	s := m.session
	cancel := m.connectCancel
	if s == nil && m.state == Connecting {
		m.setStateLocked(Disconnected)
	}
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if s == nil {
		m.listeners.clear()
		return nil
	}
	if !m.teardown(s) {
		return nil
	}
	if err := s.link.Disconnect(); err != nil {
		return &Error{Op: "disconnect", Device: s.device.ID, Err: err}
	}
	m.logger.Info("disconnected", "id", s.device.ID)
	return nil
}

// Close stops discovery and disconnects.
func (m *Manager) Close() error {
	_ = m.StopScan()
	return m.Disconnect()
}

// AddListener subscribes fn to raw frames. Listeners are dropped on
// disconnect and link loss.
func (m *Manager) AddListener(fn FrameListener) ListenerID {
	return m.listeners.add(fn)
}

func (m *Manager) RemoveListener(id ListenerID) bool {
	return m.listeners.remove(id)
}

func (m *Manager) ListenerCount() int {
	return m.listeners.len()
}

func (m *Manager) setStateLocked(next ConnectionState) {
	if m.state == next {
		return
	}
	if !canTransition(m.state, next) {
		m.logger.Warn("illegal connection state transition ignored", "from", m.state, "to", next)
		return
	}
	m.logger.Debug("connection state", "from", m.state, "to", next)
	m.state = next
	m.emit(Event{Kind: EventState, State: next})
}

func (m *Manager) emit(ev Event) {
	if ev.When.IsZero() {
		ev.When = time.Now()
	}
	select {
	case m.events <- ev:
	default:
	}
}
