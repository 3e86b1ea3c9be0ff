package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLink struct {
	mu           sync.Mutex
	notify       func([]byte)
	lost         chan struct{}
	disconnected int
}

func newFakeLink() *fakeLink {
	return &fakeLink{lost: make(chan struct{})}
}

func (l *fakeLink) Subscribe(fn func([]byte)) error {
	l.mu.Lock()
	l.notify = fn
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) Disconnect() error {
	l.mu.Lock()
	l.disconnected++
	l.mu.Unlock()
	return nil
}

func (l *fakeLink) Lost() <-chan struct{} { return l.lost }

func (l *fakeLink) push(s string) {
	l.mu.Lock()
	fn := l.notify
	l.mu.Unlock()
	fn([]byte(s))
}

type fakeRadio struct {
	enableErr    error
	ads          []Advertisement
	connectErr   error
	blockConnect bool
	link         *fakeLink
	connects     atomic.Int32
}

func (r *fakeRadio) Enable() error { return r.enableErr }

func (r *fakeRadio) Scan(ctx context.Context, found func(Advertisement)) error {
	for _, ad := range r.ads {
		found(ad)
	}
	<-ctx.Done()
	return nil
}

func (r *fakeRadio) Connect(ctx context.Context, address string, target Target) (Link, error) {
	r.connects.Add(1)
	if r.blockConnect {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if r.connectErr != nil {
		return nil, r.connectErr
	}
	return r.link, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newTestManager(t *testing.T, radio *fakeRadio) *Manager {
	t.Helper()
	m := NewManager(radio, Options{NamePrefix: "ESP32-S3-Touch", ConnectTimeout: 50 * time.Millisecond, Logger: quietLogger()})
	require.NoError(t, m.Initialize(context.Background()))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func discovered(t *testing.T, m *Manager, n int) {
	t.Helper()
	require.NoError(t, m.StartScan())
	require.Eventually(t, func() bool { return len(m.Devices()) == n }, time.Second, 5*time.Millisecond)
	require.NoError(t, m.StopScan())
}

func TestStopScanIsIdempotent(t *testing.T) {
	m := newTestManager(t, &fakeRadio{})

	require.NotPanics(t, func() {
		assert.NoError(t, m.StopScan())
		assert.NoError(t, m.StopScan())
	})
	assert.Equal(t, Disconnected, m.State())

	require.NoError(t, m.StartScan())
	assert.NoError(t, m.StopScan())
	assert.NoError(t, m.StopScan())
	assert.Equal(t, Disconnected, m.State())
}

func TestInitializeUnavailable(t *testing.T) {
	m := NewManager(&fakeRadio{enableErr: errors.New("adapter not found")}, Options{Logger: quietLogger()})
	err := m.Initialize(context.Background())
	var terr *Error
	require.True(t, errors.As(err, &terr))
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, m.StartScan(), ErrUnavailable)
}

func TestInitializePermissionDenied(t *testing.T) {
	m := NewManager(&fakeRadio{enableErr: errors.New("operation not permitted")}, Options{Logger: quietLogger()})
	assert.ErrorIs(t, m.Initialize(context.Background()), ErrPermissionDenied)
}

func TestScanDeduplicatesAndRanksDevices(t *testing.T) {
	radio := &fakeRadio{ads: []Advertisement{
		{Address: "AA", Name: "Headphones"},
		{Address: "BB", Name: "ESP32-S3-Touch"},
		{Address: "AA", Name: "Headphones", RSSI: -40},
		{Address: "CC"},
		{Address: "DD", Name: "ESP32-S3-Tilt"},
		{Address: "EE", Name: "esp32-s3-touch-2"},
	}}
	m := newTestManager(t, radio)

	require.NoError(t, m.StartScan())
	require.NoError(t, m.StartScan())
	require.Eventually(t, func() bool { return len(m.Devices()) == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Scanning, m.State())

	ids := make([]string, 0, 5)
	for _, d := range m.Devices() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"BB", "EE", "DD", "AA", "CC"}, ids)
	assert.True(t, m.Devices()[0].Preferred)
	assert.False(t, m.Devices()[2].Preferred)
}

func TestConnectDeliversFramesInOrder(t *testing.T) {
	link := newFakeLink()
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB", Name: "ESP32-S3-Touch"}}, link: link}
	m := newTestManager(t, radio)
	discovered(t, m, 1)

	var mu sync.Mutex
	var first, second []string
	m.AddListener(func(f Frame) {
		mu.Lock()
		first = append(first, string(f.Data))
		mu.Unlock()
	})
	m.AddListener(func(f Frame) {
		mu.Lock()
		second = append(second, string(f.Data))
		mu.Unlock()
	})

	require.NoError(t, m.Connect(context.Background(), "BB"))
	assert.Equal(t, Connected, m.State())
	dev, ok := m.Connected()
	require.True(t, ok)
	assert.Equal(t, "BB", dev.ID)

	want := []string{"TOUCH::1,0,0,0", "TOUCH::0,1,0,0", "EMG::1"}
	for _, s := range want {
		link.push(s)
	}
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(first) == 3 && len(second) == 3
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
	mu.Unlock()
}

func TestConnectTimeoutIsNotRetried(t *testing.T) {
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB", Name: "ESP32-S3-Touch"}}, blockConnect: true}
	m := newTestManager(t, radio)
	discovered(t, m, 1)

	err := m.Connect(context.Background(), "BB")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, Disconnected, m.State())
	assert.Equal(t, int32(1), radio.connects.Load())
}

func TestConnectFailure(t *testing.T) {
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB"}}, connectErr: errors.New("refused")}
	m := newTestManager(t, radio)
	discovered(t, m, 1)

	err := m.Connect(context.Background(), "BB")
	assert.ErrorIs(t, err, ErrConnectionFailed)
	assert.Equal(t, Disconnected, m.State())
}

func TestConnectUnknownDevice(t *testing.T) {
	m := newTestManager(t, &fakeRadio{})
	assert.ErrorIs(t, m.Connect(context.Background(), "ZZ"), ErrUnknownDevice)
}

func TestDisconnectClearsListeners(t *testing.T) {
	link := newFakeLink()
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB"}}, link: link}
	m := newTestManager(t, radio)
	discovered(t, m, 1)

	m.AddListener(func(Frame) {})
	require.NoError(t, m.Connect(context.Background(), "BB"))

	require.NoError(t, m.Disconnect())
	assert.Equal(t, 0, m.ListenerCount())
	assert.Equal(t, Disconnected, m.State())
	require.NoError(t, m.Disconnect())
	assert.Equal(t, 1, link.disconnected)
}

func TestListenerPanicIsContained(t *testing.T) {
	link := newFakeLink()
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB"}}, link: link}
	m := newTestManager(t, radio)
	discovered(t, m, 1)

	got := make(chan string, 4)
	m.AddListener(func(Frame) { panic("boom") })
	m.AddListener(func(f Frame) { got <- string(f.Data) })
	require.NoError(t, m.Connect(context.Background(), "BB"))

	link.push("GYRO::1")
	link.push("GYRO::0")
	assert.Equal(t, "GYRO::1", <-got)
	assert.Equal(t, "GYRO::0", <-got)
}

func TestRemoveListener(t *testing.T) {
	m := newTestManager(t, &fakeRadio{})
	id := m.AddListener(func(Frame) {})
	assert.True(t, m.RemoveListener(id))
	assert.False(t, m.RemoveListener(id))
}

func TestLinkLossDisconnects(t *testing.T) {
	link := newFakeLink()
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB"}}, link: link}
	m := newTestManager(t, radio)
	discovered(t, m, 1)
	require.NoError(t, m.Connect(context.Background(), "BB"))

	close(link.lost)
	require.Eventually(t, func() bool { return m.State() == Disconnected }, time.Second, 5*time.Millisecond)

	sawLoss := false
	for !sawLoss {
		select {
		case ev := <-m.Events():
			sawLoss = ev.Kind == EventLinkLost
		case <-time.After(time.Second):
			t.Fatal("no link_lost event")
		}
	}
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, canTransition(Disconnected, Scanning))
	assert.True(t, canTransition(Scanning, Connecting))
	assert.True(t, canTransition(Connecting, Connected))
	assert.False(t, canTransition(Disconnected, Connected))
	assert.False(t, canTransition(Connected, Scanning))
}

func TestScanRejectedWhileConnected(t *testing.T) {
	link := newFakeLink()
	radio := &fakeRadio{ads: []Advertisement{{Address: "BB"}}, link: link}
	m := newTestManager(t, radio)
	discovered(t, m, 1)
	require.NoError(t, m.Connect(context.Background(), "BB"))

	assert.ErrorIs(t, m.StartScan(), ErrBusy)
	assert.ErrorIs(t, m.Connect(context.Background(), "BB"), ErrBusy)
}
