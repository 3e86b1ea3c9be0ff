package sdk

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"switchscan/internal/intent"
	"switchscan/internal/transport"
)

type stubLink struct {
	mu     sync.Mutex
	notify func([]byte)
	lost   chan struct{}
}

func (l *stubLink) Subscribe(fn func([]byte)) error {
	l.mu.Lock()
	l.notify = fn
	l.mu.Unlock()
	return nil
}

func (l *stubLink) Disconnect() error     { return nil }
func (l *stubLink) Lost() <-chan struct{} { return l.lost }

func (l *stubLink) send(frame string) {
	l.mu.Lock()
	fn := l.notify
	l.mu.Unlock()
	fn([]byte(frame))
}

type stubRadio struct {
	ads       []transport.Advertisement
	link      *stubLink
	connected []string
}

func (r *stubRadio) Enable() error { return nil }

func (r *stubRadio) Scan(ctx context.Context, found func(transport.Advertisement)) error {
	for _, ad := range r.ads {
		found(ad)
	}
	<-ctx.Done()
	return nil
}

func (r *stubRadio) Connect(ctx context.Context, address string, target transport.Target) (transport.Link, error) {
	r.connected = append(r.connected, address)
	if r.link == nil {
		return nil, errors.New("refused")
	}
	return r.link, nil
}

func newTestClient(t *testing.T, radio *stubRadio) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	c := NewClient(radio, DeviceOptions{NamePrefix: DefaultNamePrefix, ScanWindow: 30 * time.Millisecond}, logger)
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func nextIntent(t *testing.T, c *Client) IntentEvent {
	t.Helper()
	select {
	case ev := <-c.Intents():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for intent")
		return IntentEvent{}
	}
}

func TestQuickConnectPicksPrefixMatch(t *testing.T) {
	radio := &stubRadio{
		ads: []transport.Advertisement{
			{Address: "11", Name: "Speaker"},
			{Address: "22", Name: "ESP32-S3-Touch"},
		},
		link: &stubLink{lost: make(chan struct{})},
	}
	c := newTestClient(t, radio)

	dev, err := c.QuickConnect(context.Background())
	if err != nil {
		t.Fatalf("quick connect: %v", err)
	}
	if dev.ID != "22" {
		t.Fatalf("picked %q, want 22", dev.ID)
	}
	if !c.IsConnected() {
		t.Fatalf("client not connected")
	}
	if len(radio.connected) != 1 {
		t.Fatalf("expected one connection attempt, got %d", len(radio.connected))
	}
}

func TestQuickConnectWithoutMatchFails(t *testing.T) {
	radio := &stubRadio{ads: []transport.Advertisement{{Address: "11", Name: "Speaker"}}}
	c := newTestClient(t, radio)

	if _, err := c.QuickConnect(context.Background()); err == nil {
		t.Fatalf("expected error without a matching device")
	}
	if len(radio.connected) != 0 {
		t.Fatalf("non-matching device must not be connected")
	}
}

func TestFramesBecomeIntents(t *testing.T) {
	link := &stubLink{lost: make(chan struct{})}
	radio := &stubRadio{ads: []transport.Advertisement{{Address: "22", Name: "ESP32-S3-Touch"}}, link: link}
	c := newTestClient(t, radio)
	if _, err := c.QuickConnect(context.Background()); err != nil {
		t.Fatalf("quick connect: %v", err)
	}

	link.send("TOUCH::0,0,0,0")
	link.send("TOUCH::0,0,0,1")
	link.send("broken")
	link.send("EMG::1")

	ev := nextIntent(t, c)
	if ev.Intent != intent.Right || ev.Kind != "TOUCH" || ev.Source != intent.SourceDevice {
		t.Fatalf("unexpected first intent: %+v", ev)
	}
	ev = nextIntent(t, c)
	if ev.Intent != intent.Activate || ev.Kind != "EMG" {
		t.Fatalf("unexpected second intent: %+v", ev)
	}

	stats := c.Stats()
	if stats.Dropped != 1 {
		t.Fatalf("dropped = %d, want 1", stats.Dropped)
	}
	if stats.Intents != 2 {
		t.Fatalf("intents = %d, want 2", stats.Intents)
	}
	if c.LastKind() != "EMG" {
		t.Fatalf("last kind = %q", c.LastKind())
	}
}

func TestConnectFailureDetachesListener(t *testing.T) {
	radio := &stubRadio{ads: []transport.Advertisement{{Address: "22", Name: "ESP32-S3-Touch"}}}
	c := newTestClient(t, radio)
	if _, err := c.Discover(context.Background()); err != nil {
		t.Fatalf("discover: %v", err)
	}
	if err := c.Connect(context.Background(), "22"); !errors.Is(err, transport.ErrConnectionFailed) {
		t.Fatalf("expected connection failure, got %v", err)
	}
	if c.Stats().Listening {
		t.Fatalf("listener left attached after failure")
	}
}

func TestSecondConnectKeepsLiveListener(t *testing.T) {
	link := &stubLink{lost: make(chan struct{})}
	radio := &stubRadio{ads: []transport.Advertisement{{Address: "22", Name: "ESP32-S3-Touch"}}, link: link}
	c := newTestClient(t, radio)
	if _, err := c.QuickConnect(context.Background()); err != nil {
		t.Fatalf("quick connect: %v", err)
	}

	if err := c.Connect(context.Background(), "22"); !errors.Is(err, transport.ErrBusy) {
		t.Fatalf("expected busy, got %v", err)
	}
	if !c.IsConnected() || !c.Stats().Listening {
		t.Fatalf("session lost its listener: connected=%v listening=%v", c.IsConnected(), c.Stats().Listening)
	}

	link.send("TOUCH::1,0,0,0")
	if ev := nextIntent(t, c); ev.Intent != intent.Up {
		t.Fatalf("unexpected intent after second connect: %+v", ev)
	}
}

func TestQuickConnectWhileConnectedReconnects(t *testing.T) {
	link := &stubLink{lost: make(chan struct{})}
	radio := &stubRadio{ads: []transport.Advertisement{{Address: "22", Name: "ESP32-S3-Touch"}}, link: link}
	c := newTestClient(t, radio)
	if _, err := c.QuickConnect(context.Background()); err != nil {
		t.Fatalf("first quick connect: %v", err)
	}

	dev, err := c.QuickConnect(context.Background())
	if err != nil {
		t.Fatalf("second quick connect: %v", err)
	}
	if dev.ID != "22" || !c.IsConnected() {
		t.Fatalf("expected reconnect to 22, got %q connected=%v", dev.ID, c.IsConnected())
	}
	if len(radio.connected) != 2 {
		t.Fatalf("expected two connection attempts, got %d", len(radio.connected))
	}
}
