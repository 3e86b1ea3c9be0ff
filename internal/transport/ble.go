package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// BLERadio drives the host adapter through tinygo.org/x/bluetooth.
type BLERadio struct {
	adapter *bluetooth.Adapter

	mu    sync.Mutex
	seen  map[string]bluetooth.Address
	links map[string]*bleLink
}

func NewBLERadio() *BLERadio {
	r := &BLERadio{
		adapter: bluetooth.DefaultAdapter,
		seen:    make(map[string]bluetooth.Address),
		links:   make(map[string]*bleLink),
	}
	return r
}

func (r *BLERadio) Enable() error {
	if err := r.adapter.Enable(); err != nil {
		return fmt.Errorf("bluetooth init failed: %w", err)
	}
	r.adapter.SetConnectHandler(r.onConnectChange)
	return nil
}

func (r *BLERadio) Scan(ctx context.Context, found func(Advertisement)) error {
	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = r.adapter.StopScan()
		case <-stopped:
		}
	}()
	defer close(stopped)

	return r.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		id := result.Address.String()
		r.mu.Lock()
		r.seen[id] = result.Address
		r.mu.Unlock()
		found(Advertisement{Address: id, Name: result.LocalName(), RSSI: result.RSSI})
	})
}

func (r *BLERadio) Connect(ctx context.Context, address string, target Target) (Link, error) {
	r.mu.Lock()
	addr, ok := r.seen[address]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("address %s not seen during scan", address)
	}
	svcUUID, err := bluetooth.ParseUUID(target.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("service uuid: %w", err)
	}
	charUUID, err := bluetooth.ParseUUID(target.CharacteristicUUID)
	if err != nil {
		return nil, fmt.Errorf("characteristic uuid: %w", err)
	}

	params := bluetooth.ConnectionParams{}
	if deadline, ok := ctx.Deadline(); ok {
		params.ConnectionTimeout = bluetooth.NewDuration(time.Until(deadline))
	}

	type result struct {
		link *bleLink
		err  error
	}
	out := make(chan result, 1)
	go func() {
		device, err := r.adapter.Connect(addr, params)
		if err != nil {
			out <- result{err: err}
			return
		}
		link, err := r.resolve(address, device, svcUUID, charUUID)
		if err != nil {
			_ = device.Disconnect()
		}
		out <- result{link: link, err: err}
	}()

	select {
	case res := <-out:
		if res.err != nil {
			return nil, res.err
		}
		return res.link, nil
	case <-ctx.Done():
		// A late connection is closed once it arrives.
		go func() {
			if res := <-out; res.err == nil {
				_ = res.link.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}

func (r *BLERadio) resolve(address string, device bluetooth.Device, svcUUID, charUUID bluetooth.UUID) (*bleLink, error) {
	services, err := device.DiscoverServices([]bluetooth.UUID{svcUUID})
	if err != nil {
		return nil, fmt.Errorf("discover services: %w", err)
	}
	if len(services) == 0 {
		return nil, fmt.Errorf("service %s not found", svcUUID)
	}
	chars, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{charUUID})
	if err != nil {
		return nil, fmt.Errorf("discover characteristics: %w", err)
	}
	if len(chars) == 0 {
		return nil, fmt.Errorf("characteristic %s not found", charUUID)
	}

	link := &bleLink{
		radio:   r,
		address: address,
		device:  device,
		char:    chars[0],
		lost:    make(chan struct{}),
	}
	r.mu.Lock()
	r.links[address] = link
	r.mu.Unlock()
	return link, nil
}

func (r *BLERadio) onConnectChange(device bluetooth.Device, connected bool) {
	if connected {
		return
	}
	id := device.Address.String()
	r.mu.Lock()
	link := r.links[id]
	delete(r.links, id)
	r.mu.Unlock()
	if link != nil {
		link.markLost()
	}
}

type bleLink struct {
	radio   *BLERadio
	address string
	device  bluetooth.Device
	char    bluetooth.DeviceCharacteristic
	lost    chan struct{}
	once    sync.Once
}

func (l *bleLink) Subscribe(fn func([]byte)) error {
	return l.char.EnableNotifications(fn)
}

func (l *bleLink) Disconnect() error {
	l.radio.mu.Lock()
	delete(l.radio.links, l.address)
	l.radio.mu.Unlock()
	return l.device.Disconnect()
}

func (l *bleLink) Lost() <-chan struct{} {
	return l.lost
}

func (l *bleLink) markLost() {
	l.once.Do(func() { close(l.lost) })
}
