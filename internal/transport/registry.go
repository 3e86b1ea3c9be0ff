package transport

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agnivade/levenshtein"
)

// Device is a discovered peripheral. ID is the radio address.
type Device struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	RSSI      int16     `json:"rssi"`
	LastSeen  time.Time `json:"last_seen"`
	Preferred bool      `json:"preferred"`
}

// registry holds the devices seen during discovery, keyed by address.
type registry struct {
	mu      sync.RWMutex
	prefix  string
	devices map[string]Device
}

func newRegistry(prefix string) *registry {
	return &registry{prefix: prefix, devices: make(map[string]Device)}
}

// Observe records an advertisement and reports whether the device is new.
func (r *registry) Observe(ad Advertisement, now time.Time) (Device, bool) {
	if ad.Address == "" {
		return Device{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	dev, exists := r.devices[ad.Address]
	dev.ID = ad.Address
	if ad.Name != "" {
		dev.Name = ad.Name
	}
	dev.RSSI = ad.RSSI
	dev.LastSeen = now
	dev.Preferred = matchesPrefix(dev.Name, r.prefix)
	r.devices[ad.Address] = dev
	return dev, !exists
}

func (r *registry) Get(id string) (Device, bool) {
	if id == "" {
		return Device{}, false
	}
	r.mu.RLock()
	dev, ok := r.devices[id]
	r.mu.RUnlock()
	return dev, ok
}

func (r *registry) Reset() {
	r.mu.Lock()
	r.devices = make(map[string]Device)
	r.mu.Unlock()
}

func (r *registry) Size() int {
	r.mu.RLock()
	size := len(r.devices)
	r.mu.RUnlock()
	return size
}

// List returns devices with name-prefix matches first, then by how close
// the name is to the prefix.
func (r *registry) List() []Device {
	r.mu.RLock()
	out := make([]Device, 0, len(r.devices))
	for _, dev := range r.devices {
		out = append(out, dev)
	}
	prefix := strings.ToLower(r.prefix)
	r.mu.RUnlock()

	dist := make(map[string]int, len(out))
	for _, dev := range out {
		dist[dev.ID] = nameDistance(dev.Name, prefix)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Preferred != b.Preferred {
			return a.Preferred
		}
		if dist[a.ID] != dist[b.ID] {
			return dist[a.ID] < dist[b.ID]
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return out
}

func matchesPrefix(name, prefix string) bool {
	if prefix == "" || name == "" {
		return false
	}
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}

// nameDistance ranks unnamed devices last.
func nameDistance(name, lowerPrefix string) int {
	if name == "" {
		return int(^uint(0) >> 1)
	}
	if lowerPrefix == "" {
		return 0
	}
	return levenshtein.ComputeDistance(strings.ToLower(name), lowerPrefix)
}
