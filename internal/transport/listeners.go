package transport

import (
	"sync"

	"github.com/google/uuid"
)

// FrameListener receives raw frames from the dispatch goroutine.
type FrameListener func(Frame)

// ListenerID identifies a subscription for removal.
type ListenerID = uuid.UUID

type listenerEntry struct {
	id ListenerID
	fn FrameListener
}

// listenerSet keeps listeners in registration order.
type listenerSet struct {
	mu      sync.RWMutex
	entries []listenerEntry
}

func (s *listenerSet) add(fn FrameListener) ListenerID {
	id := uuid.New()
	s.mu.Lock()
	s.entries = append(s.entries, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()
	return id
}

func (s *listenerSet) remove(id ListenerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == id {
			s.entries = append(s.entries[:i:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (s *listenerSet) clear() int {
	s.mu.Lock()
	n := len(s.entries)
	s.entries = nil
	s.mu.Unlock()
	return n
}

func (s *listenerSet) snapshot() []listenerEntry {
	s.mu.RLock()
	out := append([]listenerEntry(nil), s.entries...)
	s.mu.RUnlock()
	return out
}

func (s *listenerSet) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
