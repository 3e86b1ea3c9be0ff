package journal

import "time"

// EventKind identifies the type of journal event.
type EventKind string

func (k EventKind) String() string {
	return string(k)
}

const (
	EventStateChanged   EventKind = "state_changed"
	EventDeviceFound    EventKind = "device_found"
	EventFrameDropped   EventKind = "frame_dropped"
	EventIntent         EventKind = "intent"
	EventCommit         EventKind = "commit"
	EventInvariant      EventKind = "invariant"
	EventTransportError EventKind = "transport_error"
)

// Event is a single journal entry.
type Event struct {
	ID        int64
	Kind      EventKind
	Timestamp time.Time
	Session   string
	Screen    string
	Zone      string
	Intent    string
	Source    string
	Device    string
	Message   string
	Level     string // info, warn, error
}

// Filter specifies criteria for querying events.
type Filter struct {
	Session string
	Kinds   []EventKind
	Limit   int
	After   time.Time
}

// Journal records what happened during a session of use.
type Journal interface {
	// StartSession begins a new session id used for subsequent events.
	StartSession() string
	Emit(event Event)
	Query(filter Filter) ([]Event, error)
	Close() error
}

type nopJournal struct{}

// Nop returns a Journal that discards all events.
func Nop() Journal {
	return nopJournal{}
}

func (nopJournal) StartSession() string          { return "" }
func (nopJournal) Emit(Event)                    {}
func (nopJournal) Query(Filter) ([]Event, error) { return nil, nil }
func (nopJournal) Close() error                  { return nil }
