package transport

// ConnectionState is the radio session state. Only Manager writes it.
type ConnectionState uint8

const (
	Disconnected ConnectionState = iota
	Scanning
	Connecting
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Scanning:
		return "scanning"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// transitionTable lists the legal next states for each state.
var transitionTable = map[ConnectionState][]ConnectionState{
	Disconnected: {Scanning, Connecting},
	Scanning:     {Disconnected, Connecting},
	Connecting:   {Connected, Disconnected},
	Connected:    {Disconnected},
}

func canTransition(from, to ConnectionState) bool {
	for _, next := range transitionTable[from] {
		if next == to {
			return true
		}
	}
	return false
}
