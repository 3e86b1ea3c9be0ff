package intent

import (
	"fmt"
	"strings"
)

// Intent is one discrete navigation signal, independent of the input device.
type Intent uint8

const (
	None Intent = iota
	Up
	Down
	Left
	Right
	Activate
)

// ScanOrder is the fixed highlight cycle of the scan clock.
var ScanOrder = []Intent{Activate, Up, Right, Down, Left}

func (i Intent) String() string {
	switch i {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Activate:
		return "action"
	default:
		return "none"
	}
}

// IsDirectional reports whether the intent moves the cursor.
func (i Intent) IsDirectional() bool {
	switch i {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Parse accepts the wire names plus "activate" as an alias of "action".
func Parse(raw string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "action", "activate", "ok":
		return Activate, nil
	case "none", "":
		return None, nil
	default:
		return None, fmt.Errorf("unknown intent %q", raw)
	}
}

// Source tells where an intent came from.
type Source string

const (
	SourceDevice Source = "device"
	SourceScan   Source = "scan"
	SourceManual Source = "manual"
	SourceRemote Source = "remote"
)
