package transport

import (
	"errors"
	"strings"
)

var (
	ErrUnavailable      = errors.New("radio unavailable")
	ErrPermissionDenied = errors.New("bluetooth permission denied")
	ErrTimeout          = errors.New("connection timed out")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNotConnected     = errors.New("not connected")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrBusy             = errors.New("radio busy")
)

// Error is a transport failure surfaced to the caller. It is never retried
// inside the manager.
type Error struct {
	Op     string
	Device string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("transport ")
	b.WriteString(e.Op)
	if e.Device != "" {
		b.WriteString(" ")
		b.WriteString(e.Device)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// classifyEnable maps a backend enable failure onto the transport taxonomy.
func classifyEnable(err error) error {
	if errors.Is(err, ErrPermissionDenied) {
		return ErrPermissionDenied
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "not permitted") || strings.Contains(msg, "access denied") {
		return ErrPermissionDenied
	}
	return ErrUnavailable
}
