package telemetry

import (
	"errors"
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"

	"switchscan/internal/navigation"
)

// enabled tracks whether sentry was successfully initialized.
var enabled bool

// Init initializes the Sentry SDK. When telemetry is disabled or dsn is
// empty every function in this package is a no-op.
func Init(version, dsn string, telemetryEnabled bool) error {
	if !telemetryEnabled || dsn == "" {
		enabled = false
		return nil
	}

	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "switchscan@" + version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}

	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("version", version)
	})

	enabled = true
	return nil
}

func IsEnabled() bool {
	return enabled
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(2 * time.Second)
}

// RecoverPanic captures a panic, flushes, then re-panics.
// Usage: defer telemetry.RecoverPanic()
func RecoverPanic() {
	if !enabled {
		return
	}
	if err := recover(); err != nil {
		gosentry.CurrentHub().Recover(err)
		gosentry.Flush(2 * time.Second)
		panic(err)
	}
}

// CaptureInvariant reports a clamped cursor invariant violation.
func CaptureInvariant(err error) {
	if !enabled || err == nil {
		return
	}
	gosentry.WithScope(func(scope *gosentry.Scope) {
		scope.SetTag("kind", "invariant")
		var inv *navigation.StateInvariantError
		if errors.As(err, &inv) {
			scope.SetContext("cursor", map[string]interface{}{
				"zone":  string(inv.Zone),
				"index": inv.Index,
				"count": inv.Count,
			})
		}
		gosentry.CaptureException(err)
	})
}

// SetDevice tags events with the connected sensor.
func SetDevice(name, kind string) {
	if !enabled {
		return
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("sensor_name", name)
		scope.SetTag("sensor_kind", kind)
	})
}
