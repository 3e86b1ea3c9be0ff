package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 1500*time.Millisecond, cfg.Scan.Period())
	assert.Equal(t, "ESP32-S3-Touch", cfg.Device.NamePrefix)
	assert.Equal(t, "4fafc201-1d5a-459e-8fcc-c5c9c331914b", cfg.Device.ServiceUUID)
	assert.Equal(t, "beb5483e-36e1-4688-b7f5-ea07361b26a8", cfg.Device.CharacteristicUUID)
	assert.Equal(t, 10*time.Second, cfg.Device.ConnectTimeout())
	assert.Equal(t, 8*time.Second, cfg.Device.ScanWindow())
	assert.Equal(t, SwitchModeTap, cfg.Input.SwitchMode)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.HTTP.Addr)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[scan]
period_ms = 900

[input]
switch_mode = "DIRECT"

[http]
addr = "127.0.0.1:8099"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("SWITCHSCAN_DEVICE_NAME_PREFIX", "MyPad")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Scan.PeriodMS)
	assert.Equal(t, SwitchModeDirect, cfg.Input.SwitchMode)
	assert.Equal(t, "127.0.0.1:8099", cfg.HTTP.Addr)
	assert.Equal(t, "MyPad", cfg.Device.NamePrefix)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scan\nperiod_ms = "), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	cfg.Scan.PeriodMS = 2200
	cfg.Navigation.Strict = true
	require.NoError(t, SaveTo(path, cfg))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2200, got.Scan.PeriodMS)
	assert.True(t, got.Navigation.Strict)
	assert.Equal(t, cfg.Device, got.Device)
}

func TestPathHonoursEnv(t *testing.T) {
	t.Setenv("SWITCHSCAN_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", Path())
}

func TestNormalizeClamps(t *testing.T) {
	cfg := normalize(Config{
		Scan:   ScanConfig{PeriodMS: 5},
		Device: DeviceConfig{ConnectTimeoutMS: 10, ScanWindowMS: 0, NamePrefix: "  ESP32 "},
		Input:  InputConfig{SwitchMode: "joystick"},
		Log:    LogConfig{Format: "XML"},
	})
	assert.Equal(t, 100, cfg.Scan.PeriodMS)
	assert.Equal(t, 1000, cfg.Device.ConnectTimeoutMS)
	assert.Equal(t, 1000, cfg.Device.ScanWindowMS)
	assert.Equal(t, "ESP32", cfg.Device.NamePrefix)
	assert.Equal(t, SwitchModeTap, cfg.Input.SwitchMode)
	assert.Equal(t, "text", cfg.Log.Format)
}
