package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchscan/internal/config"
	"switchscan/internal/journal"
	"switchscan/sdk"
)

func TestDecodeFramesPrintsIntents(t *testing.T) {
	var out bytes.Buffer
	decodeFrames(&out, []string{"TOUCH::0,1,0,0", "EMG::1", "junk"})

	text := out.String()
	assert.Contains(t, text, "-> up (TOUCH)")
	assert.Contains(t, text, "-> action (EMG)")
	assert.Contains(t, text, "junk")
	assert.Contains(t, text, "dropped:")
	assert.Contains(t, text, "decoded=2 dropped=1")
}

func TestPrintDevicesMarksMatches(t *testing.T) {
	var out bytes.Buffer
	printDevices(&out, []sdk.Device{
		{ID: "BB", Name: "ESP32-S3-Touch", RSSI: -48, Preferred: true},
		{ID: "CC"},
	})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "devices: 2", lines[0])
	assert.Contains(t, lines[1], "match=true")
	assert.Contains(t, lines[2], "(unnamed)")
}

func TestPrintEventsSkipsEmptyFields(t *testing.T) {
	var out bytes.Buffer
	printEvents(&out, []journal.Event{{
		Kind:      journal.EventCommit,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Screen:    "presets",
		Intent:    "action",
		Message:   "I need some water",
	}})

	line := strings.TrimSpace(out.String())
	assert.Contains(t, line, "commit screen=presets intent=action")
	assert.Contains(t, line, `"I need some water"`)
	assert.NotContains(t, line, "device=")
}

func TestPrintConfig(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Config{Scan: config.ScanConfig{PeriodMS: 1500}}
	require.NoError(t, printConfig(&out, "/tmp/switchscan.toml", cfg))

	assert.True(t, strings.HasPrefix(out.String(), "Config: /tmp/switchscan.toml\n"))
	assert.Contains(t, out.String(), `"PeriodMS": 1500`)
}

func TestNewAppRejectsUnknownSwitchMode(t *testing.T) {
	cfg := config.Config{Input: config.InputConfig{SwitchMode: "sip-puff"}}
	_, err := newApp(context.Background(), cfg, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown switch mode")
}
