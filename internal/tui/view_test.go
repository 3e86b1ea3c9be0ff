package tui

import (
	"strings"
	"testing"

	"switchscan/internal/config"
	"switchscan/internal/navigation"
)

func TestParseDigit(t *testing.T) {
	if idx, ok := parseDigit("1"); !ok || idx != 0 {
		t.Fatalf("expected 0,true got %d,%v", idx, ok)
	}
	if _, ok := parseDigit("0"); ok {
		t.Fatal("0 is the back key, not a page")
	}
	if _, ok := parseDigit("12"); ok {
		t.Fatal("expected multi-char input rejected")
	}
}

func TestTrimTextAddsEllipsis(t *testing.T) {
	if got := trimText("Can you turn on the TV?", 10); got != "Can you t…" {
		t.Fatalf("unexpected trim: %q", got)
	}
	if got := trimText("short", 10); got != "short" {
		t.Fatalf("unexpected trim: %q", got)
	}
}

func TestStatusTag(t *testing.T) {
	cases := map[string]string{
		"Quick connect failed: timeout": "[ERROR]",
		"Disconnected":                  "[WARN ]",
		"Connected: ESP32-S3-Touch":     "[ OK  ]",
		"Screen: Presets":               "[INFO ]",
	}
	for status, want := range cases {
		if got := statusTag(status); got != want {
			t.Fatalf("statusTag(%q)=%q want %q", status, got, want)
		}
	}
}

func TestZoneRowsMarksFocus(t *testing.T) {
	zone := navigation.Zone{
		ID:      "grid",
		Columns: 3,
		Items: []navigation.Item{
			{Label: "Bring"}, {Label: "Blanket"}, {Label: "Please"},
			{Label: "Can"}, {Label: "I"},
		},
	}
	rows := zoneRows(zone, true, 4)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if !strings.Contains(rows[1], "▶ I") {
		t.Fatalf("expected focus marker on I, got %q", rows[1])
	}
	if strings.Contains(rows[0], "▶") {
		t.Fatalf("unexpected marker in first row: %q", rows[0])
	}

	if rows := zoneRows(zone, false, 4); strings.Contains(strings.Join(rows, "\n"), "▶") {
		t.Fatal("inactive zone must not show a marker")
	}
}

func TestViewShowsBoardAndHighlight(t *testing.T) {
	f := newFixture(t, config.SwitchModeTap)
	view := f.model.View()

	for _, want := range []string{"Switch Scan", "PRESETS", "▶ Can You bring me a blanket", "Sensor OFFLINE"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestViewDevicesPage(t *testing.T) {
	f := newFixture(t, config.SwitchModeTap)
	m := f.model
	m.activeScreen = screenDevices

	if !strings.Contains(m.View(), "No sensors yet") {
		t.Fatal("expected empty device hint")
	}
}
