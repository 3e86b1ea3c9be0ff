package tui

import (
	"fmt"
	"strings"

	"switchscan/internal/intent"
	"switchscan/internal/navigation"
	"switchscan/internal/screens"
	tuiupdate "switchscan/internal/tui/update"
)

func (m Model) tabsLine() string {
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.screen == m.activeScreen {
			parts = append(parts, "▣ "+strings.ToUpper(t.name))
		} else {
			parts = append(parts, "□ "+strings.ToUpper(t.name))
		}
	}
	return strings.Join(parts, "   ")
}

func (m Model) metaLine() string {
	sensor := "Sensor OFFLINE"
	if d, ok := m.client.ConnectedDevice(); ok {
		sensor = "Sensor ONLINE " + deviceName(d)
	} else if st := m.client.State().String(); st != "disconnected" {
		sensor = "Sensor " + strings.ToUpper(st)
	}
	if m.busy() {
		sensor += " " + m.spinner.View()
	}
	return fmt.Sprintf("%s | Scan %s %s | Mode %s | Devices %d",
		sensor, onOff(m.scan.Running()), formatPeriod(m.scan.Period()), m.cfg.Input.SwitchMode, len(m.devices))
}

func (m Model) statusLine() string {
	return statusTag(m.status) + " " + m.status
}

func (m Model) boardPageLines() []string {
	s, ok := m.router.Screen()
	if !ok {
		return []string{"Board", "No screen mounted"}
	}
	lines := []string{s.Title()}
	if s.Text() != "" || s.ID() != screens.Presets {
		lines = append(lines, "Sentence: "+s.Text())
	}
	lines = append(lines, "Scan: "+m.scanOrderLine(), "")

	focusZone, focusIdx, _, focused := m.machine.Focused()
	for _, z := range s.Layout().Zones {
		zone, ok := m.machine.Zone(z.ID)
		if !ok {
			continue
		}
		active := focused && zone.ID == focusZone
		lines = append(lines, "─ "+string(zone.ID)+" "+strings.Repeat("─", 12))
		lines = append(lines, zoneRows(zone, active, focusIdx)...)
	}
	return lines
}

func (m Model) scanOrderLine() string {
	parts := make([]string, 0, len(intent.ScanOrder))
	for _, in := range intent.ScanOrder {
		if in == m.highlight {
			parts = append(parts, "["+strings.ToUpper(in.String())+"]")
		} else {
			parts = append(parts, in.String())
		}
	}
	return strings.Join(parts, " ")
}

// zoneRows lays the zone out in its grid columns and marks the focused item.
func zoneRows(zone navigation.Zone, active bool, focus int) []string {
	n := zone.Count()
	if n == 0 {
		return []string{"  (empty)"}
	}
	cols := zone.Columns
	if cols <= 0 {
		cols = n
	}
	cell := 0
	for _, it := range zone.Items {
		if w := runeWidth(it.Label); w > cell {
			cell = w
		}
	}
	cell += 3

	rows := make([]string, 0, (n+cols-1)/cols)
	for start := 0; start < n; start += cols {
		var b strings.Builder
		for i := start; i < start+cols && i < n; i++ {
			prefix := "  "
			if active && i == focus {
				prefix = "▶ "
			}
			b.WriteString(padRight(prefix+zone.Items[i].Label, cell))
		}
		rows = append(rows, strings.TrimRight(b.String(), " "))
	}
	return rows
}

func (m Model) devicesPageLines() []string {
	lines := []string{"Devices"}
	if m.discovering {
		lines = append(lines, "Scanning "+m.spinner.View())
	}
	if len(m.devices) == 0 {
		return append(lines, "No sensors yet. Press s to scan or a to quick connect.")
	}

	size := m.deviceViewSize()
	start := tuiupdate.WindowStart(m.deviceIndex, len(m.devices), size)
	end := min(start+size, len(m.devices))
	connected, hasConn := m.client.ConnectedDevice()
	for i := start; i < end; i++ {
		d := m.devices[i]
		prefix := "  "
		if i == m.deviceIndex {
			prefix = "▶ "
		}
		line := fmt.Sprintf("%s%d. %-20s %-18s %4d dBm", prefix, i+1, deviceName(d), d.ID, d.RSSI)
		if d.Preferred {
			line += "  [MATCH]"
		}
		if hasConn && connected.ID == d.ID {
			line += "  [LINKED]"
		}
		lines = append(lines, line)
	}
	if m.lastScanTime > 0 {
		lines = append(lines, "", "Last scan took "+formatPeriod(m.lastScanTime))
	}
	return lines
}

func (m Model) logsPageLines() []string {
	lines := []string{"Logs"}
	if len(m.logs) == 0 {
		return append(lines, "No events yet")
	}
	size := m.logViewSize()
	end := len(m.logs) - m.logScroll
	if end < 0 {
		end = 0
	}
	start := max(end-size, 0)
	return append(lines, m.logs[start:end]...)
}

func (m Model) helpPageLines() []string {
	lines := []string{"Help",
		"Space/Enter taps: it applies the highlighted scan direction.",
		"Arrow keys and o apply intents directly. [ and ] switch board screens.",
		"Tilt and muscle sensors tap in tap mode; touch pads always act directly.",
		"",
	}
	full := m.help.FullHelpView(m.keys.FullHelp())
	return append(lines, strings.Split(full, "\n")...)
}

func runeWidth(s string) int {
	return len([]rune(s))
}
