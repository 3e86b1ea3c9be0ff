package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"switchscan/sdk"
)

var timeNow = time.Now

func statusTag(status string) string {
	text := strings.ToLower(status)
	switch {
	case strings.Contains(text, "failed"),
		strings.Contains(text, "error"),
		strings.Contains(text, "timeout"):
		return "[ERROR]"
	case strings.Contains(text, "ignored"),
		strings.Contains(text, "stopped"),
		strings.Contains(text, "disconnected"),
		strings.Contains(text, "busy"):
		return "[WARN ]"
	case strings.Contains(text, "connected"),
		strings.Contains(text, "started"),
		strings.Contains(text, "selected"),
		strings.Contains(text, "finished"):
		return "[ OK  ]"
	default:
		return "[INFO ]"
	}
}

func onOff(value bool) string {
	if value {
		return "ON"
	}
	return "OFF"
}

func formatShortTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

func formatPeriod(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func deviceName(d sdk.Device) string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	if id == "" {
		return "-"
	}
	return id
}

// parseDigit maps "1".."9" to a zero-based index.
func parseDigit(s string) (int, bool) {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	return int(s[0] - '1'), true
}

func padRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func trimText(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if width == 1 {
		return string(runes[:1])
	}
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
