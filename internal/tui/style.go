package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("0")).
			Bold(true)

	tabsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Bold(true)

	metaOnlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	metaOfflineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("0")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("214")).
			Bold(true)

	selectedLineStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("255")).
				Bold(true)

	scanLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	backLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("250")).
			Bold(true)

	keysStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
)

func paintLayout(layout string) string {
	if layout == "" {
		return layout
	}

	lines := strings.Split(layout, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "┌"), strings.HasPrefix(line, "├"), strings.HasPrefix(line, "└"):
			lines[i] = borderStyle.Render(line)
		case strings.Contains(line, "Switch Scan"):
			lines[i] = headerStyle.Render(line)
		case strings.Contains(line, "▣ ") || strings.Contains(line, "□ "):
			lines[i] = tabsStyle.Render(line)
		case strings.Contains(line, "[ALERT]"):
			lines[i] = alertStyle.Render(line)
		case strings.Contains(line, "[ OK  ]"),
			strings.Contains(line, "[WARN ]"),
			strings.Contains(line, "[ERROR]"),
			strings.Contains(line, "[INFO ]"):
			lines[i] = statusStyle.Render(line)
		case strings.Contains(line, "Sensor ONLINE"):
			lines[i] = metaOnlineStyle.Render(line)
		case strings.Contains(line, "| Scan "):
			lines[i] = metaOfflineStyle.Render(line)
		case strings.Contains(line, "▶ "):
			lines[i] = selectedLineStyle.Render(line)
		case strings.Contains(line, "Scan: "):
			lines[i] = scanLineStyle.Render(line)
		case strings.Contains(line, "Back to Board"):
			lines[i] = backLineStyle.Render(line)
		case strings.Contains(line, "[MATCH]"):
			lines[i] = matchStyle.Render(line)
		case strings.Contains(line, "│ ─"):
			lines[i] = borderStyle.Render(line)
		case isPanelTitleLine(line):
			lines[i] = panelTitleStyle.Render(line)
		case strings.Contains(line, "Keys:"):
			lines[i] = keysStyle.Render(line)
		case strings.HasPrefix(line, "│ "):
			lines[i] = bodyStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}

func isPanelTitleLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "│ ") || !strings.HasSuffix(trimmed, " │") {
		return false
	}
	content := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "│ "), " │"))
	if !strings.HasPrefix(content, "[") || !strings.HasSuffix(content, "]") {
		return false
	}
	return !strings.Contains(content, "[MATCH]") && !strings.Contains(content, "[LINKED]")
}
