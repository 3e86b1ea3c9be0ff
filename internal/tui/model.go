package tui

import (
	"log/slog"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"switchscan/internal/httpapi"
	"switchscan/internal/intent"
	"switchscan/internal/journal"
)

// board is the status snapshot shared with the control API.
type board struct {
	mu     sync.RWMutex
	status httpapi.Status
}

func (b *board) set(s httpapi.Status) {
	b.mu.Lock()
	b.status = s
	b.mu.Unlock()
}

func (b *board) get() httpapi.Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

func NewModel(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	j := deps.Journal
	if j == nil {
		j = journal.Nop()
	}

	h := help.New()
	plain := lipgloss.NewStyle()
	h.Styles = help.Styles{
		ShortKey:       plain,
		ShortDesc:      plain,
		ShortSeparator: plain,
		Ellipsis:       plain,
		FullKey:        plain,
		FullDesc:       plain,
		FullSeparator:  plain,
	}

	m := Model{
		client:       deps.Client,
		scan:         deps.Scan,
		machine:      deps.Machine,
		router:       deps.Router,
		journal:      j,
		saveConfig:   deps.SaveConfig,
		logger:       logger.With("component", "tui"),
		cfg:          deps.Config,
		keys:         defaultKeyMap(),
		help:         h,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Line)),
		board:        &board{},
		activeScreen: screenBoard,
		highlight:    intent.None,
		status:       "Ready",
		notice:       deps.Notice,
	}
	m.publish()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitIntentCmd(m.client.Intents()),
		waitTickCmd(m.scan.Ticks()),
		waitStatusCmd(m.client.Statuses()),
		waitErrCmd(m.client.Errors()),
	)
}

func (m Model) busy() bool {
	return m.discovering || m.connecting
}

// publish refreshes the snapshot served by the control API.
func (m Model) publish() {
	st := httpapi.Status{
		Screen:     string(m.router.Current()),
		Highlight:  m.highlight.String(),
		Scanning:   m.scan.Running(),
		PeriodMS:   m.scan.Period().Milliseconds(),
		Connection: m.client.State().String(),
		Sentence:   m.router.Sentence().Text(),
	}
	if zone, idx, item, ok := m.machine.Focused(); ok {
		st.Zone = string(zone)
		st.Index = idx
		st.Label = item.Label
	}
	if d, ok := m.client.ConnectedDevice(); ok {
		st.Device = deviceName(d)
	}
	m.board.set(st)
}

func (m *Model) pushLog(line string) {
	m.logs = append(m.logs, formatShortTime(timeNow())+" "+line)
	if len(m.logs) > maxLogs {
		m.logs = append([]string(nil), m.logs[len(m.logs)-maxLogs:]...)
	}
}
