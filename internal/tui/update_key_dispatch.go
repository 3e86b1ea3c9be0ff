package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"switchscan/internal/intent"
)

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		if m.notice != "" {
			m.notice = ""
			m.status = "Notification dismissed"
		}
		return m, nil
	case key.Matches(msg, m.keys.Pages):
		if idx, ok := parseDigit(msg.String()); ok && idx < len(tabs) {
			m.activeScreen = tabs[idx].screen
			m.status = tabs[idx].name
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		if m.activeScreen != screenBoard {
			m.activeScreen = screenBoard
			m.status = "Back to board"
		}
		return m, nil
	}

	switch m.activeScreen {
	case screenBoard:
		return m.updateBoardKeys(msg)
	case screenDevices:
		return m.updateDeviceKeys(msg)
	case screenLogs:
		return m.updateLogKeys(msg)
	default:
		return m, nil
	}
}

func (m Model) updateBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Tap):
		return m.tap(intent.SourceManual), nil
	case key.Matches(msg, m.keys.Up):
		return m.applyIntent(intent.Up, intent.SourceManual), nil
	case key.Matches(msg, m.keys.Down):
		return m.applyIntent(intent.Down, intent.SourceManual), nil
	case key.Matches(msg, m.keys.Left):
		return m.applyIntent(intent.Left, intent.SourceManual), nil
	case key.Matches(msg, m.keys.Right):
		return m.applyIntent(intent.Right, intent.SourceManual), nil
	case key.Matches(msg, m.keys.Activate):
		return m.applyIntent(intent.Activate, intent.SourceManual), nil
	case key.Matches(msg, m.keys.NextScreen):
		return m.switchScreen(true), nil
	case key.Matches(msg, m.keys.PrevScreen):
		return m.switchScreen(false), nil
	case key.Matches(msg, m.keys.ToggleScan):
		return m.setScanning(!m.scan.Running()), nil
	case key.Matches(msg, m.keys.Slower):
		return m.changePeriod(periodStep)
	case key.Matches(msg, m.keys.Faster):
		return m.changePeriod(-periodStep)
	case key.Matches(msg, m.keys.Quick):
		return m.startQuickConnect()
	case key.Matches(msg, m.keys.Disconnect):
		m.status = "Disconnecting..."
		return m, disconnectCmd(m.client)
	}
	return m, nil
}

func (m Model) updateDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if len(m.devices) > 0 {
			m.deviceIndex = (m.deviceIndex - 1 + len(m.devices)) % len(m.devices)
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if len(m.devices) > 0 {
			m.deviceIndex = (m.deviceIndex + 1) % len(m.devices)
		}
		return m, nil
	case key.Matches(msg, m.keys.Connect):
		return m.connectSelectedDevice()
	case key.Matches(msg, m.keys.Rescan):
		return m.startDiscover()
	case key.Matches(msg, m.keys.Quick):
		return m.startQuickConnect()
	case key.Matches(msg, m.keys.Disconnect):
		m.status = "Disconnecting..."
		return m, disconnectCmd(m.client)
	}
	return m, nil
}

func (m Model) connectSelectedDevice() (tea.Model, tea.Cmd) {
	if len(m.devices) == 0 {
		m.status = "No devices. Press s to scan"
		return m, nil
	}
	if m.discovering || m.connecting {
		m.status = "Busy: wait for the current scan or connect"
		return m, nil
	}
	if m.deviceIndex < 0 || m.deviceIndex >= len(m.devices) {
		m.deviceIndex = 0
	}
	device := m.devices[m.deviceIndex]
	m.connecting = true
	m.status = "Connecting " + deviceName(device) + "..."
	m.pushLog("connect -> " + device.ID)
	return m, tea.Batch(connectCmd(m.client, device), m.spinner.Tick)
}

func (m Model) updateLogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxScroll := len(m.logs) - m.logViewSize()
	if maxScroll < 0 {
		maxScroll = 0
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.logScroll < maxScroll {
			m.logScroll++
		}
	case key.Matches(msg, m.keys.Down):
		if m.logScroll > 0 {
			m.logScroll--
		}
	case key.Matches(msg, m.keys.Clear):
		m.logs = nil
		m.logScroll = 0
		m.status = "Logs cleared"
	}
	return m, nil
}
