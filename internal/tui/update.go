package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"switchscan/internal/intent"
	"switchscan/internal/journal"
	"switchscan/internal/telemetry"
	tuiupdate "switchscan/internal/tui/update"
	"switchscan/sdk"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	if nm, ok := next.(Model); ok {
		nm.publish()
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.panelContentWidth() - 6
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case scanTickMsg:
		m.highlight = msg.Tick.Intent
		m.lastTick = msg.Tick.Seq
		return m, waitTickCmd(m.scan.Ticks())

	case deviceIntentMsg:
		m = m.onDeviceIntent(msg.Event)
		return m, waitIntentCmd(m.client.Intents())

	case clientStatusMsg:
		m.onClientStatus(msg.Event)
		return m, waitStatusCmd(m.client.Statuses())

	case clientErrMsg:
		m.onClientErr(msg.Err)
		return m, waitErrCmd(m.client.Errors())

	case channelClosedMsg:
		m.pushLog(msg.Name + " channel closed")
		return m, nil

	case discoverFinishedMsg:
		return m.onDiscoverFinished(msg)

	case connectFinishedMsg:
		return m.onConnectFinished(msg)

	case disconnectFinishedMsg:
		if msg.Err != nil {
			m.status = "Disconnect failed: " + msg.Err.Error()
			m.pushLog("disconnect error: " + msg.Err.Error())
			return m, nil
		}
		m.connecting = false
		m.status = "Disconnected"
		m.pushLog("sensor disconnected")
		return m, nil

	case configSavedMsg:
		if msg.Err != nil {
			m.notice = "Could not save scan period: " + msg.Err.Error()
			m.pushLog("config save error: " + msg.Err.Error())
			return m, nil
		}
		m.pushLog("scan period saved: " + formatPeriod(msg.Period))
		return m, nil

	case remoteIntentMsg:
		if msg.Tap {
			return m.tap(intent.SourceRemote), nil
		}
		return m.applyIntent(msg.Intent, intent.SourceRemote), nil

	case remoteScanMsg:
		return m.setScanning(msg.Run), nil

	case remoteDiscoverMsg:
		return m.startDiscover()
	}

	return m, nil
}

func (m *Model) onClientStatus(ev sdk.StatusEvent) {
	text := strings.TrimSpace(ev.Message)
	if text == "" {
		return
	}
	m.pushLog(text)
	if name, ok := strings.CutPrefix(text, "found "); ok {
		m.journal.Emit(journal.Event{Kind: journal.EventDeviceFound, Device: name, Message: text, Level: "info"})
		return
	}
	m.journal.Emit(journal.Event{Kind: journal.EventStateChanged, Message: text, Level: "info"})
}

// onClientErr raises a dismissible notification; the scan clock keeps running.
func (m *Model) onClientErr(err error) {
	if err == nil {
		return
	}
	m.notice = err.Error()
	m.status = "Sensor error: " + err.Error()
	m.pushLog("error: " + err.Error())
	m.journal.Emit(journal.Event{Kind: journal.EventTransportError, Message: err.Error(), Level: "error"})
}

func (m Model) startDiscover() (tea.Model, tea.Cmd) {
	if m.discovering || m.connecting {
		m.status = "Busy: wait for the current scan or connect"
		return m, nil
	}
	if m.client.IsConnected() {
		m.status = "Sensor connected: disconnect (x) before scanning, or quick connect (a)"
		return m, nil
	}
	m.discovering = true
	m.status = fmt.Sprintf("Scanning for sensors (%s)...", formatPeriod(m.client.Options().ScanWindow))
	m.pushLog("device scan started")
	return m, tea.Batch(discoverCmd(m.client), m.spinner.Tick)
}

func (m Model) startQuickConnect() (tea.Model, tea.Cmd) {
	if m.discovering || m.connecting {
		m.status = "Busy: wait for the current scan or connect"
		return m, nil
	}
	m.connecting = true
	prefix := m.client.Options().NamePrefix
	if prefix == "" {
		prefix = "any sensor"
	}
	m.status = "Quick connect: looking for " + prefix + "..."
	m.pushLog("quick connect started")
	return m, tea.Batch(quickConnectCmd(m.client), m.spinner.Tick)
}

func (m Model) onDiscoverFinished(msg discoverFinishedMsg) (tea.Model, tea.Cmd) {
	m.discovering = false
	m.lastScanTime = msg.Duration
	if msg.Err != nil {
		m.status = "Scan failed: " + msg.Err.Error()
		m.notice = msg.Err.Error()
		m.pushLog("scan error: " + msg.Err.Error())
		return m, nil
	}

	m.devices = msg.Devices
	preferred := make([]bool, len(m.devices))
	for i, d := range m.devices {
		preferred[i] = d.Preferred
	}
	if idx := tuiupdate.PreferredDeviceIndex(preferred); idx >= 0 {
		m.deviceIndex = idx
	} else {
		m.deviceIndex = tuiupdate.ClampInt(m.deviceIndex, 0, max(len(m.devices)-1, 0))
	}
	m.status = fmt.Sprintf("Scan finished: %d device(s) in %s", len(m.devices), msg.Duration.Round(100*time.Millisecond))
	m.pushLog(m.status)
	return m, nil
}

func (m Model) onConnectFinished(msg connectFinishedMsg) (tea.Model, tea.Cmd) {
	m.connecting = false
	m.devices = m.client.Devices()
	label := "Connect"
	if msg.Quick {
		label = "Quick connect"
	}
	if msg.Err != nil {
		m.status = label + " failed: " + msg.Err.Error()
		m.notice = msg.Err.Error()
		m.pushLog(strings.ToLower(label) + " error: " + msg.Err.Error())
		m.journal.Emit(journal.Event{Kind: journal.EventTransportError, Device: msg.Device.ID, Message: msg.Err.Error(), Level: "error"})
		return m, nil
	}

	name := deviceName(msg.Device)
	session := m.journal.StartSession()
	telemetry.SetDevice(name, string(m.client.LastKind()))
	m.notice = ""
	m.status = "Connected: " + name
	m.pushLog(fmt.Sprintf("%s ok -> %s (session %s)", strings.ToLower(label), name, shortID(session)))
	if m.activeScreen == screenDevices {
		m.activeScreen = screenBoard
	}
	return m, nil
}
