package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"switchscan/internal/config"
	"switchscan/internal/intent"
	"switchscan/internal/journal"
	"switchscan/internal/protocol/sensorframe"
	tuiupdate "switchscan/internal/tui/update"
	"switchscan/sdk"
)

// onDeviceIntent routes a decoded sensor intent. In tap mode a single-switch
// sensor's activate selects whatever the scan clock highlights.
func (m Model) onDeviceIntent(ev sdk.IntentEvent) Model {
	if ev.Intent == intent.Activate &&
		m.cfg.Input.SwitchMode == config.SwitchModeTap &&
		sensorframe.IsBinaryKind(sensorframe.SensorKind(ev.Kind)) {
		return m.tap(intent.SourceDevice)
	}
	return m.applyIntent(ev.Intent, intent.SourceDevice)
}

// tap applies the highlighted scan intent.
func (m Model) tap(trigger intent.Source) Model {
	if !m.scan.Running() {
		m.status = "Tap ignored: scanning is off"
		return m
	}
	if m.highlight == intent.None {
		m.status = "Tap ignored: nothing highlighted yet"
		return m
	}
	m = m.applyIntent(m.highlight, intent.SourceScan)
	m.pushLog("tap by " + string(trigger))
	return m
}

func (m Model) applyIntent(in intent.Intent, source intent.Source) Model {
	if in == intent.None {
		return m
	}
	screenID := string(m.router.Current())
	res := m.machine.Apply(in)
	m.journal.Emit(journal.Event{
		Kind:    journal.EventIntent,
		Screen:  screenID,
		Zone:    string(res.Zone),
		Intent:  in.String(),
		Source:  string(source),
		Message: res.Label,
		Level:   "info",
	})

	switch {
	case res.Committed:
		m.journal.Emit(journal.Event{
			Kind:    journal.EventCommit,
			Screen:  screenID,
			Zone:    string(res.Zone),
			Intent:  in.String(),
			Source:  string(source),
			Message: res.Label,
			Level:   "info",
		})
		m.status = "Selected: " + res.Label
		m.pushLog(fmt.Sprintf("commit %q on %s", res.Label, screenID))
	case res.Moved:
		m.status = fmt.Sprintf("%s -> %s", in, res.Label)
	default:
		m.status = fmt.Sprintf("%s: no move", in)
	}
	return m
}

func (m Model) setScanning(run bool) Model {
	if run {
		m.scan.Start()
		m.status = "Scanning started"
	} else {
		m.scan.Stop()
		m.highlight = intent.None
		m.status = "Scanning stopped"
	}
	m.pushLog(m.status)
	return m
}

// changePeriod resets the scan clock to the new dwell time and persists it.
func (m Model) changePeriod(delta time.Duration) (tea.Model, tea.Cmd) {
	next := tuiupdate.StepPeriod(m.scan.Period(), delta, periodMin, periodMax)
	if !m.scan.SetPeriod(next) {
		m.status = "Scan period stays at " + formatPeriod(m.scan.Period())
		return m, nil
	}
	m.highlight = intent.None
	m.cfg.Scan.PeriodMS = int(next / time.Millisecond)
	m.status = "Scan period " + formatPeriod(next)
	return m, saveConfigCmd(m.saveConfig, m.cfg, next)
}

func (m Model) switchScreen(forward bool) Model {
	var err error
	if forward {
		err = m.router.Next()
	} else {
		err = m.router.Prev()
	}
	if err != nil {
		m.status = "Screen change failed: " + err.Error()
		return m
	}
	if s, ok := m.router.Screen(); ok {
		m.status = "Screen: " + s.Title()
	}
	return m
}
