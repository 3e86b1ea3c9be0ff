package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"switchscan/internal/config"
	"switchscan/internal/scancycle"
	"switchscan/sdk"
)

func waitIntentCmd(ch <-chan sdk.IntentEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelClosedMsg{Name: "intent"}
		}
		return deviceIntentMsg{Event: ev}
	}
}

func waitTickCmd(ch <-chan scancycle.Tick) tea.Cmd {
	return func() tea.Msg {
		tick, ok := <-ch
		if !ok {
			return channelClosedMsg{Name: "scan"}
		}
		return scanTickMsg{Tick: tick}
	}
}

func waitStatusCmd(ch <-chan sdk.StatusEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return channelClosedMsg{Name: "status"}
		}
		return clientStatusMsg{Event: ev}
	}
}

func waitErrCmd(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return channelClosedMsg{Name: "error"}
		}
		return clientErrMsg{Err: err}
	}
}

func discoverCmd(client *sdk.Client) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		devices, err := client.Discover(context.Background())
		return discoverFinishedMsg{Devices: devices, Err: err, Duration: time.Since(start)}
	}
}

func quickConnectCmd(client *sdk.Client) tea.Cmd {
	return func() tea.Msg {
		device, err := client.QuickConnect(context.Background())
		return connectFinishedMsg{Device: device, Quick: true, Err: err}
	}
}

func connectCmd(client *sdk.Client, device sdk.Device) tea.Cmd {
	return func() tea.Msg {
		err := client.Reconnect(context.Background(), device.ID)
		return connectFinishedMsg{Device: device, Err: err}
	}
}

func disconnectCmd(client *sdk.Client) tea.Cmd {
	return func() tea.Msg {
		return disconnectFinishedMsg{Err: client.Disconnect()}
	}
}

func saveConfigCmd(save func(config.Config) error, cfg config.Config, period time.Duration) tea.Cmd {
	if save == nil {
		return nil
	}
	return func() tea.Msg {
		return configSavedMsg{Period: period, Err: save(cfg)}
	}
}
