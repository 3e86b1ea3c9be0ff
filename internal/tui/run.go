package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"switchscan/internal/httpapi"
	"switchscan/internal/intent"
	"switchscan/sdk"
)

var errHostStopped = errors.New("host stopped")

// Run mounts the first screen, starts the scan clock and the optional
// control API, and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	if !deps.Machine.Mounted() {
		if ids := deps.Router.Screens(); len(ids) > 0 {
			if err := deps.Router.Show(ids[0]); err != nil {
				return err
			}
		}
	}

	model := NewModel(deps)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	bridge := newBridge(deps.Client, model.board, program.Send)
	defer bridge.close()

	if addr := deps.Config.HTTP.Addr; addr != "" {
		srvCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		srv := httpapi.New(addr, bridge, model.logger)
		go func() {
			if err := srv.Run(srvCtx); err != nil {
				model.logger.Error("control api stopped", "error", err)
			}
		}()
	}

	deps.Scan.Start()
	defer deps.Scan.Stop()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Bridge hands control API requests to the host event loop.
type Bridge struct {
	client *sdk.Client
	board  *board
	send   func(tea.Msg)

	mu      sync.RWMutex
	stopped bool
}

func newBridge(client *sdk.Client, b *board, send func(tea.Msg)) *Bridge {
	return &Bridge{client: client, board: b, send: send}
}

func (b *Bridge) close() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

func (b *Bridge) post(msg tea.Msg) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return errHostStopped
	}
	b.send(msg)
	return nil
}

func (b *Bridge) Status() httpapi.Status {
	return b.board.get()
}

func (b *Bridge) Devices() []sdk.Device {
	return b.client.Devices()
}

func (b *Bridge) InjectIntent(in intent.Intent) error {
	return b.post(remoteIntentMsg{Intent: in})
}

func (b *Bridge) InjectTap() error {
	return b.post(remoteIntentMsg{Tap: true})
}

func (b *Bridge) StartScan() error {
	return b.post(remoteScanMsg{Run: true})
}

func (b *Bridge) StopScan() error {
	return b.post(remoteScanMsg{Run: false})
}

func (b *Bridge) Discover() error {
	return b.post(remoteDiscoverMsg{})
}
