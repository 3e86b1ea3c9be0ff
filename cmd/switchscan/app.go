package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"switchscan/internal/config"
	"switchscan/internal/journal"
	"switchscan/internal/logging"
	"switchscan/internal/navigation"
	"switchscan/internal/scancycle"
	"switchscan/internal/screens"
	"switchscan/internal/telemetry"
	"switchscan/internal/transport"
	"switchscan/internal/tui"
	"switchscan/internal/vocab"
	"switchscan/sdk"
)

// app owns every long-lived component of one run.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
	journal journal.Journal
	client  *sdk.Client
	scan    *scancycle.Controller
	machine *navigation.Machine
	router  *screens.Router
	notice  string
}

// newApp wires the input stack. In TUI mode logs go to a file so they do not
// tear the screen.
func newApp(ctx context.Context, cfg config.Config, tuiMode bool) (*app, error) {
	switch cfg.Input.SwitchMode {
	case config.SwitchModeTap, config.SwitchModeDirect:
	default:
		return nil, fmt.Errorf("unknown switch mode %q (want tap or direct)", cfg.Input.SwitchMode)
	}

	a := &app{cfg: cfg}
	logger, err := a.openLogger(tuiMode)
	if err != nil {
		return nil, err
	}
	a.logger = logger
	slog.SetDefault(logger)

	if cfg.Journal.Path != "" {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Warn("journal unavailable", "path", cfg.Journal.Path, "error", err)
			a.journal = journal.Nop()
		} else {
			a.journal = j
		}
	} else {
		a.journal = journal.Nop()
	}

	words, err := vocab.Load(cfg.Vocabulary.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}

	a.client = sdk.NewClient(transport.NewBLERadio(), sdk.DeviceOptions{
		NamePrefix:         cfg.Device.NamePrefix,
		ServiceUUID:        cfg.Device.ServiceUUID,
		CharacteristicUUID: cfg.Device.CharacteristicUUID,
		ConnectTimeout:     cfg.Device.ConnectTimeout(),
		ScanWindow:         cfg.Device.ScanWindow(),
	}, logger)
	a.client.Decoder().OnDrop(func(err error) {
		a.journal.Emit(journal.Event{Kind: journal.EventFrameDropped, Message: err.Error(), Level: "warn"})
	})
	if err := a.client.Initialize(ctx); err != nil {
		// The board stays usable by keyboard and the control API.
		logger.Warn("bluetooth unavailable", "error", err)
		a.notice = "Bluetooth unavailable: " + err.Error()
	}

	a.scan, err = scancycle.New(scancycle.Options{Period: cfg.Scan.Period(), Logger: logger})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("scan clock: %w", err)
	}

	a.machine = navigation.NewMachine(navigation.Options{
		Strict: cfg.Navigation.Strict,
		Logger: logger,
		OnInvariant: func(err error) {
			telemetry.CaptureInvariant(err)
			a.journal.Emit(journal.Event{Kind: journal.EventInvariant, Message: err.Error(), Level: "error"})
		},
	})
	a.router = screens.NewRouter(a.machine, screens.Options{
		Vocabulary: words,
		Logger:     logger,
		OnSpeak: func(text string) {
			logger.Info("spoken", "text", text)
		},
	})
	return a, nil
}

func (a *app) openLogger(tuiMode bool) (*slog.Logger, error) {
	path := a.cfg.Log.File
	if path == "" && tuiMode {
		path = filepath.Join(filepath.Dir(config.Path()), "switchscan.log")
	}
	opts := logging.Options{Level: a.cfg.Log.Level, Format: a.cfg.Log.Format}
	if path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.logFile = f
		opts.Output = f
	}
	return logging.New(opts)
}

func (a *app) deps(save func(config.Config) error) tui.Deps {
	return tui.Deps{
		Client:     a.client,
		Scan:       a.scan,
		Machine:    a.machine,
		Router:     a.router,
		Journal:    a.journal,
		Config:     a.cfg,
		SaveConfig: save,
		Logger:     a.logger,
		Notice:     a.notice,
	}
}

func (a *app) Close() {
	if a.scan != nil {
		a.scan.Stop()
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("close sensor client", "error", err)
		}
	}
	if a.journal != nil {
		_ = a.journal.Close()
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
}
