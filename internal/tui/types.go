package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"

	"switchscan/internal/config"
	"switchscan/internal/intent"
	"switchscan/internal/journal"
	"switchscan/internal/navigation"
	"switchscan/internal/scancycle"
	"switchscan/internal/screens"
	"switchscan/sdk"
)

type screen int

const (
	screenBoard screen = iota
	screenDevices
	screenLogs
	screenHelp
)

type tab struct {
	name   string
	screen screen
}

var tabs = []tab{
	{name: "Board", screen: screenBoard},
	{name: "Devices", screen: screenDevices},
	{name: "Logs", screen: screenLogs},
	{name: "Help", screen: screenHelp},
}

const (
	periodStep = 250 * time.Millisecond
	periodMin  = 250 * time.Millisecond
	periodMax  = 10 * time.Second
	maxLogs    = 200
)

type deviceIntentMsg struct {
	Event sdk.IntentEvent
}

type scanTickMsg struct {
	Tick scancycle.Tick
}

type clientStatusMsg struct {
	Event sdk.StatusEvent
}

type clientErrMsg struct {
	Err error
}

type channelClosedMsg struct {
	Name string
}

type discoverFinishedMsg struct {
	Devices  []sdk.Device
	Err      error
	Duration time.Duration
}

type connectFinishedMsg struct {
	Device sdk.Device
	Quick  bool
	Err    error
}

type disconnectFinishedMsg struct {
	Err error
}

type configSavedMsg struct {
	Period time.Duration
	Err    error
}

// Messages injected by the local control API.
type remoteIntentMsg struct {
	Intent intent.Intent
	Tap    bool
}

type remoteScanMsg struct {
	Run bool
}

type remoteDiscoverMsg struct{}

// Deps are the components the host drives. Client, Scan, Machine and Router
// are required.
type Deps struct {
	Client     *sdk.Client
	Scan       *scancycle.Controller
	Machine    *navigation.Machine
	Router     *screens.Router
	Journal    journal.Journal
	Config     config.Config
	SaveConfig func(config.Config) error
	Logger     *slog.Logger
	// Notice is shown at startup, e.g. when the adapter could not be enabled.
	Notice string
}

// Model is the app state.
type Model struct {
	client     *sdk.Client
	scan       *scancycle.Controller
	machine    *navigation.Machine
	router     *screens.Router
	journal    journal.Journal
	saveConfig func(config.Config) error
	logger     *slog.Logger
	cfg        config.Config

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	board   *board

	activeScreen screen
	deviceIndex  int
	logScroll    int

	devices      []sdk.Device
	discovering  bool
	connecting   bool
	lastScanTime time.Duration

	highlight intent.Intent
	lastTick  uint64

	status string
	notice string
	logs   []string

	width  int
	height int
}
