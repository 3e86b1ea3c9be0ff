package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Pages   key.Binding
	Back    key.Binding
	Dismiss key.Binding

	Tap        key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Activate   key.Binding
	NextScreen key.Binding
	PrevScreen key.Binding
	ToggleScan key.Binding
	Slower     key.Binding
	Faster     key.Binding
	Quick      key.Binding
	Disconnect key.Binding

	Connect key.Binding
	Rescan  key.Binding
	Clear   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "exit")),
		Pages:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1..4", "open")),
		Back:    key.NewBinding(key.WithKeys("0", "b", "backspace"), key.WithHelp("0/b", "back")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),

		Tap:        key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "tap")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "down")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "right")),
		Activate:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "activate")),
		NextScreen: key.NewBinding(key.WithKeys("]", "tab"), key.WithHelp("]", "next screen")),
		PrevScreen: key.NewBinding(key.WithKeys("[", "shift+tab"), key.WithHelp("[", "prev screen")),
		ToggleScan: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "scan on/off")),
		Slower:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "slower")),
		Faster:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "faster")),
		Quick:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "quick connect")),
		Disconnect: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "disconnect")),

		Connect: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
		Rescan:  key.NewBinding(key.WithKeys("s", "r"), key.WithHelp("s", "scan")),
		Clear:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.ToggleScan, k.Pages, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tap, k.Up, k.Down, k.Left, k.Right, k.Activate},
		{k.NextScreen, k.PrevScreen, k.ToggleScan, k.Slower, k.Faster},
		{k.Quick, k.Disconnect, k.Connect, k.Rescan},
		{k.Pages, k.Back, k.Dismiss, k.Clear, k.Quit},
	}
}

// bindingsFor is the footer help of one page.
func (k keyMap) bindingsFor(s screen) []key.Binding {
	switch s {
	case screenBoard:
		return []key.Binding{k.Tap, k.ToggleScan, k.Slower, k.Faster, k.NextScreen, k.Quick, k.Disconnect, k.Quit}
	case screenDevices:
		return []key.Binding{k.Connect, k.Rescan, k.Quick, k.Back}
	case screenLogs:
		return []key.Binding{k.Up, k.Down, k.Clear, k.Back}
	default:
		return []key.Binding{k.Back, k.Quit}
	}
}
