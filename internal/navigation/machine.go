package navigation

import (
	"errors"
	"log/slog"
	"sync"

	"switchscan/internal/intent"
)

// ErrNotMounted is returned by operations that need a layout.
var ErrNotMounted = errors.New("navigation: no layout mounted")

// Options configure a Machine.
type Options struct {
	// Strict panics on cursor invariant violations. Debug builds are always
	// strict.
	Strict bool
	Logger *slog.Logger
	// OnInvariant receives violations that were clamped in release mode.
	OnInvariant func(error)
	// OnCommit runs after an item callback returns.
	OnCommit func(Result)
}

// Result describes what one intent did to the cursor.
type Result struct {
	Intent      intent.Intent
	Zone        ZoneID
	Index       int
	Label       string
	Moved       bool
	ZoneChanged bool
	Committed   bool
}

type zoneState struct {
	Zone
	visited bool
}

// Machine owns cursor state for the mounted screen. All intents funnel
// through Apply; it is safe for concurrent use but callbacks run outside
// the lock so they may call back into the machine.
type Machine struct {
	strict      bool
	logger      *slog.Logger
	onInvariant func(error)
	onCommit    func(Result)

	mu      sync.Mutex
	layout  Layout
	zones   map[ZoneID]*zoneState
	cursor  CursorState
	mounted bool
}

func NewMachine(opts Options) *Machine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		strict:      opts.Strict || debugBuild,
		logger:      logger,
		onInvariant: opts.OnInvariant,
		onCommit:    opts.OnCommit,
	}
}

// Mount replaces the current layout and focuses its initial zone at the
// zone's entry index.
func (m *Machine) Mount(layout Layout) error {
	if err := layout.Validate(); err != nil {
		return err
	}
	zones := make(map[ZoneID]*zoneState, len(layout.Zones))
	index := make(map[ZoneID]int, len(layout.Zones))
	for _, z := range layout.Zones {
		z.Items = append([]Item(nil), z.Items...)
		zones[z.ID] = &zoneState{Zone: z}
		index[z.ID] = z.EntryIndex
	}
	initial := layout.initial()
	zones[initial].visited = true

	m.mu.Lock()
	m.layout = layout
	m.zones = zones
	m.cursor = CursorState{Active: initial, Index: index}
	m.mounted = true
	m.mu.Unlock()

	m.logger.Debug("layout mounted", "layout", layout.Name, "zone", initial)
	return nil
}

// Unmount drops the layout; Apply becomes a no-op until the next Mount.
func (m *Machine) Unmount() {
	m.mu.Lock()
	m.mounted = false
	m.zones = nil
	m.cursor = CursorState{}
	m.layout = Layout{}
	m.mu.Unlock()
}

func (m *Machine) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// LayoutName is the name of the mounted layout.
func (m *Machine) LayoutName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.layout.Name
}

// Cursor returns a copy of the cursor state.
func (m *Machine) Cursor() CursorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := CursorState{Active: m.cursor.Active, Index: make(map[ZoneID]int, len(m.cursor.Index))}
	for k, v := range m.cursor.Index {
		out.Index[k] = v
	}
	return out
}

// Focused returns the active zone, its index and the focused item.
func (m *Machine) Focused() (ZoneID, int, Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return "", 0, Item{}, false
	}
	zs := m.zones[m.cursor.Active]
	idx := m.cursor.Index[m.cursor.Active]
	if idx < 0 || idx >= zs.Count() {
		return zs.ID, idx, Item{}, false
	}
	return zs.ID, idx, zs.Items[idx], true
}

// Zone returns the current contents of a mounted zone.
func (m *Machine) Zone(id ZoneID) (Zone, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	zs, ok := m.zones[id]
	if !ok {
		return Zone{}, false
	}
	z := zs.Zone
	z.Items = append([]Item(nil), zs.Items...)
	return z, true
}

// SetItems swaps the items of a zone, clamping its index to the new count.
// Emptying the focused zone moves focus to its Above or Below neighbor.
func (m *Machine) SetItems(id ZoneID, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return ErrNotMounted
	}
	zs, ok := m.zones[id]
	if !ok {
		return errors.New("navigation: unknown zone " + string(id))
	}
	zs.Items = append([]Item(nil), items...)
	n := len(items)
	idx := m.cursor.Index[id]
	switch {
	case n == 0:
		idx = 0
	case idx >= n:
		idx = n - 1
	}
	m.cursor.Index[id] = idx
	if zs.EntryIndex >= n {
		zs.EntryIndex = 0
	}
	if n == 0 && m.cursor.Active == id {
		// An empty zone cannot be left by any intent; hand focus to a neighbor.
		if !m.enterLocked(zs.Above) {
			m.enterLocked(zs.Below)
		}
	}
	return nil
}

// Focus moves the cursor to a zone and index directly.
func (m *Machine) Focus(id ZoneID, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.mounted {
		return ErrNotMounted
	}
	zs, ok := m.zones[id]
	if !ok {
		return errors.New("navigation: unknown zone " + string(id))
	}
	if index < 0 || index >= zs.Count() {
		return &StateInvariantError{Zone: id, Index: index, Count: zs.Count()}
	}
	m.cursor.Active = id
	m.cursor.Index[id] = index
	zs.visited = true
	return nil
}

// Apply feeds one intent to the mounted layout. Directional intents move the
// cursor; Activate runs the focused item's callback.
func (m *Machine) Apply(in intent.Intent) Result {
	m.mu.Lock()
	res := Result{Intent: in}
	if !m.mounted {
		m.mu.Unlock()
		return res
	}

	active := m.cursor.Active
	zs := m.zones[active]
	n := zs.Count()
	res.Zone = active
	if n == 0 {
		m.mu.Unlock()
		return res
	}

	idx, violation := m.checkLocked(active, m.cursor.Index[active], n)
	res.Index = idx

	var action func()
	switch in {
	case intent.Left, intent.Right, intent.Up, intent.Down:
		next, hit := gridStep(directionOf(in), idx, n, zs.columns())
		neighbor := ZoneID("")
		switch hit {
		case edgeAbove:
			neighbor = zs.Above
		case edgeBelow:
			neighbor = zs.Below
		}
		if neighbor != "" && m.enterLocked(neighbor) {
			res.Zone = neighbor
			res.Index = m.cursor.Index[neighbor]
			res.ZoneChanged = true
			res.Moved = true
		} else {
			m.cursor.Index[active] = next
			res.Moved = next != idx
			res.Index = next
		}
	case intent.Activate:
		action = zs.Items[idx].Action
		res.Committed = true
	}
	res.Label = m.labelLocked(res.Zone, res.Index)
	m.mu.Unlock()

	if violation != nil {
		m.reportInvariant(violation)
	}
	if res.Committed {
		if action != nil {
			action()
		}
		if m.onCommit != nil {
			m.onCommit(res)
		}
	}
	return res
}

func (m *Machine) labelLocked(id ZoneID, idx int) string {
	zs := m.zones[id]
	if idx < 0 || idx >= zs.Count() {
		return ""
	}
	return zs.Items[idx].Label
}

// enterLocked focuses a neighbor zone; empty zones cannot take focus.
func (m *Machine) enterLocked(id ZoneID) bool {
	zs, ok := m.zones[id]
	if !ok || zs.Count() == 0 {
		return false
	}
	idx := zs.EntryIndex
	if zs.RememberIndex && zs.visited {
		idx = m.cursor.Index[id]
	}
	if idx < 0 || idx >= zs.Count() {
		idx = 0
	}
	m.cursor.Active = id
	m.cursor.Index[id] = idx
	zs.visited = true
	return true
}

// checkLocked enforces 0 <= index < count. Strict machines panic; others
// reset the zone to index 0 and report after the lock is released.
func (m *Machine) checkLocked(id ZoneID, idx, n int) (int, error) {
	if idx >= 0 && idx < n {
		return idx, nil
	}
	err := &StateInvariantError{Zone: id, Index: idx, Count: n}
	if m.strict {
		m.mu.Unlock()
		panic(err)
	}
	m.cursor.Index[id] = 0
	return 0, err
}

func (m *Machine) reportInvariant(err error) {
	m.logger.Error("cursor invariant violated, index reset", "err", err)
	if m.onInvariant != nil {
		m.onInvariant(err)
	}
}

func directionOf(in intent.Intent) direction {
	switch in {
	case intent.Left:
		return dirLeft
	case intent.Right:
		return dirRight
	case intent.Up:
		return dirUp
	default:
		return dirDown
	}
}
