package navigation

import (
	"errors"
	"fmt"
)

// ZoneID names a selectable region of a screen.
type ZoneID string

// Item is one selectable target. Action is the commit callback; it runs
// synchronously on activate and may be nil.
type Item struct {
	Label  string
	Action func()
}

// Zone is a grid or button row with its own cursor.
type Zone struct {
	ID    ZoneID
	Items []Item
	// Columns drives 2-D movement; zero means a single row of all items.
	Columns int
	// Above and Below link to neighbor zones entered when moving off the
	// first or last row.
	Above ZoneID
	Below ZoneID
	// EntryIndex is where the cursor lands when the zone is entered.
	EntryIndex int
	// RememberIndex re-enters at the last focused index after the first visit.
	RememberIndex bool
}

func (z Zone) Count() int {
	return len(z.Items)
}

func (z Zone) columns() int {
	if z.Columns > 0 {
		return z.Columns
	}
	if n := len(z.Items); n > 0 {
		return n
	}
	return 1
}

// Layout is the ordered zone stack a screen declares on mount.
type Layout struct {
	Name    string
	Zones   []Zone
	Initial ZoneID
}

// Zone returns the zone with the given id.
func (l Layout) Zone(id ZoneID) (Zone, bool) {
	for _, z := range l.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// Validate checks zone ids, neighbor links and entry indices.
func (l Layout) Validate() error {
	if len(l.Zones) == 0 {
		return errors.New("layout has no zones")
	}
	seen := make(map[ZoneID]struct{}, len(l.Zones))
	for _, z := range l.Zones {
		if z.ID == "" {
			return errors.New("zone with empty id")
		}
		if _, dup := seen[z.ID]; dup {
			return fmt.Errorf("duplicate zone %q", z.ID)
		}
		seen[z.ID] = struct{}{}
		if z.Columns < 0 {
			return fmt.Errorf("zone %q: negative columns", z.ID)
		}
		if z.EntryIndex < 0 || (z.Count() > 0 && z.EntryIndex >= z.Count()) {
			return fmt.Errorf("zone %q: entry index %d outside 0..%d", z.ID, z.EntryIndex, z.Count()-1)
		}
	}
	for _, z := range l.Zones {
		for _, link := range []ZoneID{z.Above, z.Below} {
			if link == "" {
				continue
			}
			if link == z.ID {
				return fmt.Errorf("zone %q links to itself", z.ID)
			}
			if _, ok := seen[link]; !ok {
				return fmt.Errorf("zone %q links to unknown zone %q", z.ID, link)
			}
		}
	}
	initial := l.Initial
	if initial == "" {
		initial = l.Zones[0].ID
	}
	if _, ok := seen[initial]; !ok {
		return fmt.Errorf("initial zone %q not declared", initial)
	}
	return nil
}

func (l Layout) initial() ZoneID {
	if l.Initial != "" {
		return l.Initial
	}
	return l.Zones[0].ID
}

// CursorState is the focus snapshot: the active zone and the index held by
// every zone.
type CursorState struct {
	Active ZoneID
	Index  map[ZoneID]int
}

// edge tells whether a vertical move ran off the grid.
type edge int

const (
	edgeNone edge = iota
	edgeAbove
	edgeBelow
)

// gridStep computes the next index for a directional intent inside one zone.
// When the move leaves the first or last row it also reports the edge; the
// returned index is then the in-zone wrap target used when no neighbor zone
// is declared. Short last rows clamp to the last item instead of wrapping
// into the wrong column.
func gridStep(dir direction, i, n, c int) (int, edge) {
	switch dir {
	case dirLeft:
		return (i - 1 + n) % n, edgeNone
	case dirRight:
		return (i + 1) % n, edgeNone
	case dirUp:
		if i < c {
			lastRowStart := ((n - 1) / c) * c
			target := lastRowStart + i%c
			if target >= n {
				target = n - 1
			}
			return target, edgeAbove
		}
		return i - c, edgeNone
	case dirDown:
		if i/c == (n-1)/c {
			return i % c, edgeBelow
		}
		target := i + c
		if target >= n {
			target = n - 1
		}
		return target, edgeNone
	}
	return i, edgeNone
}

type direction int

const (
	dirLeft direction = iota
	dirRight
	dirUp
	dirDown
)
