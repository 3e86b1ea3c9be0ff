package navigation

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"switchscan/internal/intent"
)

func items(n int, onCommit func(int)) []Item {
	out := make([]Item, n)
	for i := range out {
		i := i
		out[i] = Item{Label: fmt.Sprintf("item-%d", i), Action: func() {
			if onCommit != nil {
				onCommit(i)
			}
		}}
	}
	return out
}

func gridLayout(n, cols int) Layout {
	return Layout{
		Name:  "grid",
		Zones: []Zone{{ID: "grid", Items: items(n, nil), Columns: cols}},
	}
}

func mounted(t *testing.T, layout Layout) *Machine {
	t.Helper()
	m := NewMachine(Options{Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	require.NoError(t, m.Mount(layout))
	return m
}

func TestGridMovesOnNineByThree(t *testing.T) {
	m := mounted(t, gridLayout(9, 3))

	assert.Equal(t, 1, m.Apply(intent.Right).Index)
	assert.Equal(t, 0, m.Apply(intent.Left).Index)
	assert.Equal(t, 3, m.Apply(intent.Down).Index)
	assert.Equal(t, 0, m.Apply(intent.Up).Index)
	assert.Equal(t, 8, m.Apply(intent.Left).Index)
	assert.Equal(t, 0, m.Apply(intent.Right).Index)
}

func TestGridWrapsVertically(t *testing.T) {
	m := mounted(t, gridLayout(9, 3))

	res := m.Apply(intent.Up)
	assert.Equal(t, 6, res.Index)
	assert.False(t, res.ZoneChanged)
	assert.Equal(t, 0, m.Apply(intent.Down).Index)
}

func TestDirectionalInverseOnFullGrids(t *testing.T) {
	pairs := [][2]intent.Intent{
		{intent.Left, intent.Right},
		{intent.Right, intent.Left},
		{intent.Up, intent.Down},
		{intent.Down, intent.Up},
	}
	for cols := 1; cols <= 4; cols++ {
		for rows := 1; rows <= 4; rows++ {
			n := cols * rows
			for start := 0; start < n; start++ {
				for _, p := range pairs {
					m := mounted(t, gridLayout(n, cols))
					require.NoError(t, m.Focus("grid", start))
					m.Apply(p[0])
					res := m.Apply(p[1])
					assert.Equal(t, start, res.Index, "%dx%d start=%d %s then %s", rows, cols, start, p[0], p[1])
				}
			}
		}
	}
}

func TestPartialLastRowClamps(t *testing.T) {
	// 0 1 2
	// 3 4 5
	// 6 7
	m := mounted(t, gridLayout(8, 3))

	require.NoError(t, m.Focus("grid", 5))
	assert.Equal(t, 7, m.Apply(intent.Down).Index)

	require.NoError(t, m.Focus("grid", 2))
	assert.Equal(t, 7, m.Apply(intent.Up).Index)

	require.NoError(t, m.Focus("grid", 7))
	assert.Equal(t, 1, m.Apply(intent.Down).Index)

	for i := 0; i < 20; i++ {
		for _, in := range intent.ScanOrder {
			res := m.Apply(in)
			assert.True(t, res.Index >= 0 && res.Index < 8)
		}
	}
}

func TestGridStepSingleRowLargerColumns(t *testing.T) {
	next, hit := gridStep(dirUp, 1, 2, 3)
	assert.Equal(t, 1, next)
	assert.Equal(t, edgeAbove, hit)

	next, hit = gridStep(dirDown, 1, 2, 3)
	assert.Equal(t, 1, next)
	assert.Equal(t, edgeBelow, hit)
}

type builder struct {
	layout  Layout
	buttons []string
	grid    []int
}

func sentenceLayout() *builder {
	b := &builder{}
	b.layout = Layout{
		Name:    "sentence",
		Initial: "grid",
		Zones: []Zone{
			{ID: "top", Items: []Item{
				{Label: "Clear", Action: func() { b.buttons = append(b.buttons, "Clear") }},
				{Label: "Speak", Action: func() { b.buttons = append(b.buttons, "Speak") }},
			}, Below: "grid"},
			{ID: "grid", Items: items(9, func(i int) { b.grid = append(b.grid, i) }), Columns: 3, Above: "top", Below: "bottom", RememberIndex: true},
			{ID: "bottom", Items: []Item{
				{Label: "Presets", Action: func() { b.buttons = append(b.buttons, "Presets") }},
			}, Above: "grid"},
		},
	}
	return b
}

func TestButtonZoneActivateUsesButtonCallback(t *testing.T) {
	b := sentenceLayout()
	m := mounted(t, b.layout)

	require.NoError(t, m.Focus("grid", 1))
	res := m.Apply(intent.Up)
	require.True(t, res.ZoneChanged)
	assert.Equal(t, ZoneID("top"), res.Zone)

	m.Apply(intent.Right)
	res = m.Apply(intent.Activate)
	assert.True(t, res.Committed)
	assert.Equal(t, "Speak", res.Label)
	assert.Equal(t, []string{"Speak"}, b.buttons)
	assert.Empty(t, b.grid)
}

func TestZoneTransitionsAreAsymmetric(t *testing.T) {
	b := sentenceLayout()
	m := mounted(t, b.layout)

	require.NoError(t, m.Focus("grid", 2))
	res := m.Apply(intent.Up)
	assert.Equal(t, ZoneID("top"), res.Zone)
	assert.Equal(t, 0, res.Index, "button zone enters at its entry index")

	res = m.Apply(intent.Down)
	assert.Equal(t, ZoneID("grid"), res.Zone)
	assert.Equal(t, 2, res.Index, "grid remembers where it was left")

	require.NoError(t, m.Focus("grid", 7))
	res = m.Apply(intent.Down)
	assert.Equal(t, ZoneID("bottom"), res.Zone)
	res = m.Apply(intent.Up)
	assert.Equal(t, 7, res.Index)
}

func TestGridActivateRunsItemCallback(t *testing.T) {
	b := sentenceLayout()
	m := mounted(t, b.layout)
	var committed []Result
	m.onCommit = func(r Result) { committed = append(committed, r) }

	m.Apply(intent.Right)
	m.Apply(intent.Down)
	m.Apply(intent.Activate)
	assert.Equal(t, []int{4}, b.grid)
	require.Len(t, committed, 1)
	assert.Equal(t, "item-4", committed[0].Label)
}

func TestEmptyNeighborIsSkipped(t *testing.T) {
	layout := Layout{
		Initial: "grid",
		Zones: []Zone{
			{ID: "top", Below: "grid"},
			{ID: "grid", Items: items(4, nil), Columns: 2, Above: "top"},
		},
	}
	m := mounted(t, layout)
	res := m.Apply(intent.Up)
	assert.False(t, res.ZoneChanged)
	assert.Equal(t, 2, res.Index)
}

func TestCallbackMayReenterMachine(t *testing.T) {
	m := mounted(t, gridLayout(3, 3))
	var z Zone
	require.NoError(t, m.SetItems("grid", []Item{{Label: "swap", Action: func() {
		require.NoError(t, m.SetItems("grid", items(2, nil)))
		z, _ = m.Zone("grid")
	}}}))
	m.Apply(intent.Activate)
	assert.Equal(t, 2, z.Count())
}

func TestSetItemsClampsIndex(t *testing.T) {
	m := mounted(t, gridLayout(9, 3))
	require.NoError(t, m.Focus("grid", 8))
	require.NoError(t, m.SetItems("grid", items(4, nil)))
	assert.Equal(t, 3, m.Cursor().Index["grid"])
}

func TestEmptyingFocusedZoneMovesFocus(t *testing.T) {
	layout := Layout{
		Initial: "grid",
		Zones: []Zone{
			{ID: "buttons", Items: items(2, nil), Columns: 2, Below: "grid"},
			{ID: "grid", Items: items(4, nil), Columns: 2, Above: "buttons"},
		},
	}
	m := mounted(t, layout)
	require.NoError(t, m.SetItems("grid", nil))
	assert.Equal(t, ZoneID("buttons"), m.Cursor().Active)

	res := m.Apply(intent.Right)
	assert.True(t, res.Moved)
	assert.Equal(t, 1, res.Index)

	// The emptied grid is skipped on the way down.
	res = m.Apply(intent.Down)
	assert.False(t, res.ZoneChanged)
	assert.Equal(t, ZoneID("buttons"), res.Zone)
}

func TestApplyWithoutLayoutIsNoop(t *testing.T) {
	m := NewMachine(Options{})
	res := m.Apply(intent.Right)
	assert.False(t, res.Moved)
	assert.ErrorIs(t, m.SetItems("grid", nil), ErrNotMounted)
}

func TestInvariantViolationClampsInRelease(t *testing.T) {
	if debugBuild {
		t.Skip("debug builds panic")
	}
	var logs bytes.Buffer
	var reported []error
	m := NewMachine(Options{
		Logger:      slog.New(slog.NewTextHandler(&logs, nil)),
		OnInvariant: func(err error) { reported = append(reported, err) },
	})
	require.NoError(t, m.Mount(gridLayout(9, 3)))
	m.cursor.Index["grid"] = 42

	res := m.Apply(intent.Right)
	assert.Equal(t, 1, res.Index)
	require.Len(t, reported, 1)
	var inv *StateInvariantError
	require.True(t, errors.As(reported[0], &inv))
	assert.Equal(t, 42, inv.Index)
	assert.Contains(t, logs.String(), "cursor invariant violated")
}

func TestInvariantViolationPanicsWhenStrict(t *testing.T) {
	m := NewMachine(Options{Strict: true, Logger: slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))})
	require.NoError(t, m.Mount(gridLayout(9, 3)))
	m.cursor.Index["grid"] = -1

	assert.Panics(t, func() { m.Apply(intent.Down) })
	// The lock was released before panicking.
	assert.True(t, m.Mounted())
}

func TestValidateRejectsBadLayouts(t *testing.T) {
	cases := map[string]Layout{
		"empty":     {},
		"dup":       {Zones: []Zone{{ID: "a"}, {ID: "a"}}},
		"dangling":  {Zones: []Zone{{ID: "a", Above: "b"}}},
		"self":      {Zones: []Zone{{ID: "a", Below: "a"}}},
		"entry":     {Zones: []Zone{{ID: "a", Items: items(2, nil), EntryIndex: 2}}},
		"initial":   {Zones: []Zone{{ID: "a"}}, Initial: "b"},
		"noid":      {Zones: []Zone{{}}},
		"negcolumn": {Zones: []Zone{{ID: "a", Columns: -1}}},
	}
	for name, l := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, l.Validate())
		})
	}
}
