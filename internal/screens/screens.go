package screens

import (
	"log/slog"

	"switchscan/internal/navigation"
	"switchscan/internal/vocab"
)

// ID names a screen.
type ID string

const (
	Presets         ID = "presets"
	WordBuilder     ID = "word-builder"
	SentenceBuilder ID = "sentence-builder"
)

// Zone ids shared by the built-in layouts.
const (
	ZoneControls navigation.ZoneID = "controls"
	ZoneGrid     navigation.ZoneID = "grid"
	ZoneNav      navigation.ZoneID = "nav"
)

// Screen supplies a zone layout and the text it is composing, if any.
type Screen interface {
	ID() ID
	Title() string
	Layout() navigation.Layout
	Text() string
}

type deps struct {
	speaker  Speaker
	logger   *slog.Logger
	navigate func(ID)
	spoken   func(string)
}

func (d deps) speak(text string) {
	if text == "" {
		return
	}
	if err := d.speaker.Speak(text); err != nil {
		d.logger.Warn("speak failed", "err", err)
		return
	}
	if d.spoken != nil {
		d.spoken(text)
	}
}

type presetsScreen struct {
	deps
	phrases []string
	columns int
}

func (s *presetsScreen) ID() ID        { return Presets }
func (s *presetsScreen) Title() string { return "Presets" }
func (s *presetsScreen) Text() string  { return "" }

func (s *presetsScreen) Layout() navigation.Layout {
	items := make([]navigation.Item, len(s.phrases))
	for i, phrase := range s.phrases {
		phrase := phrase
		items[i] = navigation.Item{Label: phrase, Action: func() { s.speak(phrase) }}
	}
	return navigation.Layout{
		Name:  string(Presets),
		Zones: []navigation.Zone{{ID: ZoneGrid, Items: items, Columns: s.columns}},
	}
}

// builderScreen is the word grid with Clear/Speak above and optional
// navigation buttons below.
type builderScreen struct {
	deps
	id       ID
	title    string
	words    []string
	columns  int
	composer *Composer
	navBar   []navTarget
}

type navTarget struct {
	label string
	to    ID
}

func (s *builderScreen) ID() ID        { return s.id }
func (s *builderScreen) Title() string { return s.title }
func (s *builderScreen) Text() string  { return s.composer.Text() }

func (s *builderScreen) Layout() navigation.Layout {
	words := make([]navigation.Item, len(s.words))
	for i, w := range s.words {
		w := w
		words[i] = navigation.Item{Label: w, Action: func() { s.composer.Append(w) }}
	}
	controls := navigation.Zone{
		ID: ZoneControls,
		Items: []navigation.Item{
			{Label: "Clear", Action: s.composer.Clear},
			{Label: "Speak", Action: func() { s.speak(s.composer.Text()) }},
		},
		Below: ZoneGrid,
	}
	grid := navigation.Zone{
		ID:            ZoneGrid,
		Items:         words,
		Columns:       s.columns,
		Above:         ZoneControls,
		RememberIndex: true,
	}
	zones := []navigation.Zone{controls, grid}

	if len(s.navBar) > 0 {
		nav := navigation.Zone{ID: ZoneNav, Above: ZoneGrid}
		for _, t := range s.navBar {
			to := t.to
			nav.Items = append(nav.Items, navigation.Item{Label: t.label, Action: func() { s.navigate(to) }})
		}
		zones[1].Below = ZoneNav
		zones = append(zones, nav)
	}
	return navigation.Layout{Name: string(s.id), Zones: zones, Initial: ZoneGrid}
}

func newScreens(v vocab.Vocabulary, d deps, sentence *Composer) []Screen {
	return []Screen{
		&presetsScreen{deps: d, phrases: v.Presets, columns: v.Columns},
		&builderScreen{
			deps:     d,
			id:       WordBuilder,
			title:    "Word Builder",
			words:    v.Words,
			columns:  v.Columns,
			composer: &Composer{},
		},
		&builderScreen{
			deps:     d,
			id:       SentenceBuilder,
			title:    "Sentence Builder",
			words:    v.Words,
			columns:  v.Columns,
			composer: sentence,
			navBar: []navTarget{
				{label: "Presets", to: Presets},
				{label: "Word Builder", to: WordBuilder},
			},
		},
	}
}
