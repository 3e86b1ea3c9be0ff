package vocab

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultColumns is the grid width of every built-in screen.
const DefaultColumns = 3

// Vocabulary is the word and phrase content offered on the screens.
type Vocabulary struct {
	Columns int      `toml:"columns"`
	Words   []string `toml:"words"`
	Presets []string `toml:"presets"`
}

var defaultWords = []string{
	"Bring", "Blanket", "Please", "Can",
	"I", "Turn", "Off", "Light",
	"Dinner", "Today", "Water", "Help",
}

var defaultPresets = []string{
	"Can You bring me a blanket",
	"What's for dinner today?",
	"How was School?",
	"I need some water",
	"Can you turn on the TV?",
	"Is the Coffee ready?",
	"Can you bring me a Snack?",
	"I need to use the restroom",
	"Can you turn off the light?",
	"I'm feeling cold",
	"Can you help me please?",
	"What time is it?",
	"I need my medication",
	"I'm hungry",
	"Can you open the window?",
	"I'm not feeling well",
	"Call for help",
	"I need my phone",
	"Can you turn down the volume?",
	"Thank you",
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		Columns: DefaultColumns,
		Words:   append([]string(nil), defaultWords...),
		Presets: append([]string(nil), defaultPresets...),
	}
}

// Load reads a TOML vocabulary file. An empty path yields Default. Missing
// sections fall back to the defaults.
func Load(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}
	v, err := Parse(data)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// Parse decodes TOML and rejects unknown keys.
func Parse(data []byte) (Vocabulary, error) {
	var v Vocabulary
	md, err := toml.Decode(string(data), &v)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("decode vocabulary: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Vocabulary{}, fmt.Errorf("unknown vocabulary keys: %s", strings.Join(keys, ", "))
	}

	def := Default()
	if v.Columns == 0 {
		v.Columns = def.Columns
	}
	v.Words = clean(v.Words)
	v.Presets = clean(v.Presets)
	if !md.IsDefined("words") {
		v.Words = def.Words
	}
	if !md.IsDefined("presets") {
		v.Presets = def.Presets
	}
	if err := v.Validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

func (v Vocabulary) Validate() error {
	if v.Columns < 1 {
		return errors.New("columns must be at least 1")
	}
	if len(v.Words) == 0 {
		return errors.New("vocabulary has no words")
	}
	if len(v.Presets) == 0 {
		return errors.New("vocabulary has no presets")
	}
	return nil
}

// Encode renders v as TOML.
func (v Vocabulary) Encode() ([]byte, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(v); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
