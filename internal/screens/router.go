package screens

import (
	"fmt"
	"log/slog"
	"sync"

	"switchscan/internal/navigation"
	"switchscan/internal/vocab"
)

// Options configure a Router.
type Options struct {
	Vocabulary vocab.Vocabulary
	Speaker    Speaker
	Logger     *slog.Logger
	// OnSpeak observes every successfully spoken text.
	OnSpeak func(string)
}

// Router mounts one screen at a time on the navigation machine.
type Router struct {
	machine  *navigation.Machine
	logger   *slog.Logger
	order    []ID
	screens  map[ID]Screen
	sentence *Composer

	mu      sync.RWMutex
	current ID
}

func NewRouter(machine *navigation.Machine, opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	speaker := opts.Speaker
	if speaker == nil {
		speaker = LogSpeaker{Logger: logger}
	}
	v := opts.Vocabulary
	if v.Validate() != nil {
		v = vocab.Default()
	}

	r := &Router{
		machine:  machine,
		logger:   logger,
		screens:  make(map[ID]Screen),
		sentence: &Composer{},
	}
	d := deps{speaker: speaker, logger: logger, spoken: opts.OnSpeak}
	d.navigate = func(id ID) {
		if err := r.Show(id); err != nil {
			logger.Error("navigate failed", "screen", id, "err", err)
		}
	}
	for _, s := range newScreens(v, d, r.sentence) {
		r.order = append(r.order, s.ID())
		r.screens[s.ID()] = s
	}
	return r
}

// Show mounts the screen's layout, discarding the previous cursor state.
func (r *Router) Show(id ID) error {
	s, ok := r.screens[id]
	if !ok {
		return fmt.Errorf("unknown screen %q", id)
	}
	if err := r.machine.Mount(s.Layout()); err != nil {
		return fmt.Errorf("mount %s: %w", id, err)
	}
	r.mu.Lock()
	r.current = id
	r.mu.Unlock()
	r.logger.Debug("screen shown", "screen", id)
	return nil
}

// Next shows the screen after the current one, wrapping.
func (r *Router) Next() error {
	return r.Show(r.step(1))
}

func (r *Router) Prev() error {
	return r.Show(r.step(-1))
}

func (r *Router) step(delta int) ID {
	cur := r.Current()
	idx := 0
	for i, id := range r.order {
		if id == cur {
			idx = i
			break
		}
	}
	n := len(r.order)
	return r.order[((idx+delta)%n+n)%n]
}

func (r *Router) Current() ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Screen returns the current screen.
func (r *Router) Screen() (Screen, bool) {
	s, ok := r.screens[r.Current()]
	return s, ok
}

func (r *Router) Screens() []ID {
	return append([]ID(nil), r.order...)
}

// Sentence is the text shared with the sentence builder.
func (r *Router) Sentence() *Composer {
	return r.sentence
}
