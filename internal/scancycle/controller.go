package scancycle

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"switchscan/internal/intent"
)

// DefaultPeriod is the highlight dwell time used when none is configured.
const DefaultPeriod = 1500 * time.Millisecond

// MinPeriod bounds how fast the highlight may move.
const MinPeriod = 50 * time.Millisecond

// Ticker is the subset of time.Ticker the controller drives.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

// Options configure the scan clock.
type Options struct {
	Period    time.Duration
	Order     []intent.Intent
	NewTicker TickerFactory
	Logger    *slog.Logger
}

// Tick is one advance of the highlight.
type Tick struct {
	When   time.Time
	Intent intent.Intent
	Seq    uint64
}

// Controller is the free-running switch-scanning clock. It owns exactly one
// ticker at a time; changing the period replaces it instead of stacking a
// second one.
type Controller struct {
	newTicker TickerFactory
	logger    *slog.Logger
	order     []intent.Intent

	mu         sync.Mutex
	period     time.Duration
	running    bool
	stop       chan struct{}
	done       chan struct{}
	generation uint64
	stops      uint64
	step       uint64
	current    intent.Intent

	ticks chan Tick
}

// New validates options and returns a stopped controller.
func New(opts Options) (*Controller, error) {
	period := opts.Period
	if period == 0 {
		period = DefaultPeriod
	}
	if period < MinPeriod {
		return nil, errors.New("scan period below minimum")
	}
	order := opts.Order
	if len(order) == 0 {
		order = intent.ScanOrder
	}
	newTicker := opts.NewTicker
	if newTicker == nil {
		newTicker = newRealTicker
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		newTicker: newTicker,
		logger:    logger,
		order:     append([]intent.Intent(nil), order...),
		period:    period,
		current:   intent.None,
		ticks:     make(chan Tick, 1),
	}, nil
}

// Ticks delivers highlight changes. It holds a single tick; when the
// consumer lags, the pending one is replaced by the newest.
func (c *Controller) Ticks() <-chan Tick {
	return c.ticks
}

// Start begins cycling from the first element of the order. It is a no-op
// while already running.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.startLocked()
}

// Stop halts the clock and waits for its goroutine. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.stops++
	if !c.running {
		c.mu.Unlock()
		return
	}
	done := c.stopLocked()
	c.mu.Unlock()
	<-done
}

// SetPeriod changes the dwell time. The ticker is reset only when d differs
// from the current period; it reports whether a reset happened.
func (c *Controller) SetPeriod(d time.Duration) bool {
	if d < MinPeriod {
		return false
	}

	c.mu.Lock()
	if d == c.period {
		c.mu.Unlock()
		return false
	}
	c.period = d
	if !c.running {
		c.step = 0
		c.mu.Unlock()
		return true
	}
	stops := c.stops
	done := c.stopLocked()
	c.mu.Unlock()
	<-done

	c.mu.Lock()
	// A Stop issued while the old ticker drained wins over the restart.
	if !c.running && c.stops == stops {
		c.startLocked()
	}
	c.mu.Unlock()
	c.logger.Debug("scan period changed", "period", d)
	return true
}

func (c *Controller) Period() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.period
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Current is the highlighted intent; intent.None before the first tick.
func (c *Controller) Current() intent.Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller) startLocked() {
	c.generation++
	c.step = 0
	c.current = intent.None
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	c.running = true

	ticker := c.newTicker(c.period)
	go c.loop(ticker, c.generation, c.stop, c.done)
}

func (c *Controller) stopLocked() chan struct{} {
	close(c.stop)
	c.running = false
	c.generation++
	return c.done
}

func (c *Controller) loop(ticker Ticker, generation uint64, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case when := <-ticker.C():
			c.advance(generation, when)
		}
	}
}

func (c *Controller) advance(generation uint64, when time.Time) {
	c.mu.Lock()
	if generation != c.generation {
		c.mu.Unlock()
		return
	}
	next := c.order[c.step%uint64(len(c.order))]
	c.step++
	c.current = next
	tick := Tick{When: when, Intent: next, Seq: c.step}
	c.mu.Unlock()

	c.emit(tick)
}

func (c *Controller) emit(tick Tick) {
	select {
	case c.ticks <- tick:
		return
	default:
	}
	select {
	case <-c.ticks:
	default:
	}
	select {
	case c.ticks <- tick:
	default:
	}
}

type realTicker struct {
	t *time.Ticker
}

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
