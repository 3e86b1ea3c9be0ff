package sensorframe

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"switchscan/internal/intent"
)

// Rule maps one frame of a known kind to an intent.
type Rule func(Frame) intent.Intent

// Stats captures decoder counters.
type Stats struct {
	Decoded uint64
	Dropped uint64
}

// Decoder turns raw frames into intents using a per-kind rule table.
// Protocol errors never leave Decode; they are logged and yield intent.None.
type Decoder struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rules map[SensorKind]Rule

	decoded atomic.Uint64
	dropped atomic.Uint64

	onDrop func(error)
}

// NewDecoder returns a decoder with the touch, tilt and muscle rules.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger: logger,
		rules: map[SensorKind]Rule{
			KindTouch:  TouchRule,
			KindTilt:   BinaryRule,
			KindMuscle: BinaryRule,
		},
	}
}

// Register installs or replaces the rule for kind.
func (d *Decoder) Register(kind SensorKind, rule Rule) {
	if rule == nil {
		return
	}
	d.mu.Lock()
	d.rules[kind] = rule
	d.mu.Unlock()
}

// OnDrop sets a hook called once per dropped frame, after it is logged.
func (d *Decoder) OnDrop(fn func(error)) {
	d.mu.Lock()
	d.onDrop = fn
	d.mu.Unlock()
}

// Decode returns the intent for raw, or intent.None for a dropped frame.
func (d *Decoder) Decode(raw []byte) intent.Intent {
	in, _, _ := d.DecodeFrame(raw)
	return in
}

// DecodeFrame is Decode with the parsed frame and protocol error exposed.
// A dropped frame has already been logged exactly once when this returns.
func (d *Decoder) DecodeFrame(raw []byte) (intent.Intent, Frame, error) {
	frame, err := ParseFrame(raw)
	if err != nil {
		d.drop(err)
		return intent.None, Frame{}, err
	}

	d.mu.RLock()
	rule, ok := d.rules[frame.Kind]
	d.mu.RUnlock()
	if !ok {
		err := &ProtocolError{Raw: frame.Raw, Err: ErrUnknownSensorKind}
		d.drop(err)
		return intent.None, frame, err
	}

	d.decoded.Add(1)
	return rule(frame), frame, nil
}

func (d *Decoder) Stats() Stats {
	return Stats{Decoded: d.decoded.Load(), Dropped: d.dropped.Load()}
}

func (d *Decoder) drop(err error) {
	d.dropped.Add(1)

	var perr *ProtocolError
	raw := ""
	if errors.As(err, &perr) {
		raw = perr.Raw
	}
	if errors.Is(err, ErrUnknownSensorKind) {
		d.logger.Warn("unknown sensor kind, frame dropped", "frame", raw)
	} else {
		d.logger.Warn("malformed sensor frame dropped", "frame", raw, "err", err)
	}

	d.mu.RLock()
	hook := d.onDrop
	d.mu.RUnlock()
	if hook != nil {
		hook(err)
	}
}

// TouchRule decodes the 4-channel pad: a single active channel is a
// direction (left, up, down, right), no channel is none, anything else
// is activate.
func TouchRule(frame Frame) intent.Intent {
	values := frame.Values()
	if len(values) != touchChannels {
		return intent.Activate
	}

	active := -1
	for i, v := range values {
		switch v {
		case "0":
		case "1":
			if active >= 0 {
				return intent.Activate
			}
			active = i
		default:
			return intent.Activate
		}
	}

	switch active {
	case -1:
		return intent.None
	case 0:
		return intent.Left
	case 1:
		return intent.Up
	case 2:
		return intent.Down
	default:
		return intent.Right
	}
}

// BinaryRule decodes single-switch sensors: "1" is activate, anything else none.
func BinaryRule(frame Frame) intent.Intent {
	if frame.Payload == "1" {
		return intent.Activate
	}
	return intent.None
}
