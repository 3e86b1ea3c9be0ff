package screens

import (
	"log/slog"
	"strings"
	"sync"
)

// Composer accumulates words into a sentence.
type Composer struct {
	mu   sync.RWMutex
	text string
}

// Append adds word separated by a single space.
func (c *Composer) Append(word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	c.mu.Lock()
	if c.text == "" {
		c.text = word
	} else {
		c.text += " " + word
	}
	c.mu.Unlock()
}

func (c *Composer) Clear() {
	c.mu.Lock()
	c.text = ""
	c.mu.Unlock()
}

func (c *Composer) Text() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.text
}

// Speaker voices text. Implementations must not block for long; they are
// called from commit callbacks.
type Speaker interface {
	Speak(text string) error
}

// LogSpeaker writes spoken text to the log instead of a voice engine.
type LogSpeaker struct {
	Logger *slog.Logger
}

func (s LogSpeaker) Speak(text string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("speak", "text", text)
	return nil
}

// SpeakerFunc adapts a function to Speaker.
type SpeakerFunc func(string) error

func (f SpeakerFunc) Speak(text string) error { return f(text) }
