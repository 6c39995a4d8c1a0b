// Package mode holds the fixed, ordered list of display modes and the
// controller tracking which one is active.
package mode

import (
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/sirupsen/logrus"
	"strings"
	"sync"
)

type Mode int

const (
	MESSAGES_MODE Mode = iota
	METRO_MODE
	WEATHER_MODE
	WEATHER_GRAPH_MODE
	FILMS_MODE
	LINK_MODE
	OFF_MODE
	END_MODE
)

var modeNames = [...]string{
	"messages",
	"metro",
	"weather",
	"weather_graph",
	"films",
	"link",
	"off",
}

// Count is the number of modes in the cycle
const Count = int(END_MODE)

func All() []Mode {
	modes := make([]Mode, 0, Count)
	for m := MESSAGES_MODE; m < END_MODE; m++ {
		modes = append(modes, m)
	}
	return modes
}

func (m Mode) String() string {
	if m < 0 || m >= END_MODE {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return modeNames[m]
}

func (m Mode) Valid() bool {
	return m >= 0 && m < END_MODE
}

func Parse(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, modeName := range modeNames {
		if modeName == name {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", name)
}

// Controller holds the active mode. It is safe for concurrent use.
type Controller struct {
	lock     sync.RWMutex
	current  Mode
	previous Mode
	poster   event.Poster
}

// NewController starts at the given mode. The previous mode is set to an
// invalid value so that the first Observe reports a change.
func NewController(initial Mode, poster event.Poster) *Controller {
	if !initial.Valid() {
		initial = MESSAGES_MODE
	}
	return &Controller{
		current:  initial,
		previous: END_MODE,
		poster:   poster,
	}
}

func (c *Controller) Current() Mode {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.current
}

// Advance moves to the next mode, wrapping after the last one
func (c *Controller) Advance() Mode {
	c.lock.Lock()
	c.current = (c.current + 1) % END_MODE
	current := c.current
	c.lock.Unlock()

	logrus.Infof("Switched to mode: %s", current)
	c.signal()
	return current
}

// Set forces the active mode
func (c *Controller) Set(m Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %d", int(m))
	}
	c.lock.Lock()
	changed := c.current != m
	c.current = m
	c.lock.Unlock()

	if changed {
		logrus.Infof("Switched to mode: %s", m)
		c.signal()
	}
	return nil
}

// Observe returns the current mode and whether it differs from the mode
// returned by the previous Observe call.
func (c *Controller) Observe() (Mode, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	changed := c.current != c.previous
	c.previous = c.current
	return c.current, changed
}

func (c *Controller) signal() {
	if c.poster != nil {
		c.poster.Post(event.ModeChanged())
	}
}
