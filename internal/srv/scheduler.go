package srv

import (
	"context"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"github.com/rubenparnell/departureBoard/internal/srv/screen"
	"github.com/sirupsen/logrus"
	"image"
	"sync"
	"time"
)

type State int

const (
	RENDERING State = iota
	WAITING_FOR_TICK
	WAITING_FOR_EVENT
	STOPPED
)

func (s State) String() string {
	switch s {
	case RENDERING:
		return "rendering"
	case WAITING_FOR_TICK:
		return "waiting for tick"
	case WAITING_FOR_EVENT:
		return "waiting for event"
	default:
		return "stopped"
	}
}

type Display interface {
	ShowImage(img image.Image)
	Clear()
	SetBrightness(brightness int)
}

type Indicator interface {
	On()
	Off()
}

type Renderer interface {
	Render(ctx context.Context, m mode.Mode) screen.Result
	ForceMessages()
	ForceAll()
}

type SettingsUpdater interface {
	Update(update apimodel.SettingsUpdate) (apimodel.Settings, error)
}

// ModeObserver is told about every mode change, after it is applied
type ModeObserver interface {
	ModeChanged(m mode.Mode)
}

// Scheduler is the single loop that owns the display: it renders the active
// mode, shows the frame and waits for either the frame delay or an event.
type Scheduler struct {
	bus       *event.Bus
	modes     *mode.Controller
	settings  SettingsUpdater
	renderer  Renderer
	display   Display
	indicator Indicator
	observers []ModeObserver

	stateLock sync.RWMutex
	state     State
	cleared   bool

	cancel context.CancelFunc

	askDone chan bool
	done    chan bool
}

func NewScheduler(bus *event.Bus, modes *mode.Controller, settings SettingsUpdater, renderer Renderer, display Display, indicator Indicator, observers ...ModeObserver) *Scheduler {
	return &Scheduler{
		bus:       bus,
		modes:     modes,
		settings:  settings,
		renderer:  renderer,
		display:   display,
		indicator: indicator,
		observers: observers,
		state:     STOPPED,
		askDone:   make(chan bool),
		done:      make(chan bool),
	}
}

func (s *Scheduler) State() State {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.stateLock.Lock()
	s.state = state
	s.stateLock.Unlock()
}

// Start runs the loop in its own goroutine
func (s *Scheduler) Start() {
	logrus.Infof("Start scheduler")
	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())
	go s.run(ctx)
}

// Stop cancels the upstream calls in flight, interrupts the current wait and
// returns once the loop has ended.
func (s *Scheduler) Stop() {
	logrus.Infof("Stop scheduler")
	s.cancel()
	s.askDone <- true
	<-s.done
}

func (s *Scheduler) run(ctx context.Context) {
	for s.Step(ctx) {
	}
	s.setState(STOPPED)
	s.done <- true
}

// Step applies the pending events, shows one frame and waits. It returns
// false when the scheduler was asked to stop.
func (s *Scheduler) Step(ctx context.Context) bool {
	s.applyPending()

	current, changed := s.modes.Observe()
	if changed {
		for _, observer := range s.observers {
			observer.ModeChanged(current)
		}
	}

	if current == mode.OFF_MODE {
		if changed || !s.cleared {
			logrus.Debugf("Switch display off")
			s.display.Clear()
			s.indicator.Off()
			s.cleared = true
		}
		return s.wait(event.Forever)
	}
	s.cleared = false

	s.setState(RENDERING)
	s.indicator.On()
	result := s.renderer.Render(ctx, current)
	s.display.SetBrightness(result.Brightness)
	if result.Frame != nil {
		s.display.ShowImage(result.Frame)
	}

	if result.Block {
		return s.wait(event.Forever)
	}
	return s.wait(result.Wait)
}

func (s *Scheduler) wait(timeout time.Duration) bool {
	if timeout == event.Forever {
		s.setState(WAITING_FOR_EVENT)
	} else {
		s.setState(WAITING_FOR_TICK)
	}

	wake := s.bus.Wait(timeout, s.askDone)
	logrus.Debugf("Scheduler wake: %s", wake)
	return wake != event.CANCELLED
}

// applyPending drains the bus until nothing is left. Applying an event may
// post another one (a mode change posts MODE_CHANGED), which the next drain
// consumes so that it does not cause a spurious wake.
func (s *Scheduler) applyPending() {
	for pending := s.bus.Drain(); !pending.Empty(); pending = s.bus.Drain() {
		logrus.Debugf("Apply %s", pending.Reasons)

		for i := 0; i < pending.Presses; i++ {
			s.modes.Advance()
		}

		if pending.Reasons.Has(event.MODE_REQUESTED) {
			m, err := mode.Parse(pending.Mode)
			if err != nil {
				logrus.Warnf("Ignore mode request: %v", err)
			} else if err = s.modes.Set(m); err != nil {
				logrus.Warnf("Ignore mode request: %v", err)
			}
		}

		for _, update := range pending.Settings {
			if _, err := s.settings.Update(update); err != nil {
				logrus.Warnf("Unable to apply pushed settings: %v", err)
			}
		}

		if pending.Reasons.Has(event.FORCE_REFRESH) {
			s.renderer.ForceAll()
		} else if pending.Reasons.Has(event.NEW_MESSAGE) {
			s.renderer.ForceMessages()
		}
	}
}
