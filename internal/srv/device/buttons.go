package device

import (
	"bufio"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/sirupsen/logrus"
	"io"
	"os"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

// buttonCheckPeriod is the polling period of the button pin
const buttonCheckPeriod = 5 * time.Millisecond

// Button detects presses of a push button wired between its pin and ground
type Button struct {
	pin       gpio.PinIO
	debounce  time.Duration
	isPressed bool
	lastPress time.Time
}

func NewButton(name string, debounce time.Duration) *Button {
	pin := gpioreg.ByName(name)
	if pin == nil {
		logrus.Fatalf("Failed to find %s button", name)
	}
	button, err := newButtonOnPin(pin, debounce)
	if err != nil {
		logrus.Fatalf("Failed to setup %s button: %v", name, err)
	}
	return button
}

func newButtonOnPin(pin gpio.PinIO, debounce time.Duration) (*Button, error) {
	// Set it as input, with an internal pull up resistor:
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &Button{pin: pin, debounce: debounce}, nil
}

// Refresh reads the pin and reports whether a new press started. Presses
// closer than the debounce delay to the previous one are ignored.
func (b *Button) Refresh(now time.Time) bool {
	wasPressed := b.isPressed
	b.isPressed = bool(!b.pin.Read())

	if !b.isPressed || wasPressed {
		return false
	}
	if !b.lastPress.IsZero() && now.Sub(b.lastPress) < b.debounce {
		return false
	}
	b.lastPress = now
	return true
}

// Buttons posts a BUTTON_PRESSED event for every press of the mode button.
// In simulation mode the Enter key is the button.
type Buttons struct {
	lock       sync.RWMutex
	poster     event.Poster
	simulation bool
	pinName    string
	debounce   time.Duration
	input      io.Reader

	button *Button

	checkTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewButtons(pinName string, debounce time.Duration, simulation bool, poster event.Poster) *Buttons {
	if !simulation {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to initialize host: %v", err)
		}
	}

	return &Buttons{
		poster:     poster,
		simulation: simulation,
		pinName:    pinName,
		debounce:   debounce,
		input:      os.Stdin,
		askDone:    make(chan bool),
		done:       make(chan bool),
	}
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.simulation {
		go d.readKeys()
	} else {
		d.button = NewButton(d.pinName, d.debounce)
	}

	// Start periodic check
	d.checkTicker = time.NewTicker(buttonCheckPeriod)
	go func() {
		for loop := true; loop; {
			select {
			case now := <-d.checkTicker.C:
				if d.button != nil && d.button.Refresh(now) {
					logrus.Debugf("Button pressed")
					d.poster.Post(event.ButtonPressed())
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

// readKeys turns every line read on the input into a press. It ends with
// the input, stdin is never closed so it lives as long as the process.
func (d *Buttons) readKeys() {
	scanner := bufio.NewScanner(d.input)
	for scanner.Scan() {
		d.lock.RLock()
		stopped := d.checkTicker == nil
		d.lock.RUnlock()
		if stopped {
			return
		}
		logrus.Debugf("Key pressed")
		d.poster.Post(event.ButtonPressed())
	}
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker.Stop()
	d.checkTicker = nil
	d.askDone <- true
	<-d.done
}
