package device

import (
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
)

// Led is the status indicator, lit while the board shows something
type Led struct {
	lock sync.Mutex
	pin  gpio.PinIO
	on   bool
}

// NewLed opens the pin by name. In simulation mode, or when the pin is not
// configured, the led only keeps its state.
func NewLed(pinName string, simulationMode bool) *Led {
	led := &Led{}
	if simulationMode || pinName == "" {
		return led
	}

	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize host: %v", err)
	}
	led.pin = gpioreg.ByName(pinName)
	if led.pin == nil {
		logrus.Fatalf("Failed to find %s led", pinName)
	}
	return led
}

func newLedOnPin(pin gpio.PinIO) *Led {
	return &Led{pin: pin}
}

func (l *Led) On() {
	l.set(true)
}

func (l *Led) Off() {
	l.set(false)
}

func (l *Led) IsOn() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.on
}

func (l *Led) set(on bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.on = on
	if l.pin == nil {
		return
	}
	if err := l.pin.Out(gpio.Level(on)); err != nil {
		logrus.Warnf("Unable to switch led: %v", err)
	}
}
