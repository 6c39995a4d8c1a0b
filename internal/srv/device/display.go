package device

import (
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"github.com/sirupsen/logrus"
	"image"
	"os"
	"sync"
)

// panel is a display driver. Its methods are only called from the display
// goroutine.
type panel interface {
	Draw(img image.Image) error
	SetBrightness(brightness int) error
	Close() error
}

type displayCommand struct {
	img        image.Image
	brightness int
}

// Display pushes frames to the configured panel from its own goroutine
type Display struct {
	lock       sync.RWMutex
	param      config.DisplayParam
	panel      panel
	lastImg    image.Image
	brightness int

	askDone    chan bool
	askCommand chan displayCommand
	done       chan bool
}

func NewDisplay(param config.DisplayParam, simulationMode bool) *Display {
	if simulationMode {
		param.Driver = "terminal"
	}
	if param.Brightness <= 0 || param.Brightness > 100 {
		param.Brightness = 100
	}

	return &Display{
		param:      param,
		brightness: param.Brightness,
		askDone:    make(chan bool),
		askCommand: make(chan displayCommand),
		done:       make(chan bool),
	}
}

func openPanel(param config.DisplayParam) (panel, error) {
	switch param.Driver {
	case "ssd1306":
		return openSsd1306Panel(param)
	case "terminal":
		return newTerminalPanel(os.Stdout), nil
	case "none", "":
		return nonePanel{}, nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", param.Driver)
	}
}

func (d *Display) Start() {
	logrus.Infof("Start display device (%s)", d.param.Driver)

	var err error
	d.panel, err = openPanel(d.param)
	if err != nil {
		logrus.Fatalf("Unable to open display: %v", err)
	}
	d.start()
}

func (d *Display) start() {
	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			case command := <-d.askCommand:
				d.apply(command)
			}
		}
		if err := d.panel.Close(); err != nil {
			logrus.Warnf("Unable to close display: %v", err)
		}
		d.done <- true
	}()
}

func (d *Display) apply(command displayCommand) {
	if command.brightness > 0 {
		if err := d.panel.SetBrightness(command.brightness); err != nil {
			logrus.Warnf("Unable to set display brightness: %v", err)
		}
	}
	if command.img != nil {
		if err := d.panel.Draw(command.img); err != nil {
			logrus.Warnf("Unable to draw frame: %v", err)
		}
	}
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")
	d.askDone <- true
	<-d.done
}

func (d *Display) Width() int {
	return d.param.Width
}

func (d *Display) Height() int {
	return d.param.Height
}

// ShowImage draws a full frame
func (d *Display) ShowImage(img image.Image) {
	d.lock.Lock()
	d.lastImg = img
	d.lock.Unlock()
	d.askCommand <- displayCommand{img: img}
}

// Clear blanks the panel
func (d *Display) Clear() {
	d.ShowImage(image.NewRGBA(image.Rect(0, 0, d.param.Width, d.param.Height)))
}

// SetBrightness sets the panel brightness in percent, only when it changes
func (d *Display) SetBrightness(brightness int) {
	if brightness <= 0 || brightness > 100 {
		brightness = 100
	}
	d.lock.Lock()
	changed := d.brightness != brightness
	d.brightness = brightness
	d.lock.Unlock()

	if changed {
		logrus.Debugf("Set display brightness to %d", brightness)
		d.askCommand <- displayCommand{brightness: brightness}
	}
}

func (d *Display) Brightness() int {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.brightness
}

// LastImage returns the last frame shown
func (d *Display) LastImage() image.Image {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.lastImg
}

type nonePanel struct{}

func (nonePanel) Draw(image.Image) error  { return nil }
func (nonePanel) SetBrightness(int) error { return nil }
func (nonePanel) Close() error            { return nil }
