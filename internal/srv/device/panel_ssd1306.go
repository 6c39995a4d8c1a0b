package device

import (
	"fmt"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"image"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// ssd1306Panel is an OLED panel on the I²C bus. Frames are reduced to one
// bit per pixel by the driver.
type ssd1306Panel struct {
	bus  i2c.BusCloser
	oled *ssd1306.Dev
}

func openSsd1306Panel(param config.DisplayParam) (panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize host: %w", err)
	}

	bus, err := i2creg.Open(param.I2cBus)
	if err != nil {
		return nil, fmt.Errorf("unable to open i2c bus: %w", err)
	}

	opts := ssd1306.DefaultOpts
	opts.W = param.Width
	opts.H = param.Height
	oled, err := ssd1306.NewI2C(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("unable to initialize oled display: %w", err)
	}

	p := &ssd1306Panel{bus: bus, oled: oled}
	if err = p.SetBrightness(param.Brightness); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *ssd1306Panel) Draw(img image.Image) error {
	return p.oled.Draw(p.oled.Bounds(), img, img.Bounds().Min)
}

func (p *ssd1306Panel) SetBrightness(brightness int) error {
	return p.oled.SetContrast(byte(brightness * 255 / 100))
}

func (p *ssd1306Panel) Close() error {
	haltErr := p.oled.Halt()
	if err := p.bus.Close(); err != nil {
		return err
	}
	return haltErr
}
