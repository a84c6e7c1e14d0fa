//go:build linux

package oled

import (
	"fmt"
	"image"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// SSD1306Panel drives the HAT's 128x32 OLED over I2C.
type SSD1306Panel struct {
	bus  i2c.BusCloser
	dev  *ssd1306.Dev
	opts *ssd1306.Opts
	on   bool
}

// NewSSD1306 opens the I2C bus (empty name = first available) and
// initializes the panel. rotated flips the image 180 degrees for HATs
// mounted upside down.
func NewSSD1306(busName string, rotated bool) (*SSD1306Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	opts := &ssd1306.Opts{W: Width, H: Height, Rotated: rotated, Sequential: true}
	dev, err := ssd1306.NewI2C(bus, opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ssd1306: %w", err)
	}
	return &SSD1306Panel{bus: bus, dev: dev, opts: opts, on: true}, nil
}

// DrawFrame pushes a full frame.
func (p *SSD1306Panel) DrawFrame(img image.Image) error {
	if err := p.dev.Draw(p.dev.Bounds(), img, image.Point{}); err != nil {
		return fmt.Errorf("ssd1306 draw: %w", err)
	}
	return nil
}

// SetPower switches the panel's low-power mode. The driver exposes
// power-down as Halt; waking re-runs the init sequence, which also powers
// the charge pump back up.
func (p *SSD1306Panel) SetPower(on bool) error {
	if on == p.on {
		return nil
	}
	if !on {
		if err := p.dev.Halt(); err != nil {
			return fmt.Errorf("ssd1306 halt: %w", err)
		}
		p.on = false
		return nil
	}
	dev, err := ssd1306.NewI2C(p.bus, p.opts)
	if err != nil {
		return fmt.Errorf("ssd1306 reinit: %w", err)
	}
	p.dev = dev
	p.on = true
	return nil
}

// Close powers the panel down and releases the bus.
func (p *SSD1306Panel) Close() error {
	if p.on {
		if err := p.dev.Halt(); err != nil {
			p.bus.Close()
			return fmt.Errorf("ssd1306 halt: %w", err)
		}
		p.on = false
	}
	if err := p.bus.Close(); err != nil {
		return fmt.Errorf("close i2c bus: %w", err)
	}
	return nil
}
