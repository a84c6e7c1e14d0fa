//go:build !linux

package oled

import (
	"errors"
	"image"
)

// SSD1306Panel is not available on non-Linux platforms.
type SSD1306Panel struct{}

// NewSSD1306 returns an error on non-Linux platforms.
func NewSSD1306(busName string, rotated bool) (*SSD1306Panel, error) {
	return nil, errors.New("oled: ssd1306 not supported on this platform (requires Linux)")
}

// DrawFrame is not implemented on non-Linux platforms.
func (p *SSD1306Panel) DrawFrame(img image.Image) error {
	return errors.New("oled: not supported")
}

// SetPower is not implemented on non-Linux platforms.
func (p *SSD1306Panel) SetPower(on bool) error {
	return errors.New("oled: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *SSD1306Panel) Close() error {
	return nil
}
