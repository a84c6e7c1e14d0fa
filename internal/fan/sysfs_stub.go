//go:build !linux

package fan

import "errors"

// SysfsSensor is not available on non-Linux platforms.
type SysfsSensor struct {
	Path string
}

// ReadTempC is not implemented on non-Linux platforms.
func (s *SysfsSensor) ReadTempC() (float64, error) {
	return 0, errors.New("fan: sysfs sensor not supported on this platform")
}

// SysfsPWM is not available on non-Linux platforms.
type SysfsPWM struct{}

// NewSysfsPWM returns an error on non-Linux platforms.
func NewSysfsPWM(chip string, channel, periodNs int, activeLow bool) (*SysfsPWM, error) {
	return nil, errors.New("fan: sysfs pwm not supported on this platform (requires Linux)")
}

// SetDutyPercent is not implemented on non-Linux platforms.
func (p *SysfsPWM) SetDutyPercent(percent int) error {
	return errors.New("fan: sysfs pwm not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *SysfsPWM) Close() error {
	return nil
}
