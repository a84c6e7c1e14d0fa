//go:build linux

package fan

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SysfsSensor reads the SoC temperature from a thermal zone, e.g.
// /sys/class/thermal/thermal_zone0/temp (millidegrees Celsius).
type SysfsSensor struct {
	Path string
}

// ReadTempC reads and converts the thermal zone value.
func (s *SysfsSensor) ReadTempC() (float64, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.Path, err)
	}
	milli, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return float64(milli) / 1000, nil
}

// SysfsPWM drives the fan through the kernel pwmchip interface. The HAT's
// fan input is active-low, so the written duty_cycle is inverted when
// ActiveLow is set.
type SysfsPWM struct {
	chip      string // e.g. /sys/class/pwm/pwmchip0
	channel   int
	periodNs  int
	activeLow bool
	dir       string
}

// NewSysfsPWM exports the channel and programs the period.
func NewSysfsPWM(chip string, channel, periodNs int, activeLow bool) (*SysfsPWM, error) {
	p := &SysfsPWM{
		chip:      chip,
		channel:   channel,
		periodNs:  periodNs,
		activeLow: activeLow,
		dir:       filepath.Join(chip, fmt.Sprintf("pwm%d", channel)),
	}

	if _, err := os.Stat(p.dir); os.IsNotExist(err) {
		if err := writeSysfs(filepath.Join(chip, "export"), channel); err != nil {
			return nil, fmt.Errorf("export pwm channel %d: %w", channel, err)
		}
	}
	if err := writeSysfs(filepath.Join(p.dir, "period"), periodNs); err != nil {
		return nil, fmt.Errorf("set pwm period: %w", err)
	}
	if err := p.SetDutyPercent(0); err != nil {
		return nil, err
	}
	if err := writeSysfs(filepath.Join(p.dir, "enable"), 1); err != nil {
		return nil, fmt.Errorf("enable pwm: %w", err)
	}
	return p, nil
}

// SetDutyPercent programs the duty cycle.
func (p *SysfsPWM) SetDutyPercent(percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if p.activeLow {
		percent = 100 - percent
	}
	ns := p.periodNs * percent / 100
	if err := writeSysfs(filepath.Join(p.dir, "duty_cycle"), ns); err != nil {
		return fmt.Errorf("set pwm duty_cycle: %w", err)
	}
	return nil
}

// Close stops the fan output and unexports the channel.
func (p *SysfsPWM) Close() error {
	var errs []error
	if err := p.SetDutyPercent(0); err != nil {
		errs = append(errs, err)
	}
	if err := writeSysfs(filepath.Join(p.dir, "enable"), 0); err != nil {
		errs = append(errs, fmt.Errorf("disable pwm: %w", err))
	}
	if err := writeSysfs(filepath.Join(p.chip, "unexport"), p.channel); err != nil {
		errs = append(errs, fmt.Errorf("unexport pwm: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close pwm: %v", errs)
	}
	return nil
}

func writeSysfs(path string, value int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(value)), 0644)
}
