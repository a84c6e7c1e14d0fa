package fan

import (
	"fmt"
	"time"
)

// Controller owns the fan actuator: nothing else writes to it. Tick is
// called from a single loop; the controller itself is not synchronized.
type Controller struct {
	cfg      Config
	sensor   Sensor
	actuator Actuator

	state    State
	level    int // index into cfg.Curve, -1 when below the first step
	enabled  bool
	failures int
	failSafe bool
}

// New creates a Controller. The fan starts stopped until the first Tick.
func New(cfg Config, sensor Sensor, actuator Actuator) *Controller {
	return &Controller{
		cfg:      cfg,
		sensor:   sensor,
		actuator: actuator,
		level:    -1,
		enabled:  true,
	}
}

// State returns the last published state.
func (c *Controller) State() State { return c.state }

// Enabled reports whether automatic control is on.
func (c *Controller) Enabled() bool { return c.enabled }

// SetEnabled toggles the fan. Disabled holds duty 0 but keeps sampling so
// re-enabling reacts to the current temperature immediately.
func (c *Controller) SetEnabled(on bool, now time.Time) error {
	if c.enabled == on {
		return nil
	}
	c.enabled = on
	duty := 0
	if on {
		duty = c.dutyForLevel()
	}
	return c.apply(duty, now)
}

// Tick reads the temperature and applies the hysteresis curve. A sensor
// failure holds the last duty; FailSafeAfter consecutive failures force
// the maximum duty until a read succeeds. The returned error is always
// transient; callers log it and keep the loop running.
func (c *Controller) Tick(now time.Time) (State, error) {
	temp, err := c.sensor.ReadTempC()
	if err != nil {
		c.failures++
		if c.failures >= c.cfg.FailSafeAfter && !c.failSafe {
			c.failSafe = true
			if applyErr := c.apply(100, now); applyErr != nil {
				return c.state, fmt.Errorf("read temperature: %v; apply fail-safe: %w", err, applyErr)
			}
		}
		return c.state, fmt.Errorf("read temperature: %w", err)
	}
	c.failures = 0
	c.failSafe = false
	c.state.TemperatureC = temp

	if !c.enabled {
		if c.state.DutyPercent != 0 {
			if err := c.apply(0, now); err != nil {
				return c.state, err
			}
		}
		return c.state, nil
	}

	c.updateLevel(temp)
	duty := c.dutyForLevel()
	if duty == c.state.DutyPercent {
		return c.state, nil
	}

	// Sticky dwell: once changed, the duty holds for MinDwell even if the
	// temperature oscillates across a threshold.
	if !c.state.LastChangedAt.IsZero() && now.Sub(c.state.LastChangedAt) < c.cfg.MinDwell {
		return c.state, nil
	}

	if err := c.apply(duty, now); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// updateLevel moves the curve level using sticky bands: up as soon as a
// higher threshold is reached, down only once the temperature has fallen
// HysteresisC below the current step's threshold.
func (c *Controller) updateLevel(temp float64) {
	target := -1
	for i, step := range c.cfg.Curve {
		if temp >= step.TempC {
			target = i
		}
	}

	switch {
	case target > c.level:
		c.level = target
	case target < c.level:
		if temp < c.cfg.Curve[c.level].TempC-c.cfg.HysteresisC {
			c.level = target
		}
	}
}

func (c *Controller) dutyForLevel() int {
	if c.level < 0 {
		return 0
	}
	return c.cfg.Curve[c.level].DutyPercent
}

func (c *Controller) apply(duty int, now time.Time) error {
	if err := c.actuator.SetDutyPercent(duty); err != nil {
		return fmt.Errorf("set duty %d%%: %w", duty, err)
	}
	c.state.DutyPercent = duty
	c.state.LastChangedAt = now
	return nil
}

// Close stops the fan and releases the actuator.
func (c *Controller) Close() error {
	if err := c.actuator.SetDutyPercent(0); err != nil {
		c.actuator.Close()
		return fmt.Errorf("stop fan: %w", err)
	}
	return c.actuator.Close()
}
