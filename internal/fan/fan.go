// Package fan computes and applies a PWM fan duty cycle from measured
// temperature. The hysteresis and dwell logic is pure and clock-injected;
// the sensor and actuator sit behind interfaces with real (sysfs) and
// fake implementations.
package fan

import "time"

// Step is one point of the fan curve: at or above TempC the fan runs at
// DutyPercent. A Curve is ordered by ascending temperature.
type Step struct {
	TempC       float64
	DutyPercent int
}

// Curve is the ordered temperature-to-duty table.
type Curve []Step

// State is the fan's published state. It is a value type, safe to hand
// out as a snapshot.
type State struct {
	TemperatureC  float64
	DutyPercent   int
	LastChangedAt time.Time
}

// Sensor reads the board temperature.
type Sensor interface {
	// ReadTempC returns the temperature in degrees Celsius.
	ReadTempC() (float64, error)
}

// Actuator drives the physical fan.
type Actuator interface {
	// SetDutyPercent applies a duty cycle in [0,100].
	SetDutyPercent(percent int) error

	// Close stops the fan and releases the channel.
	Close() error
}

// Config holds the controller tuning values.
type Config struct {
	Curve Curve
	// HysteresisC is how far below the current step's threshold the
	// temperature must fall before the duty steps down.
	HysteresisC float64
	// MinDwell is the minimum time between duty changes, regardless of
	// temperature swings inside that window.
	MinDwell time.Duration
	// FailSafeAfter is how many consecutive sensor failures force the
	// fail-safe maximum duty. Over-cooling beats silent failure.
	FailSafeAfter int
}
