// Package config loads the daemon configuration from a YAML file.
// Timing constants (debounce windows, hysteresis margins, idle timeouts)
// are board-tuning values and live here rather than in the code that
// consumes them.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the daemon looks for its config unless told otherwise.
const DefaultPath = "/etc/penta-hat.yaml"

// ErrInvalid marks a configuration the daemon refuses to start with.
var ErrInvalid = errors.New("invalid configuration")

// Duration is a time.Duration that unmarshals from YAML strings like "250ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CurveStep is one point of the fan curve: at or above TempC the fan runs
// at DutyPercent.
type CurveStep struct {
	TempC       float64 `yaml:"temp_c"`
	DutyPercent int     `yaml:"duty_percent"`
}

// FanConfig controls the fan loop.
type FanConfig struct {
	Curve         []CurveStep `yaml:"curve"`
	HysteresisC   float64     `yaml:"hysteresis_c"`
	MinDwell      Duration    `yaml:"min_dwell"`
	Period        Duration    `yaml:"period"`
	FailSafeAfter int         `yaml:"fail_safe_after"`
	SensorPath    string      `yaml:"sensor_path"`
	PWMChip       string      `yaml:"pwm_chip"`
	PWMChannel    int         `yaml:"pwm_channel"`
	PWMPeriodNs   int         `yaml:"pwm_period_ns"`
	ActiveLow     bool        `yaml:"active_low"`
}

// ButtonConfig describes the HAT button line and gesture timing.
type ButtonConfig struct {
	Chip        string   `yaml:"chip"`
	Line        int      `yaml:"line"`
	ActiveLow   bool     `yaml:"active_low"`
	Debounce    Duration `yaml:"debounce"`
	DoubleClick Duration `yaml:"double_click"`
	LongPress   Duration `yaml:"long_press"`

	// Actions maps gestures to effects. Keys: short_press, double_click,
	// long_press. Values: slider, switch, poweroff, reboot, none.
	Actions map[string]string `yaml:"actions"`
}

// DisplayConfig controls the OLED.
type DisplayConfig struct {
	I2CBus      string   `yaml:"i2c_bus"`
	IdleTimeout Duration `yaml:"idle_timeout"`
	Refresh     Duration `yaml:"refresh"`
	Rotate      bool     `yaml:"rotate"`
	Fahrenheit  bool     `yaml:"fahrenheit"`

	// SliderAuto rotates through the pages on its own while the display
	// is awake; SliderTime is the dwell per page. Button presses still
	// advance manually and restart the rotation period.
	SliderAuto bool     `yaml:"slider_auto"`
	SliderTime Duration `yaml:"slider_time"`
}

// DiskConfig controls bay scanning.
type DiskConfig struct {
	Period Duration `yaml:"period"`
	// Ports maps bay 1..N to the ata port name each bay is wired to.
	Ports []string `yaml:"ports"`
}

// TelemetryConfig controls the optional MQTT publisher. An empty broker
// disables telemetry entirely.
type TelemetryConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// Config is the top-level daemon configuration.
type Config struct {
	Fan       FanConfig       `yaml:"fan"`
	Button    ButtonConfig    `yaml:"button"`
	Display   DisplayConfig   `yaml:"display"`
	Disk      DiskConfig      `yaml:"disk"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Default returns the stock Penta HAT configuration. The fan curve and
// gesture timings match the vendor defaults for this board.
func Default() Config {
	return Config{
		Fan: FanConfig{
			Curve: []CurveStep{
				{TempC: 35, DutyPercent: 25},
				{TempC: 40, DutyPercent: 50},
				{TempC: 45, DutyPercent: 75},
				{TempC: 50, DutyPercent: 100},
			},
			HysteresisC:   4,
			MinDwell:      Duration(10 * time.Second),
			Period:        Duration(6 * time.Second),
			FailSafeAfter: 3,
			SensorPath:    "/sys/class/thermal/thermal_zone0/temp",
			PWMChip:       "/sys/class/pwm/pwmchip0",
			PWMChannel:    0,
			PWMPeriodNs:   40000,
			ActiveLow:     true,
		},
		Button: ButtonConfig{
			Chip:        "gpiochip0",
			Line:        17,
			ActiveLow:   true,
			Debounce:    Duration(20 * time.Millisecond),
			DoubleClick: Duration(700 * time.Millisecond),
			LongPress:   Duration(1800 * time.Millisecond),
			Actions: map[string]string{
				"short_press":  "slider",
				"double_click": "switch",
				"long_press":   "poweroff",
			},
		},
		Display: DisplayConfig{
			I2CBus:      "",
			IdleTimeout: Duration(10 * time.Second),
			Refresh:     Duration(2 * time.Second),
			SliderTime:  Duration(10 * time.Second),
		},
		Disk: DiskConfig{
			Period: Duration(10 * time.Second),
			Ports:  []string{"ata1", "ata2", "ata3", "ata4", "ata5"},
		},
		Telemetry: TelemetryConfig{
			ClientID: "penta-hat",
		},
	}
}

// Load reads the config file at path, merging it over the defaults.
// A missing file is not an error: the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	if len(c.Fan.Curve) == 0 {
		return fmt.Errorf("%w: fan curve is empty", ErrInvalid)
	}
	prev := c.Fan.Curve[0]
	if prev.DutyPercent < 0 || prev.DutyPercent > 100 {
		return fmt.Errorf("%w: fan duty %d%% out of range", ErrInvalid, prev.DutyPercent)
	}
	for _, step := range c.Fan.Curve[1:] {
		if step.TempC <= prev.TempC {
			return fmt.Errorf("%w: fan curve temperatures must be ascending (%.1f after %.1f)",
				ErrInvalid, step.TempC, prev.TempC)
		}
		if step.DutyPercent < prev.DutyPercent {
			return fmt.Errorf("%w: fan curve duty must be non-decreasing (%d%% after %d%%)",
				ErrInvalid, step.DutyPercent, prev.DutyPercent)
		}
		if step.DutyPercent > 100 {
			return fmt.Errorf("%w: fan duty %d%% out of range", ErrInvalid, step.DutyPercent)
		}
		prev = step
	}
	if c.Fan.HysteresisC < 0 {
		return fmt.Errorf("%w: fan hysteresis must be >= 0", ErrInvalid)
	}
	if c.Fan.Period <= 0 || c.Fan.MinDwell < 0 {
		return fmt.Errorf("%w: fan period/dwell must be positive", ErrInvalid)
	}
	if c.Fan.FailSafeAfter < 1 {
		return fmt.Errorf("%w: fan fail_safe_after must be >= 1", ErrInvalid)
	}

	if c.Button.Debounce <= 0 {
		return fmt.Errorf("%w: button debounce must be positive", ErrInvalid)
	}
	if c.Button.LongPress <= c.Button.Debounce {
		return fmt.Errorf("%w: button long_press must exceed debounce", ErrInvalid)
	}
	if c.Button.DoubleClick < 0 {
		return fmt.Errorf("%w: button double_click must be >= 0", ErrInvalid)
	}
	for gesture, action := range c.Button.Actions {
		switch gesture {
		case "short_press", "double_click", "long_press":
		default:
			return fmt.Errorf("%w: unknown button gesture %q", ErrInvalid, gesture)
		}
		switch action {
		case "slider", "switch", "poweroff", "reboot", "none":
		default:
			return fmt.Errorf("%w: unknown button action %q", ErrInvalid, action)
		}
	}

	if c.Display.IdleTimeout <= 0 || c.Display.Refresh <= 0 {
		return fmt.Errorf("%w: display idle_timeout/refresh must be positive", ErrInvalid)
	}
	if c.Display.SliderAuto && c.Display.SliderTime <= 0 {
		return fmt.Errorf("%w: display slider_time must be positive when slider_auto is on", ErrInvalid)
	}

	if c.Disk.Period <= 0 {
		return fmt.Errorf("%w: disk period must be positive", ErrInvalid)
	}
	if len(c.Disk.Ports) == 0 {
		return fmt.Errorf("%w: disk ports is empty", ErrInvalid)
	}

	return nil
}

// Bays returns the number of configured bays.
func (c Config) Bays() int { return len(c.Disk.Ports) }
