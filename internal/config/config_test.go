package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Button.Line != 17 || cfg.Bays() != 5 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "penta.yaml")
	data := `
button:
  line: 27
  long_press: "3s"
display:
  fahrenheit: true
telemetry:
  broker: "tcp://10.0.0.5:1883"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Button.Line != 27 {
		t.Errorf("line = %d, want 27", cfg.Button.Line)
	}
	if got := cfg.Button.LongPress.Std(); got != 3*time.Second {
		t.Errorf("long_press = %v, want 3s", got)
	}
	if !cfg.Display.Fahrenheit {
		t.Error("fahrenheit not applied")
	}
	if cfg.Telemetry.Broker != "tcp://10.0.0.5:1883" {
		t.Errorf("broker = %q", cfg.Telemetry.Broker)
	}
	// Untouched sections keep their defaults.
	if cfg.Button.Chip != "gpiochip0" {
		t.Errorf("chip = %q, want gpiochip0", cfg.Button.Chip)
	}
	if len(cfg.Fan.Curve) != 4 {
		t.Errorf("curve len = %d, want 4", len(cfg.Fan.Curve))
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "penta.yaml")
	if err := os.WriteFile(path, []byte("button:\n  debounce: \"fast\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty curve", func(c *Config) { c.Fan.Curve = nil }},
		{"descending curve temps", func(c *Config) {
			c.Fan.Curve = []CurveStep{{TempC: 40, DutyPercent: 25}, {TempC: 35, DutyPercent: 50}}
		}},
		{"decreasing curve duty", func(c *Config) {
			c.Fan.Curve = []CurveStep{{TempC: 35, DutyPercent: 50}, {TempC: 40, DutyPercent: 25}}
		}},
		{"duty over 100", func(c *Config) {
			c.Fan.Curve = []CurveStep{{TempC: 35, DutyPercent: 110}}
		}},
		{"negative hysteresis", func(c *Config) { c.Fan.HysteresisC = -1 }},
		{"zero fan period", func(c *Config) { c.Fan.Period = 0 }},
		{"fail safe under 1", func(c *Config) { c.Fan.FailSafeAfter = 0 }},
		{"zero debounce", func(c *Config) { c.Button.Debounce = 0 }},
		{"long press under debounce", func(c *Config) {
			c.Button.LongPress = c.Button.Debounce
		}},
		{"unknown gesture", func(c *Config) {
			c.Button.Actions = map[string]string{"triple_click": "slider"}
		}},
		{"unknown action", func(c *Config) {
			c.Button.Actions = map[string]string{"short_press": "launch"}
		}},
		{"zero idle timeout", func(c *Config) { c.Display.IdleTimeout = 0 }},
		{"slider auto without dwell", func(c *Config) {
			c.Display.SliderAuto = true
			c.Display.SliderTime = 0
		}},
		{"zero disk period", func(c *Config) { c.Disk.Period = 0 }},
		{"no ports", func(c *Config) { c.Disk.Ports = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}
