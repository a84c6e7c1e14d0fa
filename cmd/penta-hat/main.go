// Command penta-hat drives a 5-bay SATA expansion board on a Raspberry Pi:
// fan curve with hysteresis, power-button gestures, drive bay tracking, and
// a small OLED status display.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/sweeney/penta-hat/internal/board"
	"github.com/sweeney/penta-hat/internal/button"
	"github.com/sweeney/penta-hat/internal/config"
	"github.com/sweeney/penta-hat/internal/disk"
	"github.com/sweeney/penta-hat/internal/fan"
	"github.com/sweeney/penta-hat/internal/gpio"
	"github.com/sweeney/penta-hat/internal/oled"
	"github.com/sweeney/penta-hat/internal/telemetry"
)

// Overlay env vars win over the config file so the packaging scripts can
// retarget the button line per Pi model without editing YAML.
const (
	envButtonChip = "BUTTON_CHIP"
	envButtonLine = "BUTTON_LINE"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the YAML configuration file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config; empty keeps config value)")
	printState := flag.Bool("print-state", false, "Print temperature and bay state and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.Telemetry.Broker = *broker
	}
	applyEnvOverrides(&cfg)

	if *printState {
		if err := doPrintState(cfg); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func applyEnvOverrides(cfg *config.Config) {
	if chip := os.Getenv(envButtonChip); chip != "" {
		cfg.Button.Chip = chip
	}
	if line := os.Getenv(envButtonLine); line != "" {
		n, err := strconv.Atoi(line)
		if err != nil {
			log.Printf("%s=%q is not a line number, ignoring", envButtonLine, line)
			return
		}
		cfg.Button.Line = n
	}
}

func run(cfg config.Config) error {
	start := time.Now()

	sensor := &fan.SysfsSensor{Path: cfg.Fan.SensorPath}
	pwm, err := fan.NewSysfsPWM(cfg.Fan.PWMChip, cfg.Fan.PWMChannel, cfg.Fan.PWMPeriodNs, cfg.Fan.ActiveLow)
	if err != nil {
		return fmt.Errorf("init pwm: %w", err)
	}
	fanCtl := fan.New(fan.Config{
		Curve:         fanCurve(cfg.Fan.Curve),
		HysteresisC:   cfg.Fan.HysteresisC,
		MinDwell:      cfg.Fan.MinDwell.Std(),
		FailSafeAfter: cfg.Fan.FailSafeAfter,
	}, sensor, pwm)
	// The coordinator owns fanCtl.Close (it keeps the fan alive until the
	// goodbye screen is gone).

	source, err := gpio.NewRealSource(cfg.Button.Chip, cfg.Button.Line)
	if err != nil {
		fanCtl.Close()
		return fmt.Errorf("init button %s:%d: %w", cfg.Button.Chip, cfg.Button.Line, err)
	}
	defer source.Close()

	monitor := button.NewMonitor("power", source, button.Timing{
		Debounce:    cfg.Button.Debounce.Std(),
		DoubleClick: cfg.Button.DoubleClick.Std(),
		LongPress:   cfg.Button.LongPress.Std(),
	}, cfg.Button.ActiveLow)

	panel, err := oled.NewSSD1306(cfg.Display.I2CBus, cfg.Display.Rotate)
	if err != nil {
		fanCtl.Close()
		return fmt.Errorf("init display: %w", err)
	}
	display := oled.NewRenderer(panel, cfg.Display.IdleTimeout.Std(),
		oled.Options{
			Fahrenheit: cfg.Display.Fahrenheit,
			SliderAuto: cfg.Display.SliderAuto,
			SliderTime: cfg.Display.SliderTime.Std(),
		}, start)

	registry := disk.NewRegistry(disk.NewSysfsScanner(cfg.Disk.Ports), cfg.Bays())

	var pub telemetry.Publisher = telemetry.Nop{}
	if cfg.Telemetry.Broker != "" {
		real, err := telemetry.NewRealPublisher(cfg.Telemetry.Broker, cfg.Telemetry.ClientID)
		if err != nil {
			display.Close()
			fanCtl.Close()
			return fmt.Errorf("init telemetry: %w", err)
		}
		pub = real
		log.Printf("telemetry: publishing to %s", cfg.Telemetry.Broker)
	}
	defer pub.Close()

	coordinator := board.New(
		board.NewState(start),
		fanCtl,
		registry,
		display,
		[]*button.Monitor{monitor},
		board.RealPower{},
		pub,
		board.Actions{
			ShortPress:  cfg.Button.Actions["short_press"],
			DoubleClick: cfg.Button.Actions["double_click"],
			LongPress:   cfg.Button.Actions["long_press"],
		},
		board.Periods{
			Fan:     cfg.Fan.Period.Std(),
			Disk:    cfg.Disk.Period.Std(),
			Display: cfg.Display.Refresh.Std(),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("started: bays=%d button=%s:%d fan_period=%v",
		cfg.Bays(), cfg.Button.Chip, cfg.Button.Line, cfg.Fan.Period.Std())

	return coordinator.Run(ctx)
}

// doPrintState is a field diagnostic: read the sensor and scan the bays
// once, print, and exit without touching the fan, button, or display.
func doPrintState(cfg config.Config) error {
	sensor := &fan.SysfsSensor{Path: cfg.Fan.SensorPath}
	temp, err := sensor.ReadTempC()
	if err != nil {
		return fmt.Errorf("read temperature: %w", err)
	}
	fmt.Printf("CPU: %.1fC\n", temp)

	registry := disk.NewRegistry(disk.NewSysfsScanner(cfg.Disk.Ports), cfg.Bays())
	if _, err := registry.Scan(); err != nil {
		return fmt.Errorf("scan bays: %w", err)
	}
	disks := registry.Snapshot()

	bays := make([]int, 0, len(disks))
	for bay := range disks {
		bays = append(bays, bay)
	}
	sort.Ints(bays)
	for _, bay := range bays {
		info := disks[bay]
		line := fmt.Sprintf("bay %d: %s %.1fGB", bay, info.Device, float64(info.SizeBytes)/1e9)
		if info.TempC != nil {
			line += fmt.Sprintf(" %.0fC", *info.TempC)
		}
		fmt.Println(line)
	}
	if len(bays) == 0 {
		fmt.Println("no disks")
	}
	return nil
}

func fanCurve(steps []config.CurveStep) fan.Curve {
	curve := make(fan.Curve, len(steps))
	for i, s := range steps {
		curve[i] = fan.Step{TempC: s.TempC, DutyPercent: s.DutyPercent}
	}
	return curve
}
