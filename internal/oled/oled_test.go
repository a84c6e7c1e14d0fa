package oled

import (
	"bytes"
	"testing"
	"time"

	"github.com/sweeney/penta-hat/internal/disk"
	"github.com/sweeney/penta-hat/internal/fan"
)

func oAt(sec int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func testStatus() Status {
	return Status{
		Disks: map[int]disk.Info{
			1: {Device: "sda", SizeBytes: 4 << 40, Present: true},
			3: {Device: "sdc", SizeBytes: 500 << 30, Present: true},
		},
		Fan:        fan.State{TemperatureC: 46.5, DutyPercent: 75},
		FanEnabled: true,
		IP:         "192.168.1.50",
		Uptime:     76 * time.Hour,
		Load1:      0.52,
		MemUsedMB:  1747,
		MemTotalMB: 3793,
	}
}

func TestFrameIsDeterministic(t *testing.T) {
	st := testStatus()
	for _, p := range []Page{PageDisks, PageNetwork, PageFan, PageError} {
		a := Frame(p, st, Options{})
		b := Frame(p, st, Options{})
		if !bytes.Equal(a.Pix, b.Pix) {
			t.Errorf("page %s: same status produced different frames", p)
		}
	}
}

func TestFramePagesDiffer(t *testing.T) {
	st := testStatus()
	disks := Frame(PageDisks, st, Options{})
	network := Frame(PageNetwork, st, Options{})
	if bytes.Equal(disks.Pix, network.Pix) {
		t.Error("disk and network pages rendered identically")
	}
}

func TestRemovedBayOmittedFromDiskFrame(t *testing.T) {
	with := testStatus()
	without := testStatus()
	delete(without.Disks, 3)

	// The frames must differ: the removed bay's entry is gone, not stale.
	a := Frame(PageDisks, with, Options{})
	b := Frame(PageDisks, without, Options{})
	if bytes.Equal(a.Pix, b.Pix) {
		t.Error("removing a bay did not change the rendered disk page")
	}

	// And the line content drops the bay entirely.
	lines := diskLines(without)
	for _, line := range lines {
		if bytes.Contains([]byte(line), []byte("3:")) {
			t.Errorf("removed bay 3 still rendered: %q", line)
		}
	}
}

func TestDiskLinesLayout(t *testing.T) {
	st := Status{Disks: map[int]disk.Info{
		1: {SizeBytes: 4 << 40, Present: true},
		2: {SizeBytes: 4 << 40, Present: true},
		5: {SizeBytes: 500 << 30, Present: true},
	}}
	lines := diskLines(st)
	if lines[0] != "1:4.0T 2:4.0T" {
		t.Errorf("line 0: got %q", lines[0])
	}
	if lines[1] != "5:500G" {
		t.Errorf("line 1: got %q", lines[1])
	}
}

func TestDiskLinesEmpty(t *testing.T) {
	lines := diskLines(Status{})
	if lines[0] != "no disks" {
		t.Errorf("expected 'no disks', got %q", lines[0])
	}
}

func TestFanLinesFahrenheit(t *testing.T) {
	st := Status{Fan: fan.State{TemperatureC: 50, DutyPercent: 100}, FanEnabled: true}
	lines := fanLines(st, Options{Fahrenheit: true})
	if lines[1] != "CPU 122F" {
		t.Errorf("expected fahrenheit temperature, got %q", lines[1])
	}
}

func TestAdvanceCyclesPages(t *testing.T) {
	r := NewRenderer(&FakePanel{}, 10*time.Second, Options{}, oAt(0))

	want := []Page{PageNetwork, PageFan, PageDisks, PageNetwork}
	for i, expected := range want {
		if got := r.Advance(); got != expected {
			t.Errorf("advance %d: expected %s, got %s", i, expected, got)
		}
	}
}

func TestSleepAfterIdleTimeout(t *testing.T) {
	panel := &FakePanel{}
	r := NewRenderer(panel, 10*time.Second, Options{}, oAt(0))
	st := testStatus()

	// Before the timeout: still awake, rendering.
	if err := r.Tick(oAt(9), st); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if !r.Awake() {
		t.Fatal("should be awake before idle timeout")
	}

	// At the timeout: asleep, panel powered down.
	if err := r.Tick(oAt(10), st); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if r.Awake() {
		t.Fatal("should be asleep after idle timeout")
	}
	if panel.LastPower() {
		t.Error("panel should be powered off while asleep")
	}
}

func TestAsleepSuppressesRendering(t *testing.T) {
	panel := &FakePanel{}
	r := NewRenderer(panel, 10*time.Second, Options{}, oAt(0))
	st := testStatus()

	r.Tick(oAt(10), st) // sleep
	drawn := len(panel.Frames)

	r.Render(st)
	r.Tick(oAt(20), st)
	if len(panel.Frames) != drawn {
		t.Errorf("asleep renderer drew %d extra frames", len(panel.Frames)-drawn)
	}
}

func TestActivityWakesPanel(t *testing.T) {
	panel := &FakePanel{}
	r := NewRenderer(panel, 10*time.Second, Options{}, oAt(0))
	r.Tick(oAt(10), testStatus()) // sleep

	woke, err := r.Activity(oAt(15))
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if !woke {
		t.Error("expected wake")
	}
	if !panel.LastPower() {
		t.Error("panel should be powered on after wake")
	}

	// Activity while awake resets the idle timer but does not report a wake.
	woke, _ = r.Activity(oAt(16))
	if woke {
		t.Error("activity while awake must not report a wake")
	}
	if r.Tick(oAt(26), testStatus()); r.Awake() {
		t.Error("idle timer should run from the last activity")
	}
}

func TestShowErrorWakesAndPinsErrorPage(t *testing.T) {
	panel := &FakePanel{}
	r := NewRenderer(panel, 10*time.Second, Options{}, oAt(0))
	r.Tick(oAt(10), testStatus()) // sleep

	if err := r.ShowError("gpio line lost", oAt(12)); err != nil {
		t.Fatalf("show error: %v", err)
	}
	if r.Page() != PageError {
		t.Errorf("expected error page, got %s", r.Page())
	}
	if !panel.LastPower() {
		t.Error("panel should wake to show the error")
	}
	if len(panel.Frames) == 0 {
		t.Fatal("error frame not drawn")
	}
}

func TestCloseNeverLeavesStaticImage(t *testing.T) {
	panel := &FakePanel{}
	r := NewRenderer(panel, 10*time.Second, Options{}, oAt(0))
	r.Render(testStatus())

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if panel.LastPower() {
		t.Error("panel must be powered down on close")
	}
	if !panel.Closed {
		t.Error("panel should be closed")
	}
}

func TestAutoSliderRotatesPages(t *testing.T) {
	panel := &FakePanel{}
	opts := Options{SliderAuto: true, SliderTime: 5 * time.Second}
	r := NewRenderer(panel, 30*time.Second, opts, oAt(0))
	st := testStatus()

	// Before the dwell elapses the page stays put.
	if err := r.Tick(oAt(4), st); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if r.Page() != PageDisks {
		t.Errorf("page rotated early: %s", r.Page())
	}

	// Each dwell expiry moves one page along the cycle.
	r.Tick(oAt(5), st)
	if r.Page() != PageNetwork {
		t.Errorf("expected network page, got %s", r.Page())
	}
	r.Tick(oAt(10), st)
	if r.Page() != PageFan {
		t.Errorf("expected fan page, got %s", r.Page())
	}
	r.Tick(oAt(15), st)
	if r.Page() != PageDisks {
		t.Errorf("expected wrap to disk page, got %s", r.Page())
	}
}

func TestAutoSliderRestartsDwellOnActivity(t *testing.T) {
	opts := Options{SliderAuto: true, SliderTime: 5 * time.Second}
	r := NewRenderer(&FakePanel{}, 30*time.Second, opts, oAt(0))
	st := testStatus()

	r.Activity(oAt(4))
	r.Tick(oAt(5), st)
	if r.Page() != PageDisks {
		t.Errorf("dwell should restart on activity, got %s", r.Page())
	}
	r.Tick(oAt(9), st)
	if r.Page() != PageNetwork {
		t.Errorf("expected rotation a full dwell after activity, got %s", r.Page())
	}
}

func TestAutoSliderYieldsToIdleSleep(t *testing.T) {
	panel := &FakePanel{}
	opts := Options{SliderAuto: true, SliderTime: 5 * time.Second}
	r := NewRenderer(panel, 10*time.Second, opts, oAt(0))
	st := testStatus()

	r.Tick(oAt(5), st)
	r.Tick(oAt(10), st) // idle timeout wins
	if r.Awake() {
		t.Fatal("idle timeout should still sleep the panel")
	}
	page := r.Page()
	r.Tick(oAt(20), st)
	if r.Page() != page {
		t.Error("asleep display must not rotate")
	}
}

func TestAutoSliderOffByDefault(t *testing.T) {
	r := NewRenderer(&FakePanel{}, 30*time.Second, Options{}, oAt(0))
	st := testStatus()

	r.Tick(oAt(15), st)
	if r.Page() != PageDisks {
		t.Errorf("page rotated with slider_auto off: %s", r.Page())
	}
}
