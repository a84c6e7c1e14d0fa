package fan

import (
	"errors"
	"testing"
	"time"
)

var testCurve = Curve{
	{TempC: 35, DutyPercent: 25},
	{TempC: 40, DutyPercent: 50},
	{TempC: 45, DutyPercent: 75},
	{TempC: 50, DutyPercent: 100},
}

func testConfig() Config {
	return Config{
		Curve:         testCurve,
		HysteresisC:   4,
		MinDwell:      10 * time.Second,
		FailSafeAfter: 3,
	}
}

func tAt(sec int) time.Time {
	return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func TestColdBoardStaysOff(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{30}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	st, err := c.Tick(tAt(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.DutyPercent != 0 {
		t.Errorf("expected 0%% at 30C, got %d%%", st.DutyPercent)
	}
	if len(act.Duties) != 0 {
		t.Errorf("expected no actuator writes, got %v", act.Duties)
	}
}

func TestDutyFollowsCurveUp(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{36, 41, 47, 52}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	want := []int{25, 50, 75, 100}
	for i, expected := range want {
		st, err := c.Tick(tAt(i * 20)) // outside the dwell window
		if err != nil {
			t.Fatalf("tick %d: unexpected error: %v", i, err)
		}
		if st.DutyPercent != expected {
			t.Errorf("tick %d: expected %d%%, got %d%%", i, expected, st.DutyPercent)
		}
	}
}

func TestSingleThresholdNoOscillation(t *testing.T) {
	// Temperature rises 40C -> 61C against a single (60,70%) step, then
	// hovers at 60-61C: the duty must go 0 -> 70 exactly once.
	cfg := Config{
		Curve:         Curve{{TempC: 60, DutyPercent: 70}},
		HysteresisC:   4,
		MinDwell:      10 * time.Second,
		FailSafeAfter: 3,
	}
	sensor := &FakeSensor{Temps: []float64{40, 61, 60, 61, 59.5, 60.5, 61}}
	act := &FakeActuator{}
	c := New(cfg, sensor, act)

	for i := 0; i < 7; i++ {
		if _, err := c.Tick(tAt(i * 20)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if len(act.Duties) != 1 || act.Duties[0] != 70 {
		t.Errorf("expected single transition to 70%%, got writes %v", act.Duties)
	}
}

func TestStepDownRequiresHysteresisMargin(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{41, 39, 37, 35.9, 35}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	// 41C: level 40 -> 50%.
	c.Tick(tAt(0))
	// 39C, 37C, 35.9C: still above 40-4=36C at first, then inside the
	// band but the step-down threshold is 36C, so 35.9C finally drops.
	c.Tick(tAt(20))
	if got := c.State().DutyPercent; got != 50 {
		t.Errorf("39C should hold 50%%, got %d%%", got)
	}
	c.Tick(tAt(40))
	if got := c.State().DutyPercent; got != 50 {
		t.Errorf("37C should hold 50%%, got %d%%", got)
	}
	c.Tick(tAt(60))
	if got := c.State().DutyPercent; got != 25 {
		t.Errorf("35.9C should drop to 25%%, got %d%%", got)
	}
	c.Tick(tAt(80))
	if got := c.State().DutyPercent; got != 25 {
		t.Errorf("35C should hold 25%%, got %d%%", got)
	}
}

func TestMinDwellSuppressesChanges(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{41, 47, 47}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	c.Tick(tAt(0)) // 50%
	// 47C only 5s later: change due but inside the dwell window.
	st, _ := c.Tick(tAt(5))
	if st.DutyPercent != 50 {
		t.Errorf("expected dwell to hold 50%%, got %d%%", st.DutyPercent)
	}
	// Same temperature after the window: change applies.
	st, _ = c.Tick(tAt(11))
	if st.DutyPercent != 75 {
		t.Errorf("expected 75%% after dwell, got %d%%", st.DutyPercent)
	}
}

func TestSensorFailureHoldsLastDuty(t *testing.T) {
	sensor := &FakeSensor{
		Temps: []float64{41, 0},
		Errs:  []error{nil, errors.New("read failed")},
	}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	c.Tick(tAt(0))
	st, err := c.Tick(tAt(20))
	if err == nil {
		t.Fatal("expected transient error")
	}
	if st.DutyPercent != 50 {
		t.Errorf("expected failure to hold 50%%, got %d%%", st.DutyPercent)
	}
}

func TestConsecutiveFailuresForceFailSafe(t *testing.T) {
	boom := errors.New("read failed")
	sensor := &FakeSensor{
		Temps: []float64{41, 0, 0, 0, 41},
		Errs:  []error{nil, boom, boom, boom, nil},
	}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	c.Tick(tAt(0))
	c.Tick(tAt(20))
	c.Tick(tAt(40))
	st, _ := c.Tick(tAt(60))
	if st.DutyPercent != 100 {
		t.Errorf("expected fail-safe 100%% after 3 failures, got %d%%", st.DutyPercent)
	}

	// Recovery: next good read resumes curve control (after dwell).
	st, err := c.Tick(tAt(80))
	if err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if st.DutyPercent != 50 {
		t.Errorf("expected 50%% after recovery, got %d%%", st.DutyPercent)
	}
}

func TestDisableStopsFan(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{47}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	c.Tick(tAt(0))
	if c.State().DutyPercent != 75 {
		t.Fatalf("expected 75%%, got %d%%", c.State().DutyPercent)
	}

	if err := c.SetEnabled(false, tAt(20)); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if act.Last() != 0 {
		t.Errorf("expected duty 0 after disable, got %d", act.Last())
	}

	// Re-enable restores the curve duty for the current level.
	if err := c.SetEnabled(true, tAt(40)); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if act.Last() != 75 {
		t.Errorf("expected duty 75 after re-enable, got %d", act.Last())
	}
}

func TestCloseStopsFan(t *testing.T) {
	sensor := &FakeSensor{Temps: []float64{47}}
	act := &FakeActuator{}
	c := New(testConfig(), sensor, act)

	c.Tick(tAt(0))
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if act.Last() != 0 {
		t.Errorf("expected duty 0 on close, got %d", act.Last())
	}
	if !act.Closed {
		t.Error("actuator should be closed")
	}
}
