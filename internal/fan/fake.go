package fan

import "errors"

// FakeSensor is a test double that returns scripted temperatures.
type FakeSensor struct {
	// Temps contains scripted readings; each ReadTempC consumes the next
	// one. When exhausted, the last reading repeats.
	Temps []float64

	// Errs, if non-nil, is consulted per call: a non-nil entry is returned
	// instead of the temperature.
	Errs []error

	index int
}

// ReadTempC returns the next scripted reading.
func (f *FakeSensor) ReadTempC() (float64, error) {
	if len(f.Temps) == 0 && len(f.Errs) == 0 {
		return 0, errors.New("no readings configured")
	}
	i := f.index
	if i < len(f.Errs) && f.Errs[i] != nil {
		f.advance()
		return 0, f.Errs[i]
	}
	t := 0.0
	if len(f.Temps) > 0 {
		if i >= len(f.Temps) {
			i = len(f.Temps) - 1
		}
		t = f.Temps[i]
	}
	f.advance()
	return t, nil
}

func (f *FakeSensor) advance() {
	limit := len(f.Temps)
	if len(f.Errs) > limit {
		limit = len(f.Errs)
	}
	if f.index < limit-1 {
		f.index++
	}
}

// FakeActuator records every duty cycle applied to it.
type FakeActuator struct {
	// Duties is every value passed to SetDutyPercent, in order.
	Duties []int

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, is returned by SetDutyPercent.
	SetError error
}

// SetDutyPercent records the duty.
func (f *FakeActuator) SetDutyPercent(percent int) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Duties = append(f.Duties, percent)
	return nil
}

// Close marks the actuator as closed.
func (f *FakeActuator) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recently applied duty, or -1 if none.
func (f *FakeActuator) Last() int {
	if len(f.Duties) == 0 {
		return -1
	}
	return f.Duties[len(f.Duties)-1]
}
