package button

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/penta-hat/internal/gpio"
)

// ErrHardwareUnavailable means the button line stopped delivering events.
// Button handling cannot continue meaningfully, so the caller is expected
// to shut the board down.
var ErrHardwareUnavailable = errors.New("button hardware unavailable")

// maxWait bounds the edge wait when the machine has no pending timer, so
// cancellation is always observed promptly.
const maxWait = time.Second

// Monitor drives a Machine from a gpio.Source on its own goroutine and
// delivers completed gestures on Actions. One Monitor per physical button;
// simultaneous multi-button boards run independent Monitors.
type Monitor struct {
	machine *Machine
	source  gpio.Source
	// activeLow maps edge polarity to logical press: the HAT button pulls
	// the line low when pressed.
	activeLow bool

	actions chan Action
	now     func() time.Time
}

// NewMonitor creates a Monitor for the given source.
func NewMonitor(name string, source gpio.Source, timing Timing, activeLow bool) *Monitor {
	return &Monitor{
		machine:   NewMachine(name, timing),
		source:    source,
		activeLow: activeLow,
		actions:   make(chan Action, 8),
		now:       time.Now,
	}
}

// Actions delivers gestures in the order they completed.
func (m *Monitor) Actions() <-chan Action {
	return m.actions
}

// Run blocks on hardware edges until ctx is cancelled, feeding the state
// machine and forwarding its actions. Returns nil on cancellation and an
// error wrapping ErrHardwareUnavailable if the line becomes unreadable.
func (m *Monitor) Run(ctx context.Context) error {
	for {
		wait := maxWait
		if deadline, ok := m.machine.Deadline(); ok {
			wait = deadline.Sub(m.now())
			if wait < 0 {
				wait = 0
			}
		}

		ev, ok, err := m.source.WaitForEdge(ctx, wait)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("%w: %v", ErrHardwareUnavailable, err)
		}

		var fired []Action
		if ok {
			pressed := ev.Edge == gpio.Falling
			if !m.activeLow {
				pressed = !pressed
			}
			fired = m.machine.OnEdge(pressed, ev.At)
		} else {
			// Timer wakeup: confirm the actual line level before letting
			// a deadline promote the machine. Edge delivery can drop
			// events under bursts, and a lost release must never turn
			// into a held button.
			level, lerr := m.source.ReadLevel()
			if lerr != nil {
				return fmt.Errorf("%w: %v", ErrHardwareUnavailable, lerr)
			}
			pressed := level != 0
			if m.activeLow {
				pressed = !pressed
			}
			fired = m.machine.Tick(m.now(), pressed)
		}

		for _, a := range fired {
			select {
			case m.actions <- a:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
