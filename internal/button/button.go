// Package button turns raw GPIO edges into debounced button gestures.
// The Machine type is pure state-machine logic with NO external
// dependencies (no GPIO, OS, or time.Sleep); time is always injectable
// via time.Time parameters. Monitor wraps a Machine around a gpio.Source.
package button

import "time"

// ActionKind identifies a completed button gesture.
type ActionKind string

const (
	ShortPress  ActionKind = "SHORT_PRESS"
	DoubleClick ActionKind = "DOUBLE_CLICK"
	LongPress   ActionKind = "LONG_PRESS"
	// Release closes out a gesture whose LongPress already fired while the
	// button was still held. It never carries an effect of its own.
	Release ActionKind = "RELEASE"
)

// Action is a semantic button event, emitted once per physical gesture.
type Action struct {
	Kind   ActionKind
	Button string
}

// Timing holds the gesture timing constants. These are board-tuning
// values and come from configuration.
type Timing struct {
	// Debounce is how long the line must stay pressed before a press is
	// believed. Edges that flip back inside this window are noise.
	Debounce time.Duration
	// DoubleClick is how long after a short release a second press still
	// counts as a double click. Zero disables double-click detection, in
	// which case short presses are emitted immediately on release.
	DoubleClick time.Duration
	// LongPress is the held duration at which a LongPress fires. It fires
	// as soon as the threshold is crossed, not on release.
	LongPress time.Duration
}

// state is the debounce machine state.
type state int

const (
	// stateIdle: line released, nothing pending.
	stateIdle state = iota
	// stateDebouncing: press seen, waiting out the stability window.
	stateDebouncing
	// statePressed: stable press confirmed, watching for release or the
	// long-press threshold.
	statePressed
	// stateHeldLong: LongPress already emitted, waiting for release.
	stateHeldLong
	// stateAwaitSecond: released after a short press, waiting to see
	// whether a second press turns it into a double click.
	stateAwaitSecond
)

// Machine is the per-button debounce and gesture state machine. It is
// driven by OnEdge for hardware edges and Tick for elapsed time paired
// with the line level observed at that moment; Deadline tells the caller
// when the next Tick is due.
type Machine struct {
	name   string
	timing Timing

	state state
	// pressedAt is when the current press began (the edge that started
	// the debounce window, so held duration includes the window).
	pressedAt time.Time
	// deadline is when the current state's timer expires.
	deadline time.Time
	// clickDeadline is the double-click window cutoff, kept separately so
	// a noisy second press can fall back to it.
	clickDeadline time.Time
}

// NewMachine creates a Machine for the named button.
func NewMachine(name string, timing Timing) *Machine {
	return &Machine{name: name, timing: timing}
}

// Deadline returns the next time Tick must be called, if any.
func (m *Machine) Deadline() (time.Time, bool) {
	switch m.state {
	case stateDebouncing, statePressed, stateAwaitSecond:
		return m.deadline, true
	}
	return time.Time{}, false
}

// OnEdge feeds one debounced-pending hardware transition into the machine.
// pressed is the logical level after the edge. Returns any gestures that
// completed as a result.
func (m *Machine) OnEdge(pressed bool, now time.Time) []Action {
	// An edge can arrive after a timer deadline the caller has not ticked
	// yet (the wait returned the edge first). Apply the elapsed timer
	// before the edge so ordering does not depend on scheduling. Before
	// this edge the line was at the opposite level.
	actions := m.Tick(now, !pressed)

	switch m.state {
	case stateIdle:
		if pressed {
			m.state = stateDebouncing
			m.pressedAt = now
			m.deadline = now.Add(m.timing.Debounce)
		}

	case stateDebouncing:
		if !pressed {
			// Flipped back inside the stability window: noise. If a short
			// press is still waiting on the double-click window, restore
			// it, otherwise back to idle.
			if !m.clickDeadline.IsZero() {
				m.state = stateAwaitSecond
				m.deadline = m.clickDeadline
			} else {
				m.state = stateIdle
			}
		}

	case statePressed:
		if !pressed {
			// The Tick above already fired the long-press watchdog if the
			// threshold passed, so reaching here means a short release.
			if m.timing.DoubleClick > 0 {
				m.state = stateAwaitSecond
				m.deadline = now.Add(m.timing.DoubleClick)
				m.clickDeadline = m.deadline
			} else {
				actions = append(actions, m.action(ShortPress))
				m.state = stateIdle
			}
		}

	case stateHeldLong:
		if !pressed {
			actions = append(actions, m.action(Release))
			m.state = stateIdle
		}

	case stateAwaitSecond:
		if pressed {
			m.state = stateDebouncing
			m.pressedAt = now
			m.deadline = now.Add(m.timing.Debounce)
		}
	}

	return actions
}

// Tick advances the machine's timers to now. pressed is the line's
// observed logical level at now: timers only promote a state when the
// level still supports it, so a dropped edge can never phantom-fire a
// gesture. A level that contradicts the machine's belief means an edge
// was lost; the machine resynchronizes from the level, treating the
// missing transition as having happened by now. Returns any gestures
// that completed as a result.
func (m *Machine) Tick(now time.Time, pressed bool) []Action {
	var actions []Action

	for {
		switch m.state {
		case stateIdle:
			if !pressed {
				return actions
			}
			// The press edge was lost; the line is already down. Start
			// the stability window from now.
			m.state = stateDebouncing
			m.pressedAt = now
			m.deadline = now.Add(m.timing.Debounce)

		case stateDebouncing:
			if now.Before(m.deadline) {
				return actions
			}
			if !pressed {
				// The line did not hold through the window. Whether that
				// was bounce or a lost release edge, the press was too
				// short to count. Restore a pending click if one is still
				// waiting on the double-click window.
				if !m.clickDeadline.IsZero() {
					m.state = stateAwaitSecond
					m.deadline = m.clickDeadline
				} else {
					m.state = stateIdle
				}
				continue
			}
			// Stability window elapsed with the line still down: the
			// press is real.
			if !m.clickDeadline.IsZero() {
				// Second stable press inside the double-click window.
				actions = append(actions, m.action(DoubleClick))
				m.clickDeadline = time.Time{}
				m.state = stateHeldLong
				// The eventual release of the second press is consumed
				// silently by stateHeldLong's Release, which carries no
				// effect.
				return actions
			}
			m.state = statePressed
			m.deadline = m.pressedAt.Add(m.timing.LongPress)
			// Re-check: the long-press deadline may already have passed.

		case statePressed:
			if !pressed {
				// Release edge lost after a confirmed press: a short
				// press ended somewhere before now.
				if m.timing.DoubleClick > 0 {
					m.state = stateAwaitSecond
					m.deadline = now.Add(m.timing.DoubleClick)
					m.clickDeadline = m.deadline
				} else {
					actions = append(actions, m.action(ShortPress))
					m.state = stateIdle
				}
				continue
			}
			if now.Before(m.deadline) {
				return actions
			}
			// Watchdog: fire the long press promptly while still held.
			actions = append(actions, m.action(LongPress))
			m.state = stateHeldLong
			return actions

		case stateHeldLong:
			if pressed {
				return actions
			}
			// Release edge lost.
			actions = append(actions, m.action(Release))
			m.state = stateIdle
			return actions

		case stateAwaitSecond:
			if pressed {
				// The second press edge was lost; debounce it from now.
				m.state = stateDebouncing
				m.pressedAt = now
				m.deadline = now.Add(m.timing.Debounce)
				continue
			}
			if now.Before(m.deadline) {
				return actions
			}
			// No second press arrived: it was a plain short press.
			actions = append(actions, m.action(ShortPress))
			m.clickDeadline = time.Time{}
			m.state = stateIdle
			return actions

		default:
			return actions
		}
	}
}

func (m *Machine) action(kind ActionKind) Action {
	return Action{Kind: kind, Button: m.name}
}
