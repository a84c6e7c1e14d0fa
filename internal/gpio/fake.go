package gpio

import (
	"context"
	"time"
)

// FakeSource is a test double that delivers scripted edge events.
// Tests push events with Push; WaitForEdge consumes them in order and
// reports a timeout once the queue is drained. Not safe for pushing
// concurrently with a running consumer.
type FakeSource struct {
	events chan Event

	// Level is the raw level ReadLevel reports. Push keeps it in step
	// with the queued edges (a falling edge leaves the line low); tests
	// set it directly to model edges the hardware dropped. Starts high,
	// matching a pulled-up idle line.
	Level int

	// Closed tracks if Close was called.
	Closed bool

	// WaitError, if set, is returned by every WaitForEdge call.
	WaitError error
	// LevelError, if set, is returned by every ReadLevel call.
	LevelError error
}

// NewFakeSource creates a FakeSource preloaded with the given events.
func NewFakeSource(events ...Event) *FakeSource {
	f := &FakeSource{events: make(chan Event, 64), Level: 1}
	for _, ev := range events {
		f.Push(ev)
	}
	return f
}

// Push queues another edge event and updates the reported level.
func (f *FakeSource) Push(ev Event) {
	f.events <- ev
	if ev.Edge == Falling {
		f.Level = 0
	} else {
		f.Level = 1
	}
}

// WaitForEdge returns the next queued event, or a timeout if none is
// queued. It never sleeps: an empty queue is an immediate timeout, which
// keeps tests fast and deterministic.
func (f *FakeSource) WaitForEdge(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	if f.WaitError != nil {
		return Event{}, false, f.WaitError
	}
	select {
	case <-ctx.Done():
		return Event{}, false, ctx.Err()
	case ev := <-f.events:
		return ev, true, nil
	default:
		return Event{}, false, nil
	}
}

// ReadLevel returns the scripted level.
func (f *FakeSource) ReadLevel() (int, error) {
	if f.LevelError != nil {
		return 0, f.LevelError
	}
	return f.Level, nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}
