//go:build linux

package gpio

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealSource reads edges from actual hardware via the Linux GPIO character
// device. The kernel queues edge events for us, so waiting is a blocking
// channel receive, not a poll loop.
type RealSource struct {
	line   *gpiocdev.Line
	events chan Event
}

// NewRealSource requests the given line with both-edge event detection.
// The line is requested as input with pull-up: the HAT button shorts the
// line to ground, so the idle level is high.
func NewRealSource(chip string, offset int) (*RealSource, error) {
	s := &RealSource{
		// Room for a burst of bounce edges between waits.
		events: make(chan Event, 16),
	}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request line %s:%d: %w", chip, offset, err)
	}
	s.line = line
	return s, nil
}

// handleEvent runs on gpiocdev's event goroutine; keep it non-blocking.
func (s *RealSource) handleEvent(evt gpiocdev.LineEvent) {
	edge := Rising
	if evt.Type == gpiocdev.LineEventFallingEdge {
		edge = Falling
	}
	select {
	case s.events <- Event{Edge: edge, At: time.Now()}:
	default:
		// Queue full: the debounce machine absorbs edge storms anyway,
		// dropping the excess here is harmless.
	}
}

// WaitForEdge blocks until an edge, the timeout, or cancellation.
func (s *RealSource) WaitForEdge(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ev := <-s.events:
		return ev, true, nil
	case <-timer.C:
		return Event{}, false, nil
	case <-ctx.Done():
		return Event{}, false, ctx.Err()
	}
}

// ReadLevel reads the line's current level directly from the kernel.
func (s *RealSource) ReadLevel() (int, error) {
	level, err := s.line.Value()
	if err != nil {
		return 0, fmt.Errorf("read line level: %w", err)
	}
	return level, nil
}

// Close releases the line, reconfiguring it back to a plain input first so
// the pin is in a clean state for reboot.
func (s *RealSource) Close() error {
	if s.line == nil {
		return nil
	}
	if err := s.line.Reconfigure(gpiocdev.AsInput); err != nil {
		s.line.Close()
		return fmt.Errorf("reconfigure line: %w", err)
	}
	if err := s.line.Close(); err != nil {
		return fmt.Errorf("close line: %w", err)
	}
	return nil
}
