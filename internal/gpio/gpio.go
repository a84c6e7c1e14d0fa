// Package gpio provides edge-driven GPIO button input with hardware
// abstraction. The real implementation uses the Linux GPIO character
// device and blocks on kernel edge notifications rather than polling.
// The fake implementation allows testing without hardware.
package gpio

import (
	"context"
	"time"
)

// Edge is the direction of a line transition.
type Edge int

const (
	Rising Edge = iota
	Falling
)

func (e Edge) String() string {
	if e == Rising {
		return "rising"
	}
	return "falling"
}

// Event is a single raw edge observed on a line.
type Event struct {
	Edge Edge
	// At is when the edge was observed, from the monotonic clock.
	At time.Time
}

// Source delivers edge events for one button line.
type Source interface {
	// WaitForEdge blocks until an edge arrives, the timeout elapses, or ctx
	// is cancelled. ok is false on timeout. Cancellation is reported as
	// ctx.Err(); any other error means the line is unusable.
	WaitForEdge(ctx context.Context, timeout time.Duration) (ev Event, ok bool, err error)

	// ReadLevel returns the line's current raw level (0 low, 1 high).
	// Edge delivery is lossy under bursts, so timer-driven decisions
	// confirm the level here instead of trusting edge parity.
	ReadLevel() (int, error)

	// Close releases the line.
	Close() error
}
