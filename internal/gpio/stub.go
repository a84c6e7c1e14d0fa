//go:build !linux

package gpio

import (
	"context"
	"errors"
	"time"
)

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(chip string, offset int) (*RealSource, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// WaitForEdge is not implemented on non-Linux platforms.
func (s *RealSource) WaitForEdge(ctx context.Context, timeout time.Duration) (Event, bool, error) {
	return Event{}, false, errors.New("gpio: not supported")
}

// ReadLevel is not implemented on non-Linux platforms.
func (s *RealSource) ReadLevel() (int, error) {
	return 0, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
