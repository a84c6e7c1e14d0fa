package oled

import "image"

// FakePanel records every frame and power transition for assertions.
type FakePanel struct {
	// Frames is every frame drawn, in order.
	Frames []image.Image

	// PowerOps is every SetPower value, in order.
	PowerOps []bool

	// Closed tracks if Close was called.
	Closed bool

	// DrawError, if set, is returned by DrawFrame.
	DrawError error
	// PowerError, if set, is returned by SetPower.
	PowerError error
}

// DrawFrame records the frame.
func (f *FakePanel) DrawFrame(img image.Image) error {
	if f.DrawError != nil {
		return f.DrawError
	}
	f.Frames = append(f.Frames, img)
	return nil
}

// SetPower records the transition.
func (f *FakePanel) SetPower(on bool) error {
	if f.PowerError != nil {
		return f.PowerError
	}
	f.PowerOps = append(f.PowerOps, on)
	return nil
}

// Close marks the panel as closed.
func (f *FakePanel) Close() error {
	f.Closed = true
	return nil
}

// LastPower returns the most recent SetPower value; defaults to true
// (panels come up powered).
func (f *FakePanel) LastPower() bool {
	if len(f.PowerOps) == 0 {
		return true
	}
	return f.PowerOps[len(f.PowerOps)-1]
}
