// Package oled renders the HAT's status pages to a 128x32 OLED panel and
// manages the anti-burn-in sleep state. Frame building is pure (same
// status in, same pixels out) so pages are testable without hardware; the
// panel sits behind an interface with a real ssd1306 implementation and a
// recording fake.
package oled

import (
	"image"
	"time"

	"github.com/sweeney/penta-hat/internal/disk"
	"github.com/sweeney/penta-hat/internal/fan"
)

// Panel display geometry.
const (
	Width  = 128
	Height = 32
)

// Page identifies one of the display's status pages.
type Page int

const (
	PageDisks Page = iota
	PageNetwork
	PageFan
	// PageError is shown on persistent hardware failure. It is not part
	// of the Advance cycle.
	PageError
)

func (p Page) String() string {
	switch p {
	case PageDisks:
		return "disks"
	case PageNetwork:
		return "network"
	case PageFan:
		return "fan"
	case PageError:
		return "error"
	default:
		return "unknown"
	}
}

// cycle is the page order Advance walks through.
var cycle = []Page{PageDisks, PageNetwork, PageFan}

// Status is the read-only view the pages render from. It is a value
// snapshot: the renderer never holds references into live board state.
type Status struct {
	Disks      map[int]disk.Info
	Fan        fan.State
	FanEnabled bool

	IP         string
	Uptime     time.Duration
	Load1      float64
	MemUsedMB  int64
	MemTotalMB int64

	// Err is the message shown by PageError.
	Err string
}

// Options are the display tuning knobs from configuration.
type Options struct {
	Fahrenheit bool

	// SliderAuto rotates the pages on their own while awake, dwelling
	// SliderTime on each. Button activity restarts the dwell.
	SliderAuto bool
	SliderTime time.Duration
}

// Panel is the physical display. Exactly one Renderer writes to it.
type Panel interface {
	// DrawFrame pushes a full frame to the panel.
	DrawFrame(img image.Image) error

	// SetPower turns the panel on or off. Off is a true low-power state,
	// not a blank frame.
	SetPower(on bool) error

	// Close powers down and releases the panel.
	Close() error
}
