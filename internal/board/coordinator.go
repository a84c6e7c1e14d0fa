package board

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/penta-hat/internal/button"
	"github.com/sweeney/penta-hat/internal/disk"
	"github.com/sweeney/penta-hat/internal/fan"
	"github.com/sweeney/penta-hat/internal/oled"
	"github.com/sweeney/penta-hat/internal/sysinfo"
	"github.com/sweeney/penta-hat/internal/telemetry"
)

// ErrHardwareUnavailable is the fatal error class: a device the board
// cannot run without has failed. The coordinator shuts down cleanly and
// the process exits non-zero.
var ErrHardwareUnavailable = errors.New("hardware unavailable")

// Actions maps gestures to their configured effects: "slider" (next
// page), "switch" (fan toggle), "poweroff", "reboot", "none".
type Actions struct {
	ShortPress  string
	DoubleClick string
	LongPress   string
}

// Periods are the loop schedules.
type Periods struct {
	Fan     time.Duration
	Disk    time.Duration
	Display time.Duration
}

// Coordinator runs the board. It owns State exclusively: every update
// from the fan, disk, and button loops is applied here, on one
// goroutine, and the display renders from snapshots of it.
type Coordinator struct {
	state    *State
	fan      *fan.Controller
	disks    *disk.Registry
	display  *oled.Renderer
	monitors []*button.Monitor
	power    Power
	pub      telemetry.Publisher

	actions Actions
	periods Periods

	// Injectable for tests.
	now      func() time.Time
	readHost func() sysinfo.Host
	// screenHold is how long the goodbye and error screens stay visible
	// before the panel powers down.
	screenHold time.Duration

	host     sysinfo.Host
	lastDuty int
}

// New wires a Coordinator. The monitors are started by Run.
func New(state *State, fanCtl *fan.Controller, disks *disk.Registry, display *oled.Renderer,
	monitors []*button.Monitor, power Power, pub telemetry.Publisher,
	actions Actions, periods Periods) *Coordinator {
	return &Coordinator{
		state:       state,
		fan:         fanCtl,
		disks:       disks,
		display:     display,
		monitors:    monitors,
		power:       power,
		pub:         pub,
		actions:     actions,
		periods:     periods,
		now:         time.Now,
		readHost:    sysinfo.Read,
		screenHold: 1500 * time.Millisecond,
		lastDuty:    -1,
	}
}

// stop describes why the loop ended and what should happen next.
type stop struct {
	reason      string
	powerAction string // "poweroff", "reboot", or ""
	err         error
}

// Run starts the button monitors and control loops and blocks until ctx
// is cancelled, a long-press shutdown is requested, or a fatal hardware
// error occurs. It always leaves the hardware in a safe state: loops
// stopped, fan released, display powered down.
func (c *Coordinator) Run(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	actionCh := make(chan button.Action, 16)
	fatalCh := make(chan error, len(c.monitors)+1)

	var wg sync.WaitGroup
	for _, m := range c.monitors {
		m := m
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := m.Run(loopCtx); err != nil {
				fatalCh <- err
			}
		}()
		go func() {
			defer wg.Done()
			forward(loopCtx, m.Actions(), actionCh)
		}()
	}

	fanTick := time.NewTicker(c.periods.Fan)
	defer fanTick.Stop()
	diskTick := time.NewTicker(c.periods.Disk)
	defer diskTick.Stop()
	displayTick := time.NewTicker(c.periods.Display)
	defer displayTick.Stop()

	result := c.run(loopCtx, actionCh, fatalCh, fanTick.C, diskTick.C, displayTick.C)

	// Orderly shutdown: stop the loops first, bounded, so nothing races
	// the hardware teardown below.
	cancel()
	waitTimeout(&wg, 2*time.Second)

	if err := c.pub.PublishSystem(telemetry.SystemEvent{
		Timestamp: c.now(),
		Event:     "SHUTDOWN",
		Reason:    result.reason,
		Retained:  true,
	}); err != nil {
		log.Printf("publish shutdown event: %v", err)
	}

	if result.err != nil {
		// Persistent hardware failure surfaces on the display if the
		// display itself still works. Hold it long enough to read before
		// the panel goes dark for the restart.
		if err := c.display.ShowError(result.reason, c.now()); err != nil {
			log.Printf("show error page: %v", err)
		} else {
			time.Sleep(c.screenHold)
		}
	} else if result.powerAction != "" {
		if err := c.display.Goodbye(); err != nil {
			log.Printf("goodbye screen: %v", err)
		}
		time.Sleep(c.screenHold)
	}

	if err := c.display.Close(); err != nil {
		log.Printf("close display: %v", err)
	}
	if err := c.fan.Close(); err != nil {
		log.Printf("close fan: %v", err)
	}

	switch result.powerAction {
	case "poweroff":
		if err := c.power.Shutdown(); err != nil {
			log.Printf("host shutdown: %v", err)
		}
	case "reboot":
		if err := c.power.Reboot(); err != nil {
			log.Printf("host reboot: %v", err)
		}
	}

	return result.err
}

// run is the coordinator loop body, separated from Run so tests can
// drive it with hand-fed channels and a synthetic clock.
func (c *Coordinator) run(ctx context.Context, actionCh <-chan button.Action, fatalCh <-chan error,
	fanTick, diskTick, displayTick <-chan time.Time) stop {

	if err := c.display.Welcome(); err != nil {
		log.Printf("welcome screen: %v", err)
	}
	if err := c.pub.PublishSystem(telemetry.SystemEvent{
		Timestamp: c.now(),
		Event:     "STARTUP",
		Retained:  true,
	}); err != nil {
		log.Printf("publish startup event: %v", err)
	}

	// Prime state before the first ticks so the first render is not empty.
	c.host = c.readHost()
	c.tickFan()
	c.tickDisks()
	if err := c.display.Render(c.status()); err != nil {
		log.Printf("initial render: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return stop{reason: "signal"}

		case err := <-fatalCh:
			log.Printf("fatal: %v", err)
			return stop{
				reason: "hardware failure",
				err:    fmt.Errorf("%w: %v", ErrHardwareUnavailable, err),
			}

		case a := <-actionCh:
			if req := c.handleAction(a); req != "" {
				return stop{reason: string(a.Kind), powerAction: req}
			}

		case <-fanTick:
			c.tickFan()

		case <-diskTick:
			c.tickDisks()

		case <-displayTick:
			c.tickDisplay()
		}
	}
}

// handleAction routes one button gesture. Returns the requested power
// action, if any.
func (c *Coordinator) handleAction(a button.Action) string {
	now := c.now()
	c.state.SetActivity(now)

	woke, err := c.display.Activity(now)
	if err != nil {
		log.Printf("display wake: %v", err)
	}
	if woke {
		// First press after sleep wakes only; its normal effect is
		// suppressed for this occurrence.
		c.state.SetAwake(true)
		if err := c.display.Render(c.status()); err != nil {
			log.Printf("render after wake: %v", err)
		}
		log.Printf("button %s: %s woke display", a.Button, a.Kind)
		return ""
	}

	var effect string
	switch a.Kind {
	case button.ShortPress:
		effect = c.actions.ShortPress
	case button.DoubleClick:
		effect = c.actions.DoubleClick
	case button.LongPress:
		effect = c.actions.LongPress
	case button.Release:
		// Closes out a long-press gesture; activity only.
		return ""
	}
	log.Printf("button %s: %s -> %s", a.Button, a.Kind, effect)

	switch effect {
	case "slider":
		c.state.SetPage(c.display.Advance())
		if err := c.display.Render(c.status()); err != nil {
			log.Printf("render: %v", err)
		}
	case "switch":
		if err := c.fan.SetEnabled(!c.fan.Enabled(), now); err != nil {
			log.Printf("fan toggle: %v", err)
		}
		c.state.SetFan(c.fan.State(), c.fan.Enabled())
		c.renderIf(oled.PageFan)
	case "poweroff", "reboot":
		return effect
	}
	return ""
}

func (c *Coordinator) tickFan() {
	st, err := c.fan.Tick(c.now())
	if err != nil {
		log.Printf("fan: %v", err)
	}
	c.state.SetFan(st, c.fan.Enabled())

	if st.DutyPercent != c.lastDuty {
		c.lastDuty = st.DutyPercent
		if err := c.pub.Publish(telemetry.Event{
			Timestamp:    c.now(),
			Type:         telemetry.EventFanDuty,
			DutyPercent:  st.DutyPercent,
			TemperatureC: st.TemperatureC,
		}); err != nil {
			log.Printf("publish fan event: %v", err)
		}
		c.renderIf(oled.PageFan)
	}
}

func (c *Coordinator) tickDisks() {
	changes, err := c.disks.Scan()
	if err != nil {
		log.Printf("disk scan: %v", err)
		return
	}
	if len(changes) == 0 {
		return
	}
	c.state.SetDisks(c.disks.Snapshot())

	for _, ch := range changes {
		evType := telemetry.EventDiskAttached
		if !ch.Info.Present {
			evType = telemetry.EventDiskDetached
		}
		log.Printf("disk bay %d: %s %s", ch.Bay, evType, ch.Info.Device)
		if err := c.pub.Publish(telemetry.Event{
			Timestamp: c.now(),
			Type:      evType,
			Bay:       ch.Bay,
			Device:    ch.Info.Device,
		}); err != nil {
			log.Printf("publish disk event: %v", err)
		}
	}
	c.renderIf(oled.PageDisks)
}

func (c *Coordinator) tickDisplay() {
	c.host = c.readHost()
	if err := c.display.Tick(c.now(), c.status()); err != nil {
		log.Printf("display: %v", err)
	}
	// The auto-slider may have rotated the page.
	c.state.SetPage(c.display.Page())
	c.state.SetAwake(c.display.Awake())
}

// renderIf redraws when the active page shows the data that changed.
func (c *Coordinator) renderIf(p oled.Page) {
	if c.display.Page() != p {
		return
	}
	if err := c.display.Render(c.status()); err != nil {
		log.Printf("render: %v", err)
	}
}

// status assembles the display's read-only view from the current state
// snapshot and host facts.
func (c *Coordinator) status() oled.Status {
	snap := c.state.Snapshot(c.now())
	return oled.Status{
		Disks:      snap.Disks,
		Fan:        snap.Fan,
		FanEnabled: snap.FanEnabled,
		IP:         c.host.IP,
		Uptime:     c.host.Uptime,
		Load1:      c.host.Load1,
		MemUsedMB:  c.host.MemUsedMB,
		MemTotalMB: c.host.MemTotalMB,
	}
}

func forward(ctx context.Context, from <-chan button.Action, to chan<- button.Action) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-from:
			select {
			case to <- a:
			case <-ctx.Done():
				return
			}
		}
	}
}

// waitTimeout waits for the group but gives up after d: a stuck loop
// must not block hardware teardown.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		log.Printf("shutdown: loops did not stop within %v", d)
	}
}
