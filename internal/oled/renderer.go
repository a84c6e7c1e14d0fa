package oled

import (
	"fmt"
	"time"
)

// Renderer owns the panel: nothing else writes to it. It tracks the
// active page and the Awake/Asleep state. Driven from a single loop; not
// synchronized.
type Renderer struct {
	panel Panel
	opts  Options

	page         Page
	awake        bool
	lastActivity time.Time
	lastSlide    time.Time
	idleTimeout  time.Duration
}

// NewRenderer creates a Renderer starting awake on the disk page.
func NewRenderer(panel Panel, idleTimeout time.Duration, opts Options, now time.Time) *Renderer {
	return &Renderer{
		panel:        panel,
		opts:         opts,
		page:         PageDisks,
		awake:        true,
		lastActivity: now,
		lastSlide:    now,
		idleTimeout:  idleTimeout,
	}
}

// Page returns the active page.
func (r *Renderer) Page() Page { return r.page }

// Awake reports whether the panel is powered.
func (r *Renderer) Awake() bool { return r.awake }

// Render draws the active page from the snapshot. While asleep rendering
// is suppressed: a sleeping panel must never hold a static image.
func (r *Renderer) Render(st Status) error {
	if !r.awake {
		return nil
	}
	if err := r.panel.DrawFrame(Frame(r.page, st, r.opts)); err != nil {
		return fmt.Errorf("draw %s page: %w", r.page, err)
	}
	return nil
}

// Advance cycles to the next page and returns it. From the error page it
// returns to the start of the cycle.
func (r *Renderer) Advance() Page {
	for i, p := range cycle {
		if p == r.page {
			r.page = cycle[(i+1)%len(cycle)]
			return r.page
		}
	}
	r.page = cycle[0]
	return r.page
}

// Tick evaluates the idle timeout, rotates the auto-slider, and
// refreshes the frame while awake.
func (r *Renderer) Tick(now time.Time, st Status) error {
	if r.awake && now.Sub(r.lastActivity) >= r.idleTimeout {
		r.awake = false
		if err := r.panel.SetPower(false); err != nil {
			return fmt.Errorf("sleep panel: %w", err)
		}
		return nil
	}
	if r.awake && r.opts.SliderAuto && r.page != PageError &&
		now.Sub(r.lastSlide) >= r.opts.SliderTime {
		r.Advance()
		r.lastSlide = now
	}
	return r.Render(st)
}

// Activity records button activity at now. If the panel was asleep it is
// woken and woke=true is returned; the caller suppresses the action's
// normal effect for that occurrence.
func (r *Renderer) Activity(now time.Time) (woke bool, err error) {
	r.lastActivity = now
	r.lastSlide = now
	if r.awake {
		return false, nil
	}
	r.awake = true
	if err := r.panel.SetPower(true); err != nil {
		return true, fmt.Errorf("wake panel: %w", err)
	}
	return true, nil
}

// ShowError wakes the panel and pins the dedicated error page.
func (r *Renderer) ShowError(msg string, now time.Time) error {
	r.page = PageError
	if _, err := r.Activity(now); err != nil {
		return err
	}
	return r.Render(Status{Err: msg})
}

// Welcome draws the boot splash.
func (r *Renderer) Welcome() error {
	if err := r.panel.DrawFrame(SplashFrame()); err != nil {
		return fmt.Errorf("draw splash: %w", err)
	}
	return nil
}

// Goodbye draws the power-off screen. The panel stays on so the message
// is visible while the host goes down; Close powers it off afterwards.
func (r *Renderer) Goodbye() error {
	if r.awake {
		if err := r.panel.DrawFrame(GoodbyeFrame()); err != nil {
			return fmt.Errorf("draw goodbye: %w", err)
		}
	}
	return nil
}

// Close powers the panel down and releases it.
func (r *Renderer) Close() error {
	r.awake = false
	if err := r.panel.SetPower(false); err != nil {
		r.panel.Close()
		return fmt.Errorf("power down panel: %w", err)
	}
	return r.panel.Close()
}
