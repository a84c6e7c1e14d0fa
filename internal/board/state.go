// Package board owns the shared board state and runs the control loops.
// The Coordinator is the single writer of State: the fan, disk, and
// button loops communicate with it by messages and snapshots, never by
// shared mutable references.
package board

import (
	"sync"
	"time"

	"github.com/sweeney/penta-hat/internal/disk"
	"github.com/sweeney/penta-hat/internal/fan"
	"github.com/sweeney/penta-hat/internal/oled"
)

// Snapshot is a point-in-time view of board state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	Fan        fan.State
	FanEnabled bool
	Disks      map[int]disk.Info
	Page       oled.Page
	Awake      bool

	LastActivity time.Time
	StartTime    time.Time
	Now          time.Time
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// State holds the board state behind an RWMutex. Fields are partitioned
// by writer: fan fields change only via the fan loop's updates, disk
// fields only via the disk loop's, page/awake only via the coordinator
// itself, all applied on the coordinator goroutine.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewState creates the boot state: fan off, no disks, disk page, awake.
func NewState(start time.Time) *State {
	return &State{
		snap: Snapshot{
			FanEnabled:   true,
			Disks:        map[int]disk.Info{},
			Page:         oled.PageDisks,
			Awake:        true,
			LastActivity: start,
			StartTime:    start,
		},
	}
}

// SetFan applies a fan state update.
func (s *State) SetFan(st fan.State, enabled bool) {
	s.mu.Lock()
	s.snap.Fan = st
	s.snap.FanEnabled = enabled
	s.mu.Unlock()
}

// SetDisks replaces the bay map.
func (s *State) SetDisks(disks map[int]disk.Info) {
	copied := make(map[int]disk.Info, len(disks))
	for bay, info := range disks {
		copied[bay] = info
	}
	s.mu.Lock()
	s.snap.Disks = copied
	s.mu.Unlock()
}

// SetPage records the active display page.
func (s *State) SetPage(p oled.Page) {
	s.mu.Lock()
	s.snap.Page = p
	s.mu.Unlock()
}

// SetAwake records the display power state.
func (s *State) SetAwake(awake bool) {
	s.mu.Lock()
	s.snap.Awake = awake
	s.mu.Unlock()
}

// SetActivity records button activity.
func (s *State) SetActivity(at time.Time) {
	s.mu.Lock()
	s.snap.LastActivity = at
	s.mu.Unlock()
}

// Snapshot returns a copy of the state. The Now field is set to the
// given time; the Disks map is copied so the caller can never see a torn
// or later-mutated view.
func (s *State) Snapshot(now time.Time) Snapshot {
	s.mu.RLock()
	snap := s.snap
	disks := make(map[int]disk.Info, len(snap.Disks))
	for bay, info := range snap.Disks {
		disks[bay] = info
	}
	s.mu.RUnlock()
	snap.Disks = disks
	snap.Now = now
	return snap
}
