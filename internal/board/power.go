package board

import (
	"fmt"
	"os/exec"
)

// Power is the host power service. The coordinator calls it only after
// the display is powered down and the loops have stopped.
type Power interface {
	Shutdown() error
	Reboot() error
}

// RealPower shells out to systemd. The daemon runs as root from a unit
// file, so no privilege escalation is involved.
type RealPower struct{}

// Shutdown powers the host off.
func (RealPower) Shutdown() error {
	if out, err := exec.Command("systemctl", "poweroff").CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl poweroff: %v: %s", err, out)
	}
	return nil
}

// Reboot restarts the host.
func (RealPower) Reboot() error {
	if out, err := exec.Command("systemctl", "reboot").CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl reboot: %v: %s", err, out)
	}
	return nil
}

// FakePower records power requests for tests.
type FakePower struct {
	ShutdownCalls int
	RebootCalls   int

	// OnShutdown and OnReboot, if set, run at call time so tests can
	// assert ordering against other fakes.
	OnShutdown func()
	OnReboot   func()
}

// Shutdown records the call.
func (f *FakePower) Shutdown() error {
	f.ShutdownCalls++
	if f.OnShutdown != nil {
		f.OnShutdown()
	}
	return nil
}

// Reboot records the call.
func (f *FakePower) Reboot() error {
	f.RebootCalls++
	if f.OnReboot != nil {
		f.OnReboot()
	}
	return nil
}
