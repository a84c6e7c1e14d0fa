//go:build !linux

package disk

import "errors"

// SysfsScanner is not available on non-Linux platforms.
type SysfsScanner struct {
	Ports []string
	Root  string
}

// NewSysfsScanner returns a scanner whose Scan always fails.
func NewSysfsScanner(ports []string) *SysfsScanner {
	return &SysfsScanner{Ports: ports}
}

// Scan is not implemented on non-Linux platforms.
func (s *SysfsScanner) Scan() (map[int]Info, error) {
	return nil, errors.New("disk: sysfs scan not supported on this platform (requires Linux)")
}
