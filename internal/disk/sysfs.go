//go:build linux

package disk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const sectorSize = 512

// SysfsScanner enumerates SATA drives under /sys/block and maps each to
// its bay via the ata port it enumerated on. Ports lists the port name
// wired to each bay, index 0 = bay 1.
type SysfsScanner struct {
	Ports []string

	// Root is the sysfs block directory, overridable for tests.
	Root string
}

// NewSysfsScanner creates a scanner for the given bay wiring.
func NewSysfsScanner(ports []string) *SysfsScanner {
	return &SysfsScanner{Ports: ports, Root: "/sys/block"}
}

// Scan walks the block devices and assigns each SATA drive to its bay.
// Per-drive metadata failures degrade that bay to present-with-unknown
// rather than failing the whole scan.
func (s *SysfsScanner) Scan() (map[int]Info, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "sd") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	result := make(map[int]Info, len(names))
	// Drives whose ata port is not in the bay wiring are assigned to the
	// remaining bays in name order, so an unexpected topology still shows
	// every drive somewhere.
	nextFree := 1
	for _, name := range names {
		bay := s.bayFor(name)
		if bay == 0 {
			for ; nextFree <= len(s.Ports); nextFree++ {
				if _, taken := result[nextFree]; !taken {
					bay = nextFree
					break
				}
			}
			if bay == 0 {
				continue
			}
		}
		result[bay] = s.describe(name)
	}
	return result, nil
}

// bayFor resolves a device name to a bay by looking for a configured ata
// port in its sysfs device path. Returns 0 when no port matches.
func (s *SysfsScanner) bayFor(name string) int {
	target, err := os.Readlink(filepath.Join(s.Root, name))
	if err != nil {
		return 0
	}
	for i, port := range s.Ports {
		if containsPathElement(target, port) {
			return i + 1
		}
	}
	return 0
}

func containsPathElement(path, element string) bool {
	for _, part := range strings.Split(path, "/") {
		if part == element {
			return true
		}
	}
	return false
}

// describe reads capacity and temperature. Failures leave the field at
// its zero value; the drive is still present.
func (s *SysfsScanner) describe(name string) Info {
	info := Info{Device: name, Present: true}

	if data, err := os.ReadFile(filepath.Join(s.Root, name, "size")); err == nil {
		if sectors, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64); err == nil {
			info.SizeBytes = sectors * sectorSize
		}
	}

	// drivetemp hwmon, when the kernel module is loaded.
	matches, err := filepath.Glob(filepath.Join(s.Root, name, "device", "hwmon", "hwmon*", "temp1_input"))
	if err == nil && len(matches) > 0 {
		if data, err := os.ReadFile(matches[0]); err == nil {
			if milli, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
				temp := float64(milli) / 1000
				info.TempC = &temp
			}
		}
	}

	return info
}
