// Package sysinfo reads the host facts shown on the display's network
// page: IP address, uptime, load average, and memory use. Parsing is
// separated from the /proc readers so it is testable without the files.
package sysinfo

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Host is a snapshot of host facts. Zero values mean unknown.
type Host struct {
	IP         string
	Uptime     time.Duration
	Load1      float64
	MemUsedMB  int64
	MemTotalMB int64
}

// Read gathers a best-effort Host snapshot. Individual read failures
// leave the field at its zero value rather than failing the snapshot.
func Read() Host {
	var h Host
	h.IP = ipAddress()
	if data, err := os.ReadFile("/proc/uptime"); err == nil {
		h.Uptime, _ = ParseUptime(string(data))
	}
	if data, err := os.ReadFile("/proc/loadavg"); err == nil {
		h.Load1, _ = ParseLoadAvg(string(data))
	}
	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		h.MemUsedMB, h.MemTotalMB, _ = ParseMemInfo(string(data))
	}
	return h
}

// ipAddress returns the first global unicast IPv4 address, or "" if the
// host has none.
func ipAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

// ParseUptime parses /proc/uptime content ("12345.67 23456.78").
func ParseUptime(s string) (time.Duration, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime")
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parse uptime %q: %w", fields[0], err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// ParseLoadAvg parses /proc/loadavg content and returns the 1-minute load.
func ParseLoadAvg(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty loadavg")
	}
	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("parse loadavg %q: %w", fields[0], err)
	}
	return load, nil
}

// ParseMemInfo parses /proc/meminfo content and returns used and total
// memory in MB. Used is total minus available.
func ParseMemInfo(s string) (usedMB, totalMB int64, err error) {
	var totalKB, availKB int64
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseInt(fields[1], 10, 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseInt(fields[1], 10, 64)
		}
	}
	if totalKB == 0 {
		return 0, 0, fmt.Errorf("MemTotal not found")
	}
	return (totalKB - availKB) / 1024, totalKB / 1024, nil
}

// FormatUptime renders an uptime the way the display shows it, e.g.
// "3d 4h" or "2h 15m" or "42m".
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
