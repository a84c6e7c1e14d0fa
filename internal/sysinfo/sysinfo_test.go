package sysinfo

import (
	"testing"
	"time"
)

func TestParseUptime(t *testing.T) {
	d, err := ParseUptime("12345.67 23456.78\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Duration(12345.67 * float64(time.Second))
	if d != want {
		t.Errorf("expected %v, got %v", want, d)
	}
}

func TestParseUptimeEmpty(t *testing.T) {
	if _, err := ParseUptime(""); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestParseLoadAvg(t *testing.T) {
	load, err := ParseLoadAvg("0.52 0.58 0.59 1/427 3087\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if load != 0.52 {
		t.Errorf("expected 0.52, got %v", load)
	}
}

func TestParseMemInfo(t *testing.T) {
	content := `MemTotal:        3884884 kB
MemFree:          123456 kB
MemAvailable:    2097152 kB
Buffers:           98765 kB
`
	used, total, err := ParseMemInfo(content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 3793 {
		t.Errorf("expected total 3793MB, got %d", total)
	}
	if used != (3884884-2097152)/1024 {
		t.Errorf("expected used %d, got %d", (3884884-2097152)/1024, used)
	}
}

func TestParseMemInfoMissingTotal(t *testing.T) {
	if _, _, err := ParseMemInfo("MemFree: 5 kB\n"); err == nil {
		t.Error("expected error when MemTotal missing")
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{42 * time.Minute, "42m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{76 * time.Hour, "3d 4h"},
	}
	for _, c := range cases {
		if got := FormatUptime(c.d); got != c.want {
			t.Errorf("FormatUptime(%v): expected %q, got %q", c.d, c.want, got)
		}
	}
}
