package oled

import (
	"fmt"
	"image"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/sweeney/penta-hat/internal/sysinfo"
)

// Row baselines for up to three lines of Face7x13 text on a 32px panel.
var baselines = [3]int{10, 21, 32}

// Frame renders one page from a status snapshot. It is pure: no clock, no
// hardware, identical input produces an identical frame.
func Frame(p Page, st Status, opts Options) *image1bit.VerticalLSB {
	var lines [3]string
	switch p {
	case PageDisks:
		lines = diskLines(st)
	case PageNetwork:
		lines = networkLines(st)
	case PageFan:
		lines = fanLines(st, opts)
	case PageError:
		lines = errorLines(st)
	}
	return drawLines(lines)
}

// SplashFrame is the boot screen.
func SplashFrame() *image1bit.VerticalLSB {
	return drawLines([3]string{"PENTA SATA HAT", "", "loading..."})
}

// GoodbyeFrame is the screen shown just before power-off.
func GoodbyeFrame() *image1bit.VerticalLSB {
	return drawLines([3]string{"", "good bye ~", ""})
}

func diskLines(st Status) [3]string {
	bays := make([]int, 0, len(st.Disks))
	for bay, info := range st.Disks {
		if info.Present {
			bays = append(bays, bay)
		}
	}
	if len(bays) == 0 {
		return [3]string{"no disks", "", ""}
	}
	sort.Ints(bays)

	// Two bays per row; five bays fit in three rows.
	var lines [3]string
	for i, bay := range bays {
		row := i / 2
		if row > 2 {
			break
		}
		entry := fmt.Sprintf("%d:%s", bay, formatSize(st.Disks[bay].SizeBytes))
		if lines[row] == "" {
			lines[row] = entry
		} else {
			lines[row] += " " + entry
		}
	}
	return lines
}

func networkLines(st Status) [3]string {
	ip := st.IP
	if ip == "" {
		ip = "no network"
	}
	return [3]string{
		"IP " + ip,
		fmt.Sprintf("up %s ld %.2f", sysinfo.FormatUptime(st.Uptime), st.Load1),
		fmt.Sprintf("mem %d/%dMB", st.MemUsedMB, st.MemTotalMB),
	}
}

func fanLines(st Status, opts Options) [3]string {
	mode := "auto"
	if !st.FanEnabled {
		mode = "off"
	}
	return [3]string{
		fmt.Sprintf("FAN %d%% (%s)", st.Fan.DutyPercent, mode),
		"CPU " + formatTemp(st.Fan.TemperatureC, opts.Fahrenheit),
		"",
	}
}

func errorLines(st Status) [3]string {
	msg := st.Err
	var second string
	if len(msg) > 18 {
		msg, second = msg[:18], msg[18:]
		if len(second) > 18 {
			second = second[:18]
		}
	}
	return [3]string{"HARDWARE ERROR", msg, second}
}

func drawLines(lines [3]string) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	for i, line := range lines {
		if line == "" {
			continue
		}
		d := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{image1bit.On},
			Face: basicfont.Face7x13,
			Dot:  fixed.P(0, baselines[i]),
		}
		d.DrawString(line)
	}
	return img
}

// formatSize renders a capacity compactly: "3.6T", "500G", "-" unknown.
func formatSize(bytes int64) string {
	switch {
	case bytes <= 0:
		return "-"
	case bytes >= 1<<40:
		return fmt.Sprintf("%.1fT", float64(bytes)/float64(1<<40))
	case bytes >= 1<<30:
		return fmt.Sprintf("%dG", bytes/(1<<30))
	default:
		return fmt.Sprintf("%dM", bytes/(1<<20))
	}
}

func formatTemp(c float64, fahrenheit bool) string {
	if fahrenheit {
		return fmt.Sprintf("%.0fF", c*1.8+32)
	}
	return fmt.Sprintf("%.1fC", c)
}
