// Package dial renders a fasting window as a 24-hour strip for terminal
// output: one line per 30-minute bucket, fasting buckets marked apart from
// the eating window, handle positions flagged.
package dial

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/fastwell-dev/fastdial/pkg/clockmath"
	"github.com/fastwell-dev/fastdial/pkg/fastwindow"
)

// FormatClock renders a minute-of-day as HH:MM.
func FormatClock(minuteOfDay int) string {
	m := clockmath.WrapMinutes(minuteOfDay)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatSpan renders a minute count as e.g. "16h00m".
func FormatSpan(minutes int) string {
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

// inFast reports whether a bucket's minute-of-day falls inside the fasting
// window, handling windows that cross midnight.
func inFast(bucket, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return bucket >= start && bucket < end
	}
	return bucket >= start || bucket < end
}

// Render draws the window as a 48-line strip. now picks the bucket marked
// with the current-time arrow; pass the zero time to omit it.
func Render(w *fastwindow.Window, now time.Time) string {
	var out strings.Builder

	startMin := clockmath.MinuteOfDay(w.Start())
	endMin := clockmath.MinuteOfDay(w.End())

	out.WriteString("🕛 Fasting Window (30-minute resolution)\n")
	out.WriteString(strings.Repeat("─", 50) + "\n")
	out.WriteString(fmt.Sprintf("Fast   %s  %s → %s\n",
		FormatSpan(w.DurationMinutes()), FormatClock(startMin), FormatClock(endMin)))
	out.WriteString(fmt.Sprintf("Eating %s  %s → %s\n",
		FormatSpan(w.EatingWindowMinutes()), FormatClock(endMin), FormatClock(startMin)))
	out.WriteString(strings.Repeat("─", 50) + "\n")

	fastColor := color.New(color.FgBlue)
	eatColor := color.New(color.FgGreen)
	markColor := color.New(color.FgYellow)

	nowBucket := -1
	if !now.IsZero() {
		nowBucket = clockmath.MinuteOfDay(now) / 30 * 30
	}

	for hour := range 24 {
		for half := range 2 {
			bucket := hour*60 + half*30

			line := FormatClock(bucket) + " "

			// Flag the bucket holding each handle; start wins a shared bucket.
			switch {
			case bucket == startMin/30*30:
				line += markColor.Sprint("▶") + " "
			case bucket == endMin/30*30:
				line += markColor.Sprint("◀") + " "
			default:
				line += "  "
			}

			if inFast(bucket, startMin, endMin) {
				line += fastColor.Sprint(strings.Repeat("█", 12)) + " fasting"
			} else {
				line += eatColor.Sprint(strings.Repeat("░", 12)) + " eating"
			}

			if bucket == nowBucket {
				line += "  ← now"
			}

			out.WriteString(line + "\n")
		}
	}

	return out.String()
}

// Summary renders the one-line schedule used by log output and the CLI's
// quiet mode.
func Summary(w *fastwindow.Window) string {
	return fmt.Sprintf("fast %s from %s to %s (eating window %s, step %dm, anchor %s)",
		FormatSpan(w.DurationMinutes()),
		FormatClock(clockmath.MinuteOfDay(w.Start())),
		FormatClock(clockmath.MinuteOfDay(w.End())),
		FormatSpan(w.EatingWindowMinutes()),
		w.Step(),
		w.Anchor(),
	)
}
