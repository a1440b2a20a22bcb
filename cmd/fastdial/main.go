// Package main implements the fastdial CLI for inspecting fasting windows
// and replaying dial drags against them.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fastwell-dev/fastdial/pkg/dial"
	"github.com/fastwell-dev/fastdial/pkg/fastwindow"
	"github.com/fastwell-dev/fastdial/pkg/preset"
)

var (
	presetName = flag.String("preset", "16:8", "Fasting protocol to start from (see -list)")
	startAt    = flag.String("start", "20:00", "When the fast begins, HH:MM")
	endAt      = flag.String("end", "", "When the fast ends, HH:MM (overrides -preset)")
	step       = flag.Int("step", fastwindow.DefaultStep, "Rounding granularity in minutes")
	anchor     = flag.String("anchor", "start", "Boundary held fixed on duration changes (start|finish)")
	list       = flag.Bool("list", false, "List the built-in protocols and exit")
	quiet      = flag.Bool("quiet", false, "Print the one-line schedule instead of the strip")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Show version")
)

// drags collects repeated -drag flags, applied in order.
var drags []dragSample

type dragSample struct {
	boundary fastwindow.Boundary
	degrees  float64
}

func parseDrag(s string) (dragSample, error) {
	name, degStr, ok := strings.Cut(s, "@")
	if !ok {
		return dragSample{}, fmt.Errorf("want boundary@degrees, got %q", s)
	}
	b, err := fastwindow.ParseBoundary(name)
	if err != nil {
		return dragSample{}, err
	}
	deg, err := strconv.ParseFloat(degStr, 64)
	if err != nil {
		return dragSample{}, fmt.Errorf("bad angle %q: %w", degStr, err)
	}
	return dragSample{boundary: b, degrees: deg}, nil
}

// parseClock attaches an HH:MM string to today's date in local time.
func parseClock(s string, now time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad clock time %q (want HH:MM): %w", s, err)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
}

func main() {
	flag.Func("drag", "Replay a drag sample, boundary@degrees (repeatable)", func(s string) error {
		d, err := parseDrag(s)
		if err != nil {
			return err
		}
		drags = append(drags, d)
		return nil
	})
	flag.Parse()

	if *version {
		fmt.Println("fastdial CLI v1.2.0")
		return
	}

	if *list {
		for _, p := range preset.All() {
			fmt.Printf("%-6s %-22s %s\n", p.Name, p.Label, p.Hours())
		}
		return
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	now := time.Now()

	start, err := parseClock(*startAt, now)
	if err != nil {
		logger.Error("invalid -start", "error", err)
		os.Exit(1)
	}

	anchorBoundary, err := fastwindow.ParseBoundary(*anchor)
	if err != nil {
		logger.Error("invalid -anchor", "error", err)
		os.Exit(1)
	}
	opts := []fastwindow.Option{
		fastwindow.WithStep(*step),
		fastwindow.WithAnchor(anchorBoundary),
	}

	var w *fastwindow.Window
	switch {
	case *endAt != "":
		end, err := parseClock(*endAt, now)
		if err != nil {
			logger.Error("invalid -end", "error", err)
			os.Exit(1)
		}
		w, err = fastwindow.New(start, end, opts...)
		if err != nil {
			logger.Error("invalid window configuration", "error", err)
			os.Exit(1)
		}
	default:
		p, ok := preset.Lookup(*presetName)
		if !ok {
			logger.Error("unknown protocol", "preset", *presetName)
			os.Exit(1)
		}
		w, err = p.Window(start, opts...)
		if err != nil {
			logger.Error("invalid window configuration", "error", err)
			os.Exit(1)
		}
	}

	for _, d := range drags {
		newStart, newEnd := w.UpdateFromDrag(d.boundary, d.degrees)
		logger.Debug("drag applied",
			"boundary", d.boundary.String(),
			"degrees", d.degrees,
			"start", newStart.Format("15:04"),
			"end", newEnd.Format("15:04"))
	}

	if *quiet {
		fmt.Println(dial.Summary(w))
		return
	}
	fmt.Print(dial.Render(w, now))
}
