// Package fastwindow maintains a fasting window on a 24-hour dial with a
// locked duration. Dragging one boundary of the window moves the other in
// lockstep so the fast length never changes mid-gesture; all angle input is
// folded defensively, so the drag path has no error cases.
package fastwindow

import (
	"errors"
	"fmt"
	"time"

	"github.com/fastwell-dev/fastdial/pkg/clockmath"
)

// DefaultStep is the rounding granularity, in minutes, applied to every
// computed boundary time unless overridden with WithStep.
const DefaultStep = 5

// ErrInvalidStep is returned by New when the rounding step is not a positive
// number of minutes. This is a configuration mistake and is rejected up front
// so it can never reach the per-drag path.
var ErrInvalidStep = errors.New("rounding step must be a positive number of minutes")

// ErrInvalidDuration is returned by SetDuration for lengths outside a single
// 24-hour day.
var ErrInvalidDuration = errors.New("fast duration must be between 0 and 1440 minutes")

// Boundary identifies one end of the fasting window.
type Boundary int

const (
	// BoundaryStart is when the fast begins (eating ends).
	BoundaryStart Boundary = iota
	// BoundaryFinish is when the fast ends (eating begins).
	BoundaryFinish
)

func (b Boundary) String() string {
	if b == BoundaryFinish {
		return "finish"
	}
	return "start"
}

// ParseBoundary maps the wire names "start" and "finish" onto a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "start":
		return BoundaryStart, nil
	case "finish":
		return BoundaryFinish, nil
	default:
		return BoundaryStart, fmt.Errorf("unknown boundary %q (want \"start\" or \"finish\")", s)
	}
}

// DragState tracks which handle, if any, is currently held.
type DragState int

const (
	// DragIdle means no handle is held; only reads are expected.
	DragIdle DragState = iota
	// DraggingStart means the start handle is being moved.
	DraggingStart
	// DraggingFinish means the finish handle is being moved.
	DraggingFinish
)

// Window is the fasting window model. It owns the (start, end) pair, the
// locked duration derived from it, the anchor selection, and the rounding
// step. A Window is not safe for concurrent use: callers must serialize drag
// samples into a single ordered stream, even under multi-touch.
type Window struct {
	start           time.Time
	end             time.Time
	durationMinutes int
	anchor          Boundary
	step            int
	dragState       DragState
}

// Option configures a Window at construction time.
type Option func(*options)

type options struct {
	step   int
	anchor Boundary
}

// WithStep sets the rounding granularity in minutes. Computed boundary times
// snap to the nearest multiple of this value, ties rounding up.
func WithStep(minutes int) Option {
	return func(o *options) {
		o.step = minutes
	}
}

// WithAnchor sets which boundary stays fixed when the total duration changes.
func WithAnchor(b Boundary) Option {
	return func(o *options) {
		o.anchor = b
	}
}

// New builds a Window from an initial boundary pair. The locked duration is
// derived from the pair, wrapped onto the 24-hour dial, so end may sit on the
// following calendar day or earlier the same day (an overnight fast given as
// two same-day clock times). Seconds are dropped from both boundaries.
// Example: New(20:00, 12:00 next day) locks a 960 minute (16 hour) fast.
func New(start, end time.Time, opts ...Option) (*Window, error) {
	o := options{step: DefaultStep, anchor: BoundaryStart}
	for _, opt := range opts {
		opt(&o)
	}
	if o.step <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStep, o.step)
	}

	w := &Window{
		start:  truncateToMinute(start),
		end:    truncateToMinute(end),
		anchor: o.anchor,
		step:   o.step,
	}
	w.durationMinutes = clockmath.WrapMinutes(int(w.end.Sub(w.start) / time.Minute))
	// Renormalize so end always sits at start+duration on the calendar.
	w.end = w.start.Add(time.Duration(w.durationMinutes) * time.Minute)
	return w, nil
}

func truncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// AngleToTime converts a raw dial angle into a wall-clock time on ref's
// calendar date. The angle may be negative or beyond a full turn; it is
// folded into [0, 360), mapped to a minute-of-day, and snapped to the
// window's rounding step (half-up). Seconds are zeroed. Total function.
func (w *Window) AngleToTime(deg float64, ref time.Time) time.Time {
	rounded := clockmath.RoundToStep(clockmath.AngleToMinutes(deg), w.step)
	hour := rounded / 60 % 24
	minute := rounded % 60
	return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location())
}

// TimeToAngle returns the dial angle in [0, 360) for t's minute-of-day.
// It inverts AngleToTime up to the rounding step: a round trip moves a time
// by at most half a step.
func (w *Window) TimeToAngle(t time.Time) float64 {
	return clockmath.MinutesToAngle(float64(clockmath.MinuteOfDay(t)))
}

// UpdateFromDrag applies one drag sample to the given boundary and moves the
// opposite boundary in lockstep to preserve the locked duration. The new
// boundary time is resolved against the dragged boundary's own calendar date;
// the derived boundary wraps forward past midnight onto the following day or
// backward onto the previous one as needed. The duration itself never changes
// here. Returns the updated pair; there are no error cases.
func (w *Window) UpdateFromDrag(b Boundary, deg float64) (start, end time.Time) {
	d := time.Duration(w.durationMinutes) * time.Minute
	if b == BoundaryFinish {
		w.end = w.AngleToTime(deg, w.end)
		w.start = w.end.Add(-d)
	} else {
		w.start = w.AngleToTime(deg, w.start)
		w.end = w.start.Add(d)
	}
	return w.start, w.end
}

// BeginDrag marks the given handle as held. Gesture start events map here.
func (w *Window) BeginDrag(b Boundary) {
	if b == BoundaryFinish {
		w.dragState = DraggingFinish
	} else {
		w.dragState = DraggingStart
	}
}

// DragTo applies a drag sample to whichever handle BeginDrag marked as held.
// While idle it mutates nothing and returns the current pair.
func (w *Window) DragTo(deg float64) (start, end time.Time) {
	switch w.dragState {
	case DraggingStart:
		return w.UpdateFromDrag(BoundaryStart, deg)
	case DraggingFinish:
		return w.UpdateFromDrag(BoundaryFinish, deg)
	default:
		return w.start, w.end
	}
}

// EndDrag returns the window to the idle state. Gesture end events map here.
func (w *Window) EndDrag() {
	w.dragState = DragIdle
}

// State reports which handle, if any, is currently held.
func (w *Window) State() DragState {
	return w.dragState
}

// SetAnchor selects which boundary stays fixed for future duration changes.
// It never moves either boundary; within a drag the moving handle is implied
// by the gesture, not by this field.
func (w *Window) SetAnchor(b Boundary) {
	w.anchor = b
}

// Anchor returns the currently anchored boundary.
func (w *Window) Anchor() Boundary {
	return w.anchor
}

// SetDuration changes the locked fast length, holding the anchored boundary
// fixed and recomputing the other. Lengths outside a single day are rejected.
func (w *Window) SetDuration(minutes int) error {
	if minutes < 0 || minutes > clockmath.MinutesPerDay {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, minutes)
	}
	d := time.Duration(minutes) * time.Minute
	if w.anchor == BoundaryFinish {
		w.start = w.end.Add(-d)
	} else {
		w.end = w.start.Add(d)
	}
	w.durationMinutes = minutes
	return nil
}

// Start returns when the fast begins.
func (w *Window) Start() time.Time { return w.start }

// End returns when the fast ends.
func (w *Window) End() time.Time { return w.end }

// DurationMinutes returns the locked fast length in minutes.
func (w *Window) DurationMinutes() int { return w.durationMinutes }

// EatingWindowMinutes returns the complement of the fast within one day.
func (w *Window) EatingWindowMinutes() int {
	return clockmath.MinutesPerDay - w.durationMinutes
}

// Step returns the rounding granularity in minutes.
func (w *Window) Step() int { return w.step }

// StartAngle returns the dial angle of the start handle.
func (w *Window) StartAngle() float64 { return w.TimeToAngle(w.start) }

// EndAngle returns the dial angle of the finish handle.
func (w *Window) EndAngle() float64 { return w.TimeToAngle(w.end) }
