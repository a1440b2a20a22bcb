package fastwindow

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/fastwell-dev/fastdial/pkg/clockmath"
)

// angleFor returns the dial angle for a clock time, one degree per four minutes.
func angleFor(hour, minute int) float64 {
	return float64(hour*60+minute) / 4
}

func mustWindow(t *testing.T, start, end time.Time, opts ...Option) *Window {
	t.Helper()
	w, err := New(start, end, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return w
}

func TestNewDerivesDuration(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		start       time.Time
		end         time.Time
		wantMinutes int
	}{
		{
			"sixteen hour overnight fast, end on next day",
			day.Add(20 * time.Hour),
			day.Add(36 * time.Hour), // 12:00 next day
			960,
		},
		{
			"same-day clock times wrap onto the dial",
			day.Add(20 * time.Hour),
			day.Add(12 * time.Hour), // 12:00 given on the same date
			960,
		},
		{
			"daytime fast, no wrap",
			day.Add(9 * time.Hour),
			day.Add(17 * time.Hour),
			480,
		},
		{
			"zero length window",
			day.Add(8 * time.Hour),
			day.Add(8 * time.Hour),
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := mustWindow(t, tt.start, tt.end)
			if got := w.DurationMinutes(); got != tt.wantMinutes {
				t.Errorf("DurationMinutes() = %d, want %d", got, tt.wantMinutes)
			}
			if got := w.EatingWindowMinutes(); got != clockmath.MinutesPerDay-tt.wantMinutes {
				t.Errorf("EatingWindowMinutes() = %d, want %d", got, clockmath.MinutesPerDay-tt.wantMinutes)
			}
		})
	}
}

func TestNewRejectsBadStep(t *testing.T) {
	day := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	for _, step := range []int{0, -1, -5} {
		_, err := New(day, day.Add(16*time.Hour), WithStep(step))
		if err == nil {
			t.Errorf("New with step %d succeeded, want error", step)
			continue
		}
		if !errors.Is(err, ErrInvalidStep) {
			t.Errorf("New with step %d returned %v, want ErrInvalidStep", step, err)
		}
	}

	if _, err := New(day, day.Add(16*time.Hour), WithStep(1)); err != nil {
		t.Errorf("New with step 1 failed: %v", err)
	}
}

func TestAngleToTimeRounding(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))

	tests := []struct {
		name       string
		deg        float64
		wantHour   int
		wantMinute int
	}{
		// Raw minute 247 (4:07) is below the half-up boundary at 247.5.
		{"4:07 snaps down to 4:05", 247.0 / 4, 4, 5},
		// Raw minute 248 (4:08) is above it.
		{"4:08 snaps up to 4:10", 248.0 / 4, 4, 10},
		{"exact multiple passes through", angleFor(4, 5), 4, 5},
		{"zero degrees is midnight", 0, 0, 0},
		{"just under a full turn snaps to midnight", 359.9, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.AngleToTime(tt.deg, day)
			if got.Hour() != tt.wantHour || got.Minute() != tt.wantMinute {
				t.Errorf("AngleToTime(%v) = %02d:%02d, want %02d:%02d",
					tt.deg, got.Hour(), got.Minute(), tt.wantHour, tt.wantMinute)
			}
			if got.Second() != 0 || got.Nanosecond() != 0 {
				t.Errorf("AngleToTime(%v) kept sub-minute precision: %v", tt.deg, got)
			}
			if got.Year() != day.Year() || got.Month() != day.Month() || got.Day() != day.Day() {
				t.Errorf("AngleToTime(%v) moved off the reference date: %v", tt.deg, got)
			}
		})
	}
}

func TestAngleToTimeNormalizationIdempotence(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))

	for _, deg := range []float64{0, 2.5, 61.75, 90, 179.9, 300, 359.9, 45.125} {
		base := w.AngleToTime(deg, day)
		plusTurn := w.AngleToTime(deg+360, day)
		minusTwoTurns := w.AngleToTime(deg-720, day)
		if !base.Equal(plusTurn) {
			t.Errorf("AngleToTime(%v) = %v but AngleToTime(+360) = %v", deg, base, plusTurn)
		}
		if !base.Equal(minusTwoTurns) {
			t.Errorf("AngleToTime(%v) = %v but AngleToTime(-720) = %v", deg, base, minusTwoTurns)
		}
	}
}

func TestTimeAngleRoundTripTolerance(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour)) // step 5

	for m := 0; m < clockmath.MinutesPerDay; m++ {
		ts := day.Add(time.Duration(m) * time.Minute)
		back := w.AngleToTime(w.TimeToAngle(ts), ts)

		// Distance on the dial, so 23:58 vs 00:00 counts as 2 minutes.
		diff := clockmath.WrapMinutes(clockmath.MinuteOfDay(back) - m)
		if diff > clockmath.MinutesPerDay/2 {
			diff = clockmath.MinutesPerDay - diff
		}

		if float64(diff) > float64(w.Step())/2 {
			t.Fatalf("round trip moved minute %d by %d, more than half the %d minute step", m, diff, w.Step())
		}
		if m%w.Step() == 0 && diff != 0 {
			t.Fatalf("minute %d is already on the step grid but moved by %d", m, diff)
		}
	}
}

func TestTimeToAngleRange(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))

	for m := 0; m < clockmath.MinutesPerDay; m += 7 {
		angle := w.TimeToAngle(day.Add(time.Duration(m) * time.Minute))
		if angle < 0 || angle >= 360 {
			t.Fatalf("TimeToAngle(minute %d) = %v, outside [0, 360)", m, angle)
		}
		want := float64(m) / 4
		if math.Abs(angle-want) > 1e-9 {
			t.Fatalf("TimeToAngle(minute %d) = %v, want %v", m, angle, want)
		}
	}
}

func TestSetAnchorDoesNotMoveBoundaries(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))

	start, end, dur := w.Start(), w.End(), w.DurationMinutes()
	w.SetAnchor(BoundaryFinish)
	if w.Anchor() != BoundaryFinish {
		t.Errorf("Anchor() = %v, want finish", w.Anchor())
	}
	if !w.Start().Equal(start) || !w.End().Equal(end) || w.DurationMinutes() != dur {
		t.Error("SetAnchor moved a boundary or changed the duration")
	}
}

func TestSetDurationHonorsAnchor(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("start anchored keeps start fixed", func(t *testing.T) {
		w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))
		if err := w.SetDuration(1080); err != nil { // stretch to 18h
			t.Fatalf("SetDuration failed: %v", err)
		}
		if got := w.Start(); !got.Equal(day.Add(20 * time.Hour)) {
			t.Errorf("start moved to %v, want 20:00 fixed", got)
		}
		if got := w.End(); !got.Equal(day.Add(38 * time.Hour)) {
			t.Errorf("end = %v, want 14:00 next day", got)
		}
	})

	t.Run("finish anchored keeps finish fixed", func(t *testing.T) {
		w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour), WithAnchor(BoundaryFinish))
		if err := w.SetDuration(1080); err != nil {
			t.Fatalf("SetDuration failed: %v", err)
		}
		if got := w.End(); !got.Equal(day.Add(36 * time.Hour)) {
			t.Errorf("end moved to %v, want 12:00 next day fixed", got)
		}
		if got := w.Start(); !got.Equal(day.Add(18 * time.Hour)) {
			t.Errorf("start = %v, want 18:00", got)
		}
	})

	t.Run("out of range rejected", func(t *testing.T) {
		w := mustWindow(t, day.Add(20*time.Hour), day.Add(36*time.Hour))
		for _, m := range []int{-1, 1441} {
			if err := w.SetDuration(m); !errors.Is(err, ErrInvalidDuration) {
				t.Errorf("SetDuration(%d) = %v, want ErrInvalidDuration", m, err)
			}
		}
		if w.DurationMinutes() != 960 {
			t.Errorf("rejected SetDuration changed the lock to %d", w.DurationMinutes())
		}
	})
}

func TestParseBoundary(t *testing.T) {
	if b, err := ParseBoundary("start"); err != nil || b != BoundaryStart {
		t.Errorf("ParseBoundary(start) = %v, %v", b, err)
	}
	if b, err := ParseBoundary("finish"); err != nil || b != BoundaryFinish {
		t.Errorf("ParseBoundary(finish) = %v, %v", b, err)
	}
	if _, err := ParseBoundary("middle"); err == nil {
		t.Error("ParseBoundary(middle) succeeded, want error")
	}
}
