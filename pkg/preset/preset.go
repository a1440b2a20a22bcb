// Package preset defines the named fasting protocols offered to users and
// builds fasting windows from them.
package preset

import (
	"fmt"
	"time"

	"github.com/fastwell-dev/fastdial/pkg/fastwindow"
)

// Preset is a named fasting protocol: a fixed fast length with its implied
// eating window making up the rest of the day.
type Preset struct {
	Name           string // stable identifier, e.g. "16:8"
	Label          string // human label for display
	FastingMinutes int
}

// EatingMinutes returns the eating window implied by the protocol.
func (p Preset) EatingMinutes() int {
	return 1440 - p.FastingMinutes
}

// Hours renders the protocol as "16h fast / 8h eating" style text.
func (p Preset) Hours() string {
	return fmt.Sprintf("%dh fast / %dh eating", p.FastingMinutes/60, p.EatingMinutes()/60)
}

// Window builds a fasting window for this protocol. The fast starts when the
// eating window closes, so fastStart is the moment the user stops eating.
func (p Preset) Window(fastStart time.Time, opts ...fastwindow.Option) (*fastwindow.Window, error) {
	end := fastStart.Add(time.Duration(p.FastingMinutes) * time.Minute)
	return fastwindow.New(fastStart, end, opts...)
}

// The protocols the app ships with, gentlest first.
var builtin = []Preset{
	{Name: "12:12", Label: "Beginner", FastingMinutes: 720},
	{Name: "13:11", Label: "Circadian rhythm", FastingMinutes: 780},
	{Name: "14:10", Label: "Easing in", FastingMinutes: 840},
	{Name: "16:8", Label: "Classic intermittent", FastingMinutes: 960},
	{Name: "18:6", Label: "Strict", FastingMinutes: 1080},
	{Name: "20:4", Label: "Warrior", FastingMinutes: 1200},
	{Name: "OMAD", Label: "One meal a day", FastingMinutes: 1380},
}

// All returns the built-in protocols in display order.
func All() []Preset {
	out := make([]Preset, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds a built-in protocol by name.
func Lookup(name string) (Preset, bool) {
	for _, p := range builtin {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
