package event

import (
	"github.com/rubenparnell/departureBoard/apimodel"
	"strings"
)

// Reason tells why the scheduler was woken up. Reasons are bit flags so that
// several signals raised before the scheduler wakes collapse into one wake.
type Reason uint16

const (
	BUTTON_PRESSED Reason = 1 << iota
	MODE_CHANGED
	MODE_REQUESTED
	SETTINGS_CHANGED
	SETTINGS_PUSHED
	NEW_MESSAGE
	FORCE_REFRESH
)

var reasonNames = []string{
	"button_pressed",
	"mode_changed",
	"mode_requested",
	"settings_changed",
	"settings_pushed",
	"new_message",
	"force_refresh",
}

func (r Reason) Has(other Reason) bool {
	return r&other != 0
}

func (r Reason) String() string {
	if r == 0 {
		return "none"
	}
	var names []string
	for i, name := range reasonNames {
		if r&(1<<uint(i)) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, "|")
}

// Event is a single typed signal posted by a listener
type Event struct {
	Reason Reason

	// Mode is the requested mode name (MODE_REQUESTED)
	Mode string

	// Settings is the partial settings payload (SETTINGS_PUSHED)
	Settings *apimodel.SettingsUpdate
}

func ButtonPressed() Event {
	return Event{Reason: BUTTON_PRESSED}
}

func ModeChanged() Event {
	return Event{Reason: MODE_CHANGED}
}

func ModeRequested(mode string) Event {
	return Event{Reason: MODE_REQUESTED, Mode: mode}
}

func SettingsChanged() Event {
	return Event{Reason: SETTINGS_CHANGED}
}

func SettingsPushed(update apimodel.SettingsUpdate) Event {
	return Event{Reason: SETTINGS_PUSHED, Settings: &update}
}

func NewMessage() Event {
	return Event{Reason: NEW_MESSAGE}
}

func ForceRefresh() Event {
	return Event{Reason: FORCE_REFRESH}
}

// Pending is the merged state of every event posted since the last drain
type Pending struct {
	Reasons Reason

	// Presses counts button presses, so that quick presses are not lost
	Presses int

	// Mode is the last requested mode name
	Mode string

	// Settings lists pushed settings payloads in arrival order
	Settings []apimodel.SettingsUpdate
}

func (p Pending) Empty() bool {
	return p.Reasons == 0
}

func (p *Pending) merge(ev Event) {
	p.Reasons |= ev.Reason
	switch ev.Reason {
	case BUTTON_PRESSED:
		p.Presses++
	case MODE_REQUESTED:
		p.Mode = ev.Mode
	case SETTINGS_PUSHED:
		if ev.Settings != nil {
			p.Settings = append(p.Settings, *ev.Settings)
		}
	}
}

// Poster is implemented by the Bus, listeners only ever post
type Poster interface {
	Post(ev Event)
}
