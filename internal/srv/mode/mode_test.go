package mode

import (
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"testing"
)

type recordingPoster struct {
	events []event.Event
}

func (p *recordingPoster) Post(ev event.Event) {
	p.events = append(p.events, ev)
}

func TestAdvanceIsARotation(t *testing.T) {
	for _, start := range All() {
		t.Run(start.String(), func(t *testing.T) {
			controller := NewController(start, nil)
			previous := start
			for i := 0; i < Count; i++ {
				next := controller.Advance()
				if int(next) != (int(previous)+1)%Count {
					t.Fatalf("step %d: expected %d after %d, got %d", i, (int(previous)+1)%Count, previous, next)
				}
				previous = next
			}
			if controller.Current() != start {
				t.Errorf("expected to be back at %s, got %s", start, controller.Current())
			}
		})
	}
}

func TestAdvanceWrapsAfterOff(t *testing.T) {
	controller := NewController(OFF_MODE, nil)
	if got := controller.Advance(); got != MESSAGES_MODE {
		t.Errorf("expected messages after off, got %s", got)
	}
}

func TestAdvanceSignalsBus(t *testing.T) {
	poster := &recordingPoster{}
	controller := NewController(METRO_MODE, poster)

	controller.Advance()
	if len(poster.events) != 1 || poster.events[0].Reason != event.MODE_CHANGED {
		t.Fatalf("expected one mode changed event, got %+v", poster.events)
	}

	// Setting the mode already active is not a change
	_ = controller.Set(WEATHER_MODE)
	if len(poster.events) != 1 {
		t.Errorf("expected no event for a no-op set, got %+v", poster.events)
	}
}

func TestObserveReportsChanges(t *testing.T) {
	controller := NewController(FILMS_MODE, nil)

	if m, changed := controller.Observe(); !changed || m != FILMS_MODE {
		t.Fatalf("first observe should report films as a change, got %s %v", m, changed)
	}
	if _, changed := controller.Observe(); changed {
		t.Fatalf("second observe should not report a change")
	}
	controller.Advance()
	if m, changed := controller.Observe(); !changed || m != LINK_MODE {
		t.Errorf("expected change to link, got %s %v", m, changed)
	}
}

func TestParse(t *testing.T) {
	for _, m := range All() {
		parsed, err := Parse(m.String())
		if err != nil || parsed != m {
			t.Errorf("parse %q: got %s, %v", m, parsed, err)
		}
	}
	if _, err := Parse("Weather_Graph "); err != nil {
		t.Errorf("expected case-insensitive parse, got %v", err)
	}
	if _, err := Parse("disco"); err == nil {
		t.Errorf("expected an error for an unknown mode")
	}
	if err := NewController(METRO_MODE, nil).Set(END_MODE); err == nil {
		t.Errorf("expected an error when setting an invalid mode")
	}
}
