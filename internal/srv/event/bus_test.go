package event

import (
	"github.com/rubenparnell/departureBoard/apimodel"
	"sync"
	"testing"
	"time"
)

func TestWaitTimesOut(t *testing.T) {
	bus := NewBus()

	start := time.Now()
	if wake := bus.Wait(20*time.Millisecond, nil); wake != TIMED_OUT {
		t.Fatalf("expected timeout, got %s", wake)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("returned after %s, before the timeout", elapsed)
	}
}

func TestPostInterruptsWait(t *testing.T) {
	bus := NewBus()

	go func() {
		time.Sleep(10 * time.Millisecond)
		bus.Post(ButtonPressed())
	}()

	start := time.Now()
	if wake := bus.Wait(10*time.Second, nil); wake != SIGNALED {
		t.Fatalf("expected signal, got %s", wake)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("wait was not interrupted early (%s)", elapsed)
	}
}

func TestWaitForeverReturnsOnCancel(t *testing.T) {
	bus := NewBus()
	cancel := make(chan bool)

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(cancel)
	}()

	if wake := bus.Wait(Forever, cancel); wake != CANCELLED {
		t.Fatalf("expected cancel, got %s", wake)
	}
}

func TestSignalsCoalesce(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Post(ButtonPressed())
		}()
	}
	wg.Wait()
	bus.Post(ModeRequested("weather"))
	bus.Post(ModeRequested("films"))

	if wake := bus.Wait(time.Second, nil); wake != SIGNALED {
		t.Fatalf("expected signal, got %s", wake)
	}

	pending := bus.Drain()
	if pending.Presses != 5 {
		t.Errorf("expected 5 presses, got %d", pending.Presses)
	}
	if pending.Mode != "films" {
		t.Errorf("expected last requested mode to win, got %q", pending.Mode)
	}
	if !pending.Reasons.Has(BUTTON_PRESSED) || !pending.Reasons.Has(MODE_REQUESTED) {
		t.Errorf("unexpected reasons %s", pending.Reasons)
	}

	// Everything was collapsed into a single wake
	if wake := bus.Wait(10*time.Millisecond, nil); wake != TIMED_OUT {
		t.Errorf("expected no further wake, got %s", wake)
	}
	if !bus.Drain().Empty() {
		t.Errorf("expected empty pending after drain")
	}
}

func TestSettingsPushesAreKeptInOrder(t *testing.T) {
	bus := NewBus()

	first, second := "MTS", "CEN"
	bus.Post(SettingsPushed(apimodel.SettingsUpdate{Station1: &first}))
	bus.Post(SettingsPushed(apimodel.SettingsUpdate{Station1: &second}))

	pending := bus.Drain()
	if len(pending.Settings) != 2 {
		t.Fatalf("expected 2 settings payloads, got %d", len(pending.Settings))
	}
	if *pending.Settings[1].Station1 != "CEN" {
		t.Errorf("unexpected order: %+v", pending.Settings)
	}
}

func TestReasonString(t *testing.T) {
	testCases := []struct {
		reason Reason
		want   string
	}{
		{0, "none"},
		{NEW_MESSAGE, "new_message"},
		{BUTTON_PRESSED | SETTINGS_CHANGED, "button_pressed|settings_changed"},
	}
	for _, test := range testCases {
		if got := test.reason.String(); got != test.want {
			t.Errorf("%d: expected %q, got %q", test.reason, test.want, got)
		}
	}
}
