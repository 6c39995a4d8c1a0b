package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rubenparnell/departureBoard/apimodel"
	"github.com/rubenparnell/departureBoard/internal/srv/config"
	"github.com/rubenparnell/departureBoard/internal/srv/event"
	"github.com/rubenparnell/departureBoard/internal/srv/mode"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordingPoster struct {
	lock   sync.Mutex
	events []event.Event
}

func (p *recordingPoster) Post(ev event.Event) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPoster) reasons() []event.Reason {
	p.lock.Lock()
	defer p.lock.Unlock()
	var reasons []event.Reason
	for _, ev := range p.events {
		reasons = append(reasons, ev.Reason)
	}
	return reasons
}

func TestDecodeCommand(t *testing.T) {
	const board = "b1"
	tests := []struct {
		name    string
		topic   string
		payload string
		reason  event.Reason
		mode    string
		wantErr bool
	}{
		{name: "message", topic: "boards/b1/message", reason: event.NEW_MESSAGE},
		{name: "refresh", topic: "boards/b1/refresh", reason: event.FORCE_REFRESH},
		{name: "settings", topic: "boards/b1/settings", payload: `{"station1":"MTS","forecast_hours":"8,12"}`, reason: event.SETTINGS_PUSHED},
		{name: "invalid settings", topic: "boards/b1/settings", payload: `{"lat":"north"}`, wantErr: true},
		{name: "mode name", topic: "boards/b1/mode", payload: " Films ", reason: event.MODE_REQUESTED, mode: "films"},
		{name: "mode object", topic: "boards/b1/mode", payload: `{"mode":"weather_graph"}`, reason: event.MODE_REQUESTED, mode: "weather_graph"},
		{name: "unknown mode", topic: "boards/b1/mode", payload: "disco", wantErr: true},
		{name: "other board", topic: "boards/b2/message", wantErr: true},
		{name: "legacy topic", topic: "/board/b1/settings", wantErr: true},
		{name: "unknown command", topic: "boards/b1/reboot", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeCommand(board, tt.topic, []byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %+v", ev)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCommand: %v", err)
			}
			if ev.Reason != tt.reason || ev.Mode != tt.mode {
				t.Errorf("got %s %q, want %s %q", ev.Reason, ev.Mode, tt.reason, tt.mode)
			}
		})
	}

	if _, err := DecodeCommand(board, "boards/b2/message", nil); !errors.Is(err, ErrUnknownTopic) {
		t.Errorf("other board error = %v", err)
	}
	ev, _ := DecodeCommand(board, "boards/b1/settings", []byte(`{"station1":"MTS"}`))
	if ev.Settings == nil || ev.Settings.Station1 == nil || *ev.Settings.Station1 != "MTS" {
		t.Errorf("settings payload not carried: %+v", ev.Settings)
	}
}

type recordedStatus struct {
	topic   string
	payload []byte
}

type recordingPublisher struct {
	published []recordedStatus
}

func (p *recordingPublisher) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	p.published = append(p.published, recordedStatus{topic: topic, payload: payload.([]byte)})
	return nil
}

func TestRemoteResendsModeOnConnect(t *testing.T) {
	remote := NewRemote(config.MqttParam{Broker: "localhost"}, "b1", &recordingPoster{})
	publisher := &recordingPublisher{}

	remote.publishStatus(publisher)
	if len(publisher.published) != 0 {
		t.Fatalf("published %d statuses before any mode", len(publisher.published))
	}

	// broker unreachable while the mode changes
	remote.PublishMode("films")
	remote.PublishMode("link")

	remote.publishStatus(publisher)
	if len(publisher.published) != 1 {
		t.Fatalf("published %d statuses, want 1", len(publisher.published))
	}
	sent := publisher.published[0]
	if sent.topic != "board/b1/status" {
		t.Errorf("topic = %q", sent.topic)
	}
	var status apimodel.ModeStatus
	if err := json.Unmarshal(sent.payload, &status); err != nil || status.Mode != "link" {
		t.Errorf("payload = %s, %v", sent.payload, err)
	}
}

type fakeModes struct {
	current mode.Mode
}

func (f fakeModes) Current() mode.Mode {
	return f.current
}

func newTestApi(t *testing.T, apiKey string) (http.Handler, *config.SettingsStore, *recordingPoster) {
	t.Helper()
	poster := &recordingPoster{}
	store, err := config.NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"), poster)
	if err != nil {
		t.Fatalf("NewSettingsStore: %v", err)
	}
	api := NewApi(config.ApiParam{Port: 0, ApiKey: apiKey}, t.TempDir(), store, fakeModes{current: mode.WEATHER_MODE}, poster)
	return api.Handler(), store, poster
}

func doRequest(t *testing.T, handler http.Handler, method string, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestApiSettings(t *testing.T) {
	handler, store, poster := newTestApi(t, "")

	rec := doRequest(t, handler, "GET", "/api/settings", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET settings status %d", rec.Code)
	}
	var settings apimodel.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &settings); err != nil {
		t.Fatal(err)
	}
	if settings.Station1 != config.DefaultSettings().Station1 {
		t.Errorf("GET settings = %+v", settings)
	}

	rec = doRequest(t, handler, "PUT", "/api/settings", `{"station2":"MTS","platform2":3,"forecast_hours":"7, x, 20"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT settings status %d: %s", rec.Code, rec.Body.String())
	}
	current := store.Current()
	if current.Station2 != "MTS" || current.Platform2 != "3" {
		t.Errorf("settings not updated: %+v", current)
	}
	if len(current.ForecastHours) != 2 || current.ForecastHours[0] != 7 || current.ForecastHours[1] != 20 {
		t.Errorf("forecast hours = %v", current.ForecastHours)
	}
	if reasons := poster.reasons(); len(reasons) != 1 || reasons[0] != event.SETTINGS_CHANGED {
		t.Errorf("posted %v", reasons)
	}

	rec = doRequest(t, handler, "PUT", "/api/settings", `{"lat":`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status %d", rec.Code)
	}
}

func TestApiMode(t *testing.T) {
	handler, _, poster := newTestApi(t, "")

	rec := doRequest(t, handler, "GET", "/api/mode", "", nil)
	var status apimodel.ModeStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil || status.Mode != "weather" {
		t.Errorf("GET mode = %s, %v", rec.Body.String(), err)
	}

	rec = doRequest(t, handler, "PUT", "/api/mode/films", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("PUT mode status %d", rec.Code)
	}
	rec = doRequest(t, handler, "PUT", "/api/mode/disco", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown mode status %d", rec.Code)
	}
	rec = doRequest(t, handler, "POST", "/api/mode/next", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("next mode status %d", rec.Code)
	}
	rec = doRequest(t, handler, "POST", "/api/messages/refresh", "", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("refresh status %d", rec.Code)
	}

	want := []event.Reason{event.MODE_REQUESTED, event.BUTTON_PRESSED, event.NEW_MESSAGE}
	got := poster.reasons()
	if len(got) != len(want) {
		t.Fatalf("posted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if poster.events[0].Mode != "films" {
		t.Errorf("requested mode = %q", poster.events[0].Mode)
	}
}

func TestApiKey(t *testing.T) {
	handler, _, _ := newTestApi(t, "secret")

	if rec := doRequest(t, handler, "GET", "/api/is_alive", "", nil); rec.Code != http.StatusForbidden {
		t.Errorf("missing key status %d", rec.Code)
	}
	rec := doRequest(t, handler, "GET", "/api/is_alive", "", map[string]string{"x-api-key": "secret"})
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status %d", rec.Code)
	}
	var message apimodel.ErrorMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &message); err != nil || message.ErrMessage != "Ok" {
		t.Errorf("is_alive body = %s", rec.Body.String())
	}
	if rec := doRequest(t, handler, "GET", "/api/nothing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status %d", rec.Code)
	}
}

func TestButtonRefresh(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO21"}
	button, err := newButtonOnPin(pin, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("newButtonOnPin: %v", err)
	}
	start := time.Now()

	if button.Refresh(start) {
		t.Fatal("released button reported a press")
	}

	pin.L = gpio.Low
	if !button.Refresh(start.Add(5 * time.Millisecond)) {
		t.Fatal("press not detected")
	}
	if button.Refresh(start.Add(10 * time.Millisecond)) {
		t.Fatal("held button reported a second press")
	}

	// bounce
	pin.L = gpio.High
	button.Refresh(start.Add(15 * time.Millisecond))
	pin.L = gpio.Low
	if button.Refresh(start.Add(20 * time.Millisecond)) {
		t.Fatal("bounce within the debounce delay reported a press")
	}

	pin.L = gpio.High
	button.Refresh(start.Add(300 * time.Millisecond))
	pin.L = gpio.Low
	if !button.Refresh(start.Add(305 * time.Millisecond)) {
		t.Fatal("second press not detected")
	}
}

func TestLed(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO26"}
	led := newLedOnPin(pin)

	led.On()
	if !led.IsOn() || pin.L != gpio.High {
		t.Errorf("led on: state %v pin %v", led.IsOn(), pin.L)
	}
	led.Off()
	if led.IsOn() || pin.L != gpio.Low {
		t.Errorf("led off: state %v pin %v", led.IsOn(), pin.L)
	}

	simulated := NewLed("GPIO26", true)
	simulated.On()
	if !simulated.IsOn() {
		t.Errorf("simulated led state not kept")
	}
}

func TestRenderTerminal(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})

	out := RenderTerminal(img, 100)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d rows, want 2", len(lines))
	}
	if got := strings.Count(out, "▀"); got != 8 {
		t.Errorf("got %d cells, want 8", got)
	}
}

func TestDisplayWithTerminalPanel(t *testing.T) {
	var out bytes.Buffer
	display := NewDisplay(config.DisplayParam{Driver: "none", Width: 4, Height: 2}, false)
	display.panel = newTerminalPanel(&out)
	display.start()

	frame := image.NewRGBA(image.Rect(0, 0, 4, 2))
	display.ShowImage(frame)
	display.SetBrightness(75)
	display.Clear()
	display.Stop()

	if display.Brightness() != 75 {
		t.Errorf("brightness = %d", display.Brightness())
	}
	if display.LastImage() == frame {
		t.Errorf("clear did not replace the last frame")
	}
	if got := strings.Count(out.String(), "▀"); got != 8 {
		t.Errorf("drew %d cells, want 8", got)
	}
}

func TestSettingsWatcherReloadsExternalEdit(t *testing.T) {
	poster := &recordingPoster{}
	store, err := config.NewSettingsStore(filepath.Join(t.TempDir(), "settings.json"), poster)
	if err != nil {
		t.Fatal(err)
	}

	watcher := NewSettingsWatcher(store)
	watcher.delay = 20 * time.Millisecond
	if err = watcher.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer watcher.StopSendingEvent()

	edited := config.DefaultSettings()
	edited.Station1 = "MTS"
	raw, _ := json.Marshal(edited)
	if err = os.WriteFile(store.Filename(), raw, 0660); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for store.Current().Station1 != "MTS" {
		if time.Now().After(deadline) {
			t.Fatal("external edit not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if reasons := poster.reasons(); len(reasons) == 0 || reasons[0] != event.SETTINGS_CHANGED {
		t.Errorf("posted %v", reasons)
	}
}

func TestNetworkOnline(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if !NewNetwork(server.Listener.Addr().String()).Online(context.Background()) {
		t.Errorf("reachable probe reported offline")
	}
	if !NewNetwork("").Online(context.Background()) {
		t.Errorf("empty probe should count as online")
	}
}
