package cache

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type coordinates struct {
	lat, lon float64
}

type counter struct {
	calls int
	value string
	err   error
}

func (c *counter) fetch() (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.value, nil
}

func newTestCache[K comparable](t *testing.T, ttl time.Duration, retryDelay time.Duration) (*Cache[K, string], *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	return New[K, string](Config{Name: "test", TTL: ttl, RetryDelay: retryDelay, Now: clock.Now}), clock
}

func TestWeatherScenario(t *testing.T) {
	c, clock := newTestCache[coordinates](t, WeatherTTL, DefaultRetryDelay)
	upstream := &counter{value: "sunny"}
	key := coordinates{lat: 1, lon: 1}

	if v, ok := c.Get(key, upstream.fetch); !ok || v != "sunny" {
		t.Fatalf("expected first fetch to succeed, got %q %v", v, ok)
	}

	clock.advance(500 * time.Second)
	upstream.value = "rain"
	if v, _ := c.Get(key, upstream.fetch); v != "sunny" || upstream.calls != 1 {
		t.Fatalf("expected cached value at t=500 without fetch, got %q after %d calls", v, upstream.calls)
	}

	clock.advance(200 * time.Second)
	if v, _ := c.Get(key, upstream.fetch); v != "rain" || upstream.calls != 2 {
		t.Fatalf("expected a new fetch at t=700, got %q after %d calls", v, upstream.calls)
	}
}

func TestKeyChangeInvalidates(t *testing.T) {
	c, _ := newTestCache[coordinates](t, WeatherTTL, 0)
	upstream := &counter{value: "here"}

	c.Get(coordinates{1, 1}, upstream.fetch)
	c.Get(coordinates{1, 1}, upstream.fetch)
	c.Get(coordinates{2, 1}, upstream.fetch)
	if upstream.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", upstream.calls)
	}
}

func TestExpiredEntryFetchesOncePerCall(t *testing.T) {
	c, clock := newTestCache[struct{}](t, MessagesTTL, 0)
	upstream := &counter{value: "hello"}

	c.Get(struct{}{}, upstream.fetch)
	for i := 0; i < 3; i++ {
		clock.advance(MessagesTTL)
		c.Get(struct{}{}, upstream.fetch)
		if upstream.calls != i+2 {
			t.Fatalf("call %d: expected %d fetches, got %d", i, i+2, upstream.calls)
		}
	}
}

func TestForceFlagIsOneShot(t *testing.T) {
	c, _ := newTestCache[struct{}](t, MessagesTTL, 0)
	upstream := &counter{value: "first"}

	c.Get(struct{}{}, upstream.fetch)
	c.Force()
	upstream.value = "second"

	if v, _ := c.Get(struct{}{}, upstream.fetch); v != "second" || upstream.calls != 2 {
		t.Fatalf("expected forced fetch, got %q after %d calls", v, upstream.calls)
	}
	if v, _ := c.Get(struct{}{}, upstream.fetch); v != "second" || upstream.calls != 2 {
		t.Fatalf("expected force flag to be cleared, got %q after %d calls", v, upstream.calls)
	}
}

func TestForceFlagClearsAfterFailedFetch(t *testing.T) {
	c, clock := newTestCache[struct{}](t, MessagesTTL, DefaultRetryDelay)
	upstream := &counter{value: "cached"}

	c.Get(struct{}{}, upstream.fetch)
	c.Force()
	upstream.err = errors.New("network down")

	for i := 0; i < 10; i++ {
		if v, ok := c.Get(struct{}{}, upstream.fetch); !ok || v != "cached" {
			t.Fatalf("read %d: expected previous value, got %q %v", i, v, ok)
		}
		clock.advance(80 * time.Millisecond)
	}
	if upstream.calls != 2 {
		t.Fatalf("expected one forced fetch, got %d fetches after the first", upstream.calls-1)
	}

	clock.advance(MessagesTTL)
	upstream.err = nil
	upstream.value = "fresh"
	if v, _ := c.Get(struct{}{}, upstream.fetch); v != "fresh" || upstream.calls != 3 {
		t.Errorf("expected a fetch once expired, got %q after %d fetches", v, upstream.calls)
	}
}

func TestFailureFallsBackToPreviousValue(t *testing.T) {
	c, clock := newTestCache[struct{}](t, MessagesTTL, 0)
	upstream := &counter{value: "cached"}

	c.Get(struct{}{}, upstream.fetch)
	clock.advance(MessagesTTL + time.Second)
	upstream.err = errors.New("network down")

	v, ok := c.Get(struct{}{}, upstream.fetch)
	if !ok || v != "cached" {
		t.Errorf("expected previous value, got %q %v", v, ok)
	}
	if c.Stats().Failures != 1 {
		t.Errorf("expected one failure, got %+v", c.Stats())
	}
}

func TestFailureWithoutDataReturnsSentinel(t *testing.T) {
	c, _ := newTestCache[string](t, 0, 0)
	upstream := &counter{err: errors.New("scraper broken")}

	if v, ok := c.Get("2024-06-01", upstream.fetch); ok || v != "" {
		t.Errorf("expected no data, got %q %v", v, ok)
	}
}

func TestDayKeyedCache(t *testing.T) {
	c, clock := newTestCache[string](t, 0, 0)
	upstream := &counter{value: "films"}

	c.Get("2024-06-01", upstream.fetch)
	clock.advance(20 * time.Hour)
	c.Get("2024-06-01", upstream.fetch)
	if upstream.calls != 1 {
		t.Fatalf("expected the same day to be served from cache, got %d fetches", upstream.calls)
	}
	c.Get("2024-06-02", upstream.fetch)
	if upstream.calls != 2 {
		t.Errorf("expected a new day to fetch, got %d fetches", upstream.calls)
	}
}

func TestRetryDelayAfterFailure(t *testing.T) {
	c, clock := newTestCache[string](t, 0, 30*time.Second)
	upstream := &counter{err: errors.New("timeout")}

	c.Get("day", upstream.fetch)
	clock.advance(10 * time.Second)
	c.Get("day", upstream.fetch)
	if upstream.calls != 1 {
		t.Fatalf("expected retry to be throttled, got %d fetches", upstream.calls)
	}

	clock.advance(30 * time.Second)
	upstream.err = nil
	upstream.value = "ok"
	if v, ok := c.Get("day", upstream.fetch); !ok || v != "ok" || upstream.calls != 2 {
		t.Errorf("expected retry after delay, got %q %v after %d calls", v, ok, upstream.calls)
	}
}
