package event

import (
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Forever makes Wait block until a signal arrives
const Forever time.Duration = -1

type Wake int

const (
	TIMED_OUT Wake = iota
	SIGNALED
	CANCELLED
)

func (w Wake) String() string {
	switch w {
	case SIGNALED:
		return "signaled"
	case CANCELLED:
		return "cancelled"
	default:
		return "timed out"
	}
}

// Bus is the single synchronization point between the listeners and the
// scheduler. It is a notification primitive, not a queue: posts merge into one
// Pending record and at most one wake token is outstanding.
type Bus struct {
	lock    sync.Mutex
	pending Pending
	wake    chan struct{}
}

func NewBus() *Bus {
	return &Bus{
		wake: make(chan struct{}, 1),
	}
}

func (b *Bus) Post(ev Event) {
	b.lock.Lock()
	b.pending.merge(ev)
	b.lock.Unlock()

	logrus.Debugf("Post %s event", ev.Reason)

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Wait blocks up to timeout (Forever to block without limit) and returns
// early when an event is posted or when cancel is closed or written.
func (b *Bus) Wait(timeout time.Duration, cancel <-chan bool) Wake {
	var timerC <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case <-b.wake:
		return SIGNALED
	case <-timerC:
		return TIMED_OUT
	case <-cancel:
		return CANCELLED
	}
}

// Drain returns everything posted since the previous drain and consumes the
// outstanding wake token.
func (b *Bus) Drain() Pending {
	b.lock.Lock()
	defer b.lock.Unlock()

	select {
	case <-b.wake:
	default:
	}

	pending := b.pending
	b.pending = Pending{}
	return pending
}
