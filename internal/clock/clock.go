// Package clock provides the single source of "now" for duration math and a
// ticker that only runs while some entry in view is open.
package clock

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the tick resolution of the live clock.
const DefaultInterval = time.Second

// Source supplies the current time. Production code uses the real clock;
// tests inject a clockwork fake.
type Source = clockwork.Clock

// Real returns the wall clock.
func Real() Source {
	return clockwork.NewRealClock()
}

// Ticker delivers the current time at a fixed interval while active.
//
// Thread-safety: SetActive and Active may be called from any goroutine.
// Ticks are delivered latest-wins: a slow reader only ever sees the most
// recent value.
type Ticker struct {
	source   Source
	interval time.Duration
	out      chan time.Time

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewTicker creates an idle ticker. A non-positive interval uses DefaultInterval.
func NewTicker(source Source, interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		source:   source,
		interval: interval,
		out:      make(chan time.Time, 1),
	}
}

// C returns the channel ticks are delivered on.
func (t *Ticker) C() <-chan time.Time {
	return t.out
}

// Interval returns the tick resolution.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Active reports whether the ticker is currently running.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}

// SetActive starts or stops ticking. Calls that do not change state are no-ops.
// After SetActive(false) returns no further tick is delivered until the
// ticker is activated again.
func (t *Ticker) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if active == (t.stop != nil) {
		return
	}

	if active {
		// The underlying ticker is created before the goroutine starts so a
		// fake clock advanced right after this call always reaches it.
		tk := t.source.NewTicker(t.interval)
		t.stop = make(chan struct{})
		t.done = make(chan struct{})
		go t.run(tk, t.stop, t.done)
		return
	}

	close(t.stop)
	<-t.done
	t.stop, t.done = nil, nil
	t.drain()
}

// Stop halts the ticker. It is equivalent to SetActive(false).
func (t *Ticker) Stop() {
	t.SetActive(false)
}

func (t *Ticker) run(tk clockwork.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-tk.Chan():
			t.deliver(now)
		}
	}
}

func (t *Ticker) deliver(now time.Time) {
	select {
	case t.out <- now:
		return
	default:
	}
	t.drain()
	select {
	case t.out <- now:
	default:
	}
}

func (t *Ticker) drain() {
	select {
	case <-t.out:
	default:
	}
}
