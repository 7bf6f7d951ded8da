package clock

import (
	"sync"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Manual is a clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now contracts.Timestamp
}

// NewManual returns a clock reading now.
func NewManual(now contracts.Timestamp) *Manual {
	return &Manual{now: now}
}

func (m *Manual) Now() contracts.Timestamp {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to ts.
func (m *Manual) Set(ts contracts.Timestamp) {
	m.mu.Lock()
	m.now = ts
	m.mu.Unlock()
}

// Advance moves the clock forward by d milliseconds.
func (m *Manual) Advance(d contracts.Timestamp) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// ManualTicker delivers a tick each time Fire is called.
type ManualTicker struct {
	c    chan time.Time
	done chan struct{}
	once sync.Once
}

// NewManualTicker returns a ticker with an unbuffered channel, so Fire
// returns only once the consumer has received the tick.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{
		c:    make(chan time.Time),
		done: make(chan struct{}),
	}
}

func (t *ManualTicker) C() <-chan time.Time {
	return t.c
}

// Fire blocks until the tick is received. It reports false if the ticker
// was stopped first.
func (t *ManualTicker) Fire() bool {
	select {
	case t.c <- time.Now():
		return true
	case <-t.done:
		return false
	}
}

func (t *ManualTicker) Stop() {
	t.once.Do(func() { close(t.done) })
}
