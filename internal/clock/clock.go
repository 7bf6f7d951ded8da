// Package clock provides the local time source and tick drivers for the scheduler.
package clock

import (
	"sync"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Monotonic reports milliseconds elapsed since it was created.
type Monotonic struct {
	start time.Time
}

// NewMonotonic returns a clock starting at zero.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

// Now implements contracts.Clock.
func (m *Monotonic) Now() contracts.Timestamp {
	return FromDuration(time.Since(m.start))
}

// FromDuration converts d to milliseconds.
func FromDuration(d time.Duration) contracts.Timestamp {
	return contracts.Timestamp(float64(d) / float64(time.Millisecond))
}

// ToDuration converts a millisecond timestamp to a duration.
func ToDuration(ts contracts.Timestamp) time.Duration {
	return time.Duration(float64(ts) * float64(time.Millisecond))
}

// IntervalTicker is a contracts.Ticker backed by time.Ticker.
type IntervalTicker struct {
	ticker *time.Ticker
	once   sync.Once
}

// NewIntervalTicker ticks every d.
func NewIntervalTicker(d time.Duration) *IntervalTicker {
	return &IntervalTicker{ticker: time.NewTicker(d)}
}

func (t *IntervalTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t *IntervalTicker) Stop() {
	t.once.Do(t.ticker.Stop)
}
