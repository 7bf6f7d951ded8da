package contracts

import "time"

// Clock reports the local time used to schedule dispatch.
type Clock interface {
	Now() Timestamp
}

// Ticker drives the scheduler loop. Ticks carry no period guarantee.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}
