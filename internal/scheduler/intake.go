package scheduler

import (
	"math"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Intake accepts event batches from any goroutine, keeps the clock offset
// and queues events until the scheduler goroutine drains them.
type Intake struct {
	clock  contracts.Clock
	logger contracts.Logger

	mu      sync.Mutex
	offset  contracts.Timestamp
	pending []contracts.MidiEvent
}

// NewIntake creates an intake reading arrival time from clock.
func NewIntake(clock contracts.Clock, logger contracts.Logger) *Intake {
	return &Intake{clock: clock, logger: logger}
}

// Ingest resynchronizes the offset to this batch and queues its valid
// events. It returns the number of accepted events.
func (in *Intake) Ingest(batch contracts.EventBatch) int {
	accepted := make([]contracts.MidiEvent, 0, len(batch.Events))
	for _, ev := range batch.Events {
		if !finite(ev.Timestamp) {
			in.logger.Warn("Dropping MIDI event with invalid timestamp",
				in.logger.Field().Float64("timestamp", float64(ev.Timestamp)))
			continue
		}
		if err := midimsg.Validate(ev.Message); err != nil {
			in.logger.Warn("Dropping malformed MIDI message",
				in.logger.Field().Int("length", len(ev.Message)),
				in.logger.Field().Float64("timestamp", float64(ev.Timestamp)),
				in.logger.Field().Error("error", err))
			continue
		}
		accepted = append(accepted, contracts.MidiEvent{
			Message:   append([]byte(nil), ev.Message...),
			Timestamp: ev.Timestamp,
		})
	}

	resync := finite(batch.Timestamp)
	if !resync {
		in.logger.Warn("Ignoring invalid batch timestamp, keeping previous offset",
			in.logger.Field().Float64("timestamp", float64(batch.Timestamp)))
	}

	in.mu.Lock()
	if resync {
		in.offset = in.clock.Now() - batch.Timestamp
	}
	in.pending = append(in.pending, accepted...)
	offset := in.offset
	in.mu.Unlock()

	in.logger.Debug("Batch received",
		in.logger.Field().Int("events", len(batch.Events)),
		in.logger.Field().Int("accepted", len(accepted)),
		in.logger.Field().Float64("offset", float64(offset)))
	return len(accepted)
}

// Offset returns the offset computed from the latest batch.
func (in *Intake) Offset() contracts.Timestamp {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.offset
}

// drainInto moves queued events into buf in arrival order.
func (in *Intake) drainInto(buf *Buffer) int {
	in.mu.Lock()
	pending := in.pending
	in.pending = nil
	in.mu.Unlock()

	for _, ev := range pending {
		buf.Append(ev)
	}
	return len(pending)
}

func finite(ts contracts.Timestamp) bool {
	f := float64(ts)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
