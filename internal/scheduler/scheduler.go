// Package scheduler buffers incoming MIDI events and releases them to the
// synthesizer when their translated local time has come.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrAlreadyRunning is returned when Start is called on a running scheduler.
var ErrAlreadyRunning = errors.New("scheduler already running")

// Dispatcher receives the due events of a tick, in order.
type Dispatcher interface {
	Dispatch(events []contracts.MidiEvent, at contracts.Timestamp)
}

// Scheduler owns the event buffer. Tick must only run on one goroutine at a
// time: the loop started by Start, or the caller when the loop is not running.
type Scheduler struct {
	clock  contracts.Clock
	intake *Intake
	buffer *Buffer
	out    Dispatcher
	logger contracts.Logger

	bufMu sync.Mutex // guards buffer for readers outside the tick

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// New creates a scheduler fed by intake and dispatching to out.
func New(clock contracts.Clock, intake *Intake, out Dispatcher, logger contracts.Logger) *Scheduler {
	return &Scheduler{
		clock:  clock,
		intake: intake,
		buffer: NewBuffer(),
		out:    out,
		logger: logger,
	}
}

// Start runs the tick loop until ctx ends or Stop is called. The ticker is
// stopped when the loop exits.
func (s *Scheduler) Start(ctx context.Context, ticker contracts.Ticker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
		default:
			return ErrAlreadyRunning
		}
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(ctx, ticker, s.stop, s.done)

	s.logger.Info("Scheduler started")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, ticker contracts.Ticker, stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C():
			s.Tick()
		}
	}
}

// Stop ends the tick loop and waits for it to exit. Calling Stop on a
// scheduler that is not running does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop = nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.logger.Info("Scheduler stopped")
}

// Tick dispatches every due event and purges the channels that received a
// due all-sound-off. It returns the dispatched events.
func (s *Scheduler) Tick() []contracts.MidiEvent {
	s.bufMu.Lock()
	s.intake.drainInto(s.buffer)

	now := s.clock.Now()
	offset := s.intake.Offset()
	due := s.buffer.TakeDue(func(ts contracts.Timestamp) bool {
		return ts-now+offset <= 0
	})
	if len(due) == 0 {
		s.bufMu.Unlock()
		return nil
	}

	for _, ch := range killChannels(due) {
		purged := s.buffer.PurgeChannel(ch)
		s.logger.Debug("All sound off",
			s.logger.Field().Int("channel", ch),
			s.logger.Field().Int("purged", purged))
	}
	s.bufMu.Unlock()

	s.out.Dispatch(due, now)
	return due
}

// Pending reports the number of buffered events. Batches not yet drained by
// a tick are not counted.
func (s *Scheduler) Pending() int {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return s.buffer.Len()
}

// Snapshot returns the buffered events in insertion order.
func (s *Scheduler) Snapshot() []contracts.MidiEvent {
	s.bufMu.Lock()
	defer s.bufMu.Unlock()
	return s.buffer.Snapshot()
}

// killChannels lists, in first-seen order, the channels of due all-sound-off messages.
func killChannels(due []contracts.MidiEvent) []int {
	var channels []int
	seen := make(map[int]bool)
	for _, ev := range due {
		if !midimsg.IsAllSoundOff(ev.Message) {
			continue
		}
		ch := midimsg.Channel(ev.Message)
		if !seen[ch] {
			seen[ch] = true
			channels = append(channels, ch)
		}
	}
	return channels
}
