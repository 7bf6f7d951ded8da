package scheduler

import (
	"sync"
	"testing"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger(t *testing.T) (contracts.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewZapLoggerWithCore(core)
	log.SetLevel(contracts.DebugLevel)
	return log, logs
}

// recordingDispatcher keeps every dispatched tick.
type recordingDispatcher struct {
	mu    sync.Mutex
	ticks [][]contracts.MidiEvent
	ats   []contracts.Timestamp
}

func (r *recordingDispatcher) Dispatch(events []contracts.MidiEvent, at contracts.Timestamp) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, events)
	r.ats = append(r.ats, at)
}

func (r *recordingDispatcher) all() []contracts.MidiEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []contracts.MidiEvent
	for _, tick := range r.ticks {
		out = append(out, tick...)
	}
	return out
}

func ev(ts contracts.Timestamp, msg ...byte) contracts.MidiEvent {
	return contracts.MidiEvent{Message: msg, Timestamp: ts}
}

func sameEvents(a, b []contracts.MidiEvent) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Timestamp != b[i].Timestamp || string(a[i].Message) != string(b[i].Message) {
			return false
		}
	}
	return true
}
