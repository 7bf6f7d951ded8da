package scheduler

import (
	"math"
	"testing"

	"github.com/leandrodaf/midisynth/internal/clock"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

func TestIntake_OffsetFollowsLatestBatch(t *testing.T) {
	log, _ := newTestLogger(t)
	c := clock.NewManual(1000)
	in := NewIntake(c, log)

	if in.Offset() != 0 {
		t.Fatalf("initial offset = %v, want 0", in.Offset())
	}

	in.Ingest(contracts.EventBatch{Timestamp: 400})
	if got := in.Offset(); got != 600 {
		t.Errorf("offset = %v, want 600", got)
	}

	c.Set(1500)
	in.Ingest(contracts.EventBatch{Timestamp: 1200})
	if got := in.Offset(); got != 300 {
		t.Errorf("offset = %v, want 300", got)
	}
}

func TestIntake_RejectsMalformedMessages(t *testing.T) {
	log, logs := newTestLogger(t)
	in := NewIntake(clock.NewManual(0), log)

	accepted := in.Ingest(contracts.EventBatch{Events: []contracts.MidiEvent{
		ev(1, 0x90, 60, 100),
		ev(2),
		ev(3, 0x90, 60, 100, 1),
		ev(4, 0x90, 60),
		ev(5, 0xB0, 0x78, 0),
	}})
	if accepted != 2 {
		t.Errorf("accepted = %d, want 2", accepted)
	}
	if n := logs.FilterMessage("Dropping malformed MIDI message").Len(); n != 3 {
		t.Errorf("expected 3 rejection warnings, got %d", n)
	}

	buf := NewBuffer()
	if n := in.drainInto(buf); n != 2 {
		t.Errorf("drained %d events, want 2", n)
	}
	if n := in.drainInto(buf); n != 0 {
		t.Errorf("second drain returned %d events", n)
	}
}

func TestIntake_CopiesMessageBytes(t *testing.T) {
	log, _ := newTestLogger(t)
	in := NewIntake(clock.NewManual(0), log)

	msg := []byte{0x90, 60, 100}
	in.Ingest(contracts.EventBatch{Events: []contracts.MidiEvent{{Message: msg}}})
	msg[1] = 61

	buf := NewBuffer()
	in.drainInto(buf)
	if got := buf.Snapshot()[0].Message[1]; got != 60 {
		t.Errorf("buffered message changed with the caller's slice: note %d", got)
	}
}

func TestIntake_RejectsNonFiniteTimestamps(t *testing.T) {
	log, logs := newTestLogger(t)
	in := NewIntake(clock.NewManual(0), log)

	accepted := in.Ingest(contracts.EventBatch{Events: []contracts.MidiEvent{
		ev(contracts.Timestamp(math.NaN()), 0x90, 60, 100),
		ev(contracts.Timestamp(math.Inf(1)), 0x90, 61, 100),
		ev(contracts.Timestamp(math.Inf(-1)), 0x90, 62, 100),
		ev(10, 0x91, 60, 100),
	}})
	if accepted != 1 {
		t.Errorf("accepted = %d, want 1", accepted)
	}
	if n := logs.FilterMessage("Dropping MIDI event with invalid timestamp").Len(); n != 3 {
		t.Errorf("expected 3 rejection warnings, got %d", n)
	}
}

func TestIntake_NonFiniteBatchTimestampKeepsOffset(t *testing.T) {
	log, logs := newTestLogger(t)
	c := clock.NewManual(1000)
	in := NewIntake(c, log)

	in.Ingest(contracts.EventBatch{Timestamp: 400})
	for _, ts := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		n := in.Ingest(contracts.EventBatch{
			Timestamp: contracts.Timestamp(ts),
			Events:    []contracts.MidiEvent{ev(500, 0x90, 60, 100)},
		})
		if n != 1 {
			t.Errorf("batch at %v: accepted %d events, want 1", ts, n)
		}
		if got := in.Offset(); got != 600 {
			t.Errorf("batch at %v: offset = %v, want 600", ts, got)
		}
	}
	if n := logs.FilterMessage("Ignoring invalid batch timestamp, keeping previous offset").Len(); n != 3 {
		t.Errorf("expected 3 warnings, got %d", n)
	}
}
