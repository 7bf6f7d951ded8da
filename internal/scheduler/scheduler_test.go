package scheduler

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/leandrodaf/midisynth/internal/clock"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

type fixture struct {
	clock *clock.Manual
	in    *Intake
	out   *recordingDispatcher
	sched *Scheduler
}

func newFixture(t *testing.T, now contracts.Timestamp) *fixture {
	t.Helper()
	log, _ := newTestLogger(t)
	c := clock.NewManual(now)
	in := NewIntake(c, log)
	out := &recordingDispatcher{}
	return &fixture{clock: c, in: in, out: out, sched: New(c, in, out, log)}
}

func (f *fixture) deliver(origin contracts.Timestamp, events ...contracts.MidiEvent) {
	f.in.Ingest(contracts.EventBatch{Events: events, Timestamp: origin})
}

func TestScheduler_EndToEndChannelKill(t *testing.T) {
	f := newFixture(t, 100)
	f.deliver(100,
		ev(100, 0x90, 60, 100),
		ev(100, 0xB0, 0x78, 0),
		ev(150, 0x90, 62, 100),
	)

	got := f.sched.Tick()
	want := []contracts.MidiEvent{ev(100, 0x90, 60, 100), ev(100, 0xB0, 0x78, 0)}
	if !sameEvents(got, want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	if f.sched.Pending() != 0 {
		t.Errorf("buffer should be empty, has %v", f.sched.Snapshot())
	}
	if !sameEvents(f.out.all(), want) {
		t.Errorf("dispatcher saw %v", f.out.all())
	}
}

func TestScheduler_KilledChannelNeverPlaysAgain(t *testing.T) {
	f := newFixture(t, 0)
	f.deliver(0,
		ev(100, 0x91, 60, 100),
		ev(100, 0xB1, 0x78, 0),
		ev(500, 0x81, 60, 0),
		ev(500, 0x92, 64, 100),
		ev(500, 0xF8),
	)

	f.clock.Set(100)
	f.sched.Tick()
	if f.sched.Pending() != 2 {
		t.Fatalf("pending = %d, want 2 (channel 2 note and clock)", f.sched.Pending())
	}

	f.clock.Set(10_000)
	f.sched.Tick()
	for _, e := range f.out.all()[2:] {
		if e.Message[0]&0x0F == 1 && e.Message[0] < 0xF0 {
			t.Errorf("channel 1 event dispatched after all sound off: % X", e.Message)
		}
	}
	if n := len(f.out.all()); n != 4 {
		t.Errorf("dispatched %d events, want 4", n)
	}
}

func TestScheduler_AllControllersOffDoesNotKill(t *testing.T) {
	f := newFixture(t, 0)
	f.deliver(0,
		ev(0, 0xB3, 0x79, 0),
		ev(50, 0x93, 60, 100),
	)
	f.sched.Tick()
	if f.sched.Pending() != 1 {
		t.Errorf("pending = %d, want 1", f.sched.Pending())
	}
}

func TestScheduler_DispatchOrderIsInsertionOrder(t *testing.T) {
	f := newFixture(t, 0)
	events := []contracts.MidiEvent{
		ev(30, 0x90, 1, 1),
		ev(10, 0x91, 2, 1),
		ev(20, 0x92, 3, 1),
		ev(10, 0x93, 4, 1),
	}
	f.deliver(0, events...)

	f.clock.Set(30)
	if got := f.sched.Tick(); !sameEvents(got, events) {
		t.Errorf("dispatched %v, want %v", got, events)
	}
}

func TestScheduler_OffsetAppliesUntilNextBatch(t *testing.T) {
	f := newFixture(t, 1000)
	// origin 400 arriving at local 1000: offset 600
	f.deliver(400, ev(450, 0x90, 60, 100))

	f.clock.Set(1049)
	if got := f.sched.Tick(); len(got) != 0 {
		t.Fatalf("event dispatched early: %v", got)
	}
	f.clock.Set(1050)
	if got := f.sched.Tick(); len(got) != 1 {
		t.Fatalf("event not dispatched at its local time")
	}

	// every batch resynchronizes the offset for everything still buffered
	f.deliver(400, ev(2000, 0x90, 62, 100))
	f.clock.Set(1200)
	f.deliver(1100, ev(1150, 0x90, 64, 100))
	if got := f.in.Offset(); got != 100 {
		t.Fatalf("offset = %v, want 100", got)
	}
	f.clock.Set(1250)
	got := f.sched.Tick()
	if len(got) != 1 || got[0].Message[1] != 64 {
		t.Errorf("dispatched %v, want only note 64", got)
	}
}

func TestScheduler_IdenticalEventsDispatchedOnce(t *testing.T) {
	f := newFixture(t, 0)
	f.deliver(0, ev(0, 0x90, 60, 100), ev(0, 0x90, 60, 100))

	if got := f.sched.Tick(); len(got) != 2 {
		t.Errorf("dispatched %d events, want 2", len(got))
	}
	if got := f.sched.Tick(); len(got) != 0 {
		t.Errorf("second tick dispatched %d events", len(got))
	}
}

func TestScheduler_LongGap(t *testing.T) {
	f := newFixture(t, 0)
	for i := 0; i < 50; i++ {
		f.deliver(0, ev(contracts.Timestamp(i*10), 0x90, byte(i), 100))
	}
	f.clock.Set(1e9)
	if got := f.sched.Tick(); len(got) != 50 {
		t.Fatalf("dispatched %d events after a long gap, want 50", len(got))
	}
	for i, e := range f.out.all() {
		if int(e.Message[1]) != i {
			t.Fatalf("event %d out of order: note %d", i, e.Message[1])
		}
	}
}

func TestScheduler_StartStop(t *testing.T) {
	f := newFixture(t, 0)
	ticker := clock.NewManualTicker()

	if err := f.sched.Start(context.Background(), ticker); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := f.sched.Start(context.Background(), clock.NewManualTicker()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start = %v, want ErrAlreadyRunning", err)
	}

	f.deliver(0, ev(0, 0x90, 60, 100))
	ticker.Fire()
	ticker.Fire()

	f.sched.Stop()
	f.sched.Stop()

	if n := len(f.out.all()); n != 1 {
		t.Errorf("dispatched %d events, want 1", n)
	}
	if ticker.Fire() {
		t.Error("ticker should be stopped with the loop")
	}

	if err := f.sched.Start(context.Background(), clock.NewManualTicker()); err != nil {
		t.Errorf("restart after Stop: %v", err)
	}
	f.sched.Stop()
}

func TestScheduler_ContextCancelEndsLoop(t *testing.T) {
	f := newFixture(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	ticker := clock.NewManualTicker()
	if err := f.sched.Start(ctx, ticker); err != nil {
		t.Fatalf("Start: %v", err)
	}
	cancel()
	f.sched.Stop()
	if ticker.Fire() {
		t.Error("ticker should be stopped after cancel")
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	f := newFixture(t, 0)
	f.sched.Stop()
}

func TestScheduler_NaNTimestampDoesNotBlockDueEvents(t *testing.T) {
	f := newFixture(t, 1000)
	f.in.Ingest(contracts.EventBatch{Timestamp: 1000})
	f.deliver(contracts.Timestamp(math.NaN()),
		ev(contracts.Timestamp(math.NaN()), 0x90, 60, 100),
		ev(10, 0x91, 60, 100),
		ev(20, 0x92, 60, 100),
	)

	got := f.sched.Tick()
	want := []contracts.MidiEvent{ev(10, 0x91, 60, 100), ev(20, 0x92, 60, 100)}
	if !sameEvents(got, want) {
		t.Fatalf("dispatched %v, want %v", got, want)
	}
	if f.sched.Pending() != 0 {
		t.Errorf("pending = %d, want 0", f.sched.Pending())
	}
}
