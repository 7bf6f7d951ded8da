package dispatch

import (
	"testing"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	gomidi "gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSynth struct {
	messages [][]byte
	panicOn  byte
}

func (f *fakeSynth) Connect(contracts.AudioNode) error { return nil }
func (f *fakeSynth) RefreshInstruments([]byte) error { return nil }
func (f *fakeSynth) ProcessMessage(message []byte) {
	if f.panicOn != 0 && message[0] == f.panicOn {
		panic("bad message")
	}
	f.messages = append(f.messages, message)
}

type listener struct {
	seen []contracts.Timestamp
}

func (l *listener) OnDispatch(_ []byte, at contracts.Timestamp) {
	l.seen = append(l.seen, at)
}

func TestBridge_ForwardsInOrderUnmodified(t *testing.T) {
	synth := &fakeSynth{}
	b := NewBridge(synth, logger.NewZapLoggerWithCore(zapcore.NewNopCore()))

	events := []contracts.MidiEvent{
		{Message: gomidi.NoteOn(0, 60, 100), Timestamp: 1},
		{Message: gomidi.ControlChange(0, 0x78, 0), Timestamp: 1},
		{Message: []byte{0xF8}, Timestamp: 2},
	}
	b.Dispatch(events, 10)

	if len(synth.messages) != len(events) {
		t.Fatalf("forwarded %d messages, want %d", len(synth.messages), len(events))
	}
	for i, ev := range events {
		if string(synth.messages[i]) != string(ev.Message) {
			t.Errorf("message %d = % X, want % X", i, synth.messages[i], ev.Message)
		}
	}
}

func TestBridge_NotifiesListeners(t *testing.T) {
	b := NewBridge(&fakeSynth{}, logger.NewZapLoggerWithCore(zapcore.NewNopCore()))
	l := &listener{}
	b.AddListener(l)

	b.Dispatch([]contracts.MidiEvent{{Message: gomidi.NoteOn(0, 60, 100)}}, 42)
	if len(l.seen) != 1 || l.seen[0] != 42 {
		t.Errorf("listener saw %v, want [42]", l.seen)
	}
}

func TestBridge_SynthPanicIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	synth := &fakeSynth{panicOn: 0x91}
	b := NewBridge(synth, logger.NewZapLoggerWithCore(core))
	l := &listener{}
	b.AddListener(l)

	b.Dispatch([]contracts.MidiEvent{
		{Message: gomidi.NoteOn(1, 60, 100)},
		{Message: gomidi.NoteOn(0, 60, 100)},
	}, 0)

	if len(synth.messages) != 1 {
		t.Errorf("expected the second message to still be forwarded, got %d", len(synth.messages))
	}
	if len(l.seen) != 1 {
		t.Errorf("listener should only see the delivered message, saw %d", len(l.seen))
	}
	if logs.FilterMessage("Synthesizer failed to process message").Len() != 1 {
		t.Error("expected the panic to be logged")
	}
}
