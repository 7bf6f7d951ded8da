package meltysynth

import (
	"errors"
	"testing"

	"github.com/leandrodaf/midisynth/internal/audio"
	"github.com/leandrodaf/midisynth/internal/logger"
	"go.uber.org/zap/zapcore"
)

func newSynth() *Synthesizer {
	return New(logger.NewZapLoggerWithCore(zapcore.NewNopCore()))
}

func TestConnect(t *testing.T) {
	s := newSynth()
	if err := s.Connect(nil); !errors.Is(err, ErrNilNode) {
		t.Errorf("Connect(nil) = %v", err)
	}

	node := audio.NewNode(48000)
	if err := s.Connect(node); err != nil {
		t.Fatal(err)
	}
	if !node.HasSource() {
		t.Error("node has no source after Connect")
	}
	if s.sampleRate != 48000 {
		t.Errorf("sampleRate = %d", s.sampleRate)
	}
}

func TestRefreshInstruments_InvalidKeepsState(t *testing.T) {
	s := newSynth()
	for _, data := range [][]byte{nil, []byte("RIFF....sfbk"), []byte("not a soundfont")} {
		if err := s.RefreshInstruments(data); !errors.Is(err, ErrInvalidSoundFont) {
			t.Errorf("RefreshInstruments(%q) = %v", data, err)
		}
	}
	if s.Loaded() {
		t.Error("Loaded = true after failed refreshes")
	}
}

func TestUnloaded_SilentAndTolerant(t *testing.T) {
	s := newSynth()
	s.ProcessMessage([]byte{0x90, 60, 100})
	s.ProcessMessage([]byte{0xF8})
	s.ProcessMessage(nil)

	left := []float32{1, 1, 1}
	right := []float32{1, 1, 1}
	s.Render(left, right)
	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("frame %d = (%v, %v), want silence", i, left[i], right[i])
		}
	}
}
