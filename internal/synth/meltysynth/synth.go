// Package meltysynth renders MIDI messages in-process from a SoundFont.
package meltysynth

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// DefaultSampleRate is used until the synthesizer is connected to a node.
const DefaultSampleRate = 44100

var (
	ErrNilNode          = errors.New("meltysynth: nil audio node")
	ErrInvalidSoundFont = errors.New("meltysynth: invalid soundfont")
)

// Synthesizer adapts a meltysynth synthesizer to contracts.Synthesizer. It
// stays silent until instruments are loaded.
type Synthesizer struct {
	logger contracts.Logger

	mu         sync.Mutex
	sampleRate int
	synth      *meltysynth.Synthesizer
}

// New creates a synthesizer without instruments.
func New(logger contracts.Logger) *Synthesizer {
	return &Synthesizer{logger: logger, sampleRate: DefaultSampleRate}
}

// Connect makes the synthesizer the source of node. Instruments loaded
// afterwards render at the node's sample rate.
func (s *Synthesizer) Connect(node contracts.AudioNode) error {
	if node == nil {
		return ErrNilNode
	}
	s.mu.Lock()
	s.sampleRate = node.SampleRate()
	s.mu.Unlock()

	node.SetSource(s)
	return nil
}

// RefreshInstruments parses data as an SF2 file and swaps it in. The
// current instruments stay in place on error.
func (s *Synthesizer) RefreshInstruments(data []byte) error {
	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSoundFont, err)
	}

	s.mu.Lock()
	rate := s.sampleRate
	s.mu.Unlock()

	synth, err := meltysynth.NewSynthesizer(sf, meltysynth.NewSynthesizerSettings(int32(rate)))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSoundFont, err)
	}

	s.mu.Lock()
	s.synth = synth
	s.mu.Unlock()
	return nil
}

// Loaded reports whether instruments are available.
func (s *Synthesizer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.synth != nil
}

// ProcessMessage applies a channel message. System messages are ignored.
func (s *Synthesizer) ProcessMessage(msg []byte) {
	ch := midimsg.Channel(msg)
	if ch == midimsg.NoChannel || msg[0] < 0x80 {
		s.logger.Debug("Ignoring non-channel message", s.logger.Field().String("message", midimsg.Describe(msg)))
		return
	}
	var data1, data2 int32
	if len(msg) > 1 {
		data1 = int32(msg[1])
	}
	if len(msg) > 2 {
		data2 = int32(msg[2])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.synth == nil {
		return
	}
	s.synth.ProcessMidiMessage(int32(ch), int32(msg[0]&0xF0), data1, data2)
}

// Render implements contracts.AudioSource.
func (s *Synthesizer) Render(left, right []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synth == nil {
		clear(left)
		clear(right)
		return
	}
	s.synth.Render(left, right)
}
