// Package device forwards MIDI messages to a hardware synthesizer.
package device

import (
	"errors"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// ErrInstrumentsUnsupported is returned when a soundfont is loaded into a
// hardware synthesizer.
var ErrInstrumentsUnsupported = errors.New("device: instruments are selected on the hardware")

// Synthesizer sends every message to a MIDI output.
type Synthesizer struct {
	out    contracts.MIDIOutput
	logger contracts.Logger
}

// New creates a synthesizer over out. The output must already have a
// device selected.
func New(out contracts.MIDIOutput, logger contracts.Logger) *Synthesizer {
	return &Synthesizer{out: out, logger: logger}
}

// Connect does nothing; the hardware produces the audio.
func (s *Synthesizer) Connect(contracts.AudioNode) error {
	return nil
}

func (s *Synthesizer) RefreshInstruments([]byte) error {
	return ErrInstrumentsUnsupported
}

func (s *Synthesizer) ProcessMessage(msg []byte) {
	if err := s.out.Send(msg); err != nil {
		s.logger.Warn("Failed to send MIDI message",
			s.logger.Field().String("message", midimsg.Describe(msg)),
			s.logger.Field().Error("error", err))
	}
}

// Close releases the output.
func (s *Synthesizer) Close() error {
	return s.out.Stop()
}
