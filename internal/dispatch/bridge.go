// Package dispatch forwards due MIDI events to the synthesizer.
package dispatch

import (
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Bridge hands raw messages to a synthesizer. It keeps no state about the
// events it forwards and never retries.
type Bridge struct {
	synth  contracts.Synthesizer
	logger contracts.Logger

	mu        sync.RWMutex
	listeners []contracts.DispatchListener
}

// NewBridge creates a bridge to synth.
func NewBridge(synth contracts.Synthesizer, logger contracts.Logger) *Bridge {
	return &Bridge{synth: synth, logger: logger}
}

// AddListener registers l to observe forwarded messages.
func (b *Bridge) AddListener(l contracts.DispatchListener) {
	b.mu.Lock()
	b.listeners = append(b.listeners, l)
	b.mu.Unlock()
}

// Dispatch forwards events in order. at is the local time of the tick.
func (b *Bridge) Dispatch(events []contracts.MidiEvent, at contracts.Timestamp) {
	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()

	for _, ev := range events {
		if !b.forward(ev.Message) {
			continue
		}
		for _, l := range listeners {
			l.OnDispatch(ev.Message, at)
		}
	}
}

// forward reports false when the synthesizer panicked on msg.
func (b *Bridge) forward(msg []byte) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Synthesizer failed to process message",
				b.logger.Field().String("message", midimsg.Describe(msg)),
				b.logger.Field().Error("error", fmt.Errorf("panic: %v", r)))
			ok = false
		}
	}()

	b.logger.Debug("Dispatching MIDI message", b.logger.Field().String("message", midimsg.Describe(msg)))
	b.synth.ProcessMessage(msg)
	return true
}
