package midiwindows

import (
	"errors"
	"fmt"
)

// ErrNotShortMessage is returned for messages midiOutShortMsg cannot carry.
var ErrNotShortMessage = errors.New("not a short MIDI message")

// packShortMessage packs a channel or single-byte system message into the
// DWORD layout expected by midiOutShortMsg: status in the low byte, then the
// data bytes.
func packShortMessage(msg []byte) (uint32, error) {
	if len(msg) == 0 || len(msg) > 3 || msg[0] < 0x80 || msg[0] == 0xF0 {
		return 0, fmt.Errorf("%w: % X", ErrNotShortMessage, msg)
	}
	var packed uint32
	for i, b := range msg {
		packed |= uint32(b) << (8 * i)
	}
	return packed, nil
}
