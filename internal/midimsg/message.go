// Package midimsg classifies raw MIDI messages for the scheduler.
package midimsg

import (
	"errors"
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// NoChannel is the channel reported for system messages.
const NoChannel = -1

const (
	statusControlChange = 0xB0
	controlAllSoundOff  = 0x78
)

// Validation errors.
var (
	ErrEmptyMessage      = errors.New("empty MIDI message")
	ErrMessageTooLong    = errors.New("MIDI message longer than 3 bytes")
	ErrMissingStatus     = errors.New("MIDI message does not start with a status byte")
	ErrInvalidDataByte   = errors.New("MIDI data byte out of range")
	ErrUnsupportedStatus = errors.New("unsupported MIDI status byte")
	ErrLengthMismatch    = errors.New("MIDI message length does not match its status")
)

// Channel returns the channel (0-15) of a channel message, or NoChannel for
// system messages.
func Channel(m []byte) int {
	if len(m) == 0 {
		return NoChannel
	}
	if m[0]&0xF0 == 0xF0 {
		return NoChannel
	}
	return int(m[0] & 0x0F)
}

// IsAllSoundOff reports whether m is a control change for control 0x78.
func IsAllSoundOff(m []byte) bool {
	if len(m) < 2 {
		return false
	}
	return m[0]&0xF0 == statusControlChange && m[1] == controlAllSoundOff
}

// ExpectedLength returns the fixed length implied by a status byte.
// ok is false for SysEx, undefined statuses and data bytes.
func ExpectedLength(status byte) (n int, ok bool) {
	if status < 0x80 {
		return 0, false
	}
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 3, true
	case 0xC0, 0xD0:
		return 2, true
	}
	switch status {
	case 0xF2:
		return 3, true
	case 0xF1, 0xF3:
		return 2, true
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1, true
	}
	return 0, false
}

// Validate checks that m is a complete short MIDI message.
func Validate(m []byte) error {
	if len(m) == 0 {
		return ErrEmptyMessage
	}
	if len(m) > 3 {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, len(m))
	}
	if m[0] < 0x80 {
		return fmt.Errorf("%w: 0x%02X", ErrMissingStatus, m[0])
	}
	want, ok := ExpectedLength(m[0])
	if !ok {
		return fmt.Errorf("%w: 0x%02X", ErrUnsupportedStatus, m[0])
	}
	if len(m) != want {
		return fmt.Errorf("%w: status 0x%02X wants %d bytes, got %d", ErrLengthMismatch, m[0], want, len(m))
	}
	for _, b := range m[1:] {
		if b >= 0x80 {
			return fmt.Errorf("%w: 0x%02X", ErrInvalidDataByte, b)
		}
	}
	return nil
}

// Describe renders m for logs.
func Describe(m []byte) string {
	if len(m) == 0 {
		return "<empty>"
	}
	return gomidi.Message(m).String()
}
