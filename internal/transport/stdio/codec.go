// Package stdio carries host commands and notifications as newline-delimited
// JSON over a pair of streams.
package stdio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

var (
	// ErrUnknownCommand is returned for a command type the gateway does not handle.
	ErrUnknownCommand = errors.New("unknown command type")
	// ErrInvalidByte is returned when a message byte is outside 0-255.
	ErrInvalidByte = errors.New("message byte out of range")
)

type wireEvent struct {
	Message   []int   `json:"message"`
	Timestamp float64 `json:"timestamp"`
}

type wireBatch struct {
	Events    []wireEvent `json:"events"`
	Timestamp float64     `json:"timestamp"`
}

type wireSoundfont struct {
	Path string `json:"path"`
}

type wireCommand struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses one protocol line into a command.
func Decode(line []byte) (contracts.Command, error) {
	var wc wireCommand
	if err := json.Unmarshal(line, &wc); err != nil {
		return contracts.Command{}, err
	}

	cmd := contracts.Command{Kind: contracts.CommandKind(wc.Type)}
	switch cmd.Kind {
	case contracts.DeliverEventBatch:
		var wb wireBatch
		if err := unmarshalPayload(wc.Payload, &wb); err != nil {
			return contracts.Command{}, err
		}
		batch, err := toBatch(wb)
		if err != nil {
			return contracts.Command{}, err
		}
		cmd.Batch = batch
	case contracts.LoadSoundfont:
		var ws wireSoundfont
		if err := unmarshalPayload(wc.Payload, &ws); err != nil {
			return contracts.Command{}, err
		}
		cmd.Path = ws.Path
	case contracts.StartRecording, contracts.StopRecording:
	default:
		return contracts.Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, wc.Type)
	}
	return cmd, nil
}

func unmarshalPayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func toBatch(wb wireBatch) (contracts.EventBatch, error) {
	batch := contracts.EventBatch{
		Events:    make([]contracts.MidiEvent, 0, len(wb.Events)),
		Timestamp: contracts.Timestamp(wb.Timestamp),
	}
	for i, we := range wb.Events {
		msg := make([]byte, len(we.Message))
		for j, b := range we.Message {
			if b < 0 || b > 0xFF {
				return contracts.EventBatch{}, fmt.Errorf("%w: event %d byte %d is %d", ErrInvalidByte, i, j, b)
			}
			msg[j] = byte(b)
		}
		batch.Events = append(batch.Events, contracts.MidiEvent{
			Message:   msg,
			Timestamp: contracts.Timestamp(we.Timestamp),
		})
	}
	return batch, nil
}
