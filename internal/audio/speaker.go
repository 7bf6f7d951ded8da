package audio

import "errors"

// ErrNoSpeaker is returned when the binary was built without an audio device
// backend.
var ErrNoSpeaker = errors.New("audio: speaker output not available")

// Driver pulls audio from a node.
type Driver interface {
	Start()
	Close() error
}
