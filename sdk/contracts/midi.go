package contracts

// Timestamp is a point in time expressed in milliseconds. Origin-clock and
// local-clock values share this unit.
type Timestamp float64

// MidiEvent is a single MIDI message stamped with origin-clock time.
// Message holds 1 to 3 bytes and must not be modified after creation.
type MidiEvent struct {
	Message   []byte
	Timestamp Timestamp
}

// EventBatch is a group of events delivered atomically by the host.
// Timestamp is the origin-clock time at which the host sent the batch.
type EventBatch struct {
	Events    []MidiEvent
	Timestamp Timestamp
}

// Synthesizer is the downstream sound engine the scheduler feeds.
type Synthesizer interface {
	Connect(node AudioNode) error             // Routes the synthesizer's audio into node.
	RefreshInstruments(soundfont []byte) error // Replaces the active instrument set.
	ProcessMessage(message []byte)            // Handles one raw MIDI message.
}

// DispatchListener observes messages after they were handed to the synthesizer.
type DispatchListener interface {
	OnDispatch(message []byte, at Timestamp)
}

// MIDIOutput defines an interface for hardware MIDI output clients.
type MIDIOutput interface {
	Stop() error                        // Closes the selected destination and releases resources.
	ListDevices() ([]DeviceInfo, error) // Lists all available MIDI destinations.
	SelectDevice(deviceID int) error    // Opens a destination by its index.
	Send(message []byte) error          // Sends one raw MIDI message to the selected destination.
}
