package contracts

// RecordingState is the state of the recording lifecycle.
type RecordingState int

const (
	// RecordingIdle means no capture is bound.
	RecordingIdle RecordingState = iota
	// RecordingArmed means capture was requested and the stream is not ready yet.
	RecordingArmed
	// RecordingCapturing means the capture stream is live.
	RecordingCapturing
)

func (s RecordingState) String() string {
	switch s {
	case RecordingIdle:
		return "idle"
	case RecordingArmed:
		return "armed"
	case RecordingCapturing:
		return "capturing"
	default:
		return "unknown"
	}
}

// CaptureEventKind identifies a capture engine notification.
type CaptureEventKind int

const (
	CaptureStart CaptureEventKind = iota
	CaptureStop
	CapturePause
	CaptureResume
	CaptureStreamReady
	CaptureStreamError
	CaptureDataAvailable
)

func (k CaptureEventKind) String() string {
	switch k {
	case CaptureStart:
		return "start"
	case CaptureStop:
		return "stop"
	case CapturePause:
		return "pause"
	case CaptureResume:
		return "resume"
	case CaptureStreamReady:
		return "stream-ready"
	case CaptureStreamError:
		return "stream-error"
	case CaptureDataAvailable:
		return "data-available"
	default:
		return "unknown"
	}
}

// CaptureEvent is a notification from a capture engine.
// ErrorName is set for CaptureStreamError, Payload for CaptureDataAvailable.
type CaptureEvent struct {
	Kind      CaptureEventKind
	ErrorName string
	Payload   []byte
}

// CaptureEngine records the audio produced at an AudioNode.
type CaptureEngine interface {
	Init(source AudioNode) error
	Start() error
	Stop() error
	// Close stops a live capture and closes the event channel once every
	// queued notification has been delivered.
	Close() error
	Events() <-chan CaptureEvent
}
