package contracts

// CommandKind names a host command.
type CommandKind string

const (
	DeliverEventBatch CommandKind = "deliver-event-batch"
	LoadSoundfont     CommandKind = "load-soundfont"
	StartRecording    CommandKind = "start-recording"
	StopRecording     CommandKind = "stop-recording"
)

// Command is a decoded host command. Batch is set for DeliverEventBatch and
// Path for LoadSoundfont.
type Command struct {
	Kind  CommandKind
	Batch EventBatch
	Path  string
}

// SynthReady is the notification type emitted once the session is initialized.
const SynthReady = "synth-ready"

// Notification is a message from the core to the host.
type Notification struct {
	Type string `json:"type"`
}

// Host is the process that drives the session.
type Host interface {
	Notify(n Notification) error
	AppDataPath() (string, error)
}
