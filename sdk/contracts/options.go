package contracts

import "time"

// SynthBackend selects the synthesizer a session drives.
type SynthBackend string

const (
	// SoundFontBackend renders audio in-process from a SoundFont.
	SoundFontBackend SynthBackend = "soundfont"
	// DeviceBackend forwards messages to a hardware MIDI output.
	DeviceBackend SynthBackend = "device"
)

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// SessionOptions defines the configuration options for a synth session.
type SessionOptions struct {
	Logger      Logger   // Logger for logging events and errors.
	LogLevel    LogLevel // Level of logging to use.
	LogFilePath string   // File path for logging if file logging is enabled.

	Clock        Clock         // Local clock; defaults to a monotonic clock.
	NewTicker    func() Ticker // Builds the scheduler ticker; defaults to TickInterval.
	TickInterval time.Duration // Scheduler period when NewTicker is nil.

	Backend        SynthBackend    // Synthesizer used when Synthesizer is nil.
	Synthesizer    Synthesizer     // Injected synthesizer, overrides Backend.
	DeviceID       int             // Output destination index for DeviceBackend.
	CoreMIDIConfig *CoreMIDIConfig // Configuration specific to CoreMIDI.
	SoundFontPath  string          // SoundFont loaded when the session starts.

	SampleRate int  // Output node sample rate.
	Headless   bool // Drive the output node with a pump instead of the speaker.

	CaptureEngine      CaptureEngine // Injected capture engine.
	Channels           int           // Capture channel count.
	RecordingDir       string        // Overrides the host's application-data path.
	RecordingExtension string        // Extension of recorded audio files.
	Journal            bool          // Also write an SMF journal of dispatched messages.
}

// Option is a function that modifies SessionOptions.
type Option func(*SessionOptions)

// WithLogger sets the logger for the session.
func WithLogger(l Logger) Option {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the session.
func WithLogLevel(level LogLevel) Option {
	return func(opts *SessionOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile directs logs to the given file.
func WithLogFile(path string) Option {
	return func(opts *SessionOptions) {
		opts.LogFilePath = path
	}
}

// WithClock sets the local clock.
func WithClock(c Clock) Option {
	return func(opts *SessionOptions) {
		opts.Clock = c
	}
}

// WithTicker sets the factory for the scheduler ticker.
func WithTicker(newTicker func() Ticker) Option {
	return func(opts *SessionOptions) {
		opts.NewTicker = newTicker
	}
}

// WithTickInterval sets the scheduler period.
func WithTickInterval(d time.Duration) Option {
	return func(opts *SessionOptions) {
		opts.TickInterval = d
	}
}

// WithBackend selects the synthesizer backend.
func WithBackend(b SynthBackend) Option {
	return func(opts *SessionOptions) {
		opts.Backend = b
	}
}

// WithSynthesizer injects a synthesizer.
func WithSynthesizer(s Synthesizer) Option {
	return func(opts *SessionOptions) {
		opts.Synthesizer = s
	}
}

// WithDeviceID selects the MIDI output destination for the device backend.
func WithDeviceID(id int) Option {
	return func(opts *SessionOptions) {
		opts.DeviceID = id
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *SessionOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithSoundFont loads the given SoundFont when the session starts.
func WithSoundFont(path string) Option {
	return func(opts *SessionOptions) {
		opts.SoundFontPath = path
	}
}

// WithSampleRate sets the output node sample rate.
func WithSampleRate(rate int) Option {
	return func(opts *SessionOptions) {
		opts.SampleRate = rate
	}
}

// WithHeadless disables the speaker.
func WithHeadless(headless bool) Option {
	return func(opts *SessionOptions) {
		opts.Headless = headless
	}
}

// WithCaptureEngine injects a capture engine.
func WithCaptureEngine(e CaptureEngine) Option {
	return func(opts *SessionOptions) {
		opts.CaptureEngine = e
	}
}

// WithChannels sets the capture channel count.
func WithChannels(n int) Option {
	return func(opts *SessionOptions) {
		opts.Channels = n
	}
}

// WithRecordingDir sets where recordings are written.
func WithRecordingDir(dir string) Option {
	return func(opts *SessionOptions) {
		opts.RecordingDir = dir
	}
}

// WithRecordingExtension sets the extension of recorded audio files.
func WithRecordingExtension(ext string) Option {
	return func(opts *SessionOptions) {
		opts.RecordingExtension = ext
	}
}

// WithJournal enables the SMF journal of dispatched messages.
func WithJournal(enabled bool) Option {
	return func(opts *SessionOptions) {
		opts.Journal = enabled
	}
}
