package synth

import (
	"time"

	"github.com/leandrodaf/midisynth/internal/clock"
	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const (
	defaultTickInterval       = 16 * time.Millisecond
	defaultSampleRate         = 44100
	defaultChannels           = 2
	defaultRecordingExtension = "wav"
)

// applyDefaultOptions sets default values for SessionOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify SessionOptions.
//
// Returns:
//   - contracts.SessionOptions: The finalized session options with defaults applied.
//   - error: An error if there was an issue applying the options.
func applyDefaultOptions(opts ...contracts.Option) (contracts.SessionOptions, error) {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Set defaults if options are not provided
	if options.Logger == nil {
		options.Logger = logger.NewZapLogger() // Default to a JSON logger on stderr
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.LogFilePath != "" {
		options.Logger.SetDestination(contracts.FileLog, options.LogFilePath)
	}

	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "GO MIDI Client"} // Default CoreMIDI config
	}
	if options.Clock == nil {
		options.Clock = clock.NewMonotonic()
	}
	if options.TickInterval <= 0 {
		options.TickInterval = defaultTickInterval
	}
	if options.NewTicker == nil {
		interval := options.TickInterval
		options.NewTicker = func() contracts.Ticker { return clock.NewIntervalTicker(interval) }
	}
	if options.Backend == "" {
		options.Backend = contracts.SoundFontBackend
	}
	if options.SampleRate <= 0 {
		options.SampleRate = defaultSampleRate
	}
	if options.Channels == 0 {
		options.Channels = defaultChannels
	}
	if options.RecordingExtension == "" {
		options.RecordingExtension = defaultRecordingExtension
	}

	options.Logger.SetLevel(options.LogLevel) // Set the logger to the specified log level
	return *options, nil
}
