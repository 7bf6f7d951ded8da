// Package config loads the synth session settings from a JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// AudioOutput selects how the output node is driven.
type AudioOutput string

const (
	AudioSpeaker AudioOutput = "speaker"
	AudioNone    AudioOutput = "none"
)

var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidBackend     = errors.New("invalid synth backend")
	ErrInvalidAudioOutput = errors.New("invalid audio output")
	ErrInvalidChannels    = errors.New("channels must be 1 or 2")
	ErrInvalidInterval    = errors.New("tick interval must be positive")
)

var logLevels = map[string]contracts.LogLevel{
	"info":  contracts.InfoLevel,
	"debug": contracts.DebugLevel,
	"warn":  contracts.WarnLevel,
	"error": contracts.ErrorLevel,
}

// Config is the on-disk configuration.
type Config struct {
	LogLevel           string                 `json:"logLevel,omitempty"`
	LogFile            string                 `json:"logFile,omitempty"`
	TickIntervalMs     int                    `json:"tickIntervalMs,omitempty"`
	SampleRate         int                    `json:"sampleRate,omitempty"`
	Channels           int                    `json:"channels,omitempty"`
	Backend            contracts.SynthBackend `json:"backend,omitempty"`
	DeviceID           int                    `json:"deviceId,omitempty"`
	SoundFont          string                 `json:"soundFont,omitempty"`
	RecordingDir       string                 `json:"recordingDir,omitempty"`
	RecordingExtension string                 `json:"recordingExtension,omitempty"`
	Journal            bool                   `json:"journal,omitempty"`
	AudioOutput        AudioOutput            `json:"audioOutput,omitempty"`
}

// Dir returns the directory holding config.json and, by default, recordings.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "midisynth"), nil
}

// DefaultPath returns the full path to config.json.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:           "info",
		TickIntervalMs:     16,
		SampleRate:         44100,
		Channels:           2,
		Backend:            contracts.SoundFontBackend,
		RecordingExtension: "wav",
		AudioOutput:        AudioSpeaker,
	}
}

// Load reads the config at path. An empty path or a missing file yields the
// defaults; keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric fields.
func (c *Config) Validate() error {
	if _, ok := logLevels[c.LogLevel]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	switch c.Backend {
	case contracts.SoundFontBackend, contracts.DeviceBackend:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	switch c.AudioOutput {
	case AudioSpeaker, AudioNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAudioOutput, c.AudioOutput)
	}
	if c.Channels != 1 && c.Channels != 2 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, c.Channels)
	}
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInterval, c.TickIntervalMs)
	}
	return nil
}

// Options converts the config into session options.
func (c *Config) Options() []contracts.Option {
	opts := []contracts.Option{
		contracts.WithLogLevel(logLevels[c.LogLevel]),
		contracts.WithTickInterval(time.Duration(c.TickIntervalMs) * time.Millisecond),
		contracts.WithSampleRate(c.SampleRate),
		contracts.WithChannels(c.Channels),
		contracts.WithBackend(c.Backend),
		contracts.WithDeviceID(c.DeviceID),
		contracts.WithRecordingExtension(c.RecordingExtension),
		contracts.WithJournal(c.Journal),
		contracts.WithHeadless(c.AudioOutput == AudioNone),
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	if c.SoundFont != "" {
		opts = append(opts, contracts.WithSoundFont(c.SoundFont))
	}
	if c.RecordingDir != "" {
		opts = append(opts, contracts.WithRecordingDir(c.RecordingDir))
	}
	return opts
}
