package synth

import (
	"testing"
	"time"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/zap/zapcore"
)

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewZapLoggerWithCore(zapcore.NewNopCore())))
	if err != nil {
		t.Fatal(err)
	}

	if opts.Clock == nil || opts.NewTicker == nil {
		t.Fatal("clock or ticker factory not defaulted")
	}
	if opts.TickInterval != 16*time.Millisecond {
		t.Errorf("TickInterval = %v", opts.TickInterval)
	}
	if opts.Backend != contracts.SoundFontBackend {
		t.Errorf("Backend = %q", opts.Backend)
	}
	if opts.SampleRate != 44100 || opts.Channels != 2 || opts.RecordingExtension != "wav" {
		t.Errorf("audio defaults = %d/%d/%q", opts.SampleRate, opts.Channels, opts.RecordingExtension)
	}
	if opts.CoreMIDIConfig == nil || opts.CoreMIDIConfig.ClientName != "GO MIDI Client" {
		t.Errorf("CoreMIDIConfig = %+v", opts.CoreMIDIConfig)
	}

	ticker := opts.NewTicker()
	defer ticker.Stop()
	if ticker.C() == nil {
		t.Error("default ticker has no channel")
	}
}

func TestApplyDefaultOptions_KeepsExplicitValues(t *testing.T) {
	opts, _ := applyDefaultOptions(
		contracts.WithLogger(logger.NewZapLoggerWithCore(zapcore.NewNopCore())),
		contracts.WithTickInterval(time.Millisecond),
		contracts.WithSampleRate(48000),
		contracts.WithChannels(1),
		contracts.WithRecordingExtension("webm"),
		contracts.WithBackend(contracts.DeviceBackend),
	)
	if opts.TickInterval != time.Millisecond || opts.SampleRate != 48000 || opts.Channels != 1 ||
		opts.RecordingExtension != "webm" || opts.Backend != contracts.DeviceBackend {
		t.Errorf("explicit values overwritten: %+v", opts)
	}
}
