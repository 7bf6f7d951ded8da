package synth

import (
	"fmt"
	"runtime"

	"github.com/leandrodaf/midisynth/internal/midi/mididarwin"
	"github.com/leandrodaf/midisynth/internal/midi/midirtmidi"
	"github.com/leandrodaf/midisynth/internal/midi/midiwindows"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// outputInitializers maps OS names to native MIDI output initializers.
var outputInitializers = map[string]func(*contracts.SessionOptions) (contracts.MIDIOutput, error){
	"darwin":  mididarwin.NewMIDIClient,  // macOS (Darwin) CoreMIDI output.
	"windows": midiwindows.NewMIDIClient, // Windows winmm output.
}

// NewOutput initializes a MIDI output for the current operating system.
// Platforms without a native client use the rtmidi driver.
func NewOutput(opts *contracts.SessionOptions) (contracts.MIDIOutput, error) {
	if initializer, exists := outputInitializers[runtime.GOOS]; exists {
		return initializer(opts)
	}
	return midirtmidi.NewMIDIClient(opts)
}

// openOutput creates the device backend's MIDI output.
var openOutput = NewOutput

// ListDevices returns the MIDI destinations the device backend can select.
func ListDevices(opts ...contracts.Option) ([]contracts.DeviceInfo, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	out, err := openOutput(&options)
	if err != nil {
		return nil, err
	}
	defer out.Stop()
	return out.ListDevices()
}

// selectOutput logs the available destinations and opens deviceID.
func selectOutput(out contracts.MIDIOutput, deviceID int, log contracts.Logger) error {
	devices, err := out.ListDevices()
	if err != nil {
		return fmt.Errorf("list MIDI destinations: %w", err)
	}
	for i, d := range devices {
		log.Debug("MIDI destination",
			log.Field().Int("id", i),
			log.Field().String("name", d.Name),
			log.Field().String("manufacturer", d.Manufacturer))
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return fmt.Errorf("%w: %d of %d", ErrDeviceNotFound, deviceID, len(devices))
	}
	if err := out.SelectDevice(deviceID); err != nil {
		return err
	}
	log.Info("MIDI destination selected",
		log.Field().Int("id", deviceID),
		log.Field().String("name", devices[deviceID].Name))
	return nil
}
