// Package midirtmidi sends MIDI through the rtmidi driver, used on platforms
// without a native client.
package midirtmidi

import (
	"errors"
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI output ports found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	ErrNoDeviceSelected  = errors.New("no MIDI device selected")
)

// ClientMid sends messages to one rtmidi output port.
type ClientMid struct {
	logger contracts.Logger
	outs   func() ([]drivers.Out, error)
	close  func() error

	mu       sync.Mutex
	port     drivers.Out
	send     func(gomidi.Message) error
	stopOnce sync.Once
}

// NewMIDIClient opens the rtmidi driver.
func NewMIDIClient(options *contracts.SessionOptions) (contracts.MIDIOutput, error) {
	drv, err := newDriver()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	options.Logger.Info("MIDI client created using rtmidi")
	return &ClientMid{
		logger: options.Logger,
		outs:   drv.Outs,
		close:  drv.Close,
	}, nil
}

// ListDevices lists the output ports known to the driver.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	outs, err := m.outs()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI outputs: %w", err)
	}
	if len(outs) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		devices[i] = contracts.DeviceInfo{
			Name:       out.String(),
			EntityName: out.String(),
		}
	}
	return devices, nil
}

// SelectDevice opens the output port at deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	outs, err := m.outs()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI outputs: %w", err)
	}
	if deviceID < 0 || deviceID >= len(outs) {
		m.logger.Error(ErrInvalidMIDIDevice.Error())
		return ErrInvalidMIDIDevice
	}

	if m.port != nil {
		if err := m.port.Close(); err != nil {
			m.logger.Warn("Failed to close previous MIDI port", m.logger.Field().Error("error", err))
		}
		m.port, m.send = nil, nil
	}

	port := outs[deviceID]
	send, err := gomidi.SendTo(port)
	if err != nil {
		return fmt.Errorf("open %s: %w", port.String(), err)
	}
	m.port, m.send = port, send

	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", port.String()))
	return nil
}

// Send writes msg to the selected port.
func (m *ClientMid) Send(msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.send == nil {
		return ErrNoDeviceSelected
	}
	return m.send(gomidi.Message(msg))
}

// Stop closes the port and the driver. Only the first call has an effect.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.port != nil {
			err = m.port.Close()
			m.port, m.send = nil, nil
		}
		if m.close != nil {
			err = errors.Join(err, m.close())
		}
		m.logger.Info("MIDI output stopped")
	})
	return err
}
