// Package recording drives the capture of the synthesizer's audio output and
// persists what the capture engine produces.
package recording

import (
	"context"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Manager runs the Idle -> Armed -> Capturing -> Idle lifecycle.
type Manager struct {
	engine  contracts.CaptureEngine
	node    contracts.AudioNode
	store   *Store
	journal *Journal
	logger  contracts.Logger

	mu    sync.Mutex
	state contracts.RecordingState
}

// NewManager creates a manager capturing node through engine.
func NewManager(engine contracts.CaptureEngine, node contracts.AudioNode, store *Store, logger contracts.Logger) *Manager {
	return &Manager{
		engine: engine,
		node:   node,
		store:  store,
		logger: logger,
		state:  contracts.RecordingIdle,
	}
}

// SetJournal enables writing an SMF journal for each recording.
func (m *Manager) SetJournal(j *Journal) {
	m.mu.Lock()
	m.journal = j
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Manager) State() contracts.RecordingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start binds the output node to the capture engine and arms the session.
// It does nothing unless the manager is idle.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != contracts.RecordingIdle {
		m.logger.Debug("Ignoring start request", m.logger.Field().String("state", m.state.String()))
		return
	}
	if err := m.engine.Init(m.node); err != nil {
		m.logger.Error("Failed to bind capture source", m.logger.Field().Error("error", err))
		return
	}
	if err := m.engine.Start(); err != nil {
		m.logger.Error("Failed to start capture", m.logger.Field().Error("error", err))
		return
	}

	m.state = contracts.RecordingArmed
	if m.journal != nil {
		m.journal.Begin()
	}
	m.logger.Info("Recording armed")
}

// Stop requests capture termination. It does nothing when idle.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == contracts.RecordingIdle {
		m.logger.Debug("Ignoring stop request while idle")
		return
	}
	if err := m.engine.Stop(); err != nil {
		m.logger.Error("Failed to stop capture", m.logger.Field().Error("error", err))
	}
	m.state = contracts.RecordingIdle
	m.logger.Info("Recording stopped")

	if m.journal != nil {
		path, err := m.journal.End()
		if err != nil {
			m.logger.Error("Failed to save MIDI journal", m.logger.Field().Error("error", err))
		} else if path != "" {
			m.logger.Info("MIDI journal saved", m.logger.Field().String("path", path))
		}
	}
}

// Close stops a live recording and shuts the capture engine down.
func (m *Manager) Close() {
	m.Stop()
	if err := m.engine.Close(); err != nil {
		m.logger.Error("Failed to close capture engine", m.logger.Field().Error("error", err))
	}
}

// Listen handles capture notifications until ctx ends or the engine closes
// its event channel.
func (m *Manager) Listen(ctx context.Context) {
	events := m.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Handle(ev)
		}
	}
}

// Drain handles the remaining notifications until the engine closes its
// event channel. It must only be called after Close.
func (m *Manager) Drain() {
	for ev := range m.engine.Events() {
		m.Handle(ev)
	}
}

// Handle processes one capture notification.
func (m *Manager) Handle(ev contracts.CaptureEvent) {
	switch ev.Kind {
	case contracts.CaptureStart:
		m.logger.Info("Recorder is started")
	case contracts.CaptureStop:
		m.logger.Info("Recorder is stopped")
	case contracts.CapturePause:
		m.logger.Info("Recorder is paused")
	case contracts.CaptureResume:
		m.logger.Info("Recorder is resuming")
	case contracts.CaptureStreamReady:
		m.logger.Info("Audio stream is ready")
		m.mu.Lock()
		if m.state == contracts.RecordingArmed {
			m.state = contracts.RecordingCapturing
		}
		m.mu.Unlock()
	case contracts.CaptureStreamError:
		m.logger.Error("Capture stream error", m.logger.Field().String("error", ev.ErrorName))
	case contracts.CaptureDataAvailable:
		m.persist(ev.Payload)
	default:
		m.logger.Warn("Unknown capture event", m.logger.Field().Int("kind", int(ev.Kind)))
	}
}

func (m *Manager) persist(payload []byte) {
	path, err := m.store.Save(payload)
	if err != nil {
		m.logger.Error("Failed to save recording",
			m.logger.Field().Int("bytes", len(payload)),
			m.logger.Field().Error("error", err))
		return
	}
	m.logger.Info("Recording saved",
		m.logger.Field().String("path", path),
		m.logger.Field().Int("bytes", len(payload)))
}
