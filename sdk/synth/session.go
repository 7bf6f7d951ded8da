// Package synth assembles a synth session: the scheduler, the dispatch
// bridge, the synthesizer, the recorder and the host gateway.
package synth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/audio"
	"github.com/leandrodaf/midisynth/internal/capture/wav"
	"github.com/leandrodaf/midisynth/internal/dispatch"
	"github.com/leandrodaf/midisynth/internal/gateway"
	"github.com/leandrodaf/midisynth/internal/recording"
	"github.com/leandrodaf/midisynth/internal/scheduler"
	"github.com/leandrodaf/midisynth/internal/synth/device"
	"github.com/leandrodaf/midisynth/internal/synth/meltysynth"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

var (
	ErrNilHost        = errors.New("synth: nil host")
	ErrUnknownBackend = errors.New("synth: unknown backend")
	ErrAlreadyStarted = errors.New("synth: session already started")
	ErrClosed         = errors.New("synth: session closed")
	ErrDeviceNotFound = errors.New("synth: MIDI destination not found")
)

// Session owns every component of a running synthesizer.
type Session struct {
	options contracts.SessionOptions
	logger  contracts.Logger
	host    contracts.Host

	node      *audio.Node
	synth     contracts.Synthesizer
	closer    func() error
	intake    *scheduler.Intake
	scheduler *scheduler.Scheduler
	bridge    *dispatch.Bridge
	recorder  *recording.Manager
	gateway   *gateway.Gateway

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	driver  audio.Driver
	wg      sync.WaitGroup
}

// NewSession builds a session that reports to host.
func NewSession(host contracts.Host, opts ...contracts.Option) (*Session, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}
	log := options.Logger

	s := &Session{
		options: options,
		logger:  log,
		host:    host,
		node:    audio.NewNode(options.SampleRate),
	}

	if err := s.buildSynth(); err != nil {
		return nil, err
	}
	if err := s.synth.Connect(s.node); err != nil {
		s.release()
		return nil, fmt.Errorf("connect synthesizer: %w", err)
	}

	engine := options.CaptureEngine
	if engine == nil {
		if engine, err = wav.NewEngine(options.Channels, log); err != nil {
			s.release()
			return nil, err
		}
	}

	s.intake = scheduler.NewIntake(options.Clock, log)
	s.bridge = dispatch.NewBridge(s.synth, log)
	s.scheduler = scheduler.New(options.Clock, s.intake, s.bridge, log)

	store := recording.NewStore(s.recordingDir, options.RecordingExtension)
	s.recorder = recording.NewManager(engine, s.node, store, log)
	if options.Journal {
		journal := recording.NewJournal(store, options.Clock)
		s.recorder.SetJournal(journal)
		s.bridge.AddListener(journal)
	}

	s.gateway = gateway.New(s.intake, s.recorder, s.synth, host, log)
	return s, nil
}

func (s *Session) buildSynth() error {
	if s.options.Synthesizer != nil {
		s.synth = s.options.Synthesizer
		return nil
	}

	switch s.options.Backend {
	case contracts.SoundFontBackend:
		s.synth = meltysynth.New(s.logger)
	case contracts.DeviceBackend:
		out, err := openOutput(&s.options)
		if err != nil {
			return err
		}
		if err := selectOutput(out, s.options.DeviceID, s.logger); err != nil {
			out.Stop()
			return err
		}
		dev := device.New(out, s.logger)
		s.synth = dev
		s.closer = dev.Close
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, s.options.Backend)
	}
	return nil
}

func (s *Session) recordingDir() (string, error) {
	if s.options.RecordingDir != "" {
		return s.options.RecordingDir, nil
	}
	return s.host.AppDataPath()
}

// Start runs the scheduler and the recorder, starts audio output, reports
// readiness to the host and loads the configured soundfont.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := s.scheduler.Start(runCtx, s.options.NewTicker()); err != nil {
		cancel()
		return err
	}
	s.cancel = cancel
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.recorder.Listen(runCtx)
	}()

	s.driver = s.newDriver()
	s.driver.Start()

	s.gateway.Init()
	if s.options.SoundFontPath != "" {
		s.gateway.LoadSoundfont(s.options.SoundFontPath)
	}

	s.logger.Info("Session started",
		s.logger.Field().String("backend", string(s.options.Backend)),
		s.logger.Field().Int("sampleRate", s.options.SampleRate))
	return nil
}

func (s *Session) newDriver() audio.Driver {
	if !s.options.Headless {
		speaker, err := audio.NewSpeaker(s.node)
		if err == nil {
			return speaker
		}
		s.logger.Warn("Speaker unavailable, rendering without audio output", s.logger.Field().Error("error", err))
	}
	return audio.NewPump(s.node, audio.DefaultPumpInterval)
}

// Handle executes a host command. Commands arriving after Close are dropped.
func (s *Session) Handle(cmd contracts.Command) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		s.logger.Debug("Session closed, dropping host command",
			s.logger.Field().String("kind", string(cmd.Kind)))
		return
	}
	s.gateway.Handle(cmd)
}

// RecordingState returns the recorder's lifecycle state.
func (s *Session) RecordingState() contracts.RecordingState {
	return s.recorder.State()
}

// Pending returns the number of buffered events.
func (s *Session) Pending() int {
	return s.scheduler.Pending()
}

// Node returns the audio output node.
func (s *Session) Node() *audio.Node {
	return s.node
}

// Close stops every component. A recording in progress is stopped and
// saved. Calling Close more than once is safe.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cancel, driver := s.cancel, s.driver
	s.mu.Unlock()

	s.scheduler.Stop()
	s.recorder.Close()
	s.wg.Wait()
	s.recorder.Drain()
	if cancel != nil {
		cancel()
	}
	s.gateway.Wait()

	var err error
	if driver != nil {
		err = driver.Close()
	}
	err = errors.Join(err, s.release())

	s.logger.Info("Session closed")
	return err
}

func (s *Session) release() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
