// Package wav captures an audio node into a 16-bit PCM WAV payload.
package wav

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const (
	eventBufferSize = 16
	bitsPerSample   = 16
	pcmFormat       = 1
	headerSize      = 44

	// flushSamples is how many samples are buffered before they are encoded.
	flushSamples = 8192
	// maxFileSize is the largest file a RIFF header can describe.
	maxFileSize = math.MaxUint32

	// Error names carried by stream-error events.
	ErrorNameNotFound = "NotFoundError"
	ErrorNameInvalid  = "InvalidStateError"
	ErrorNameUnknown  = "UnknownError"
)

var (
	ErrInvalidChannels = errors.New("wav: channels must be 1 or 2")
	ErrNoNode          = errors.New("wav: no audio node")
	ErrNotInitialized  = errors.New("wav: engine not initialized")
	ErrNoSource        = errors.New("wav: audio node has no source")
	ErrCapturing       = errors.New("wav: capture already running")
	ErrClosed          = errors.New("wav: engine closed")
)

type sourceReporter interface {
	HasSource() bool
}

// Engine records the frames rendered at a node into a temporary WAV file and
// emits its content as a data-available event when stopped.
type Engine struct {
	channels int
	logger   contracts.Logger
	events   chan contracts.CaptureEvent

	mu        sync.Mutex
	node      contracts.AudioNode
	detach    func()
	capturing bool
	paused    bool
	full      bool
	file      *os.File
	encoder   *gowav.Encoder
	pending   []int
	written   int64

	qmu        sync.Mutex
	queue      []contracts.CaptureEvent
	forwarding bool
	closed     bool
}

// NewEngine creates a capture engine writing channels-channel audio.
func NewEngine(channels int, logger contracts.Logger) (*Engine, error) {
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChannels, channels)
	}
	return &Engine{
		channels: channels,
		logger:   logger,
		events:   make(chan contracts.CaptureEvent, eventBufferSize),
	}, nil
}

// Events returns the notification channel. It is closed by Close once every
// queued notification has been delivered.
func (e *Engine) Events() <-chan contracts.CaptureEvent {
	return e.events
}

// Init binds the engine to node.
func (e *Engine) Init(node contracts.AudioNode) error {
	if node == nil {
		return ErrNoNode
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capturing {
		return ErrCapturing
	}
	e.node = node
	return nil
}

// Start opens a new capture file and attaches to the node.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.isClosed() {
		return ErrClosed
	}
	if e.node == nil {
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStreamError, ErrorName: ErrorNameInvalid})
		return ErrNotInitialized
	}
	if e.capturing {
		return ErrCapturing
	}
	if r, ok := e.node.(sourceReporter); ok && !r.HasSource() {
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStreamError, ErrorName: ErrorNameNotFound})
		return ErrNoSource
	}

	if err := e.open(); err != nil {
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStreamError, ErrorName: ErrorNameUnknown})
		return err
	}
	e.capturing = true
	e.paused = false
	e.full = false
	e.detach = e.node.Attach(e)

	e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStart})
	e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStreamReady})
	return nil
}

// Pause suspends sample accumulation.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capturing && !e.paused {
		e.paused = true
		e.emit(contracts.CaptureEvent{Kind: contracts.CapturePause})
	}
}

// Resume continues a paused capture.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.capturing && e.paused {
		e.paused = false
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureResume})
	}
}

// Stop detaches from the node and emits the encoded recording. It does
// nothing when no capture is running.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.capturing {
		return nil
	}
	e.detach()
	e.detach = nil
	e.capturing = false

	payload, err := e.finish()
	if err != nil {
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStreamError, ErrorName: ErrorNameUnknown})
		e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStop})
		return err
	}
	e.emit(contracts.CaptureEvent{Kind: contracts.CaptureDataAvailable, Payload: payload})
	e.emit(contracts.CaptureEvent{Kind: contracts.CaptureStop})
	return nil
}

// Close stops a running capture and closes the event channel after the
// queued notifications are delivered.
func (e *Engine) Close() error {
	err := e.Stop()

	e.qmu.Lock()
	defer e.qmu.Unlock()
	if e.closed {
		return err
	}
	e.closed = true
	if !e.forwarding {
		close(e.events)
	}
	return err
}

// WriteFrames implements contracts.AudioTap.
func (e *Engine) WriteFrames(left, right []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.capturing || e.paused || e.full {
		return
	}
	for i := range left {
		if e.channels == 1 {
			e.pending = append(e.pending, toPCM((left[i]+right[i])/2))
			continue
		}
		e.pending = append(e.pending, toPCM(left[i]), toPCM(right[i]))
	}
	if len(e.pending) >= flushSamples {
		if err := e.flush(); err != nil {
			e.logger.Error("Failed to write capture file", e.logger.Field().Error("error", err))
		}
	}
}

func (e *Engine) open() error {
	file, err := os.CreateTemp("", "capture-*.wav")
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	enc := gowav.NewEncoder(file, e.node.SampleRate(), bitsPerSample, e.channels, pcmFormat)
	// An empty write lays down the header so a silent capture is still a valid file.
	if err := enc.Write(e.buffer(nil)); err != nil {
		file.Close()
		os.Remove(file.Name())
		return fmt.Errorf("write capture header: %w", err)
	}
	e.file = file
	e.encoder = enc
	e.pending = e.pending[:0]
	e.written = headerSize
	return nil
}

func (e *Engine) flush() error {
	if len(e.pending) == 0 {
		return nil
	}
	samples := e.pending
	room := (maxFileSize - e.written) / (bitsPerSample / 8)
	if int64(len(samples)) > room {
		samples = samples[:room-room%int64(e.channels)]
		e.full = true
		e.logger.Warn("Capture reached the WAV size limit, dropping further audio")
	}
	e.pending = e.pending[:0]
	if len(samples) == 0 {
		return nil
	}
	if err := e.encoder.Write(e.buffer(samples)); err != nil {
		return err
	}
	e.written += int64(len(samples)) * (bitsPerSample / 8)
	return nil
}

func (e *Engine) finish() ([]byte, error) {
	file := e.file
	defer func() {
		file.Close()
		os.Remove(file.Name())
	}()

	err := e.flush()
	if err == nil {
		err = e.encoder.Close()
	}
	e.file, e.encoder = nil, nil
	if err != nil {
		return nil, fmt.Errorf("finalize capture file: %w", err)
	}
	payload, err := os.ReadFile(file.Name())
	if err != nil {
		return nil, fmt.Errorf("read capture file: %w", err)
	}
	return payload, nil
}

func (e *Engine) buffer(samples []int) *goaudio.IntBuffer {
	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: e.channels, SampleRate: e.node.SampleRate()},
		Data:           samples,
		SourceBitDepth: bitsPerSample,
	}
}

// emit queues ev for delivery in order. Data-available events are never
// dropped; other notifications are dropped once the backlog is full.
func (e *Engine) emit(ev contracts.CaptureEvent) {
	e.qmu.Lock()
	defer e.qmu.Unlock()

	if e.closed {
		e.logger.Debug("Capture engine closed, discarding event",
			e.logger.Field().String("event", ev.Kind.String()))
		return
	}
	if ev.Kind != contracts.CaptureDataAvailable && len(e.queue) >= eventBufferSize {
		e.logger.Warn("Capture event backlog full, dropping event",
			e.logger.Field().String("event", ev.Kind.String()))
		return
	}
	e.queue = append(e.queue, ev)
	if !e.forwarding {
		e.forwarding = true
		go e.forward()
	}
}

func (e *Engine) forward() {
	for {
		e.qmu.Lock()
		if len(e.queue) == 0 {
			e.forwarding = false
			if e.closed {
				close(e.events)
			}
			e.qmu.Unlock()
			return
		}
		ev := e.queue[0]
		e.queue[0] = contracts.CaptureEvent{}
		e.queue = e.queue[1:]
		e.qmu.Unlock()

		e.events <- ev
	}
}

func (e *Engine) isClosed() bool {
	e.qmu.Lock()
	defer e.qmu.Unlock()
	return e.closed
}

func toPCM(s float32) int {
	switch {
	case s >= 1:
		return 32767
	case s <= -1:
		return -32768
	default:
		return int(s * 32767)
	}
}
