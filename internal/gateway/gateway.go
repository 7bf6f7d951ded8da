// Package gateway routes host commands to the session components.
package gateway

import (
	"os"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// Ingester accepts event batches.
type Ingester interface {
	Ingest(batch contracts.EventBatch) int
}

// Recorder controls the recording lifecycle.
type Recorder interface {
	Start()
	Stop()
}

// Gateway is the fire-and-forget boundary between the host and the core:
// nothing it handles reports an error back to the host.
type Gateway struct {
	intake   Ingester
	recorder Recorder
	synth    contracts.Synthesizer
	host     contracts.Host
	logger   contracts.Logger
	readFile func(name string) ([]byte, error)

	ready sync.Once
	loads sync.WaitGroup
}

// New creates a gateway.
func New(intake Ingester, recorder Recorder, synth contracts.Synthesizer, host contracts.Host, logger contracts.Logger) *Gateway {
	return &Gateway{
		intake:   intake,
		recorder: recorder,
		synth:    synth,
		host:     host,
		logger:   logger,
		readFile: os.ReadFile,
	}
}

// Init notifies the host that the synthesizer is ready. Only the first call
// has an effect.
func (g *Gateway) Init() {
	g.ready.Do(func() {
		if err := g.host.Notify(contracts.Notification{Type: contracts.SynthReady}); err != nil {
			g.logger.Error("Failed to notify host", g.logger.Field().Error("error", err))
			return
		}
		g.logger.Info("Synth ready")
	})
}

// Handle executes one host command.
func (g *Gateway) Handle(cmd contracts.Command) {
	switch cmd.Kind {
	case contracts.DeliverEventBatch:
		g.intake.Ingest(cmd.Batch)
	case contracts.LoadSoundfont:
		g.LoadSoundfont(cmd.Path)
	case contracts.StartRecording:
		g.recorder.Start()
	case contracts.StopRecording:
		g.recorder.Stop()
	default:
		g.logger.Warn("Unknown host command", g.logger.Field().String("type", string(cmd.Kind)))
	}
}

// LoadSoundfont reads path in the background and swaps the synthesizer's
// instruments on success. Failures keep the current instruments.
func (g *Gateway) LoadSoundfont(path string) {
	g.loads.Add(1)
	go func() {
		defer g.loads.Done()

		data, err := g.readFile(path)
		if err != nil {
			g.logger.Warn("Failed to read soundfont",
				g.logger.Field().String("path", path),
				g.logger.Field().Error("error", err))
			return
		}
		if err := g.synth.RefreshInstruments(data); err != nil {
			g.logger.Warn("Failed to load soundfont",
				g.logger.Field().String("path", path),
				g.logger.Field().Error("error", err))
			return
		}
		g.logger.Info("Soundfont loaded",
			g.logger.Field().String("path", path),
			g.logger.Field().Int("bytes", len(data)))
	}()
}

// Wait blocks until every pending soundfont load has finished.
func (g *Gateway) Wait() {
	g.loads.Wait()
}
