package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/synth"
	gomidi "gitlab.com/gomidi/midi/v2"
)

// printHost prints notifications and keeps recordings in the working directory.
type printHost struct{}

func (printHost) Notify(n contracts.Notification) error {
	fmt.Println("host notification:", n.Type)
	return nil
}

func (printHost) AppDataPath() (string, error) {
	return os.Getwd()
}

func main() {
	log := logger.NewZapLogger()

	if len(os.Args) < 2 {
		fmt.Println("usage: simple_use <font.sf2>")
		return
	}

	session, err := synth.NewSession(printHost{},
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSoundFont(os.Args[1]),
	)
	if err != nil {
		log.Error("Failed to create synth session", log.Field().Error("error", err))
		return
	}
	defer session.Close()

	if err := session.Start(context.Background()); err != nil {
		log.Error("Failed to start synth session", log.Field().Error("error", err))
		return
	}

	// Give the soundfont time to load before scheduling.
	time.Sleep(500 * time.Millisecond)

	session.Handle(contracts.Command{Kind: contracts.StartRecording})

	// A C major arpeggio, one note every 250ms, followed by all-sound-off.
	var events []contracts.MidiEvent
	for i, key := range []uint8{60, 64, 67, 72} {
		at := contracts.Timestamp(i * 250)
		events = append(events,
			contracts.MidiEvent{Message: gomidi.NoteOn(0, key, 100), Timestamp: at},
			contracts.MidiEvent{Message: gomidi.NoteOff(0, key), Timestamp: at + 200},
		)
	}
	events = append(events, contracts.MidiEvent{Message: gomidi.ControlChange(0, 0x78, 0), Timestamp: 1200})

	session.Handle(contracts.Command{
		Kind:  contracts.DeliverEventBatch,
		Batch: contracts.EventBatch{Events: events, Timestamp: 0},
	})

	fmt.Println("Playing... recording will be saved on exit.")
	time.Sleep(2 * time.Second)
	session.Handle(contracts.Command{Kind: contracts.StopRecording})
}
