// Command midisynth runs a synth session driven by JSON-line commands on
// stdin. Notifications are written to stdout and logs to stderr.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midisynth/internal/config"
	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/internal/transport/stdio"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"github.com/leandrodaf/midisynth/sdk/synth"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default: user config dir)")
	debug := flag.Bool("debug", false, "enable debug logging")
	listDevices := flag.Bool("list-devices", false, "print the available MIDI destinations and exit")
	flag.Parse()

	log := logger.NewZapLogger()

	path := *configPath
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal("Failed to load config", log.Field().String("path", path), log.Field().Error("error", err))
	}

	opts := append(cfg.Options(), contracts.WithLogger(log))
	if *debug {
		opts = append(opts, contracts.WithLogLevel(contracts.DebugLevel))
	}

	if *listDevices {
		printDevices(opts, log)
		return
	}

	session, err := synth.NewSession(stdio.NewHost(os.Stdout, cfg.RecordingDir), opts...)
	if err != nil {
		log.Fatal("Failed to create synth session", log.Field().Error("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Start(ctx); err != nil {
		log.Fatal("Failed to start synth session", log.Field().Error("error", err))
	}

	if err := stdio.Serve(ctx, os.Stdin, session, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Host connection failed", log.Field().Error("error", err))
	}

	if err := session.Close(); err != nil {
		log.Error("Failed to close synth session", log.Field().Error("error", err))
	}
}

func printDevices(opts []contracts.Option, log contracts.Logger) {
	devices, err := synth.ListDevices(opts...)
	if err != nil {
		log.Fatal("Failed to list MIDI destinations", log.Field().Error("error", err))
	}
	for i, d := range devices {
		fmt.Printf("%d\t%s\t%s\n", i, d.Name, d.Manufacturer)
	}
}
