package stdio

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

const maxLineSize = 4 * 1024 * 1024

// Handler consumes decoded commands.
type Handler interface {
	Handle(cmd contracts.Command)
}

// Serve reads commands from r until EOF or until ctx is done. Lines that
// fail to decode are logged and skipped.
func Serve(ctx context.Context, r io.Reader, h Handler, logger contracts.Logger) error {
	lines := make(chan []byte)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-errCh
			}
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			cmd, err := Decode(line)
			if err != nil {
				logger.Warn("Skipping invalid host command",
					logger.Field().String("line", truncate(line)),
					logger.Field().Error("error", err))
				continue
			}
			h.Handle(cmd)
		}
	}
}

func truncate(line []byte) string {
	const limit = 256
	if len(line) > limit {
		return string(line[:limit]) + "..."
	}
	return string(line)
}
