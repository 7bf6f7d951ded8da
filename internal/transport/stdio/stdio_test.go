package stdio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/midisynth/internal/logger"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type collectingHandler struct{ cmds []contracts.Command }

func (c *collectingHandler) Handle(cmd contracts.Command) { c.cmds = append(c.cmds, cmd) }

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    contracts.Command
		wantErr error
	}{
		{
			name: "event_batch",
			line: `{"type":"deliver-event-batch","payload":{"events":[{"message":[144,60,100],"timestamp":100.5}],"timestamp":100}}`,
			want: contracts.Command{
				Kind: contracts.DeliverEventBatch,
				Batch: contracts.EventBatch{
					Events:    []contracts.MidiEvent{{Message: []byte{0x90, 60, 100}, Timestamp: 100.5}},
					Timestamp: 100,
				},
			},
		},
		{
			name: "load_soundfont",
			line: `{"type":"load-soundfont","payload":{"path":"/fonts/piano.sf2"}}`,
			want: contracts.Command{Kind: contracts.LoadSoundfont, Path: "/fonts/piano.sf2"},
		},
		{
			name: "start_recording_without_payload",
			line: `{"type":"start-recording"}`,
			want: contracts.Command{Kind: contracts.StartRecording},
		},
		{
			name: "stop_recording",
			line: `{"type":"stop-recording","payload":{}}`,
			want: contracts.Command{Kind: contracts.StopRecording},
		},
		{
			name:    "byte_out_of_range",
			line:    `{"type":"deliver-event-batch","payload":{"events":[{"message":[144,300,100],"timestamp":1}],"timestamp":1}}`,
			wantErr: ErrInvalidByte,
		},
		{
			name:    "negative_byte",
			line:    `{"type":"deliver-event-batch","payload":{"events":[{"message":[-1],"timestamp":1}],"timestamp":1}}`,
			wantErr: ErrInvalidByte,
		},
		{
			name:    "unknown_type",
			line:    `{"type":"midi","payload":{}}`,
			wantErr: ErrUnknownCommand,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.line))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind != tc.want.Kind || got.Path != tc.want.Path || got.Batch.Timestamp != tc.want.Batch.Timestamp {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			if len(got.Batch.Events) != len(tc.want.Batch.Events) {
				t.Fatalf("events = %d, want %d", len(got.Batch.Events), len(tc.want.Batch.Events))
			}
			for i := range got.Batch.Events {
				g, w := got.Batch.Events[i], tc.want.Batch.Events[i]
				if !bytes.Equal(g.Message, w.Message) || g.Timestamp != w.Timestamp {
					t.Errorf("event %d = %+v, want %+v", i, g, w)
				}
			}
		})
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"type":`)); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
}

func TestServe_SkipsBadLines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewZapLoggerWithCore(core)

	input := strings.Join([]string{
		`{"type":"start-recording"}`,
		`not json`,
		``,
		`{"type":"deliver-event-batch","payload":{"events":[{"message":[256],"timestamp":1}],"timestamp":1}}`,
		`{"type":"stop-recording"}`,
	}, "\n")

	h := &collectingHandler{}
	if err := Serve(context.Background(), strings.NewReader(input), h, log); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	if len(h.cmds) != 2 || h.cmds[0].Kind != contracts.StartRecording || h.cmds[1].Kind != contracts.StopRecording {
		t.Errorf("handled = %+v", h.cmds)
	}
	if n := logs.FilterMessage("Skipping invalid host command").Len(); n != 2 {
		t.Errorf("warnings = %d, want 2", n)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, pr, &collectingHandler{}, logger.NewZapLoggerWithCore(zapcore.NewNopCore()))
	}()

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve = %v, want context.Canceled", err)
	}
}

func TestHost_Notify(t *testing.T) {
	var buf bytes.Buffer
	h := NewHost(&buf, "")
	if err := h.Notify(contracts.Notification{Type: contracts.SynthReady}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"type\":\"synth-ready\"}\n" {
		t.Errorf("wire = %q", got)
	}
}

func TestHost_AppDataPath(t *testing.T) {
	dir := t.TempDir()
	got, err := NewHost(io.Discard, dir).AppDataPath()
	if err != nil || got != dir {
		t.Errorf("AppDataPath = %q, %v; want %q", got, err, dir)
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	got, err = NewHost(io.Discard, "").AppDataPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != AppName {
		t.Errorf("AppDataPath = %q, want a %s directory", got, AppName)
	}
}
