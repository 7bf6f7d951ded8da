package recording

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/leandrodaf/midisynth/internal/clock"
	"github.com/leandrodaf/midisynth/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	journalExt        = "mid"
	journalTempo      = 120.0
	journalResolution = smf.MetricTicks(960)
)

// Journal collects the messages dispatched while a recording is live and
// writes them as a Standard MIDI File when the recording stops.
type Journal struct {
	store *Store
	clock contracts.Clock

	mu     sync.Mutex
	active bool
	track  smf.Track
	start  contracts.Timestamp
	ticks  uint32 // absolute position of the last message
	count  int
}

// NewJournal creates a journal writing through store.
func NewJournal(store *Store, clock contracts.Clock) *Journal {
	return &Journal{store: store, clock: clock}
}

// Begin starts a new track at the current local time.
func (j *Journal) Begin() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.track = smf.Track{}
	j.track.Add(0, smf.MetaTempo(journalTempo))
	j.start = j.clock.Now()
	j.ticks = 0
	j.count = 0
	j.active = true
}

// OnDispatch implements contracts.DispatchListener.
func (j *Journal) OnDispatch(message []byte, at contracts.Timestamp) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.active {
		return
	}
	// Deltas come from absolute positions so rounding never accumulates.
	var delta uint32
	if at > j.start {
		abs := journalResolution.Ticks(journalTempo, clock.ToDuration(at-j.start))
		if abs > j.ticks {
			delta = abs - j.ticks
			j.ticks = abs
		}
	}
	j.track.Add(delta, message)
	j.count++
}

// End closes the track and saves it. It returns an empty path when no
// journal was active.
func (j *Journal) End() (string, error) {
	j.mu.Lock()
	if !j.active {
		j.mu.Unlock()
		return "", nil
	}
	j.active = false
	track := j.track
	j.track = nil
	j.count = 0
	j.mu.Unlock()

	track.Close(0)
	file := smf.New()
	file.TimeFormat = journalResolution
	if err := file.Add(track); err != nil {
		return "", fmt.Errorf("build journal: %w", err)
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("encode journal: %w", err)
	}
	return j.store.SaveAs(journalExt, buf.Bytes())
}

// Len reports the number of messages in the live track.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}
