package scheduler

import (
	"container/heap"
	"sort"

	"github.com/leandrodaf/midisynth/internal/midimsg"
	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// EntryID identifies one buffered event. IDs grow with insertion order.
type EntryID uint64

type entry struct {
	id      EntryID
	event   contracts.MidiEvent
	channel int
	index   int // position in the heap
}

// eventHeap orders entries by origin timestamp, then insertion order.
type eventHeap []*entry

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Timestamp != h[j].event.Timestamp {
		return h[i].event.Timestamp < h[j].event.Timestamp
	}
	return h[i].id < h[j].id
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Buffer holds events waiting for dispatch. It is not safe for concurrent
// use; the scheduler goroutine owns it.
type Buffer struct {
	heap      eventHeap
	byChannel map[int]map[EntryID]*entry
	nextID    EntryID
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{byChannel: make(map[int]map[EntryID]*entry)}
}

// Append stores ev and returns its identity.
func (b *Buffer) Append(ev contracts.MidiEvent) EntryID {
	b.nextID++
	e := &entry{
		id:      b.nextID,
		event:   ev,
		channel: midimsg.Channel(ev.Message),
	}
	heap.Push(&b.heap, e)

	set, ok := b.byChannel[e.channel]
	if !ok {
		set = make(map[EntryID]*entry)
		b.byChannel[e.channel] = set
	}
	set[e.id] = e
	return e.id
}

// Len reports the number of buffered events.
func (b *Buffer) Len() int {
	return len(b.heap)
}

// TakeDue removes every event for which due reports true and returns them in
// insertion order. due must be monotonic in the timestamp: once it reports
// false for a timestamp it must report false for every later one.
func (b *Buffer) TakeDue(due func(ts contracts.Timestamp) bool) []contracts.MidiEvent {
	var taken []*entry
	for len(b.heap) > 0 && due(b.heap[0].event.Timestamp) {
		e := heap.Pop(&b.heap).(*entry)
		b.unindex(e)
		taken = append(taken, e)
	}
	if len(taken) == 0 {
		return nil
	}

	sort.Slice(taken, func(i, j int) bool { return taken[i].id < taken[j].id })
	events := make([]contracts.MidiEvent, len(taken))
	for i, e := range taken {
		events[i] = e.event
	}
	return events
}

// PurgeChannel drops every buffered event on channel ch and reports how many
// were removed. System messages are never purged.
func (b *Buffer) PurgeChannel(ch int) int {
	if ch == midimsg.NoChannel {
		return 0
	}
	set := b.byChannel[ch]
	for _, e := range set {
		heap.Remove(&b.heap, e.index)
	}
	delete(b.byChannel, ch)
	return len(set)
}

// Snapshot returns the buffered events in insertion order.
func (b *Buffer) Snapshot() []contracts.MidiEvent {
	entries := make([]*entry, len(b.heap))
	copy(entries, b.heap)
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	events := make([]contracts.MidiEvent, len(entries))
	for i, e := range entries {
		events[i] = e.event
	}
	return events
}

func (b *Buffer) unindex(e *entry) {
	set := b.byChannel[e.channel]
	delete(set, e.id)
	if len(set) == 0 {
		delete(b.byChannel, e.channel)
	}
}
