// Package audio provides the output node the synthesizer renders into and
// the drivers that pull it at real-time rate.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/leandrodaf/midisynth/sdk/contracts"
)

// bytesPerFrame is one interleaved stereo float32 frame.
const bytesPerFrame = 8

// Node is the audio graph point between the synthesizer and its consumers.
// Rendering pulls the source once and fans the block out to every tap.
type Node struct {
	sampleRate int

	mu     sync.Mutex
	source contracts.AudioSource
	taps   map[int]contracts.AudioTap
	nextID int

	renderMu    sync.Mutex
	left, right []float32
}

// NewNode creates an output node running at sampleRate.
func NewNode(sampleRate int) *Node {
	return &Node{
		sampleRate: sampleRate,
		taps:       make(map[int]contracts.AudioTap),
	}
}

// SampleRate returns the node's rate in frames per second.
func (n *Node) SampleRate() int {
	return n.sampleRate
}

// SetSource replaces the renderer feeding the node.
func (n *Node) SetSource(src contracts.AudioSource) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.source = src
}

// HasSource reports whether a renderer is connected.
func (n *Node) HasSource() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.source != nil
}

// Attach registers tap to receive every rendered block. The returned func
// detaches it and may be called more than once.
func (n *Node) Attach(tap contracts.AudioTap) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.taps[id] = tap
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.taps, id)
			n.mu.Unlock()
		})
	}
}

// Render produces frames of audio and hands them to the taps. The returned
// slices are only valid until the next call.
func (n *Node) Render(frames int) (left, right []float32) {
	n.renderMu.Lock()
	defer n.renderMu.Unlock()

	if cap(n.left) < frames {
		n.left = make([]float32, frames)
		n.right = make([]float32, frames)
	}
	left, right = n.left[:frames], n.right[:frames]
	clear(left)
	clear(right)

	n.mu.Lock()
	src := n.source
	taps := make([]contracts.AudioTap, 0, len(n.taps))
	for _, tap := range n.taps {
		taps = append(taps, tap)
	}
	n.mu.Unlock()

	if src != nil {
		src.Render(left, right)
	}
	for _, tap := range taps {
		tap.WriteFrames(left, right)
	}
	return left, right
}

// Read renders interleaved stereo float32 little-endian samples into p.
func (n *Node) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	left, right := n.Render(frames)

	for i := 0; i < frames; i++ {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(left[i]))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(right[i]))
	}
	clear(p[frames*bytesPerFrame:])
	return len(p), nil
}
