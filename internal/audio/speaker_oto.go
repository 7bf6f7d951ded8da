//go:build !headless

package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Speaker plays a node through the default audio device.
type Speaker struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
}

// NewSpeaker opens the audio device. Only one speaker may exist per process.
func NewSpeaker(node *Node) (*Speaker, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   node.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	return &Speaker{
		ctx:    ctx,
		player: ctx.NewPlayer(node),
	}, nil
}

// Start begins playback.
func (s *Speaker) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started && s.player != nil {
		s.player.Play()
		s.started = true
	}
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.player == nil {
		return nil
	}
	err := s.player.Close()
	s.player = nil
	s.started = false
	return err
}
