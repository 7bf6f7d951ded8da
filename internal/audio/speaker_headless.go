//go:build headless

package audio

// Speaker is unavailable in headless builds.
type Speaker struct{}

// NewSpeaker always fails in headless builds.
func NewSpeaker(*Node) (*Speaker, error) {
	return nil, ErrNoSpeaker
}

func (s *Speaker) Start() {}

func (s *Speaker) Close() error { return nil }
