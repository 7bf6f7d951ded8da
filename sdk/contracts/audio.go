package contracts

// AudioSource renders planar stereo samples on demand.
type AudioSource interface {
	Render(left, right []float32)
}

// AudioTap receives every block rendered by an AudioNode.
type AudioTap interface {
	WriteFrames(left, right []float32)
}

// AudioNode is the synthesizer's output point. Speakers pull from it and
// capture engines attach taps to it.
type AudioNode interface {
	SampleRate() int
	SetSource(src AudioSource)
	Attach(tap AudioTap) (detach func())
}
