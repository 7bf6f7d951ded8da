package audio

import (
	"sync"
	"time"
)

// DefaultPumpInterval is the period at which a pump pulls the node.
const DefaultPumpInterval = 10 * time.Millisecond

// Pump drives a node at real-time rate without an audio device.
type Pump struct {
	node     *Node
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewPump creates a pump for node.
func NewPump(node *Node, interval time.Duration) *Pump {
	if interval <= 0 {
		interval = DefaultPumpInterval
	}
	return &Pump{node: node, interval: interval}
}

// Start launches the pump. Calling it while running has no effect.
func (p *Pump) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stop != nil {
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.run(p.stop, p.done)
}

// Close stops the pump and waits for it to exit.
func (p *Pump) Close() error {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop == nil {
		return nil
	}
	close(stop)
	<-done
	return nil
}

func (p *Pump) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	start := time.Now()
	var rendered int64
	rate := int64(p.node.SampleRate())

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			target := int64(now.Sub(start)) * rate / int64(time.Second)
			if frames := target - rendered; frames > 0 {
				p.node.Render(int(frames))
				rendered = target
			}
		}
	}
}
