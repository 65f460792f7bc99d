// Package trace forwards committed transitions to a channel for tooling such as the
// demo command and the HTTP host.
package trace

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/comalice/beepboop"
)

// ChannelPublisher is a beepboop.Observer that forwards transition records to a Go
// channel. Publishing never blocks: records are dropped on backpressure and counted.
type ChannelPublisher struct {
	mu      sync.RWMutex
	ch      chan beepboop.TransitionRecord
	closed  bool
	dropped atomic.Uint64
}

// NewChannelPublisher creates a publisher with a buffered channel of size buffer.
func NewChannelPublisher(buffer int) *ChannelPublisher {
	return &ChannelPublisher{ch: make(chan beepboop.TransitionRecord, buffer)}
}

// Records returns the channel records are delivered on. It is closed by Close.
func (p *ChannelPublisher) Records() <-chan beepboop.TransitionRecord {
	return p.ch
}

func (p *ChannelPublisher) Observe(rec beepboop.TransitionRecord) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.dropped.Add(1)
		return
	}
	select {
	case p.ch <- rec:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many records were discarded.
func (p *ChannelPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Close closes the record channel. Later records are dropped.
func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

// Format renders a record as a single line.
func Format(rec beepboop.TransitionRecord) string {
	event := rec.Event
	if event == "" {
		event = "(init)"
	}
	return fmt.Sprintf("%s %s: %s -> %s", rec.At.Format("15:04:05.000"), event, rec.From, rec.To)
}
