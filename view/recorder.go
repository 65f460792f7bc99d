package view

import (
	"context"
	"sync"
)

// Recorder is a Root that remembers every node it was asked to draw.
type Recorder struct {
	mu    sync.Mutex
	nodes []any
}

func (r *Recorder) Draw(_ context.Context, node any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, node)
	return nil
}

// Nodes returns the drawn nodes in order.
func (r *Recorder) Nodes() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.nodes...)
}

// Count returns how many times Draw was called.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

// Last returns the most recent node, or nil.
func (r *Recorder) Last() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[len(r.nodes)-1]
}
