package view

import (
	"context"
	"errors"
	"sync"

	"github.com/comalice/beepboop"
)

// Fanout is a Root that forwards every draw to its subscribers. The last node is
// replayed to new subscribers so they start from the current view.
type Fanout struct {
	// drawMu orders draws and replays, so a subscriber never sees an older node after a
	// newer one.
	drawMu sync.Mutex

	mu    sync.Mutex
	next  int
	roots map[int]beepboop.Root
	last  any
	drawn bool
}

// NewFanout returns an empty fan-out root.
func NewFanout() *Fanout {
	return &Fanout{roots: map[int]beepboop.Root{}}
}

// Subscribe adds r and draws the last node to it. The returned function removes it.
func (f *Fanout) Subscribe(ctx context.Context, r beepboop.Root) (func(), error) {
	f.drawMu.Lock()
	defer f.drawMu.Unlock()

	last, drawn := f.Last()
	if drawn {
		if err := r.Draw(ctx, last); err != nil {
			return func() {}, err
		}
	}

	f.mu.Lock()
	id := f.next
	f.next++
	f.roots[id] = r
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.roots, id)
		f.mu.Unlock()
	}, nil
}

// Last returns the most recently drawn node.
func (f *Fanout) Last() (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, f.drawn
}

// Len returns the number of subscribers.
func (f *Fanout) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.roots)
}

func (f *Fanout) Draw(ctx context.Context, node any) error {
	f.drawMu.Lock()
	defer f.drawMu.Unlock()

	f.mu.Lock()
	f.last, f.drawn = node, true
	roots := make([]beepboop.Root, 0, len(f.roots))
	for _, r := range f.roots {
		roots = append(roots, r)
	}
	f.mu.Unlock()

	var errs []error
	for _, r := range roots {
		if err := r.Draw(ctx, node); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
