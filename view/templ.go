package view

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// ErrNotComponent is returned when a view function produced something other than a
// templ.Component for a templ-based root.
var ErrNotComponent = fmt.Errorf("view: node is not a templ.Component")

func component(node any) (templ.Component, error) {
	c, ok := node.(templ.Component)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w (%T)", ErrNotComponent, node)
	}
	return c, nil
}

// TemplRoot renders templ components to a writer.
type TemplRoot struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTemplRoot returns a root writing to w.
func NewTemplRoot(w io.Writer) *TemplRoot {
	return &TemplRoot{w: w}
}

func (t *TemplRoot) Draw(ctx context.Context, node any) error {
	c, err := component(node)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return c.Render(ctx, t.w)
}
