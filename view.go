package beepboop

import "context"

// Root is the presentation layer an actor is mounted on. Draw receives whatever the
// machine's view function returned.
type Root interface {
	Draw(ctx context.Context, node any) error
}

// RootFunc adapts a function to Root.
type RootFunc func(ctx context.Context, node any) error

func (f RootFunc) Draw(ctx context.Context, node any) error { return f(ctx, node) }

// ViewProps is passed to the view function on every render.
type ViewProps struct {
	// Model is a snapshot; changing it has no effect on the actor.
	Model Model
	State string
	// Send dispatches an event to the rendering actor.
	Send func(eventType string, data any) error
	// Deliver binds a native occurrence handler to a named event.
	Deliver func(name string) func(occurrence any) error
}

// ViewFunc produces a presentation node from the current model and state.
type ViewFunc func(ViewProps) any
