// Package testutil holds helpers shared by the tests of beepboop and its examples.
package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/schema"
	"github.com/comalice/beepboop/view"
)

// ErrUnstable is returned by WaitForStability when invocations are still running.
var ErrUnstable = errors.New("testutil: invocations did not settle")

// ActorAdapter drives an Actor from tests the way a host would. The actor is unmounted
// when the test ends.
type ActorAdapter struct {
	t     testing.TB
	ctx   context.Context
	Actor *beepboop.Actor
	Root  *view.Recorder
}

func newAdapter(t testing.TB, m *beepboop.Machine, opts []beepboop.Option) *ActorAdapter {
	t.Helper()
	opts = append([]beepboop.Option{beepboop.WithLogger(logger.Nop())}, opts...)
	a := &ActorAdapter{t: t, ctx: context.Background(), Actor: beepboop.NewActor(m, opts...)}
	t.Cleanup(a.Actor.Unmount)
	return a
}

// Interpret creates an interpreted actor for m.
func Interpret(t testing.TB, m *beepboop.Machine, opts ...beepboop.Option) *ActorAdapter {
	t.Helper()
	a := newAdapter(t, m, opts)
	require.NoError(t, a.Actor.Interpret(a.ctx))
	return a
}

// Mount creates an actor for m mounted on a view.Recorder.
func Mount(t testing.TB, m *beepboop.Machine, props any, opts ...beepboop.Option) *ActorAdapter {
	t.Helper()
	a := newAdapter(t, m, opts)
	a.Root = &view.Recorder{}
	require.NoError(t, a.Actor.Mount(a.ctx, a.Root, props))
	return a
}

// Send dispatches an event and fails the test on error.
func (a *ActorAdapter) Send(event string, data any) {
	a.t.Helper()
	require.NoError(a.t, a.Actor.Send(a.ctx, event, data))
}

// IsInState reports whether the actor's committed state is state.
func (a *ActorAdapter) IsInState(state string) bool {
	return a.Actor.State() == state
}

// RequireState fails the test unless the actor is in state.
func (a *ActorAdapter) RequireState(state string) {
	a.t.Helper()
	require.Equal(a.t, state, a.Actor.State())
}

// WaitForStability waits for every started invoke effect to settle.
func (a *ActorAdapter) WaitForStability(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		a.Actor.WaitInvocations()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrUnstable
	}
}

// Counter returns the builder of a one-state counter with inc and dec events.
func Counter() beepboop.Builder {
	step := func(delta int) beepboop.Extra {
		return beepboop.Assign("count", func(ev *beepboop.EventDetails) any {
			return ev.Model().Int("count") + delta
		})
	}
	return beepboop.New().
		Model(schema.Object(map[string]schema.Schema{"count": schema.Number()})).
		States("idle").
		Transition("idle", "inc", "idle", step(1)).
		Transition("idle", "dec", "idle", step(-1))
}
