// Package source feeds values from outside an actor into it as events: channel
// receives, timer ticks, anything a goroutine can produce.
package source

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
)

// Source is a running pump from an external producer into an actor.
type Source struct {
	cancel context.CancelFunc
	done   chan struct{}
	sent   atomic.Uint64
}

func start(ctx context.Context, loop func(ctx context.Context, s *Source)) *Source {
	ctx, cancel := context.WithCancel(ctx)
	s := &Source{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(s.done)
		defer cancel()
		loop(ctx, s)
	}()
	return s
}

// deliver sends one occurrence and reports whether the pump should continue.
func (s *Source) deliver(ctx context.Context, send func(any) error, occurrence any, name string) bool {
	err := send(occurrence)
	switch {
	case err == nil:
		s.sent.Add(1)
		return true
	case errors.Is(err, beepboop.ErrUnmounted):
		logger.DebugKV(ctx, "source stopped, actor unmounted", "event", name)
		return false
	default:
		logger.WarnKV(ctx, "source event failed", "event", name, "error", err)
		return true
	}
}

// Stop ends the pump and waits for it to exit.
func (s *Source) Stop() {
	s.cancel()
	<-s.done
}

// Done is closed when the pump has exited.
func (s *Source) Done() <-chan struct{} { return s.done }

// Sent returns the number of events delivered.
func (s *Source) Sent() uint64 { return s.sent.Load() }

// Channel delivers every value received on ch to a as the named event. It stops when
// ch is closed, ctx ends, Stop is called or a is unmounted.
func Channel[T any](ctx context.Context, a *beepboop.Actor, name string, ch <-chan T) *Source {
	return start(ctx, func(ctx context.Context, s *Source) {
		send := a.Deliver(ctx, name)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-ch:
				if !ok || !s.deliver(ctx, send, v, name) {
					return
				}
			}
		}
	})
}

// Ticker delivers the named event to a every interval, with the tick time as the
// occurrence.
func Ticker(ctx context.Context, a *beepboop.Actor, name string, interval time.Duration) *Source {
	return start(ctx, func(ctx context.Context, s *Source) {
		t := time.NewTicker(interval)
		defer t.Stop()
		send := a.Deliver(ctx, name)
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if !s.deliver(ctx, send, now, name) {
					return
				}
			}
		}
	})
}
