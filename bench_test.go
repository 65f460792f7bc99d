package beepboop_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	bb "github.com/comalice/beepboop"
	"github.com/comalice/beepboop/internal/logger"
)

func benchActor(b *testing.B, m *bb.Machine) *bb.Actor {
	b.Helper()
	a := bb.NewActor(m, bb.WithLogger(logger.Nop()))
	if err := a.Interpret(context.Background()); err != nil {
		b.Fatalf("Failed to interpret: %v", err)
	}
	b.Cleanup(a.Unmount)
	return a
}

// BenchmarkStateTransition measures a bare transition between two states.
func BenchmarkStateTransition(b *testing.B) {
	m := bb.New().
		States("ping", "pong").
		Transition("ping", "go", "pong").
		Transition("pong", "go", "ping").
		MustCompile()
	a := benchActor(b, m)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Send(ctx, "go", nil)
	}
}

// BenchmarkUnhandledEvent measures the cost of an event no state declares.
func BenchmarkUnhandledEvent(b *testing.B) {
	a := benchActor(b, bb.New().States("idle").MustCompile())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Send(ctx, "nothing", nil)
	}
}

// BenchmarkAssign measures a self-transition assigning one top-level key.
func BenchmarkAssign(b *testing.B) {
	a := benchActor(b, bb.New().
		States("idle").
		Transition("idle", "inc", "idle", increment("count")).
		MustCompile())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Send(ctx, "inc", nil)
	}
}

// BenchmarkNestedAssign measures assignment three levels deep in a model with siblings.
func BenchmarkNestedAssign(b *testing.B) {
	a := benchActor(b, bb.New().
		States("idle").
		Init(
			bb.Assign("a.b.c", func(*bb.EventDetails) any { return 0 }),
			bb.Assign("a.b.d", func(*bb.EventDetails) any { return "sibling" }),
			bb.Assign("a.e", func(*bb.EventDetails) any { return []any{1, 2, 3} }),
		).
		Transition("idle", "set", "idle", bb.Assign("a.b.c", func(ev *bb.EventDetails) any {
			return ev.Model().Int("a.b.c") + 1
		})).
		MustCompile())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = a.Send(ctx, "set", nil)
	}
}

// BenchmarkImmediateChain measures one event followed by a chain of immediates.
func BenchmarkImmediateChain(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			states := make([]string, n+1)
			for i := range states {
				states[i] = fmt.Sprintf("s%d", i)
			}
			builder := bb.New().States(states...).Transition("s0", "go", "s1")
			for i := 1; i < n; i++ {
				builder = builder.Immediate(states[i], states[i+1])
			}
			builder = builder.Immediate(states[n], "s0")
			a := benchActor(b, builder.MustCompile())
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = a.Send(ctx, "go", nil)
			}
		})
	}
}

// BenchmarkCompile measures compiling a machine with an always-event and effects.
func BenchmarkCompile(b *testing.B) {
	builder := bb.New().States("a", "b", "c", "d").
		Transition("a", "next", "b", increment("count")).
		Transition("b", "next", "c", increment("count")).
		Transition("c", "next", "d", increment("count")).
		Transition("d", "next", "a", increment("count")).
		Always("reset", bb.Assign("count", func(*bb.EventDetails) any { return 0 })).
		Effect("count", func(*bb.EventDetails) {})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkConcurrentSend measures throughput with many goroutines sending to one actor.
func BenchmarkConcurrentSend(b *testing.B) {
	var processed atomic.Int64
	a := benchActor(b, bb.New().
		States("idle").
		Transition("idle", "tick", "idle", bb.Action(func(*bb.EventDetails) { processed.Add(1) })).
		MustCompile())
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = a.Send(ctx, "tick", nil)
		}
	})
	b.StopTimer()
	b.ReportMetric(float64(processed.Load())/b.Elapsed().Seconds(), "events/sec")
}
