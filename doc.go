// Package beepboop builds finite-state machines for reactive components.
//
// A machine is declared with an immutable Builder, compiled once into a Machine and run
// by any number of Actors:
//
//	m := beepboop.New().
//		Model(schema.Object(map[string]schema.Schema{"count": schema.Number()})).
//		States("idle").
//		Transition("idle", "inc", "idle",
//			beepboop.Assign("count", func(ev *beepboop.EventDetails) any {
//				return ev.Model().Int("count") + 1
//			})).
//		MustCompile()
//
//	a := beepboop.NewActor(m)
//	_ = a.Interpret(ctx)
//	_ = a.Send(ctx, "inc", nil)
//
// Core invariants:
//   - exactly one current state; the bootstrap transition runs once, before any event
//   - alternatives for an event are tried in declaration order; the first whose guards
//     all pass is taken
//   - reducers and assigns run in declaration order; effects never see the live model
//   - a dispatch either commits completely or leaves state and model untouched; effects
//     and the render run only after it commits
//   - events sent during a dispatch are queued and processed after it
package beepboop
