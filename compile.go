package beepboop

import (
	"fmt"
	"slices"
)

// compile validates a builder snapshot and emits its machine definition.
func compile(b Builder) (*Machine, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.order) == 0 {
		return nil, &ConfigurationError{Op: "Compile", Reason: "no states declared"}
	}

	m := &Machine{
		initial:   b.order[0],
		order:     append([]string{BootstrapState}, b.order...),
		states:    make(map[string]*compiledState, len(b.order)+1),
		modelSpec: b.modelSpec,
		propsSpec: b.propsSpec,
		view:      b.view,
	}

	boot := &compiledState{name: BootstrapState, on: map[string][]*transition{}}
	t, err := compileAlternative(b, BootstrapState, "", alternative{dest: m.initial, extras: b.init})
	if err != nil {
		return nil, err
	}
	boot.immediates = []*transition{t}
	m.states[BootstrapState] = boot

	for _, name := range b.order {
		cs, err := compileState(b, name)
		if err != nil {
			return nil, err
		}
		m.states[name] = cs
	}

	m.shape = m.buildShape()
	return m, nil
}

func compileState(b Builder, name string) (*compiledState, error) {
	decl := b.states[name]
	cs := &compiledState{
		name:   name,
		events: slices.Clone(decl.events),
		on:     make(map[string][]*transition, len(decl.events)+len(b.always)),
		invoke: decl.invoke,
	}
	for _, ev := range decl.events {
		for _, alt := range decl.alternatives[ev] {
			t, err := compileAlternative(b, name, ev, alt)
			if err != nil {
				return nil, err
			}
			cs.on[ev] = append(cs.on[ev], t)
		}
	}
	// Always-events follow the state's own alternatives, so a state can still
	// intercept an always-event with a guarded alternative of its own.
	for _, a := range b.always {
		dest := a.dest
		if dest == "" {
			dest = name
		}
		if _, ok := b.states[dest]; !ok {
			return nil, &ConfigurationError{Op: "Compile", State: name, Event: a.event,
				Reason: fmt.Sprintf("always destination %q is not declared", dest)}
		}
		t, err := compileAlternative(b, name, a.event, alternative{dest: dest, extras: a.extras})
		if err != nil {
			return nil, err
		}
		t.always = true
		if !slices.Contains(cs.events, a.event) {
			cs.events = append(cs.events, a.event)
		}
		cs.on[a.event] = append(cs.on[a.event], t)
	}
	for _, alt := range decl.immediates {
		t, err := compileAlternative(b, name, "", alt)
		if err != nil {
			return nil, err
		}
		cs.immediates = append(cs.immediates, t)
	}
	return cs, nil
}

// compileAlternative partitions extras into guards, steps and effects.
func compileAlternative(b Builder, state, event string, alt alternative) (*transition, error) {
	if _, ok := b.states[alt.dest]; !ok {
		return nil, &ConfigurationError{Op: "Compile", State: state, Event: event,
			Reason: fmt.Sprintf("destination %q is not declared", alt.dest)}
	}
	t := &transition{event: event, dest: alt.dest}
	var assigned []Path
	mutates := false
	for i, e := range alt.extras {
		if msg := e.check(); msg != "" {
			return nil, &ConfigurationError{Op: "Compile", State: state, Event: event,
				Reason: fmt.Sprintf("extra %d: %s", i, msg)}
		}
		switch e.kind {
		case KindGuard:
			t.guards = append(t.guards, e.guard)
		case KindReduce:
			t.steps = append(t.steps, step{kind: KindReduce, reduce: e.reduce})
			mutates = true
		case KindAssign:
			t.steps = append(t.steps, step{kind: KindAssign, assign: e.assign, path: e.path})
			assigned = append(assigned, e.path)
			mutates = true
		case KindAction:
			t.steps = append(t.steps, step{kind: KindAction, action: e.action})
		}
	}

	if b.view != nil && len(assigned) > 0 {
		t.effects = append(t.effects, effect{kind: effectRender})
	}
	for _, eff := range b.effects {
		if eff.key == "" {
			continue
		}
		if slices.ContainsFunc(assigned, func(p Path) bool { return overlaps(p, eff.path) }) {
			t.effects = append(t.effects, effect{kind: effectUser, key: eff.key, fn: eff.fn})
		}
	}
	if mutates {
		for _, eff := range b.effects {
			if eff.key == "" {
				t.effects = append(t.effects, effect{kind: effectUser, fn: eff.fn})
			}
		}
	}
	return t, nil
}

// overlaps reports whether writing to a can change the value at b: one path is a
// segment prefix of the other.
func overlaps(a, b Path) bool {
	n := min(len(a.segments), len(b.segments))
	return slices.Equal(a.segments[:n], b.segments[:n])
}
