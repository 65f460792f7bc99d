package beepboop

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/comalice/beepboop/schema"
)

type step struct {
	kind   ExtraKind
	reduce ReduceFunc
	assign AssignFunc
	action ActionFunc
	path   Path
}

type effectKind int

const (
	effectRender effectKind = iota + 1
	effectUser
)

type effect struct {
	kind effectKind
	key  string
	fn   EffectFunc
}

type transition struct {
	event   string
	dest    string
	always  bool
	guards  []GuardFunc
	steps   []step
	effects []effect
}

func (t *transition) accepts(ev *EventDetails) bool {
	for _, g := range t.guards {
		if !g(ev) {
			return false
		}
	}
	return true
}

type compiledState struct {
	name       string
	events     []string
	on         map[string][]*transition
	immediates []*transition
	invoke     InvokeFunc
}

// Machine is a compiled, immutable machine definition. A Machine can back any number of
// actors.
type Machine struct {
	initial   string
	order     []string
	states    map[string]*compiledState
	modelSpec schema.Schema
	propsSpec schema.Schema
	view      ViewFunc
	shape     Shape
}

// Initial returns the declared initial state.
func (m *Machine) Initial() string { return m.initial }

// States returns the declared states in declaration order. The bootstrap state is not
// included.
func (m *Machine) States() []string {
	out := make([]string, 0, len(m.order)-1)
	for _, name := range m.order {
		if name != BootstrapState {
			out = append(out, name)
		}
	}
	return out
}

// HasView reports whether the machine can be mounted.
func (m *Machine) HasView() bool { return m.view != nil }

// Shape returns a serializable description of the compiled machine.
func (m *Machine) Shape() Shape { return m.shape }

// Fingerprint identifies the compiled shape. Identical declarations yield identical
// fingerprints.
func (m *Machine) Fingerprint() string {
	data, err := json.Marshal(m.shape)
	if err != nil {
		return fmt.Sprintf("invalid-%s", m.initial)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}

// Shape describes a compiled machine without its functions.
type Shape struct {
	Initial   string       `json:"initial" yaml:"initial"`
	Bootstrap string       `json:"bootstrap" yaml:"bootstrap"`
	States    []StateShape `json:"states" yaml:"states"`
}

// StateShape describes one compiled state.
type StateShape struct {
	Name        string            `json:"name" yaml:"name"`
	Invoke      bool              `json:"invoke,omitempty" yaml:"invoke,omitempty"`
	Transitions []TransitionShape `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	Immediates  []TransitionShape `json:"immediates,omitempty" yaml:"immediates,omitempty"`
}

// TransitionShape describes one alternative. Steps and Effects list the compiled phases
// in execution order, e.g. "assign:count" or "render".
type TransitionShape struct {
	Event   string   `json:"event,omitempty" yaml:"event,omitempty"`
	Target  string   `json:"target" yaml:"target"`
	Always  bool     `json:"always,omitempty" yaml:"always,omitempty"`
	Guards  int      `json:"guards,omitempty" yaml:"guards,omitempty"`
	Steps   []string `json:"steps,omitempty" yaml:"steps,omitempty"`
	Effects []string `json:"effects,omitempty" yaml:"effects,omitempty"`
}

func (t *transition) shape() TransitionShape {
	ts := TransitionShape{Event: t.event, Target: t.dest, Always: t.always, Guards: len(t.guards)}
	for _, s := range t.steps {
		switch s.kind {
		case KindAssign:
			ts.Steps = append(ts.Steps, "assign:"+s.path.String())
		default:
			ts.Steps = append(ts.Steps, s.kind.String())
		}
	}
	for _, e := range t.effects {
		switch {
		case e.kind == effectRender:
			ts.Effects = append(ts.Effects, "render")
		case e.key == "":
			ts.Effects = append(ts.Effects, "effect:*")
		default:
			ts.Effects = append(ts.Effects, "effect:"+e.key)
		}
	}
	return ts
}

func (m *Machine) buildShape() Shape {
	sh := Shape{Initial: m.initial, Bootstrap: BootstrapState}
	for _, name := range m.order {
		st := m.states[name]
		ss := StateShape{Name: name, Invoke: st.invoke != nil}
		for _, ev := range st.events {
			for _, t := range st.on[ev] {
				ss.Transitions = append(ss.Transitions, t.shape())
			}
		}
		for _, t := range st.immediates {
			ss.Immediates = append(ss.Immediates, t.shape())
		}
		sh.States = append(sh.States, ss)
	}
	return sh
}
