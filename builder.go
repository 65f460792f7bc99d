package beepboop

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/comalice/beepboop/schema"
)

// BootstrapState is the synthesized pseudo-state every machine starts in. It is
// reserved and cannot be declared.
const BootstrapState = "beepboop.initial"

// InvokeFunc is an asynchronous effect bound to a state. Its result is redelivered as
// a done event, its error as an error event. ctx is canceled when the state is left or
// the actor is unmounted.
type InvokeFunc func(ctx context.Context, ev *EventDetails) (any, error)

type alternative struct {
	dest   string
	extras []Extra
}

type stateDecl struct {
	events       []string
	closed       bool
	alternatives map[string][]alternative
	immediates   []alternative
	invoke       InvokeFunc
}

func (s *stateDecl) clone() *stateDecl {
	c := &stateDecl{
		events:       slices.Clone(s.events),
		closed:       s.closed,
		alternatives: make(map[string][]alternative, len(s.alternatives)),
		immediates:   slices.Clone(s.immediates),
		invoke:       s.invoke,
	}
	for ev, alts := range s.alternatives {
		c.alternatives[ev] = slices.Clone(alts)
	}
	return c
}

func (s *stateDecl) declares(event string) bool {
	return slices.Contains(s.events, event)
}

type alwaysDecl struct {
	event  string
	dest   string
	extras []Extra
}

type effectDecl struct {
	key  string
	path Path
	fn   EffectFunc
}

// Builder is an immutable machine declaration. Every method returns a new snapshot and
// leaves the receiver untouched, so partially built machines can be shared and branched.
//
// Declarations are validated eagerly. The first invalid call records a
// *ConfigurationError that every later call preserves; it is reported by Err and
// Compile.
type Builder struct {
	order     []string
	states    map[string]*stateDecl
	always    []alwaysDecl
	init      []Extra
	modelSpec schema.Schema
	propsSpec schema.Schema
	effects   []effectDecl
	view      ViewFunc
	err       error
}

// New returns an empty builder. The zero Builder is equally usable.
func New() Builder { return Builder{} }

// Err returns the first configuration error recorded on the builder.
func (b Builder) Err() error { return b.err }

func (b Builder) fail(op, state, event, format string, args ...any) Builder {
	b.err = &ConfigurationError{Op: op, State: state, Event: event, Reason: fmt.Sprintf(format, args...)}
	return b
}

// with returns a deep copy safe to modify.
func (b Builder) with() Builder {
	c := b
	c.order = slices.Clone(b.order)
	c.states = make(map[string]*stateDecl, len(b.states))
	for name, st := range b.states {
		c.states[name] = st.clone()
	}
	c.always = slices.Clone(b.always)
	c.init = slices.Clone(b.init)
	c.effects = slices.Clone(b.effects)
	return c
}

// Model sets the model schema. When the schema implements schema.Defaulter its default
// seeds the initial model.
func (b Builder) Model(s schema.Schema) Builder {
	if b.err != nil {
		return b
	}
	c := b.with()
	c.modelSpec = s
	return c
}

// Props sets the schema every props payload is validated against before dispatch.
func (b Builder) Props(s schema.Schema) Builder {
	if b.err != nil {
		return b
	}
	c := b.with()
	c.propsSpec = s
	return c
}

// View registers the function producing the presentation node. Registering a view makes
// every alternative that assigns to the model notify the mounted root.
func (b Builder) View(fn ViewFunc) Builder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		return b.fail("View", "", "", "view function is nil")
	}
	c := b.with()
	c.view = fn
	return c
}

// States declares states. The first state ever declared is the initial state.
func (b Builder) States(names ...string) Builder {
	if b.err != nil {
		return b
	}
	if len(names) == 0 {
		return b.fail("States", "", "", "no state names given")
	}
	c := b.with()
	for _, raw := range names {
		name, err := ident(raw)
		if err != "" {
			return b.fail("States", raw, "", "%s", err)
		}
		if name == BootstrapState {
			return b.fail("States", name, "", "state name is reserved")
		}
		if _, dup := c.states[name]; dup {
			return b.fail("States", name, "", "state declared twice")
		}
		c.order = append(c.order, name)
		c.states[name] = &stateDecl{alternatives: map[string][]alternative{}}
	}
	return c
}

// Events closes the event list of state. After Events, a transition on an event not
// listed for that state is a configuration error. Without Events, transitions declare
// their events implicitly.
func (b Builder) Events(state string, names ...string) Builder {
	if b.err != nil {
		return b
	}
	state, err := ident(state)
	if err != "" {
		return b.fail("Events", state, "", "%s", err)
	}
	if _, ok := b.states[state]; !ok {
		return b.fail("Events", state, "", "state is not declared")
	}
	c := b.with()
	st := c.states[state]
	st.closed = true
	for _, raw := range names {
		ev, err := ident(raw)
		if err != "" {
			return b.fail("Events", state, raw, "%s", err)
		}
		if !st.declares(ev) {
			st.events = append(st.events, ev)
		}
	}
	return c
}

// Transition appends an alternative for event in state. Alternatives for the same event
// are tried in declaration order; the first whose guards all pass is taken.
func (b Builder) Transition(state, event, dest string, extras ...Extra) Builder {
	if b.err != nil {
		return b
	}
	state, dest, err := b.endpoints("Transition", state, dest)
	if err != nil {
		return b.withErr(err)
	}
	event, msg := ident(event)
	if msg != "" {
		return b.fail("Transition", state, event, "%s", msg)
	}
	if st := b.states[state]; st.closed && !st.declares(event) {
		return b.fail("Transition", state, event, "event is not declared for state")
	}
	if msg := checkExtras(extras); msg != "" {
		return b.fail("Transition", state, event, "%s", msg)
	}
	c := b.with()
	st := c.states[state]
	if !st.declares(event) {
		st.events = append(st.events, event)
	}
	st.alternatives[event] = append(st.alternatives[event], alternative{dest: dest, extras: slices.Clone(extras)})
	return c
}

// Immediate appends a transition taken automatically on entering state. Immediates are
// tried in declaration order.
func (b Builder) Immediate(state, dest string, extras ...Extra) Builder {
	if b.err != nil {
		return b
	}
	state, dest, err := b.endpoints("Immediate", state, dest)
	if err != nil {
		return b.withErr(err)
	}
	if msg := checkExtras(extras); msg != "" {
		return b.fail("Immediate", state, "", "%s", msg)
	}
	c := b.with()
	st := c.states[state]
	st.immediates = append(st.immediates, alternative{dest: dest, extras: slices.Clone(extras)})
	return c
}

// Always declares event as valid from every state, staying in the current state. The
// expansion happens at compile time, so states declared later receive it too.
func (b Builder) Always(event string, extras ...Extra) Builder {
	return b.addAlways("Always", event, "", extras)
}

// AlwaysTo is Always with an explicit destination.
func (b Builder) AlwaysTo(event, dest string, extras ...Extra) Builder {
	if b.err != nil {
		return b
	}
	d, msg := ident(dest)
	if msg != "" {
		return b.fail("AlwaysTo", "", event, "destination: %s", msg)
	}
	return b.addAlways("AlwaysTo", event, d, extras)
}

func (b Builder) addAlways(op, event, dest string, extras []Extra) Builder {
	if b.err != nil {
		return b
	}
	event, msg := ident(event)
	if msg != "" {
		return b.fail(op, "", event, "%s", msg)
	}
	if msg := checkExtras(extras); msg != "" {
		return b.fail(op, "", event, "%s", msg)
	}
	c := b.with()
	c.always = append(c.always, alwaysDecl{event: event, dest: dest, extras: slices.Clone(extras)})
	return c
}

// Invoke binds an asynchronous effect to state, replacing any earlier one.
func (b Builder) Invoke(state string, fn InvokeFunc) Builder {
	if b.err != nil {
		return b
	}
	state, msg := ident(state)
	if msg != "" {
		return b.fail("Invoke", state, "", "%s", msg)
	}
	if _, ok := b.states[state]; !ok {
		return b.fail("Invoke", state, "", "state is not declared")
	}
	if fn == nil {
		return b.fail("Invoke", state, "", "invoke function is nil")
	}
	c := b.with()
	c.states[state].invoke = fn
	return c
}

// Init appends extras run once by the bootstrap transition into the initial state.
// Guards are dropped: there is nothing to choose between before the machine starts.
func (b Builder) Init(extras ...Extra) Builder {
	if b.err != nil {
		return b
	}
	if len(b.order) == 0 {
		return b.fail("Init", "", "", "declare states before init")
	}
	if msg := checkExtras(extras); msg != "" {
		return b.fail("Init", BootstrapState, "", "%s", msg)
	}
	c := b.with()
	c.init = append(c.init, withoutGuards(extras)...)
	return c
}

// Effect registers fn to run after every alternative that assigns to key or to a path
// under it.
func (b Builder) Effect(key string, fn EffectFunc) Builder {
	if b.err != nil {
		return b
	}
	p, err := ParsePath(key)
	if err != nil {
		return b.fail("Effect", "", "", "%v", err)
	}
	if fn == nil {
		return b.fail("Effect", "", "", "effect %q has nil function", key)
	}
	c := b.with()
	c.effects = append(c.effects, effectDecl{key: key, path: p, fn: fn})
	return c
}

// EffectAll registers fn to run after every alternative that reduces or assigns.
func (b Builder) EffectAll(fn EffectFunc) Builder {
	if b.err != nil {
		return b
	}
	if fn == nil {
		return b.fail("EffectAll", "", "", "effect has nil function")
	}
	c := b.with()
	c.effects = append(c.effects, effectDecl{fn: fn})
	return c
}

// Compile turns the snapshot into a machine definition.
func (b Builder) Compile() (*Machine, error) {
	return compile(b)
}

// MustCompile is like Compile but panics on error.
func (b Builder) MustCompile() *Machine {
	m, err := compile(b)
	if err != nil {
		panic(err)
	}
	return m
}

// Actor compiles the builder and wraps the machine in a new Actor.
func (b Builder) Actor(opts ...Option) (*Actor, error) {
	m, err := compile(b)
	if err != nil {
		return nil, err
	}
	return NewActor(m, opts...), nil
}

func (b Builder) withErr(err error) Builder {
	b.err = err
	return b
}

func (b Builder) endpoints(op, state, dest string) (string, string, error) {
	s, msg := ident(state)
	if msg != "" {
		return "", "", &ConfigurationError{Op: op, State: state, Reason: msg}
	}
	if _, ok := b.states[s]; !ok {
		return "", "", &ConfigurationError{Op: op, State: s, Reason: "state is not declared"}
	}
	d, msg := ident(dest)
	if msg != "" {
		return "", "", &ConfigurationError{Op: op, State: s, Reason: "destination: " + msg}
	}
	if _, ok := b.states[d]; !ok {
		return "", "", &ConfigurationError{Op: op, State: s, Reason: fmt.Sprintf("destination %q is not declared", d)}
	}
	return s, d, nil
}

func checkExtras(extras []Extra) string {
	for i, e := range extras {
		if msg := e.check(); msg != "" {
			return fmt.Sprintf("extra %d: %s", i, msg)
		}
	}
	return ""
}

// ident canonicalises a state or event name to NFC and reports why it is unusable.
func ident(raw string) (string, string) {
	name := norm.NFC.String(raw)
	if strings.TrimSpace(name) == "" {
		return "", "name is empty"
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return name, fmt.Sprintf("name %q contains whitespace or control characters", raw)
		}
	}
	return name, ""
}
