package beepboop

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/comalice/beepboop/internal/logger"
)

// ErrAlreadyMounted is returned by a second Mount.
var ErrAlreadyMounted = errors.New("actor already mounted")

// Actor binds one Machine to one Service and an optional mounted Root.
//
// Send, SendEvent and SendTyped are safe to call from any goroutine, including from
// inside guards, reducers and effects of the same actor. Events are processed one at a
// time: a call made while another dispatch is running is queued, returns nil, and is
// drained by the goroutine already dispatching.
type Actor struct {
	id            uuid.UUID
	machine       *Machine
	log           *zap.SugaredLogger
	maxMicrosteps int
	validateModel bool
	observers     []Observer

	mu        sync.Mutex
	service   *Service
	root      Root
	children  []*Actor
	unmounted bool
}

// NewActor creates an actor for m. The actor does nothing until Interpret or Mount.
func NewActor(m *Machine, opts ...Option) *Actor {
	a := &Actor{
		id:            uuid.New(),
		machine:       m,
		log:           logger.Logger(),
		maxMicrosteps: DefaultMaxMicrosteps,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With("actor", a.id.String())
	return a
}

// ID returns the actor identity.
func (a *Actor) ID() uuid.UUID { return a.id }

// Machine returns the machine definition the actor runs.
func (a *Actor) Machine() *Machine { return a.machine }

// Interpret creates the Service and runs the bootstrap transition into the initial
// state. Init extras run here, exactly once.
func (a *Actor) Interpret(ctx context.Context) error {
	a.mu.Lock()
	if a.unmounted {
		a.mu.Unlock()
		return ErrUnmounted
	}
	if a.service != nil {
		a.mu.Unlock()
		return ErrAlreadyInterpreted
	}
	s := newService(a)
	a.service = s
	a.mu.Unlock()

	if err := s.start(ctx); err != nil {
		a.mu.Lock()
		if a.service == s {
			a.service = nil
		}
		a.mu.Unlock()
		s.stop()
		return err
	}
	a.log.Debugw("interpreted", "state", s.State())
	return nil
}

// Send dispatches eventType with data. Unknown events are ignored. A props event is
// validated against the props schema first.
func (a *Actor) Send(ctx context.Context, eventType string, data any) error {
	return a.dispatch(ctx, &EventDetails{Type: norm.NFC.String(eventType), Data: data})
}

// SendTyped dispatches an occurrence that names its own event type.
func (a *Actor) SendTyped(ctx context.Context, occurrence Typed, data any) error {
	return a.dispatch(ctx, &EventDetails{Type: norm.NFC.String(occurrence.EventType()), Occurrence: occurrence, Data: data})
}

// SendEvent binds a native occurrence to the named event.
func (a *Actor) SendEvent(ctx context.Context, name string, occurrence any) error {
	return a.dispatch(ctx, &EventDetails{Type: norm.NFC.String(name), Occurrence: occurrence})
}

// Deliver returns a handler that forwards occurrences to the named event.
func (a *Actor) Deliver(ctx context.Context, name string) func(occurrence any) error {
	return func(occurrence any) error {
		return a.SendEvent(ctx, name, occurrence)
	}
}

func (a *Actor) dispatch(ctx context.Context, d *EventDetails) error {
	if d.Type == EventProps {
		v, err := a.validateProps(d.Data)
		if err != nil {
			return err
		}
		d.Data = v
	}

	a.mu.Lock()
	s, unmounted := a.service, a.unmounted
	a.mu.Unlock()
	switch {
	case unmounted:
		return ErrUnmounted
	case s == nil:
		return ErrNotInterpreted
	}

	d.ctx, d.actor, d.service = ctx, a, s
	return s.enqueue(queued{details: d})
}

func (a *Actor) validateProps(props any) (any, error) {
	spec := a.machine.propsSpec
	if spec == nil {
		return props, nil
	}
	res := spec.Validate(props)
	if !res.OK() {
		return nil, &ValidationError{Subject: "props", Issues: res.Issues}
	}
	return res.Value, nil
}

// Mount attaches the actor to root: it validates props, interprets the machine if
// needed, delivers the props event and draws the view once.
func (a *Actor) Mount(ctx context.Context, root Root, props any) error {
	if a.machine.view == nil {
		return ErrNoView
	}
	if root == nil {
		return errors.New("mount: nil root")
	}
	validated, err := a.validateProps(props)
	if err != nil {
		return err
	}

	a.mu.Lock()
	switch {
	case a.unmounted:
		a.mu.Unlock()
		return ErrUnmounted
	case a.root != nil:
		a.mu.Unlock()
		return ErrAlreadyMounted
	}
	a.root = root
	interpreted := a.service != nil
	a.mu.Unlock()

	if !interpreted {
		if err := a.Interpret(ctx); err != nil && !errors.Is(err, ErrAlreadyInterpreted) {
			a.detach(root)
			return err
		}
	}
	if err := a.Send(ctx, EventProps, validated); err != nil {
		a.detach(root)
		return err
	}
	return a.Redraw(ctx)
}

func (a *Actor) detach(root Root) {
	a.mu.Lock()
	if a.root == root {
		a.root = nil
	}
	a.mu.Unlock()
}

// Update delivers new props to a mounted actor.
func (a *Actor) Update(ctx context.Context, props any) error {
	return a.Send(ctx, EventProps, props)
}

// Redraw renders the last committed model and state to the mounted root.
func (a *Actor) Redraw(ctx context.Context) error {
	a.mu.Lock()
	s := a.service
	a.mu.Unlock()
	if s == nil {
		return ErrNotInterpreted
	}
	return a.render(ctx, s.Model(), s.State())
}

func (a *Actor) render(ctx context.Context, model Model, state string) error {
	a.mu.Lock()
	root := a.root
	a.mu.Unlock()
	if root == nil || a.machine.view == nil {
		return nil
	}
	node := a.machine.view(ViewProps{
		Model: model,
		State: state,
		Send: func(eventType string, data any) error {
			return a.Send(ctx, eventType, data)
		},
		Deliver: func(name string) func(any) error {
			return a.Deliver(ctx, name)
		},
	})
	return root.Draw(ctx, node)
}

// Unmount stops the service and every adopted child. Queued events and pending invoke
// settlements are dropped. Unmount is idempotent.
func (a *Actor) Unmount() {
	a.mu.Lock()
	if a.unmounted {
		a.mu.Unlock()
		return
	}
	a.unmounted = true
	s, children := a.service, a.children
	a.children, a.root = nil, nil
	a.mu.Unlock()

	if s != nil {
		s.stop()
	}
	for _, c := range children {
		c.Unmount()
	}
	a.log.Debugw("unmounted")
}

// Adopt ties child's lifetime to a: unmounting a unmounts child. The parent never
// touches the child's model.
func (a *Actor) Adopt(child *Actor) error {
	if child == nil || child == a {
		return errors.New("adopt: invalid child")
	}
	a.mu.Lock()
	if a.unmounted {
		a.mu.Unlock()
		child.Unmount()
		return ErrUnmounted
	}
	a.children = append(a.children, child)
	a.mu.Unlock()
	return nil
}

// State returns the committed state, or "" before Interpret.
func (a *Actor) State() string {
	if s := a.svc(); s != nil {
		return s.State()
	}
	return ""
}

// Model returns a copy of the committed model, or nil before Interpret.
func (a *Actor) Model() Model {
	if s := a.svc(); s != nil {
		return s.Model()
	}
	return nil
}

// Mounted reports whether the actor is attached to a root.
func (a *Actor) Mounted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.root != nil
}

// WaitInvocations blocks until every invoke effect started so far has settled or been
// dropped and every settlement has been dispatched. It is safe to call concurrently with
// Send, but not from inside an extra, effect or view of the same actor.
func (a *Actor) WaitInvocations() {
	if s := a.svc(); s != nil {
		s.waitInvocations()
	}
}

func (a *Actor) svc() *Service {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.service
}
