package beepboop

import "context"

// Reserved event names.
const (
	// EventProps is dispatched whenever the hosting component receives new properties.
	EventProps = "props"
	// EventDone carries the result of a settled invoke effect.
	EventDone = "done"
	// EventError carries the error of a failed invoke effect.
	EventError = "error"
)

// Typed is implemented by native occurrences that name their own event type, the
// equivalent of sending an object with a type field.
type Typed interface {
	EventType() string
}

// EventDetails is the per-dispatch context handed to guards, reducers, assigns,
// actions, effects and invoke functions.
type EventDetails struct {
	// Type is the machine event name. It is empty while the bootstrap runs.
	Type string
	// Occurrence is the native occurrence that triggered the event, if any.
	Occurrence any
	// Data is the event payload.
	Data any

	ctx     context.Context
	actor   *Actor
	service *Service
	// frozen holds a snapshot for extras that must not touch the live model.
	frozen Model
	state  string
}

// Model returns the model. Guards, reducers and assigns see the live model; actions,
// effects and invoke functions see a snapshot.
func (e *EventDetails) Model() Model {
	if e.frozen != nil || e.service == nil {
		return e.frozen
	}
	return e.service.model
}

// State returns the machine state at the time the extra runs.
func (e *EventDetails) State() string {
	if e.state != "" || e.service == nil {
		return e.state
	}
	return e.service.current
}

// Context returns the context of the dispatch.
func (e *EventDetails) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// Actor returns the actor the event was sent to.
func (e *EventDetails) Actor() *Actor { return e.actor }

// Send dispatches another event to the same actor. Calls made while a dispatch is in
// flight are queued and run after it completes.
func (e *EventDetails) Send(eventType string, data any) error {
	if e.actor == nil {
		return ErrNotInterpreted
	}
	return e.actor.Send(e.Context(), eventType, data)
}

// SendEvent binds a native occurrence to a named event on the same actor.
func (e *EventDetails) SendEvent(name string, occurrence any) error {
	if e.actor == nil {
		return ErrNotInterpreted
	}
	return e.actor.SendEvent(e.Context(), name, occurrence)
}

// snapshot returns a copy of e that exposes model as a frozen model and pins the state.
func (e *EventDetails) snapshot(model Model) *EventDetails {
	c := *e
	c.state = e.State()
	if model == nil {
		model = Model{}
	}
	c.frozen = model
	return &c
}
