package beepboop

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxMicrosteps bounds the immediate transitions taken by a single dispatch.
const DefaultMaxMicrosteps = 1000

// Option configures an Actor.
type Option func(*Actor)

// WithLogger sets the logger used by the actor and its service.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *Actor) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMaxMicrosteps overrides the immediate-transition cap. Values below 1 are ignored.
func WithMaxMicrosteps(n int) Option {
	return func(a *Actor) {
		if n > 0 {
			a.maxMicrosteps = n
		}
	}
}

// WithModelValidation validates the model against the machine's model schema after every
// dispatch. A failing dispatch is rolled back and reported as a *ValidationError.
func WithModelValidation() Option {
	return func(a *Actor) { a.validateModel = true }
}

// WithObserver registers o to receive a record for every committed transition.
func WithObserver(o Observer) Option {
	return func(a *Actor) {
		if o != nil {
			a.observers = append(a.observers, o)
		}
	}
}

// TransitionRecord describes a committed transition.
type TransitionRecord struct {
	ActorID uuid.UUID `json:"actor_id"`
	Event   string    `json:"event"`
	From    string    `json:"from"`
	To      string    `json:"to"`
	At      time.Time `json:"at"`
}

// Observer is notified on the dispatching goroutine after a transition commits.
// Implementations must not block.
type Observer interface {
	Observe(rec TransitionRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(TransitionRecord)

func (f ObserverFunc) Observe(rec TransitionRecord) { f(rec) }
