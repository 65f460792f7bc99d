package beepboop

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/beepboop/schema"
)

var (
	// ErrNotInterpreted is returned when events are sent to an Actor whose Service has not
	// been created yet.
	ErrNotInterpreted = errors.New("actor has not been interpreted")
	// ErrAlreadyInterpreted is returned by a second Interpret call.
	ErrAlreadyInterpreted = errors.New("actor already interpreted")
	// ErrUnmounted is returned when a stopped Actor is used.
	ErrUnmounted = errors.New("actor is unmounted")
	// ErrNoView is returned by Mount when the machine declares no view.
	ErrNoView = errors.New("cannot mount actor without a view function")
)

// ConfigurationError reports an invalid declaration: an undeclared state or event, a
// malformed identifier or path, or an extra that is neither guard, reducer, assign nor
// action.
type ConfigurationError struct {
	Op     string
	State  string
	Event  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration error")
	if e.Op != "" {
		fmt.Fprintf(&b, " in %s", e.Op)
	}
	if e.State != "" {
		fmt.Fprintf(&b, " (state %q", e.State)
		if e.Event != "" {
			fmt.Fprintf(&b, ", event %q", e.Event)
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}

// ValidationError reports a props or model payload rejected by its schema.
type ValidationError struct {
	// Subject is "props" or "model".
	Subject string
	Issues  []schema.Issue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Subject, schema.Messages(e.Issues))
}

// PathError reports an assign path whose intermediate container is missing or is not
// a container.
type PathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("assign %q: segment %q %s", e.Path, e.Segment, e.Reason)
}

// StateMachineError reports a runaway chain of immediate transitions.
type StateMachineError struct {
	State string
	Limit int
}

func (e *StateMachineError) Error() string {
	return fmt.Sprintf("immediate transitions did not settle after %d steps (last state %q)", e.Limit, e.State)
}

// IsConfigurationError reports whether err wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsPathError reports whether err wraps a *PathError.
func IsPathError(err error) bool {
	var e *PathError
	return errors.As(err, &e)
}

// IsStateMachineError reports whether err wraps a *StateMachineError.
func IsStateMachineError(err error) bool {
	var e *StateMachineError
	return errors.As(err, &e)
}
