// Package schema defines the validate/parse contract consumed by the machine for its
// model and props, together with a small set of built-in schemas.
//
// The contract mirrors the Standard Schema shape: a schema validates an arbitrary value
// and returns either the parsed value or a list of issues, each carrying a message and
// the path of the offending element. Any library can be adapted by implementing Schema;
// see the cueschema subpackage for a CUE-backed adapter.
package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Vendor identifies the built-in schemas.
const Vendor = "beepboop"

// Issue describes a single validation failure.
type Issue struct {
	Message string `json:"message" yaml:"message"`
	// Path holds map keys (string) and slice indices (int) leading to the failing value.
	Path []any `json:"path,omitempty" yaml:"path,omitempty"`
}

// String renders the issue as "a.b.0: message", or just the message at the root.
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	parts := make([]string, len(i.Path))
	for n, seg := range i.Path {
		parts[n] = fmt.Sprint(seg)
	}
	return strings.Join(parts, ".") + ": " + i.Message
}

// Result is the outcome of a validation. Exactly one of Value or Issues is meaningful.
type Result struct {
	Value  any
	Issues []Issue
}

// OK reports whether validation succeeded.
func (r Result) OK() bool {
	return len(r.Issues) == 0
}

// Schema validates and parses a value.
type Schema interface {
	Validate(value any) Result
}

// Defaulter is implemented by schemas that can produce an initial value.
// The machine uses it to seed a fresh model so nested containers exist before any
// assignment runs.
type Defaulter interface {
	Default() any
}

// Func adapts a plain function to Schema.
type Func func(value any) Result

// Validate calls f(value).
func (f Func) Validate(value any) Result {
	return f(value)
}

// DefaultOf returns s.Default() when s implements Defaulter, otherwise nil.
func DefaultOf(s Schema) any {
	if d, ok := s.(Defaulter); ok {
		return d.Default()
	}
	return nil
}

// Messages flattens issues into a single comma separated string.
func Messages(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, ", ")
}

func fail(format string, args ...any) Result {
	return Result{Issues: []Issue{{Message: fmt.Sprintf(format, args...)}}}
}

// prefix prepends seg to the path of every issue.
func prefix(seg any, issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	for i, issue := range issues {
		path := make([]any, 0, len(issue.Path)+1)
		path = append(path, seg)
		path = append(path, issue.Path...)
		out[i] = Issue{Message: issue.Message, Path: path}
	}
	return out
}

// typeName names the dynamic type of v using the schema vocabulary.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return rv.Kind().String()
	}
}
