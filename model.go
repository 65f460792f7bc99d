package beepboop

import (
	"fmt"
	"reflect"
	"strings"
)

// PathSeparator splits nested model paths.
const PathSeparator = "."

// Model is the mutable record owned by a Service. Nested records are Model or
// map[string]any values; both are treated as containers by paths.
//
// A Model is not safe for concurrent use. The live model is only handed to extras
// during dispatch; everything else receives a Clone.
type Model map[string]any

// Clone returns a deep copy of the model. Nested maps and []any slices are copied;
// other values are copied by assignment.
func (m Model) Clone() Model {
	if m == nil {
		return nil
	}
	return cloneValue(m).(Model)
}

// Get resolves a dot path. It reports false when any segment is missing.
func (m Model) Get(path string) (any, bool) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	return p.Get(m)
}

// String returns the string at path, or "" when absent or of another type.
func (m Model) String(path string) string {
	v, _ := m.Get(path)
	s, _ := v.(string)
	return s
}

// Bool returns the bool at path, or false.
func (m Model) Bool(path string) bool {
	v, _ := m.Get(path)
	b, _ := v.(bool)
	return b
}

// Int returns the number at path truncated to int, or 0.
func (m Model) Int(path string) int {
	v, _ := m.Get(path)
	f, _ := AsNumber(v)
	return int(f)
}

// Float returns the number at path as float64, or 0.
func (m Model) Float(path string) float64 {
	v, _ := m.Get(path)
	f, _ := AsNumber(v)
	return f
}

// Path is a pre-parsed dot-separated model address.
type Path struct {
	raw      string
	segments []string
}

// ParsePath splits raw into segments. Empty paths and empty segments are rejected.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("empty path")
	}
	segments := strings.Split(raw, PathSeparator)
	for i, seg := range segments {
		if seg == "" {
			return Path{}, fmt.Errorf("path %q: empty segment at index %d", raw, i)
		}
	}
	return Path{raw: raw, segments: segments}, nil
}

// MustParsePath is like ParsePath but panics on error.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string { return p.raw }

// Set stores v at the path. Every intermediate container must already exist.
func (p Path) Set(m Model, v any) error {
	if len(p.segments) == 0 {
		return &PathError{Path: p.raw, Reason: "is empty"}
	}
	if m == nil {
		return &PathError{Path: p.raw, Segment: p.segments[0], Reason: "cannot be set on a nil model"}
	}
	obj := map[string]any(m)
	last := len(p.segments) - 1
	for _, seg := range p.segments[:last] {
		next, ok := obj[seg]
		if !ok || next == nil {
			return &PathError{Path: p.raw, Segment: seg, Reason: "does not exist"}
		}
		child, ok := asContainer(next)
		if !ok {
			return &PathError{Path: p.raw, Segment: seg, Reason: fmt.Sprintf("is not a container (%T)", next)}
		}
		obj = child
	}
	obj[p.segments[last]] = v
	return nil
}

// Get resolves the path against m.
func (p Path) Get(m Model) (any, bool) {
	if len(p.segments) == 0 || m == nil {
		return nil, false
	}
	obj := map[string]any(m)
	last := len(p.segments) - 1
	for _, seg := range p.segments[:last] {
		child, ok := asContainer(obj[seg])
		if !ok {
			return nil, false
		}
		obj = child
	}
	v, ok := obj[p.segments[last]]
	return v, ok
}

func asContainer(v any) (map[string]any, bool) {
	switch c := v.(type) {
	case Model:
		return map[string]any(c), c != nil
	case map[string]any:
		return c, c != nil
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	switch c := v.(type) {
	case Model:
		out := make(Model, len(c))
		for k, val := range c {
			out[k] = cloneValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(c))
		for k, val := range c {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, val := range c {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// modelFrom converts a schema default into a Model, deep-copying containers so machines
// never share state through a default value.
func modelFrom(v any) Model {
	switch c := v.(type) {
	case Model:
		return c.Clone()
	case map[string]any:
		return Model(cloneValue(c).(map[string]any))
	default:
		return Model{}
	}
}

// AsNumber converts any Go integer or float kind to float64.
func AsNumber(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
