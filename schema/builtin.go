package schema

import (
	"math"
	"reflect"
	"sort"
)

type stringSchema struct{}

// String accepts Go strings. Default "".
func String() Schema { return stringSchema{} }

func (stringSchema) Validate(v any) Result {
	if s, ok := v.(string); ok {
		return Result{Value: s}
	}
	return fail("expected string, got %s", typeName(v))
}

func (stringSchema) Default() any { return "" }

type numberSchema struct{}

// Number accepts any Go integer or float kind except NaN. Default 0.
func Number() Schema { return numberSchema{} }

func (numberSchema) Validate(v any) Result {
	if typeName(v) != "number" {
		return fail("expected number, got %s", typeName(v))
	}
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64) && math.IsNaN(rv.Float()) {
		return fail("expected number, got NaN")
	}
	return Result{Value: v}
}

func (numberSchema) Default() any { return 0 }

type booleanSchema struct{}

// Boolean accepts Go bools. Default false.
func Boolean() Schema { return booleanSchema{} }

func (booleanSchema) Validate(v any) Result {
	if b, ok := v.(bool); ok {
		return Result{Value: b}
	}
	return fail("expected boolean, got %s", typeName(v))
}

func (booleanSchema) Default() any { return false }

type anySchema struct{}

// Any accepts every value, including nil. Default nil.
func Any() Schema { return anySchema{} }

func (anySchema) Validate(v any) Result { return Result{Value: v} }

func (anySchema) Default() any { return nil }

// ObjectSchema validates string-keyed maps field by field. Keys not declared in the
// schema are dropped from the parsed value.
type ObjectSchema struct {
	fields map[string]Schema
}

// Object builds an ObjectSchema from its field schemas.
func Object(fields map[string]Schema) *ObjectSchema {
	copied := make(map[string]Schema, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &ObjectSchema{fields: copied}
}

// Fields returns the declared field names in sorted order.
func (o *ObjectSchema) Fields() []string {
	names := make([]string, 0, len(o.fields))
	for name := range o.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field returns the schema of a declared field.
func (o *ObjectSchema) Field(name string) (Schema, bool) {
	s, ok := o.fields[name]
	return s, ok
}

// Validate checks every declared field, collecting all issues.
func (o *ObjectSchema) Validate(v any) Result {
	rv := reflect.ValueOf(v)
	if v == nil || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fail("expected object, got %s", typeName(v))
	}

	out := make(map[string]any, len(o.fields))
	var issues []Issue
	// Sorted iteration keeps issue order deterministic.
	for _, name := range o.Fields() {
		var field any
		if fv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key())); fv.IsValid() {
			field = fv.Interface()
		}
		res := o.fields[name].Validate(field)
		if !res.OK() {
			issues = append(issues, prefix(name, res.Issues)...)
			continue
		}
		out[name] = res.Value
	}
	if len(issues) > 0 {
		return Result{Issues: issues}
	}
	return Result{Value: out}
}

// Default builds a map holding the default of every field.
func (o *ObjectSchema) Default() any {
	out := make(map[string]any, len(o.fields))
	for name, s := range o.fields {
		out[name] = DefaultOf(s)
	}
	return out
}

type arraySchema struct {
	elem Schema
}

// Array accepts slices and arrays. When elem is nil any elements are accepted.
func Array(elem Schema) Schema { return arraySchema{elem: elem} }

func (a arraySchema) Validate(v any) Result {
	rv := reflect.ValueOf(v)
	if v == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fail("expected array, got %s", typeName(v))
	}
	if a.elem == nil {
		return Result{Value: v}
	}

	out := make([]any, rv.Len())
	var issues []Issue
	for i := 0; i < rv.Len(); i++ {
		res := a.elem.Validate(rv.Index(i).Interface())
		if !res.OK() {
			issues = append(issues, prefix(i, res.Issues)...)
			continue
		}
		out[i] = res.Value
	}
	if len(issues) > 0 {
		return Result{Issues: issues}
	}
	return Result{Value: out}
}

func (arraySchema) Default() any { return []any{} }

type defaulted struct {
	Schema
	value any
}

func (d defaulted) Default() any { return d.value }

// WithDefault overrides the default value produced by s.
func WithDefault(s Schema, value any) Schema {
	return defaulted{Schema: s, value: value}
}
