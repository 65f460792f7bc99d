// Package cueschema adapts CUE definitions to the schema.Schema contract, so props and
// models can be described with a full constraint language instead of the built-ins.
package cueschema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/comalice/beepboop/schema"
)

// Schema validates Go values by unifying them with a CUE value.
type Schema struct {
	value cue.Value
}

// New wraps an existing CUE value.
func New(v cue.Value) *Schema {
	return &Schema{value: v}
}

// Compile compiles src and, when path is non-empty, selects the value at path
// (for example "#Props").
func Compile(src, path string) (*Schema, error) {
	v := cuecontext.New().CompileString(src)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile cue schema: %w", err)
	}
	if path != "" {
		v = v.LookupPath(cue.ParsePath(path))
		if !v.Exists() {
			return nil, fmt.Errorf("cue schema path %q not found", path)
		}
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("cue schema path %q: %w", path, err)
		}
	}
	return New(v), nil
}

// Validate unifies value with the schema and requires the result to be concrete.
func (s *Schema) Validate(value any) schema.Result {
	encoded := s.value.Context().Encode(value)
	if err := encoded.Err(); err != nil {
		return schema.Result{Issues: issues(err)}
	}

	unified := s.value.Unify(encoded)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schema.Result{Issues: issues(err)}
	}

	var out any
	if err := unified.Decode(&out); err != nil {
		return schema.Result{Issues: issues(err)}
	}
	return schema.Result{Value: out}
}

// Default decodes the schema's default value, or returns nil when it has none that
// is concrete.
func (s *Schema) Default() any {
	d, ok := s.value.Default()
	if !ok {
		d = s.value
	}
	var out any
	if err := d.Decode(&out); err != nil {
		return nil
	}
	return out
}

func issues(err error) []schema.Issue {
	var out []schema.Issue
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		path := make([]any, 0, len(e.Path()))
		for _, seg := range e.Path() {
			path = append(path, seg)
		}
		out = append(out, schema.Issue{Message: fmt.Sprintf(format, args...), Path: path})
	}
	if len(out) == 0 {
		out = append(out, schema.Issue{Message: err.Error()})
	}
	return out
}
