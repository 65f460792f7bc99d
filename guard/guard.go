// Package guard builds guards from short comparison expressions over the model, such as
// "count > 0", "user.verified == true" or `status != "closed"`.
//
// An expression is a model path, an operator and a literal separated by whitespace.
// Operators are ==, !=, <, <=, > and >=. Literals are true, false, nil, numbers,
// quoted strings without spaces, or bare words taken as strings. A missing path fails every
// comparison.
package guard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/beepboop"
)

type expression struct {
	path    beepboop.Path
	op      string
	literal any
}

// Expr parses s into a guard extra.
func Expr(s string) (beepboop.Extra, error) {
	e, err := parse(s)
	if err != nil {
		return beepboop.Extra{}, err
	}
	return beepboop.Guard(e.eval), nil
}

// MustExpr is like Expr but panics on a malformed expression.
func MustExpr(s string) beepboop.Extra {
	g, err := Expr(s)
	if err != nil {
		panic(err)
	}
	return g
}

func parse(s string) (*expression, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return nil, fmt.Errorf("guard %s: want <path> <op> <value>", s)
	}
	path, err := beepboop.ParsePath(parts[0])
	if err != nil {
		return nil, fmt.Errorf("guard %s: %w", s, err)
	}
	e := &expression{path: path, op: parts[1], literal: literal(parts[2])}

	switch e.op {
	case "==", "!=":
	case "<", "<=", ">", ">=":
		if _, ok := e.literal.(float64); !ok {
			return nil, fmt.Errorf("guard %s: %s needs a number", s, e.op)
		}
	default:
		return nil, fmt.Errorf("guard %s: unknown operator %q", s, e.op)
	}
	return e, nil
}

func literal(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "nil", "null":
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if s, err := strconv.Unquote(raw); err == nil {
		return s
	}
	return raw
}

func (e *expression) eval(ev *beepboop.EventDetails) bool {
	return e.evalModel(ev.Model())
}

func (e *expression) evalModel(m beepboop.Model) bool {
	v, ok := e.path.Get(m)
	if !ok {
		return false
	}
	switch e.op {
	case "==":
		return equal(v, e.literal)
	case "!=":
		return !equal(v, e.literal)
	}

	f, ok := beepboop.AsNumber(v)
	if !ok {
		return false
	}
	want := e.literal.(float64)
	switch e.op {
	case "<":
		return f < want
	case "<=":
		return f <= want
	case ">":
		return f > want
	default:
		return f >= want
	}
}

func equal(v, lit any) bool {
	switch l := lit.(type) {
	case nil:
		return v == nil
	case bool:
		b, ok := v.(bool)
		return ok && b == l
	case float64:
		f, ok := beepboop.AsNumber(v)
		return ok && f == l
	case string:
		s, ok := v.(string)
		return ok && s == l
	}
	return false
}
