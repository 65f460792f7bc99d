package beepboop

// GuardFunc decides whether a declared alternative may be taken.
type GuardFunc func(ev *EventDetails) bool

// ReduceFunc transforms the model. Returning nil keeps the (possibly mutated) current
// model; returning another Model replaces it.
type ReduceFunc func(ev *EventDetails) Model

// AssignFunc computes the value stored at an Assign path.
type AssignFunc func(ev *EventDetails) any

// ActionFunc is a side effect run in sequence with reducers. It receives a snapshot of
// the model and must not mutate the live one.
type ActionFunc func(ev *EventDetails)

// EffectFunc is a side effect registered on the builder with Effect or EffectAll.
type EffectFunc func(ev *EventDetails)

// ExtraKind tags the variant held by an Extra.
type ExtraKind int

const (
	KindUnknown ExtraKind = iota
	KindGuard
	KindReduce
	KindAssign
	KindAction
)

func (k ExtraKind) String() string {
	switch k {
	case KindGuard:
		return "guard"
	case KindReduce:
		return "reduce"
	case KindAssign:
		return "assign"
	case KindAction:
		return "action"
	default:
		return "unknown"
	}
}

// Extra is a closed variant over guards, reducers, path assignments and actions.
// Only the constructors in this file produce valid extras; the zero Extra is rejected
// as a configuration error.
type Extra struct {
	kind    ExtraKind
	guard   GuardFunc
	reduce  ReduceFunc
	assign  AssignFunc
	action  ActionFunc
	path    Path
	rawPath string
	pathErr error
}

// Guard wraps a predicate. A failing guard moves selection to the next declared
// alternative for the same event.
func Guard(fn GuardFunc) Extra {
	return Extra{kind: KindGuard, guard: fn}
}

// Reduce wraps a model transform.
func Reduce(fn ReduceFunc) Extra {
	return Extra{kind: KindReduce, reduce: fn}
}

// Assign stores fn's result at a dot-separated model path. The path is parsed once here.
func Assign(path string, fn AssignFunc) Extra {
	p, err := ParsePath(path)
	return Extra{kind: KindAssign, assign: fn, path: p, rawPath: path, pathErr: err}
}

// Action wraps a side effect executed in declaration order with reducers.
func Action(fn ActionFunc) Extra {
	return Extra{kind: KindAction, action: fn}
}

// Kind reports the variant.
func (e Extra) Kind() ExtraKind { return e.kind }

// Path returns the assign path, or "" for other kinds.
func (e Extra) Path() string { return e.rawPath }

// check reports why an extra cannot be compiled.
func (e Extra) check() string {
	switch e.kind {
	case KindGuard:
		if e.guard == nil {
			return "guard with nil function"
		}
	case KindReduce:
		if e.reduce == nil {
			return "reducer with nil function"
		}
	case KindAssign:
		if e.pathErr != nil {
			return "assign: " + e.pathErr.Error()
		}
		if e.assign == nil {
			return "assign with nil function"
		}
	case KindAction:
		if e.action == nil {
			return "action with nil function"
		}
	default:
		return "extra is neither guard, reducer, assign nor action"
	}
	return ""
}

func withoutGuards(extras []Extra) []Extra {
	out := make([]Extra, 0, len(extras))
	for _, e := range extras {
		if e.kind != KindGuard {
			out = append(out, e)
		}
	}
	return out
}
