package beepboop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/comalice/beepboop/internal/async"
	"github.com/comalice/beepboop/schema"
)

type queued struct {
	details *EventDetails
	// epoch pins an invoke settlement to the state entry that started it. Zero for
	// ordinary events.
	epoch uint64
}

type pendingInvoke struct {
	fn      InvokeFunc
	details *EventDetails
	epoch   uint64
}

type queuedEffect struct {
	fn      EffectFunc
	details *EventDetails
}

type published struct {
	state string
	model Model
}

// Service interprets a Machine for exactly one Actor. It owns the live model and the
// current state; both are only touched by the goroutine draining the event queue.
type Service struct {
	machine  *Machine
	actor    *Actor
	log      *zap.SugaredLogger
	maxSteps int

	// Owned by the dispatching goroutine.
	current      string
	model        Model
	epoch        uint64
	pending      *pendingInvoke
	cancelInvoke context.CancelFunc
	// Effects of the transitions taken by the running dispatch. They run after commit.
	effects []queuedEffect
	redraw  bool

	snapshot atomic.Pointer[published]

	mu      sync.Mutex
	queue   []queued
	running bool
	stopped bool
	// inflight counts started invocations that have not settled. idle is signaled on mu
	// when it drops to zero or a drain finishes.
	inflight int
	idle     *sync.Cond

	lifetime context.Context
	cancel   context.CancelFunc
}

func newService(a *Actor) *Service {
	lifetime, cancel := context.WithCancel(context.Background())
	s := &Service{
		machine:  a.machine,
		actor:    a,
		log:      a.log,
		maxSteps: a.maxMicrosteps,
		current:  BootstrapState,
		model:    modelFrom(schema.DefaultOf(a.machine.modelSpec)),
		// The bootstrap owns the queue until it has run.
		running:  true,
		lifetime: lifetime,
		cancel:   cancel,
	}
	s.idle = sync.NewCond(&s.mu)
	s.publish()
	return s
}

//
// Public API
//

// State returns the last committed state.
func (s *Service) State() string {
	return s.snapshot.Load().state
}

// Model returns a copy of the last committed model.
func (s *Service) Model() Model {
	return s.snapshot.Load().model.Clone()
}

//
// Lifecycle
//

// start runs the bootstrap transition, then drains anything queued meanwhile.
func (s *Service) start(ctx context.Context) error {
	details := &EventDetails{ctx: ctx, actor: s.actor, service: s}
	if err := s.transact(details, func() error { return s.settle(details) }); err != nil {
		s.mu.Lock()
		s.running = false
		s.queue = nil
		s.idle.Broadcast()
		s.mu.Unlock()
		return err
	}
	return s.drain()
}

// stop drops queued events, cancels running invocations and refuses further events.
func (s *Service) stop() {
	s.mu.Lock()
	s.stopped = true
	s.queue = nil
	s.mu.Unlock()
	s.cancel()
}

// enqueue adds an event to the queue. When no other goroutine is dispatching, the caller
// drains the queue itself and receives the joined errors of every dispatch it ran.
func (s *Service) enqueue(q queued) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrUnmounted
	}
	s.queue = append(s.queue, q)
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()
	return s.drain()
}

func (s *Service) drain() error {
	defer func() {
		if r := recover(); r != nil {
			s.mu.Lock()
			s.running = false
			s.queue = nil
			s.idle.Broadcast()
			s.mu.Unlock()
			panic(r)
		}
	}()

	var errs []error
	for {
		s.mu.Lock()
		if s.stopped || len(s.queue) == 0 {
			s.running = false
			s.queue = nil
			s.idle.Broadcast()
			s.mu.Unlock()
			return errors.Join(errs...)
		}
		q := s.queue[0]
		s.queue[0] = queued{}
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if err := s.dispatch(q); err != nil {
			errs = append(errs, err)
		}
	}
}

//
// Dispatch
//

func (s *Service) dispatch(q queued) error {
	d := q.details
	if q.epoch != 0 && q.epoch != s.epoch {
		s.log.Warnw("dropping stale invoke settlement", "event", d.Type, "state", s.current)
		return nil
	}

	t := pickTransition(s.machine.states[s.current].on[d.Type], d)
	if t == nil {
		// No alternative matches this event, ignore.
		s.log.Debugw("event not handled", "event", d.Type, "state", s.current)
		return nil
	}

	return s.transact(d, func() error {
		if err := s.take(t, d); err != nil {
			return err
		}
		return s.settle(d)
	})
}

// transact runs fn and either commits its outcome or restores the state and model it
// started from. A panic in fn restores them too before it propagates.
func (s *Service) transact(d *EventDetails, fn func() error) error {
	from, before, epoch := s.current, s.model.Clone(), s.epoch
	s.pending = nil
	rollback := func() {
		s.current, s.model, s.epoch, s.pending = from, before, epoch, nil
		s.effects, s.redraw = nil, false
	}

	settled := false
	defer func() {
		if !settled {
			rollback()
		}
	}()

	err := fn()
	if err == nil {
		err = s.validate()
	}
	settled = true
	if err != nil {
		rollback()
		s.log.Errorw("dispatch failed, rolled back", "event", d.Type, "state", from, "error", err)
		return err
	}

	s.commit(d, from, epoch)
	return nil
}

// commit publishes the outcome of a dispatch, then runs what must only see committed
// state: invoke scheduling, observers, the render and user effects.
func (s *Service) commit(d *EventDetails, from string, epoch uint64) {
	s.publish()
	effects, redraw := s.effects, s.redraw
	s.effects, s.redraw = nil, false
	if s.epoch == epoch {
		return
	}

	s.log.Debugw("transition", "event", d.Type, "from", from, "to", s.current)

	// The previous state has been left, so its invocation is stale.
	if s.cancelInvoke != nil {
		s.cancelInvoke()
		s.cancelInvoke = nil
	}
	if p := s.pending; p != nil {
		s.pending = nil
		s.startInvoke(p)
	}

	if len(s.actor.observers) > 0 {
		rec := TransitionRecord{ActorID: s.actor.id, Event: d.Type, From: from, To: s.current, At: time.Now().UTC()}
		for _, o := range s.actor.observers {
			o.Observe(rec)
		}
	}

	if redraw {
		p := s.snapshot.Load()
		if err := s.actor.render(d.Context(), p.model.Clone(), p.state); err != nil {
			s.log.Warnw("render failed", "state", p.state, "error", err)
		}
	}
	for _, e := range effects {
		e.fn(e.details)
	}
}

// take runs the steps of t, queues its effects for after the commit, then enters its
// destination.
func (s *Service) take(t *transition, d *EventDetails) error {
	for _, st := range t.steps {
		switch st.kind {
		case KindReduce:
			if next := st.reduce(d); next != nil {
				s.model = next
			}
		case KindAssign:
			if err := st.path.Set(s.model, st.assign(d)); err != nil {
				return err
			}
		case KindAction:
			st.action(d.snapshot(s.model.Clone()))
		}
	}

	if len(t.effects) > 0 {
		view := d.snapshot(s.model.Clone())
		for _, e := range t.effects {
			switch e.kind {
			case effectRender:
				s.redraw = true
			case effectUser:
				s.effects = append(s.effects, queuedEffect{fn: e.fn, details: view})
			}
		}
	}

	s.current = t.dest
	s.epoch++
	return nil
}

// settle follows immediates from the current state until none passes. The state it
// stops in gets its invoke effect scheduled for after the commit.
func (s *Service) settle(d *EventDetails) error {
	for n := 0; ; n++ {
		st := s.machine.states[s.current]
		t := pickTransition(st.immediates, d)
		if t == nil {
			if st.invoke != nil {
				s.pending = &pendingInvoke{fn: st.invoke, details: d, epoch: s.epoch}
			}
			return nil
		}
		if n >= s.maxSteps {
			return &StateMachineError{State: s.current, Limit: s.maxSteps}
		}
		if err := s.take(t, d); err != nil {
			return err
		}
	}
}

// pickTransition grabs the first alternative whose guards all pass, in declaration order.
func pickTransition(alts []*transition, d *EventDetails) *transition {
	for _, t := range alts {
		if t.accepts(d) {
			return t
		}
	}
	return nil
}

func (s *Service) validate() error {
	if !s.actor.validateModel || s.machine.modelSpec == nil {
		return nil
	}
	res := s.machine.modelSpec.Validate(map[string]any(s.model))
	if !res.OK() {
		return &ValidationError{Subject: "model", Issues: res.Issues}
	}
	return nil
}

func (s *Service) publish() {
	s.snapshot.Store(&published{state: s.current, model: s.model.Clone()})
}

//
// Invoke
//

func (s *Service) startInvoke(p *pendingInvoke) {
	ctx, cancel := context.WithCancel(s.lifetime)
	s.cancelInvoke = cancel

	details := p.details.snapshot(s.model.Clone())
	details.ctx = ctx
	state := s.current

	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()

	f := async.Async(ctx, details, p.fn)
	go func() {
		defer s.settled()

		select {
		case <-f.Done():
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			s.log.Warnw("dropping invoke settlement", "state", state, "reason", ctx.Err())
			return
		}

		res, err := f.Await()
		ev := &EventDetails{Type: EventDone, Data: res, ctx: s.lifetime, actor: s.actor, service: s}
		if err != nil {
			ev.Type, ev.Data = EventError, err
		}

		switch err := s.enqueue(queued{details: ev, epoch: p.epoch}); {
		case errors.Is(err, ErrUnmounted):
			s.log.Warnw("dropping invoke settlement", "state", state, "reason", err)
		case err != nil:
			s.log.Errorw("invoke settlement failed", "state", state, "error", err)
		}
	}()
}

func (s *Service) settled() {
	s.mu.Lock()
	s.inflight--
	if s.inflight == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

// waitInvocations blocks until no invocation is in flight and no goroutine is draining
// the queue, so every settlement enqueued so far has been dispatched. A settlement that
// starts another invocation keeps the count above zero until the new one settles too.
// It must not be called from inside an extra, effect or view of the same actor.
func (s *Service) waitInvocations() {
	s.mu.Lock()
	for s.inflight > 0 || (s.running && !s.stopped) {
		s.idle.Wait()
	}
	s.mu.Unlock()
}
