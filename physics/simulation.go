package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
	"github.com/milk9111/physlink/config"
	"go.uber.org/zap"
)

// StepReport summarizes what one Step did with the engine's events.
type StepReport struct {
	Raw         int // events collected after deduplication
	Contacts    int // resolved contact events
	Proximities int // resolved proximity events
	Dropped     int // events with a side that no longer resolves
	Dispatched  int // handler invocations
}

func (r *StepReport) add(o StepReport) {
	r.Raw += o.Raw
	r.Contacts += o.Contacts
	r.Proximities += o.Proximities
	r.Dropped += o.Dropped
	r.Dispatched += o.Dispatched
}

// Option configures a Simulation.
type Option func(*options)

type options struct {
	log       *zap.Logger
	registrar *Registrar
}

// WithLogger sets the logger used for step diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// WithRegistrar shares an existing registrar instead of creating one.
func WithRegistrar(reg *Registrar) Option {
	return func(o *options) {
		if reg != nil {
			o.registrar = reg
		}
	}
}

// Simulation owns a cp.Space and the registrar for everything in it. Each Step
// advances the space, resolves every collected event to Entities, and only
// then hands the resolved events to the matchers along with view W.
type Simulation[W any] struct {
	space     *cp.Space
	registrar *Registrar
	collector *collector
	tracked   *intmap.Set[cp.CollisionType]

	contactMatchers   []ContactMatcher[W]
	proximityMatchers []ProximityMatcher[W]

	contacts    []ContactEvent
	proximities []ProximityEvent

	settings    config.Physics
	accumulator float64
	steps       uint64
	log         *zap.Logger
}

func New[W any](settings config.Physics, opts ...Option) *Simulation[W] {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registrar == nil {
		o.registrar = NewRegistrar()
	}

	s := &Simulation[W]{
		space:     cp.NewSpace(),
		registrar: o.registrar,
		collector: newCollector(),
		tracked:   intmap.NewSet[cp.CollisionType](8),
		log:       o.log,
	}
	s.Configure(settings)
	// untyped shapes carry collision type 0
	s.Track(0)

	s.log.Debug("physics simulation created",
		zap.Uint("iterations", s.space.Iterations),
		zap.Float64("gravity_x", settings.GravityX),
		zap.Float64("gravity_y", settings.GravityY),
	)
	return s
}

// Configure applies engine settings. Zero iterations or time step keep the
// current values.
func (s *Simulation[W]) Configure(settings config.Physics) {
	if s == nil {
		return
	}
	if settings.Iterations > 0 {
		s.space.Iterations = settings.Iterations
	} else {
		settings.Iterations = s.space.Iterations
	}
	if settings.TimeStep <= 0 {
		settings.TimeStep = s.settings.TimeStep
	}
	if settings.MaxSteps <= 0 {
		settings.MaxSteps = s.settings.MaxSteps
	}
	s.space.SetGravity(cp.Vector{X: settings.GravityX, Y: settings.GravityY})
	if settings.Damping > 0 {
		s.space.SetDamping(settings.Damping)
	}
	s.settings = settings
}

// Settings returns the settings last applied by Configure.
func (s *Simulation[W]) Settings() config.Physics {
	if s == nil {
		return config.Physics{}
	}
	return s.settings
}

func (s *Simulation[W]) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

func (s *Simulation[W]) Registrar() *Registrar {
	if s == nil {
		return nil
	}
	return s.registrar
}

// Steps returns how many times Step has run.
func (s *Simulation[W]) Steps() uint64 {
	if s == nil {
		return 0
	}
	return s.steps
}

// Track makes the simulation listen to begin and separate callbacks for shapes
// of the given collision types. AddShape tracks its type automatically.
func (s *Simulation[W]) Track(types ...cp.CollisionType) {
	if s == nil {
		return
	}
	for _, t := range types {
		if !s.tracked.Add(t) {
			continue
		}
		h := s.space.NewWildcardCollisionHandler(t)
		h.UserData = s.collector
		h.BeginFunc = collectBegin
		h.SeparateFunc = collectSeparate
	}
}

// AddBody adds body to the space and registers it under e. Pass a zero e to
// register later.
func (s *Simulation[W]) AddBody(body *cp.Body, e Entity) *RegisteredBody {
	return NewRegisteredBody(s.space, s.registrar, body, e)
}

// AddShape sets the shape's collision type, tracks it, adds the shape to the
// space and registers it under e.
func (s *Simulation[W]) AddShape(shape *cp.Shape, collisionType cp.CollisionType, e Entity) *RegisteredShape {
	if shape != nil {
		shape.SetCollisionType(collisionType)
	}
	s.Track(collisionType)
	return NewRegisteredShape(s.space, s.registrar, shape, e)
}

// AddStaticShape attaches a shape built on the space's static body. Level
// geometry such as ground and walls goes through here.
func (s *Simulation[W]) AddStaticShape(shape *cp.Shape, collisionType cp.CollisionType, e Entity) *RegisteredShape {
	if shape != nil && shape.Body() != s.space.StaticBody {
		panic("physics: AddStaticShape needs a shape on the space's static body")
	}
	return s.AddShape(shape, collisionType, e)
}

// ResolveShape returns the Entity tagged on shape, falling back to its body.
func (s *Simulation[W]) ResolveShape(shape *cp.Shape) (Entity, bool) {
	if s == nil || shape == nil {
		return Entity{}, false
	}
	if e, ok := s.registrar.ResolveData(shape.UserData); ok {
		return e, true
	}
	if body := shape.Body(); body != nil {
		return s.registrar.ResolveData(body.UserData)
	}
	return Entity{}, false
}

func (s *Simulation[W]) AddContactMatcher(m ContactMatcher[W]) {
	if m.First == nil || m.Handle == nil {
		panic("physics: contact matcher " + m.Name + " needs First and Handle")
	}
	s.contactMatchers = append(s.contactMatchers, m)
	s.log.Debug("contact matcher added", zap.String("matcher", m.Name))
}

func (s *Simulation[W]) AddProximityMatcher(m ProximityMatcher[W]) {
	if m.First == nil || m.Handle == nil {
		panic("physics: proximity matcher " + m.Name + " needs First and Handle")
	}
	s.proximityMatchers = append(s.proximityMatchers, m)
	s.log.Debug("proximity matcher added", zap.String("matcher", m.Name))
}

// Step advances the space by dt, resolves every event the step produced, and
// then dispatches them. Handlers run with the space unlocked, so they may
// create and destroy physics objects; events produced by those changes are
// picked up by the next Step.
func (s *Simulation[W]) Step(dt float64, view W) StepReport {
	if s == nil {
		return StepReport{}
	}
	s.space.Step(dt)
	s.steps++

	raw := s.collector.drain()
	report := s.resolve(raw)
	if report.Dropped > 0 {
		s.log.Debug("dropped events with stale handles",
			zap.Uint64("step", s.steps),
			zap.Int("dropped", report.Dropped),
		)
	}

	// resolution is complete; handlers may now mutate the registrar
	report.Dispatched = s.dispatch(view)
	return report
}

// Advance runs as many fixed steps as elapsed covers, capped at MaxSteps.
// Leftover time carries over to the next call.
func (s *Simulation[W]) Advance(elapsed float64, view W) StepReport {
	var total StepReport
	if s == nil || s.settings.TimeStep <= 0 || elapsed <= 0 {
		return total
	}
	s.accumulator += elapsed
	for n := 0; s.accumulator >= s.settings.TimeStep; n++ {
		if s.settings.MaxSteps > 0 && n >= s.settings.MaxSteps {
			s.accumulator = 0
			break
		}
		total.add(s.Step(s.settings.TimeStep, view))
		s.accumulator -= s.settings.TimeStep
	}
	return total
}

func (s *Simulation[W]) resolve(raw []rawEvent) StepReport {
	s.contacts = s.contacts[:0]
	s.proximities = s.proximities[:0]

	report := StepReport{Raw: len(raw)}
	for _, ev := range raw {
		a, okA := s.ResolveShape(ev.a)
		b, okB := s.ResolveShape(ev.b)
		if !okA || !okB {
			report.Dropped++
			continue
		}
		if ev.sensor {
			state := Disjoint
			if ev.begin {
				state = Intersecting
			}
			s.proximities = append(s.proximities, ProximityEvent{State: state, A: a, B: b, ShapeA: ev.a, ShapeB: ev.b})
			continue
		}
		phase := ContactStopped
		if ev.begin {
			phase = ContactStarted
		}
		s.contacts = append(s.contacts, ContactEvent{Phase: phase, A: a, B: b, ShapeA: ev.a, ShapeB: ev.b})
	}
	report.Contacts = len(s.contacts)
	report.Proximities = len(s.proximities)
	return report
}

func (s *Simulation[W]) dispatch(view W) int {
	calls := 0
	for _, ev := range s.contacts {
		for i := range s.contactMatchers {
			m := &s.contactMatchers[i]
			if oriented, ok := m.match(ev); ok {
				m.Handle(oriented, view)
				calls++
			}
		}
	}
	for _, ev := range s.proximities {
		for i := range s.proximityMatchers {
			m := &s.proximityMatchers[i]
			if oriented, ok := m.match(ev); ok {
				m.Handle(oriented, view)
				calls++
			}
		}
	}
	return calls
}
