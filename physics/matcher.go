package physics

// Predicate filters one side of an event pair.
type Predicate func(Entity) bool

// Is matches entities of any of the given kinds.
func Is(kinds ...Kind) Predicate {
	var set uint64
	for _, k := range kinds {
		set |= 1 << k
	}
	return func(e Entity) bool {
		return e.Kind != KindNone && set&(1<<e.Kind) != 0
	}
}

// Any matches every tagged entity.
func Any() Predicate {
	return func(e Entity) bool { return !e.IsZero() }
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(e Entity) bool { return !p(e) }
}

// And matches when both p and q do.
func (p Predicate) And(q Predicate) Predicate {
	return func(e Entity) bool { return p(e) && q(e) }
}

// PhaseSet selects event transitions. The zero value selects all of them.
type PhaseSet uint8

const (
	OnStart PhaseSet = 1 << iota
	OnStop
)

func (s PhaseSet) hasStart() bool { return s == 0 || s&OnStart != 0 }
func (s PhaseSet) hasStop() bool  { return s == 0 || s&OnStop != 0 }

// ContactMatcher routes contact events between solid shapes to a handler.
//
// With Second set, the handler receives the pair oriented so that A satisfies
// First and B satisfies Second. With Second nil, A is the entity that
// satisfied First and B is whatever it touched. Each event invokes the
// handler at most once.
type ContactMatcher[W any] struct {
	Name   string
	First  Predicate
	Second Predicate
	Phases PhaseSet
	Handle func(ev ContactEvent, view W)
}

// ProximityMatcher routes sensor overlap transitions to a handler, with the
// same orientation rules as ContactMatcher.
type ProximityMatcher[W any] struct {
	Name   string
	First  Predicate
	Second Predicate
	Phases PhaseSet
	Handle func(ev ProximityEvent, view W)
}

func (m *ContactMatcher[W]) match(ev ContactEvent) (ContactEvent, bool) {
	switch ev.Phase {
	case ContactStarted:
		if !m.Phases.hasStart() {
			return ev, false
		}
	case ContactStopped:
		if !m.Phases.hasStop() {
			return ev, false
		}
	}
	swap, ok := orient(m.First, m.Second, ev.A, ev.B)
	if !ok {
		return ev, false
	}
	if swap {
		return ev.swapped(), true
	}
	return ev, true
}

func (m *ProximityMatcher[W]) match(ev ProximityEvent) (ProximityEvent, bool) {
	switch ev.State {
	case Intersecting:
		if !m.Phases.hasStart() {
			return ev, false
		}
	case Disjoint:
		if !m.Phases.hasStop() {
			return ev, false
		}
	}
	swap, ok := orient(m.First, m.Second, ev.A, ev.B)
	if !ok {
		return ev, false
	}
	if swap {
		return ev.swapped(), true
	}
	return ev, true
}

// orient tries (a, b) first and then (b, a). It reports whether the pair has
// to be swapped to fit the predicates.
func orient(first, second Predicate, a, b Entity) (swap bool, ok bool) {
	if first == nil {
		return false, false
	}
	if second == nil {
		if first(a) {
			return false, true
		}
		if first(b) {
			return true, true
		}
		return false, false
	}
	if first(a) && second(b) {
		return false, true
	}
	if first(b) && second(a) {
		return true, true
	}
	return false, false
}
