package physics

import "github.com/jakecoffman/cp"

// ContactPhase is the transition a contact event reports.
type ContactPhase uint8

const (
	ContactStarted ContactPhase = iota + 1
	ContactStopped
)

func (p ContactPhase) String() string {
	switch p {
	case ContactStarted:
		return "started"
	case ContactStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Proximity is the transition a sensor overlap reports.
type Proximity uint8

const (
	Intersecting Proximity = iota + 1
	Disjoint
)

func (p Proximity) String() string {
	switch p {
	case Intersecting:
		return "intersecting"
	case Disjoint:
		return "disjoint"
	default:
		return "unknown"
	}
}

// ContactEvent is a resolved contact between two solid shapes. A and ShapeA
// always belong together; matchers reorient the pair before handing it over.
type ContactEvent struct {
	Phase  ContactPhase
	A, B   Entity
	ShapeA *cp.Shape
	ShapeB *cp.Shape
}

func (ev ContactEvent) swapped() ContactEvent {
	ev.A, ev.B = ev.B, ev.A
	ev.ShapeA, ev.ShapeB = ev.ShapeB, ev.ShapeA
	return ev
}

// ProximityEvent is a resolved overlap transition involving a sensor shape.
type ProximityEvent struct {
	State  Proximity
	A, B   Entity
	ShapeA *cp.Shape
	ShapeB *cp.Shape
}

func (ev ProximityEvent) swapped() ProximityEvent {
	ev.A, ev.B = ev.B, ev.A
	ev.ShapeA, ev.ShapeB = ev.ShapeB, ev.ShapeA
	return ev
}

// rawEvent is what the engine hands us inside a step: two opaque shapes.
// Shapes are ordered by hash id so both wildcard callbacks for one arbiter
// produce the same record.
type rawEvent struct {
	begin  bool
	sensor bool
	a, b   *cp.Shape
	ha, hb cp.HashValue
}

type rawKey struct {
	begin  bool
	ha, hb cp.HashValue
}

// collector buffers raw engine events. It only reads engine state; nothing in
// here may touch the registrar or gameplay state.
type collector struct {
	pending []rawEvent
	spare   []rawEvent
	seen    map[rawKey]struct{}
}

func newCollector() *collector {
	return &collector{seen: make(map[rawKey]struct{})}
}

func (c *collector) record(arb *cp.Arbiter, begin bool) {
	if c == nil || arb == nil {
		return
	}
	a, b := arb.Shapes()
	if a == nil || b == nil {
		return
	}
	// hash ids are zeroed on removal, so capture them now
	ha, hb := a.HashId(), b.HashId()
	if hb < ha {
		a, b = b, a
		ha, hb = hb, ha
	}
	c.pending = append(c.pending, rawEvent{
		begin:  begin,
		sensor: a.Sensor() || b.Sensor(),
		a:      a,
		b:      b,
		ha:     ha,
		hb:     hb,
	})
}

// drain returns the buffered events with duplicates removed, in arrival order.
// Events recorded while the caller still holds the result land in a fresh
// buffer.
func (c *collector) drain() []rawEvent {
	if c == nil || len(c.pending) == 0 {
		return nil
	}
	out := c.pending
	c.pending = c.spare[:0]
	c.spare = out

	clear(c.seen)
	n := 0
	for _, ev := range out {
		k := rawKey{begin: ev.begin, ha: ev.ha, hb: ev.hb}
		if _, dup := c.seen[k]; dup {
			continue
		}
		c.seen[k] = struct{}{}
		out[n] = ev
		n++
	}
	return out[:n]
}

func collectBegin(arb *cp.Arbiter, _ *cp.Space, userData interface{}) bool {
	if c, ok := userData.(*collector); ok {
		c.record(arb, true)
	}
	return true
}

func collectSeparate(arb *cp.Arbiter, _ *cp.Space, userData interface{}) {
	if c, ok := userData.(*collector); ok {
		c.record(arb, false)
	}
}
