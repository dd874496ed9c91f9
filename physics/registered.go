package physics

import "github.com/jakecoffman/cp"

type lifecycle uint8

const (
	lifecycleUnregistered lifecycle = iota
	lifecycleRegistered
	lifecycleDestroyed
)

// Registered owns one engine object and ties its registrar mapping to the
// object's lifetime. Destroy unregisters the tag and then removes the object
// from the space, in that order.
type Registered[H comparable] struct {
	handle    H
	registrar *Registrar
	slot      *any
	entity    Entity
	state     lifecycle
	destroy   func(H)
}

type (
	RegisteredBody  = Registered[*cp.Body]
	RegisteredShape = Registered[*cp.Shape]
)

func newRegistered[H comparable](handle H, reg *Registrar, slot *any, destroy func(H), e Entity) *Registered[H] {
	r := &Registered[H]{
		handle:    handle,
		registrar: reg,
		slot:      slot,
		destroy:   destroy,
	}
	r.Register(e)
	return r
}

// NewRegisteredBody adds body to space when it is not there yet and wraps it.
// A zero e defers registration until Register is called.
func NewRegisteredBody(space *cp.Space, reg *Registrar, body *cp.Body, e Entity) *RegisteredBody {
	if space != nil && body != nil && body != space.StaticBody && !space.ContainsBody(body) {
		space.AddBody(body)
	}
	var slot *any
	if body != nil {
		slot = &body.UserData
	}
	return newRegistered(body, reg, slot, func(b *cp.Body) { removeBody(space, reg, b) }, e)
}

// NewRegisteredShape adds shape to space when it is not there yet and wraps it.
// A zero e defers registration until Register is called.
func NewRegisteredShape(space *cp.Space, reg *Registrar, shape *cp.Shape, e Entity) *RegisteredShape {
	if space != nil && shape != nil && !space.ContainsShape(shape) {
		space.AddShape(shape)
	}
	var slot *any
	if shape != nil {
		slot = &shape.UserData
	}
	return newRegistered(shape, reg, slot, func(s *cp.Shape) { removeShape(space, reg, s) }, e)
}

// Handle returns the wrapped engine object.
func (r *Registered[H]) Handle() H {
	var zero H
	if r == nil {
		return zero
	}
	return r.handle
}

// Register tags the object with e. Only the first call with a non-zero Entity
// takes effect; later calls report false.
func (r *Registered[H]) Register(e Entity) bool {
	if r == nil || r.state != lifecycleUnregistered || e.IsZero() || r.slot == nil {
		return false
	}
	r.registrar.Register(e, r.slot)
	r.entity = e
	r.state = lifecycleRegistered
	return true
}

// Entity returns the tag this object was registered with.
func (r *Registered[H]) Entity() (Entity, bool) {
	if r == nil || r.state != lifecycleRegistered {
		return Entity{}, false
	}
	return r.entity, true
}

func (r *Registered[H]) IsRegistered() bool {
	return r != nil && r.state == lifecycleRegistered
}

func (r *Registered[H]) IsDestroyed() bool {
	return r != nil && r.state == lifecycleDestroyed
}

// Tag returns the tag currently stored in the object's UserData slot.
func (r *Registered[H]) Tag() Tag {
	if r == nil || r.slot == nil {
		return 0
	}
	return tagFromData(*r.slot)
}

// Destroy unregisters the tag, then removes the object from the engine.
// Calling it again does nothing.
func (r *Registered[H]) Destroy() {
	if r == nil || r.state == lifecycleDestroyed {
		return
	}
	r.registrar.Unregister(r.slot)
	r.state = lifecycleDestroyed
	var zero H
	if r.destroy != nil && r.handle != zero {
		r.destroy(r.handle)
	}
}

func removeShape(space *cp.Space, reg *Registrar, shape *cp.Shape) {
	if space == nil || shape == nil {
		return
	}
	reg.Unregister(&shape.UserData)
	if space.ContainsShape(shape) {
		space.RemoveShape(shape)
	}
}

// removeBody takes the body's remaining shapes out with it; a body cannot
// stay in the space without them and the engine does not do it for us.
func removeBody(space *cp.Space, reg *Registrar, body *cp.Body) {
	if space == nil || body == nil || body == space.StaticBody {
		return
	}
	var shapes []*cp.Shape
	body.EachShape(func(s *cp.Shape) {
		shapes = append(shapes, s)
	})
	for _, s := range shapes {
		removeShape(space, reg, s)
	}
	if space.ContainsBody(body) {
		space.RemoveBody(body)
	}
}
