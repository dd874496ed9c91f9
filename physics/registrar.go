package physics

import "github.com/milk9111/physlink/arena"

// Registrar maps tags stored in engine UserData slots to Entities.
//
// A *Registrar is the shared handle: the simulation owns it and hands the same
// pointer to every Registered wrapper. All mutation goes through Register and
// Unregister.
type Registrar struct {
	entries *arena.Arena[Entity]
}

func NewRegistrar() *Registrar {
	return &Registrar{entries: arena.New[Entity](64)}
}

// Register stores e under a fresh tag and writes the tag into slot. A live tag
// already in the slot is released first, so re-registering a handle after a
// redeploy does not leak the old mapping.
func (r *Registrar) Register(e Entity, slot *any) Tag {
	if r == nil || slot == nil {
		return 0
	}
	r.release(tagFromData(*slot))
	tag := makeTag(r.entries.Insert(e))
	*slot = tag
	return tag
}

// Unregister removes the mapping whose tag is stored in slot and clears the
// slot. It reports whether a live mapping was removed; unset or stale slots
// are a no-op.
func (r *Registrar) Unregister(slot *any) bool {
	if r == nil || slot == nil {
		return false
	}
	tag := tagFromData(*slot)
	if !tag.Valid() {
		return false
	}
	*slot = nil
	return r.release(tag)
}

// Resolve returns the Entity registered under tag.
func (r *Registrar) Resolve(tag Tag) (Entity, bool) {
	key, ok := r.live(tag)
	if !ok {
		return Entity{}, false
	}
	return r.entries.Get(key)
}

// ResolveData decodes a raw UserData value and resolves it.
func (r *Registrar) ResolveData(data any) (Entity, bool) {
	return r.Resolve(tagFromData(data))
}

// Len returns the number of live mappings.
func (r *Registrar) Len() int {
	if r == nil {
		return 0
	}
	return r.entries.Len()
}

func (r *Registrar) live(tag Tag) (arena.Key, bool) {
	if r == nil || !tag.Valid() {
		return arena.Key{}, false
	}
	key, ok := r.entries.KeyAt(tag.index())
	if !ok || !tag.matches(key) {
		return arena.Key{}, false
	}
	return key, true
}

func (r *Registrar) release(tag Tag) bool {
	key, ok := r.live(tag)
	if !ok {
		return false
	}
	_, removed := r.entries.Remove(key)
	return removed
}
