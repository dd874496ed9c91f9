// Package arena provides a generational slab allocator.
//
// Every slot carries a generation that is bumped each time the slot is freed,
// so a Key handed out before a Remove never resolves to a value inserted into
// the same slot afterwards.
package arena

import (
	"iter"
	"strconv"
)

// Key identifies a slot in an Arena at a specific generation.
type Key struct {
	Index      uint32
	Generation uint32
}

func (k Key) String() string {
	return strconv.FormatUint(uint64(k.Index), 10) + ":" + strconv.FormatUint(uint64(k.Generation), 10)
}

// Pack folds the key into one word, generation in the high half.
func (k Key) Pack() uint64 {
	return uint64(k.Generation)<<32 | uint64(k.Index)
}

type entry[T any] struct {
	value      T
	generation uint32
	occupied   bool
	nextFree   int
}

// Arena stores values in reusable slots addressed by Key.
// The zero value is an empty arena ready to use.
type Arena[T any] struct {
	entries  []entry[T]
	freeHead int
	length   int
	// mutations counts inserts and removes so a VacantEntry can detect that it
	// went stale.
	mutations uint64
}

// New creates an arena with room for capacity values.
func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{entries: make([]entry[T], 0, capacity)}
}

// Len returns the number of occupied slots.
func (a *Arena[T]) Len() int {
	if a == nil {
		return 0
	}
	return a.length
}

// Cap returns the number of slots the backing storage can hold without growing.
func (a *Arena[T]) Cap() int {
	if a == nil {
		return 0
	}
	return cap(a.entries)
}

// Reserve grows the backing storage so that additional more values fit
// without reallocating.
func (a *Arena[T]) Reserve(additional int) {
	if a == nil || additional <= 0 {
		return
	}
	vacant := len(a.entries) - a.length
	need := a.length + additional
	if vacant >= additional || cap(a.entries) >= need {
		return
	}
	grown := make([]entry[T], len(a.entries), len(a.entries)+additional-vacant)
	copy(grown, a.entries)
	a.entries = grown
}

// Insert stores value and returns its key.
func (a *Arena[T]) Insert(value T) Key {
	key := a.nextKey()
	a.place(key, value)
	return key
}

// VacantEntry reserves the key the next Insert will return without inserting.
// Callers use it to build values that need to know their own key.
func (a *Arena[T]) VacantEntry() *VacantEntry[T] {
	return &VacantEntry[T]{arena: a, key: a.nextKey(), mutations: a.mutations}
}

// Get returns the value stored under key.
func (a *Arena[T]) Get(key Key) (T, bool) {
	var zero T
	e := a.lookup(key)
	if e == nil {
		return zero, false
	}
	return e.value, true
}

// GetPtr returns a pointer to the value stored under key, or nil.
// The pointer stays valid until the next insert into the arena.
func (a *Arena[T]) GetPtr(key Key) *T {
	e := a.lookup(key)
	if e == nil {
		return nil
	}
	return &e.value
}

// Contains reports whether key still refers to a live value.
func (a *Arena[T]) Contains(key Key) bool {
	return a.lookup(key) != nil
}

// KeyAt returns the live key for the slot at index.
func (a *Arena[T]) KeyAt(index uint32) (Key, bool) {
	if a == nil || int64(index) >= int64(len(a.entries)) {
		return Key{}, false
	}
	e := &a.entries[index]
	if !e.occupied {
		return Key{}, false
	}
	return Key{Index: index, Generation: e.generation}, true
}

// Remove takes the value out of the arena. Stale keys are ignored.
func (a *Arena[T]) Remove(key Key) (T, bool) {
	var zero T
	e := a.lookup(key)
	if e == nil {
		return zero, false
	}
	value := e.value
	e.value = zero
	e.occupied = false
	e.generation++
	e.nextFree = a.freeHead
	a.freeHead = int(key.Index)
	a.length--
	a.mutations++
	return value, true
}

// Retain removes every value for which keep returns false.
func (a *Arena[T]) Retain(keep func(Key, *T) bool) {
	if a == nil || keep == nil {
		return
	}
	for i := range a.entries {
		e := &a.entries[i]
		if !e.occupied {
			continue
		}
		key := Key{Index: uint32(i), Generation: e.generation}
		if !keep(key, &e.value) {
			a.Remove(key)
		}
	}
}

// Clear removes every value. Slots stay allocated and keep their generations,
// so keys issued before Clear stay invalid.
func (a *Arena[T]) Clear() {
	if a == nil {
		return
	}
	var zero T
	for i := len(a.entries) - 1; i >= 0; i-- {
		e := &a.entries[i]
		if e.occupied {
			e.value = zero
			e.occupied = false
			e.generation++
		}
		if i == len(a.entries)-1 {
			e.nextFree = len(a.entries)
		} else {
			e.nextFree = i + 1
		}
	}
	if len(a.entries) > 0 {
		a.freeHead = 0
	}
	a.length = 0
	a.mutations++
}

// All yields occupied slots in ascending index order.
func (a *Arena[T]) All() iter.Seq2[Key, *T] {
	return func(yield func(Key, *T) bool) {
		if a == nil {
			return
		}
		for i := range a.entries {
			e := &a.entries[i]
			if !e.occupied {
				continue
			}
			if !yield(Key{Index: uint32(i), Generation: e.generation}, &e.value) {
				return
			}
		}
	}
}

// Keys returns the keys of all occupied slots in ascending index order.
func (a *Arena[T]) Keys() []Key {
	if a == nil {
		return nil
	}
	keys := make([]Key, 0, a.length)
	for k := range a.All() {
		keys = append(keys, k)
	}
	return keys
}

func (a *Arena[T]) lookup(key Key) *entry[T] {
	if a == nil || int64(key.Index) >= int64(len(a.entries)) {
		return nil
	}
	e := &a.entries[key.Index]
	if !e.occupied || e.generation != key.Generation {
		return nil
	}
	return e
}

func (a *Arena[T]) nextKey() Key {
	if a.freeHead < len(a.entries) {
		return Key{Index: uint32(a.freeHead), Generation: a.entries[a.freeHead].generation}
	}
	return Key{Index: uint32(len(a.entries))}
}

func (a *Arena[T]) place(key Key, value T) {
	idx := int(key.Index)
	if idx == len(a.entries) {
		a.entries = append(a.entries, entry[T]{value: value, generation: key.Generation, occupied: true})
		a.freeHead = len(a.entries)
	} else {
		e := &a.entries[idx]
		a.freeHead = e.nextFree
		e.value = value
		e.occupied = true
		e.nextFree = 0
	}
	a.length++
	a.mutations++
}

// VacantEntry is a reserved slot whose key is known before the value exists.
type VacantEntry[T any] struct {
	arena     *Arena[T]
	key       Key
	mutations uint64
	used      bool
}

// Key returns the key the value will be stored under.
func (v *VacantEntry[T]) Key() Key {
	if v == nil {
		return Key{}
	}
	return v.key
}

// Insert stores value under the reserved key. It reports false without
// inserting when the entry was already used or the arena changed since the
// entry was taken.
func (v *VacantEntry[T]) Insert(value T) bool {
	if v == nil || v.arena == nil || v.used {
		return false
	}
	if v.arena.mutations != v.mutations || v.arena.nextKey() != v.key {
		return false
	}
	v.arena.place(v.key, value)
	v.used = true
	return true
}
