package physics

import (
	"testing"

	"github.com/milk9111/physlink/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrarRoundTrip(t *testing.T) {
	reg := NewRegistrar()
	entities := []Entity{
		PlayerEntity(arena.Key{Index: 3}),
		EnemyEntity(arena.Key{Index: 1, Generation: 4}),
		BulletEntity(arena.Key{Index: 2}, arena.Key{Index: 3}),
		PlatformEntity(7),
		GroundEntity(),
	}

	slots := make([]any, len(entities))
	for i, e := range entities {
		tag := reg.Register(e, &slots[i])
		require.True(t, tag.Valid())
		assert.Equal(t, tag, slots[i])
	}
	assert.Equal(t, len(entities), reg.Len())

	for i, e := range entities {
		got, ok := reg.ResolveData(slots[i])
		require.True(t, ok)
		assert.Equal(t, e, got)
	}

	for i := range entities {
		tag := slots[i].(Tag)
		assert.True(t, reg.Unregister(&slots[i]))
		assert.Nil(t, slots[i])
		_, ok := reg.Resolve(tag)
		assert.False(t, ok)
	}
	assert.Equal(t, 0, reg.Len())
}

func TestRegistrarUnsetData(t *testing.T) {
	reg := NewRegistrar()
	var slot any
	reg.Register(PlayerEntity(arena.Key{}), &slot)

	cases := []struct {
		name string
		data any
	}{
		{"nil", nil},
		{"zero_word", uint64(0)},
		{"zero_tag", Tag(0)},
		{"unmarked_index_one", uint64(1)},
		{"unmarked_garbage", uint64(0x7fff_ffff_ffff_ffff)},
		{"foreign_type", "player"},
		{"foreign_int", 12},
		{"marked_out_of_range", uint64(tagMarker) | 9000},
		{"marked_wrong_generation", uint64(tagMarker) | 5<<32},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := reg.ResolveData(c.data)
			assert.False(t, ok)
		})
	}
}

func TestRegistrarUnregisterNoops(t *testing.T) {
	reg := NewRegistrar()

	var never any
	assert.False(t, reg.Unregister(&never))
	assert.False(t, reg.Unregister(nil))

	var foreign any = "kept"
	assert.False(t, reg.Unregister(&foreign))
	assert.Equal(t, "kept", foreign)

	var slot any
	reg.Register(EnemyEntity(arena.Key{}), &slot)
	require.True(t, reg.Unregister(&slot))
	assert.False(t, reg.Unregister(&slot))
}

func TestRegistrarStaleTagAfterSlotReuse(t *testing.T) {
	reg := NewRegistrar()

	var first any
	oldTag := reg.Register(EnemyEntity(arena.Key{Index: 1}), &first)
	reg.Unregister(&first)

	var second any
	newTag := reg.Register(ItemEntity(arena.Key{Index: 2}), &second)
	assert.Equal(t, oldTag.index(), newTag.index(), "registrar slot should be reused")
	assert.NotEqual(t, oldTag, newTag)

	_, ok := reg.Resolve(oldTag)
	assert.False(t, ok, "old tag must not resolve to the new mapping")

	got, ok := reg.Resolve(newTag)
	require.True(t, ok)
	assert.Equal(t, KindItem, got.Kind)
}

func TestRegistrarReregisterReplaces(t *testing.T) {
	reg := NewRegistrar()
	var slot any
	first := reg.Register(PlayerEntity(arena.Key{Index: 1}), &slot)
	second := reg.Register(PlayerEntity(arena.Key{Index: 1, Generation: 1}), &slot)

	assert.Equal(t, 1, reg.Len())
	_, ok := reg.Resolve(first)
	assert.False(t, ok)
	got, ok := reg.Resolve(second)
	require.True(t, ok)
	assert.Equal(t, uint32(1), got.Key.Generation)
}

func TestRegistrarSharedHandle(t *testing.T) {
	reg := NewRegistrar()
	clone := reg

	var slot any
	tag := clone.Register(WallEntity(2), &slot)
	got, ok := reg.Resolve(tag)
	require.True(t, ok)
	assert.Equal(t, WallEntity(2), got)

	reg.Unregister(&slot)
	_, ok = clone.Resolve(tag)
	assert.False(t, ok)
}

func TestTagEncoding(t *testing.T) {
	key := arena.Key{Index: 12, Generation: 5}
	tag := makeTag(key)

	assert.True(t, tag.Valid())
	assert.Equal(t, uint32(12), tag.index())
	assert.Equal(t, uint32(5), tag.generation())
	assert.True(t, tag.matches(key))
	assert.False(t, tag.matches(arena.Key{Index: 12, Generation: 6}))
	assert.NotZero(t, uint64(tag)&(1<<63))

	// raw zero never carries the marker
	assert.False(t, Tag(0).Valid())
	assert.False(t, tagFromData(nil).Valid())
	assert.Equal(t, tag, tagFromData(uint64(tag)))
}

func TestNilRegistrar(t *testing.T) {
	var reg *Registrar
	var slot any
	assert.Equal(t, Tag(0), reg.Register(GroundEntity(), &slot))
	assert.Nil(t, slot)
	assert.False(t, reg.Unregister(&slot))
	_, ok := reg.Resolve(makeTag(arena.Key{}))
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestWeaponEntity(t *testing.T) {
	e := WeaponEntity(arena.Key{Index: 3, Generation: 1})
	if e.Kind != KindWeapon || e.Owner != (arena.Key{}) {
		t.Fatalf("WeaponEntity = %+v, want an unowned weapon", e)
	}
	if got, want := e.String(), "weapon(3:1)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
