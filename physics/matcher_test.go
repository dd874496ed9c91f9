package physics

import (
	"testing"

	"github.com/milk9111/physlink/arena"
)

func TestPredicates(t *testing.T) {
	player := PlayerEntity(arena.Key{})
	ground := GroundEntity()

	cases := []struct {
		name string
		p    Predicate
		e    Entity
		want bool
	}{
		{"is_hit", Is(KindPlayer), player, true},
		{"is_miss", Is(KindPlayer), ground, false},
		{"is_any_of", Is(KindEnemy, KindGround), ground, true},
		{"is_none_never_matches", Is(KindNone), Entity{}, false},
		{"any_tagged", Any(), ground, true},
		{"any_untagged", Any(), Entity{}, false},
		{"not", Not(Is(KindPlayer)), ground, true},
		{"and_hit", Any().And(Not(Is(KindGround))), player, true},
		{"and_miss", Any().And(Not(Is(KindGround))), ground, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.p(c.e); got != c.want {
				t.Fatalf("predicate(%s) = %v, want %v", c.e, got, c.want)
			}
		})
	}
}

func TestOrient(t *testing.T) {
	player := PlayerEntity(arena.Key{Index: 1})
	enemy := EnemyEntity(arena.Key{Index: 2})
	ground := GroundEntity()

	cases := []struct {
		name          string
		first, second Predicate
		a, b          Entity
		swap, ok      bool
	}{
		{"two_sided_in_order", Is(KindPlayer), Is(KindGround), player, ground, false, true},
		{"two_sided_reversed", Is(KindPlayer), Is(KindGround), ground, player, true, true},
		{"two_sided_miss", Is(KindEnemy), Is(KindGround), player, ground, false, false},
		{"one_sided_first", Is(KindPlayer), nil, player, enemy, false, true},
		{"one_sided_second", Is(KindPlayer), nil, enemy, player, true, true},
		{"one_sided_miss", Is(KindItem), nil, enemy, player, false, false},
		{"same_kind_prefers_order", Is(KindEnemy), Is(KindEnemy), enemy, enemy, false, true},
		{"nil_first", nil, Is(KindPlayer), player, player, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			swap, ok := orient(c.first, c.second, c.a, c.b)
			if ok != c.ok || swap != c.swap {
				t.Fatalf("orient(%s, %s) = (%v, %v), want (%v, %v)", c.a, c.b, swap, ok, c.swap, c.ok)
			}
		})
	}
}

func TestMatcherPhases(t *testing.T) {
	m := ContactMatcher[struct{}]{
		First:  Is(KindPlayer),
		Second: Is(KindGround),
		Phases: OnStop,
		Handle: func(ContactEvent, struct{}) {},
	}
	ev := ContactEvent{Phase: ContactStarted, A: GroundEntity(), B: PlayerEntity(arena.Key{})}

	if _, ok := m.match(ev); ok {
		t.Fatalf("OnStop matcher matched a started contact")
	}

	ev.Phase = ContactStopped
	got, ok := m.match(ev)
	if !ok {
		t.Fatalf("OnStop matcher missed a stopped contact")
	}
	if got.A.Kind != KindPlayer || got.B.Kind != KindGround {
		t.Fatalf("got (%s, %s), want player first", got.A, got.B)
	}

	p := ProximityMatcher[struct{}]{
		First:  Is(KindPlayer),
		Handle: func(ProximityEvent, struct{}) {},
	}
	for _, state := range []Proximity{Intersecting, Disjoint} {
		if _, ok := p.match(ProximityEvent{State: state, A: GroundEntity(), B: PlayerEntity(arena.Key{})}); !ok {
			t.Fatalf("matcher with no phases missed %s", state)
		}
	}
}
