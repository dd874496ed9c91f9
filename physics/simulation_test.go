package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/arena"
	"github.com/milk9111/physlink/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	typePlayer cp.CollisionType = iota + 1
	typeGround
	typeItem
)

const dt = 1.0 / 60.0

type recorder struct {
	contacts    []ContactEvent
	proximities []ProximityEvent
}

func newTestSimulation(t *testing.T) *Simulation[*recorder] {
	t.Helper()
	settings := config.Default().Physics
	settings.GravityY = 0
	return New[*recorder](settings, WithLogger(zaptest.NewLogger(t)))
}

func addBox(sim *Simulation[*recorder], x, y float64, ct cp.CollisionType, e Entity) (*RegisteredBody, *RegisteredShape) {
	body := cp.NewBody(1, cp.MomentForBox(1, 20, 20))
	body.SetPosition(cp.Vector{X: x, Y: y})
	rb := sim.AddBody(body, e)
	rs := sim.AddShape(cp.NewBox(body, 20, 20, 0), ct, e)
	return rb, rs
}

func addStaticBox(sim *Simulation[*recorder], x, y float64, ct cp.CollisionType, e Entity) *RegisteredShape {
	bb := cp.NewBBForExtents(cp.Vector{X: x, Y: y}, 10, 10)
	return sim.AddStaticShape(cp.NewBox2(sim.Space().StaticBody, bb, 0), ct, e)
}

func TestStepOrientsContactForMatcher(t *testing.T) {
	sim := newTestSimulation(t)
	player := PlayerEntity(arena.Key{Index: 0})
	addBox(sim, 0, 0, typePlayer, player)
	addStaticBox(sim, 0, 5, typeGround, GroundEntity())

	var groundFirst, enemyGround, playerAny int
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		Name:   "ground_player",
		First:  Is(KindGround),
		Second: Is(KindPlayer),
		Handle: func(ev ContactEvent, rec *recorder) {
			groundFirst++
			assert.Equal(t, GroundEntity(), ev.A)
			assert.Equal(t, player, ev.B)
			rec.contacts = append(rec.contacts, ev)
		},
	})
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		Name:   "enemy_ground",
		First:  Is(KindEnemy),
		Second: Is(KindGround),
		Handle: func(ContactEvent, *recorder) { enemyGround++ },
	})
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		Name:  "player_any",
		First: Is(KindPlayer),
		Handle: func(ev ContactEvent, _ *recorder) {
			playerAny++
			assert.Equal(t, KindPlayer, ev.A.Kind)
		},
	})

	rec := &recorder{}
	report := sim.Step(dt, rec)

	assert.Equal(t, 1, report.Raw, "both wildcard callbacks collapse into one event")
	assert.Equal(t, 1, report.Contacts)
	assert.Equal(t, 0, report.Dropped)
	assert.Equal(t, 2, report.Dispatched)
	assert.Equal(t, 1, groundFirst)
	assert.Equal(t, 0, enemyGround)
	assert.Equal(t, 1, playerAny)

	require.Len(t, rec.contacts, 1)
	ev := rec.contacts[0]
	assert.Equal(t, ContactStarted, ev.Phase)
	assert.Equal(t, sim.Space().StaticBody, ev.ShapeA.Body())
}

func TestStepReportsSeparation(t *testing.T) {
	sim := newTestSimulation(t)
	body, _ := addBox(sim, 0, 0, typePlayer, PlayerEntity(arena.Key{}))
	addStaticBox(sim, 0, 5, typeGround, GroundEntity())

	var phases []ContactPhase
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		First:  Is(KindPlayer),
		Second: Is(KindGround),
		Handle: func(ev ContactEvent, _ *recorder) { phases = append(phases, ev.Phase) },
	})

	sim.Step(dt, nil)
	body.Handle().SetPosition(cp.Vector{X: 500, Y: 500})
	body.Handle().SetVelocity(0, 0)
	sim.Step(dt, nil)
	sim.Step(dt, nil)

	assert.Equal(t, []ContactPhase{ContactStarted, ContactStopped}, phases)
}

func TestStepSensorProducesProximity(t *testing.T) {
	sim := newTestSimulation(t)
	player := PlayerEntity(arena.Key{Index: 3})

	body := cp.NewBody(1, cp.MomentForBox(1, 20, 20))
	rb := sim.AddBody(body, player)
	feet := cp.NewBox(body, 10, 4, 0)
	feet.SetSensor(true)
	sim.AddShape(feet, typePlayer, player)
	addStaticBox(sim, 0, 8, typeGround, GroundEntity())

	var contacts int
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		First:  Any(),
		Handle: func(ContactEvent, *recorder) { contacts++ },
	})
	sim.AddProximityMatcher(ProximityMatcher[*recorder]{
		Name:   "feet",
		First:  Is(KindPlayer),
		Second: Is(KindGround),
		Handle: func(ev ProximityEvent, rec *recorder) {
			assert.Equal(t, player, ev.A)
			assert.True(t, ev.ShapeA.Sensor())
			rec.proximities = append(rec.proximities, ev)
		},
	})

	rec := &recorder{}
	report := sim.Step(dt, rec)
	assert.Equal(t, 1, report.Proximities)
	assert.Equal(t, 0, report.Contacts)

	rb.Handle().SetPosition(cp.Vector{X: 400})
	sim.Step(dt, rec)

	assert.Zero(t, contacts)
	require.Len(t, rec.proximities, 2)
	assert.Equal(t, Intersecting, rec.proximities[0].State)
	assert.Equal(t, Disjoint, rec.proximities[1].State)
}

func TestStepResolvesAllBeforeDispatch(t *testing.T) {
	sim := newTestSimulation(t)
	addBox(sim, 0, 0, typePlayer, PlayerEntity(arena.Key{}))
	items := []*RegisteredShape{
		addStaticBox(sim, -12, 0, typeItem, ItemEntity(arena.Key{Index: 0})),
		addStaticBox(sim, 12, 0, typeItem, ItemEntity(arena.Key{Index: 1})),
	}

	var seen []Entity
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		First:  Is(KindPlayer),
		Second: Is(KindItem),
		Handle: func(ev ContactEvent, _ *recorder) {
			seen = append(seen, ev.B)
			// the first pickup wipes every item, including the one the
			// second event is about
			for _, it := range items {
				it.Destroy()
			}
		},
	})

	report := sim.Step(dt, nil)
	assert.Equal(t, 2, report.Contacts)
	assert.Equal(t, 2, report.Dispatched)
	assert.ElementsMatch(t, []Entity{ItemEntity(arena.Key{Index: 0}), ItemEntity(arena.Key{Index: 1})}, seen)
	// the player's body and box are all that stay registered
	assert.Equal(t, 2, sim.Registrar().Len())
	for _, it := range items {
		_, ok := sim.ResolveShape(it.Handle())
		assert.False(t, ok, "a fresh lookup after dispatch misses")
	}

	// the separations caused by the removals are stale by now
	report = sim.Step(dt, nil)
	assert.Equal(t, 2, report.Raw)
	assert.Equal(t, 2, report.Dropped)
	assert.Equal(t, 0, report.Dispatched)
	assert.Len(t, seen, 2)
}

func TestStepDropsUnregisteredShapes(t *testing.T) {
	sim := newTestSimulation(t)
	_, shape := addBox(sim, 0, 0, typePlayer, PlayerEntity(arena.Key{}))
	addStaticBox(sim, 0, 5, typeGround, Entity{})

	var calls int
	sim.AddContactMatcher(ContactMatcher[*recorder]{
		First:  Any(),
		Handle: func(ContactEvent, *recorder) { calls++ },
	})

	report := sim.Step(dt, nil)
	assert.Equal(t, 1, report.Dropped)
	assert.Zero(t, calls)
	assert.True(t, shape.IsRegistered())
}

func TestResolveShapeFallsBackToBody(t *testing.T) {
	sim := newTestSimulation(t)
	enemy := EnemyEntity(arena.Key{Index: 9, Generation: 2})
	body := cp.NewBody(1, 1)
	sim.AddBody(body, enemy)
	shape := sim.AddShape(cp.NewCircle(body, 4, cp.Vector{}), 0, Entity{})

	got, ok := sim.ResolveShape(shape.Handle())
	require.True(t, ok)
	assert.Equal(t, enemy, got)

	_, ok = sim.ResolveShape(nil)
	assert.False(t, ok)
}

func TestAddStaticShapeRejectsDynamicBodies(t *testing.T) {
	sim := newTestSimulation(t)
	body := cp.NewBody(1, 1)
	assert.Panics(t, func() {
		sim.AddStaticShape(cp.NewCircle(body, 1, cp.Vector{}), typeGround, GroundEntity())
	})
}

func TestMatcherRegistrationNeedsHandler(t *testing.T) {
	sim := newTestSimulation(t)
	assert.Panics(t, func() {
		sim.AddContactMatcher(ContactMatcher[*recorder]{Name: "broken", First: Any()})
	})
	assert.Panics(t, func() {
		sim.AddProximityMatcher(ProximityMatcher[*recorder]{Name: "broken", Handle: func(ProximityEvent, *recorder) {}})
	})
}

func TestConfigureAndAdvance(t *testing.T) {
	sim := newTestSimulation(t)

	settings := sim.Settings()
	settings.Iterations = 5
	settings.GravityY = -10
	settings.MaxSteps = 3
	sim.Configure(settings)
	assert.Equal(t, uint(5), sim.Space().Iterations)
	assert.Equal(t, cp.Vector{Y: -10}, sim.Space().Gravity())

	sim.Configure(config.Physics{})
	assert.Equal(t, uint(5), sim.Space().Iterations, "zero iterations keep the current value")
	assert.Equal(t, settings.TimeStep, sim.Settings().TimeStep)

	sim.Advance(settings.TimeStep*2.5, nil)
	assert.Equal(t, uint64(2), sim.Steps())

	sim.Advance(settings.TimeStep*0.6, nil)
	assert.Equal(t, uint64(3), sim.Steps(), "leftover time carries over")

	sim.Advance(settings.TimeStep*10, nil)
	assert.Equal(t, uint64(6), sim.Steps(), "steps per call are capped")
}

func TestCollectorDedup(t *testing.T) {
	c := newCollector()
	a := &cp.Shape{}
	b := &cp.Shape{}
	a.SetHashId(2)
	b.SetHashId(1)

	c.pending = append(c.pending,
		rawEvent{begin: true, a: b, b: a, ha: 1, hb: 2},
		rawEvent{begin: true, a: b, b: a, ha: 1, hb: 2},
		rawEvent{begin: false, a: b, b: a, ha: 1, hb: 2},
	)
	out := c.drain()
	require.Len(t, out, 2)
	assert.True(t, out[0].begin)
	assert.False(t, out[1].begin)
	assert.Nil(t, c.drain())
}
