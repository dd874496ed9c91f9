// Package gameplay is the game state the physics matchers operate on: arenas
// of players, enemies, bullets and pickups, plus the level geometry.
package gameplay

import (
	"github.com/jakecoffman/cp"
	"github.com/kamstrup/intmap"
	"github.com/milk9111/physlink/arena"
	"github.com/milk9111/physlink/config"
	"github.com/milk9111/physlink/physics"
	"go.uber.org/zap"
)

// Simulation is the physics simulation specialised to this package's view.
type Simulation = physics.Simulation[*WorldView]

type EventKind uint8

const (
	EventSpawn EventKind = iota
	EventHit
	EventKill
	EventPickup
	EventBuff
	EventEquip
	EventChestOpened
	EventLanded
	EventHurt
	EventRedeploy
)

var eventNames = [...]string{
	EventSpawn:       "spawn",
	EventHit:         "hit",
	EventKill:        "kill",
	EventPickup:      "pickup",
	EventBuff:        "buff",
	EventEquip:       "equip",
	EventChestOpened: "chest",
	EventLanded:      "landed",
	EventHurt:        "hurt",
	EventRedeploy:    "redeploy",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event is something that happened during a frame, kept for the HUD and sound.
type Event struct {
	Kind    EventKind
	Subject physics.Entity
	Amount  int
}

// WorldView is the mutable game state handed to every matcher handler.
type WorldView struct {
	sim      *Simulation
	rules    *DamageRules
	log      *zap.Logger
	settings config.Sandbox

	Players    *arena.Arena[Player]
	Enemies    *arena.Arena[Enemy]
	Bullets    *arena.Arena[Bullet]
	Items      *arena.Arena[Item]
	Generators *arena.Arena[Generator]
	Chests     *arena.Arena[Chest]
	BuffBoxes  *arena.Arena[BuffBox]
	Weapons    *arena.Arena[Weapon]

	Ground    *physics.RegisteredShape
	Walls     []*physics.RegisteredShape
	Platforms []*physics.RegisteredShape

	// foot sensor overlaps per player, keyed by arena.Key.Pack
	footing *intmap.Map[uint64, int]
	events  []Event
	frame   uint64
}

// NewWorld creates an empty world bound to sim and installs the standard
// matchers on it. A nil rules uses the built-in damage rules.
func NewWorld(sim *Simulation, rules *DamageRules, settings config.Sandbox, log *zap.Logger) *WorldView {
	if rules == nil {
		rules = DefaultDamageRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	w := &WorldView{
		sim:        sim,
		rules:      rules,
		log:        log,
		settings:   settings,
		Players:    arena.New[Player](4),
		Enemies:    arena.New[Enemy](32),
		Bullets:    arena.New[Bullet](64),
		Items:      arena.New[Item](16),
		Generators: arena.New[Generator](4),
		Chests:     arena.New[Chest](4),
		BuffBoxes:  arena.New[BuffBox](4),
		Weapons:    arena.New[Weapon](4),
		footing:    intmap.New[uint64, int](4),
	}
	InstallMatchers(sim)
	return w
}

func (w *WorldView) Simulation() *Simulation {
	if w == nil {
		return nil
	}
	return w.sim
}

// SetRules swaps the damage rules, e.g. after the rules file changed.
func (w *WorldView) SetRules(rules *DamageRules) {
	if w == nil || rules == nil {
		return
	}
	w.rules = rules
}

func (w *WorldView) Rules() *DamageRules {
	if w == nil {
		return nil
	}
	return w.rules
}

func (w *WorldView) Frame() uint64 {
	if w == nil {
		return 0
	}
	return w.frame
}

func (w *WorldView) emit(kind EventKind, subject physics.Entity, amount int) {
	w.events = append(w.events, Event{Kind: kind, Subject: subject, Amount: amount})
}

// DrainEvents returns the events since the last call.
func (w *WorldView) DrainEvents() []Event {
	if w == nil || len(w.events) == 0 {
		return nil
	}
	out := w.events
	w.events = nil
	return out
}

// Grounded reports whether the player's foot sensor touches anything solid.
func (w *WorldView) Grounded(key arena.Key) bool {
	if w == nil {
		return false
	}
	n, _ := w.footing.Get(key.Pack())
	return n > 0
}

// BuildLevel adds the ground, the side walls and a row of platforms.
func (w *WorldView) BuildLevel(width, height float64) {
	if w == nil || w.sim == nil || width <= 0 || height <= 0 {
		return
	}
	static := w.sim.Space().StaticBody

	ground := cp.NewSegment(static, cp.Vector{X: 0, Y: height}, cp.Vector{X: width, Y: height}, 4)
	w.Ground = w.addSolid(ground, physics.GroundEntity())

	sides := []struct{ a, b cp.Vector }{
		{cp.Vector{X: 0, Y: 0}, cp.Vector{X: 0, Y: height}},
		{cp.Vector{X: width, Y: 0}, cp.Vector{X: width, Y: height}},
	}
	for i, s := range sides {
		wall := cp.NewSegment(static, s.a, s.b, 4)
		w.Walls = append(w.Walls, w.addSolid(wall, physics.WallEntity(i)))
	}

	const platformW, platformH = 160.0, 16.0
	rows := []cp.Vector{
		{X: width * 0.25, Y: height - 140},
		{X: width * 0.75, Y: height - 140},
		{X: width * 0.5, Y: height - 260},
	}
	for i, c := range rows {
		bb := cp.NewBBForExtents(c, platformW/2, platformH/2)
		w.Platforms = append(w.Platforms, w.addSolid(cp.NewBox2(static, bb, 0), physics.PlatformEntity(i)))
	}
}

func (w *WorldView) addSolid(shape *cp.Shape, e physics.Entity) *physics.RegisteredShape {
	shape.SetFriction(0.8)
	shape.SetFilter(filterSolid)
	return w.sim.AddStaticShape(shape, collisionTypeSolid, e)
}

// Update runs the per-frame rules that are not driven by collisions.
func (w *WorldView) Update() {
	if w == nil {
		return
	}
	w.frame++

	for key, g := range w.Generators.All() {
		g.timer++
		if g.timer < g.Period || g.Alive >= g.Limit {
			continue
		}
		g.timer = 0
		if _, ok := w.SpawnEnemy(g.Pos, key, true); ok {
			g.Alive++
		}
	}

	var expired []arena.Key
	for key, b := range w.Bullets.All() {
		b.TTL--
		if b.TTL <= 0 {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		w.DespawnBullet(key)
	}

	target, hasTarget := w.firstPlayerPosition()
	for _, e := range w.Enemies.All() {
		if !hasTarget {
			break
		}
		body := e.Body.Handle()
		v := body.Velocity()
		switch pos := body.Position(); {
		case target.X < pos.X-4:
			body.SetVelocity(-enemySpeed, v.Y)
		case target.X > pos.X+4:
			body.SetVelocity(enemySpeed, v.Y)
		default:
			body.SetVelocity(0, v.Y)
		}
	}

	for _, p := range w.Players.All() {
		if p.cooldown > 0 {
			p.cooldown--
		}
		if p.BuffFrames > 0 {
			p.BuffFrames--
			if p.BuffFrames == 0 {
				p.Multiplier = 1
			}
		}
	}
}

func (w *WorldView) firstPlayerPosition() (cp.Vector, bool) {
	for _, p := range w.Players.All() {
		return p.Body.Handle().Position(), true
	}
	return cp.Vector{}, false
}
