package gameplay

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/arena"
	"github.com/milk9111/physlink/physics"
	"go.uber.org/zap"
)

type destroyer interface {
	Destroy()
}

// commit stores value in its reserved slot. When the slot went stale in the
// meantime, the physics objects built for it are destroyed so no tag is left
// pointing at an empty slot.
func commit[T any](slot *arena.VacantEntry[T], value T, owned ...destroyer) (arena.Key, bool) {
	key := slot.Key()
	if !slot.Insert(value) {
		for _, o := range owned {
			o.Destroy()
		}
		return arena.Key{}, false
	}
	return key, true
}

// SpawnPlayer creates a player at pos. The arena slot is reserved first so the
// physics objects can be tagged with the player's own key.
func (w *WorldView) SpawnPlayer(pos cp.Vector) (arena.Key, bool) {
	slot := w.Players.VacantEntry()
	key := slot.Key()

	p := Player{
		Spawn:      pos,
		Health:     playerHealth,
		Facing:     1,
		Multiplier: 1,
	}
	w.attachPlayerBody(&p, physics.PlayerEntity(key), pos)
	if _, ok := commit(slot, p, p.Feet, p.Hull, p.Body); !ok {
		return arena.Key{}, false
	}

	w.emit(EventSpawn, physics.PlayerEntity(key), 0)
	w.log.Debug("player spawned", zap.Stringer("key", key))
	return key, true
}

func (w *WorldView) attachPlayerBody(p *Player, e physics.Entity, pos cp.Vector) {
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(pos)
	p.Body = w.sim.AddBody(body, e)

	hull := cp.NewBox(body, playerWidth, playerHeight, 0)
	hull.SetFriction(0.8)
	hull.SetFilter(filterPlayer)
	p.Hull = w.sim.AddShape(hull, collisionTypePlayer, e)

	bb := cp.BB{L: -playerWidth * 0.45, B: playerHeight / 2, R: playerWidth * 0.45, T: playerHeight/2 + 2}
	feet := cp.NewBox2(body, bb, 0)
	feet.SetSensor(true)
	feet.SetFilter(filterFeet)
	p.Feet = w.sim.AddShape(feet, collisionTypeFeet, e)
}

// RedeployPlayer tears down the player's physics body and builds a fresh one
// at pos. The player keeps its key, so the new shapes carry the same Entity.
func (w *WorldView) RedeployPlayer(key arena.Key, pos cp.Vector) bool {
	p := w.Players.GetPtr(key)
	if p == nil {
		return false
	}
	p.Body.Destroy()
	p.Hull.Destroy()
	p.Feet.Destroy()
	w.footing.Del(key.Pack())

	w.attachPlayerBody(p, physics.PlayerEntity(key), pos)
	p.Health = playerHealth
	p.Redeploys++
	w.emit(EventRedeploy, physics.PlayerEntity(key), 0)
	w.log.Debug("player redeployed", zap.Stringer("key", key), zap.Int("redeploys", p.Redeploys))
	return true
}

// SpawnEnemy creates an enemy at pos, optionally owned by a generator.
func (w *WorldView) SpawnEnemy(pos cp.Vector, generator arena.Key, fromGenerator bool) (arena.Key, bool) {
	slot := w.Enemies.VacantEntry()
	key := slot.Key()
	e := physics.EnemyEntity(key)

	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(pos)
	shape := cp.NewBox(body, enemySize, enemySize, 0)
	shape.SetFriction(0.8)
	shape.SetFilter(filterEnemy)

	enemy := Enemy{
		Body:         w.sim.AddBody(body, e),
		Shape:        w.sim.AddShape(shape, collisionTypeEnemy, e),
		Health:       enemyHealth,
		Generator:    generator,
		HasGenerator: fromGenerator,
	}
	if _, ok := commit(slot, enemy, enemy.Shape, enemy.Body); !ok {
		return arena.Key{}, false
	}
	w.emit(EventSpawn, e, 0)
	return key, true
}

// DespawnEnemy removes the enemy and its physics body.
func (w *WorldView) DespawnEnemy(key arena.Key) bool {
	enemy, ok := w.Enemies.Remove(key)
	if !ok {
		return false
	}
	enemy.Body.Destroy()
	enemy.Shape.Destroy()
	if enemy.HasGenerator {
		if g := w.Generators.GetPtr(enemy.Generator); g != nil && g.Alive > 0 {
			g.Alive--
		}
	}
	return true
}

// Fire shoots a bullet from the player in the direction it faces.
func (w *WorldView) Fire(owner arena.Key) (arena.Key, bool) {
	p := w.Players.GetPtr(owner)
	if p == nil || p.cooldown > 0 {
		return arena.Key{}, false
	}

	damage, cooldown := defaultDamage, fireCooldown
	if p.HasWeapon {
		if weapon, ok := w.Weapons.Get(p.Weapon); ok {
			damage, cooldown = weapon.Damage, weapon.Cooldown
		}
	}
	p.cooldown = cooldown

	slot := w.Bullets.VacantEntry()
	key := slot.Key()
	e := physics.BulletEntity(key, owner)

	origin := p.Body.Handle().Position()
	origin.X += p.Facing * (playerWidth/2 + bulletRadius + 2)

	body := cp.NewBody(0.1, math.Inf(1))
	body.SetPosition(origin)
	body.SetVelocity(p.Facing*w.settings.BulletSpeed, 0)
	// bullets fly straight
	body.SetVelocityUpdateFunc(func(body *cp.Body, _ cp.Vector, _ float64, dt float64) {
		cp.BodyUpdateVelocity(body, cp.Vector{}, 1, dt)
	})
	shape := cp.NewCircle(body, bulletRadius, cp.Vector{})
	shape.SetFilter(filterBullet)

	bullet := Bullet{
		Body:   w.sim.AddBody(body, e),
		Shape:  w.sim.AddShape(shape, collisionTypeBullet, e),
		Owner:  owner,
		Damage: damage,
		TTL:    bulletTTL,
	}
	return commit(slot, bullet, bullet.Shape, bullet.Body)
}

func (w *WorldView) DespawnBullet(key arena.Key) bool {
	bullet, ok := w.Bullets.Remove(key)
	if !ok {
		return false
	}
	bullet.Body.Destroy()
	bullet.Shape.Destroy()
	return true
}

func (w *WorldView) pickupShape(pos cp.Vector, size float64) *cp.Shape {
	bb := cp.NewBBForExtents(pos, size/2, size/2)
	shape := cp.NewBox2(w.sim.Space().StaticBody, bb, 0)
	shape.SetSensor(true)
	shape.SetFilter(filterPickup)
	return shape
}

// SpawnItem drops a pickup at pos.
func (w *WorldView) SpawnItem(kind ItemKind, value int, pos cp.Vector) (arena.Key, bool) {
	slot := w.Items.VacantEntry()
	shape := w.sim.AddStaticShape(w.pickupShape(pos, pickupSize), collisionTypePickup, physics.ItemEntity(slot.Key()))
	return commit(slot, Item{Shape: shape, Kind: kind, Value: value}, shape)
}

func (w *WorldView) DespawnItem(key arena.Key) bool {
	item, ok := w.Items.Remove(key)
	if !ok {
		return false
	}
	item.Shape.Destroy()
	return true
}

func (w *WorldView) SpawnBuffBox(pos cp.Vector, multiplier float64, frames int) (arena.Key, bool) {
	slot := w.BuffBoxes.VacantEntry()
	shape := w.sim.AddStaticShape(w.pickupShape(pos, pickupSize*1.5), collisionTypePickup, physics.BuffBoxEntity(slot.Key()))
	return commit(slot, BuffBox{Shape: shape, Multiplier: multiplier, Frames: frames}, shape)
}

// SpawnWeapon places a weapon on the floor. Picking it up removes its shape;
// the carrier is recorded on the Weapon itself.
func (w *WorldView) SpawnWeapon(pos cp.Vector, damage, cooldown int) (arena.Key, bool) {
	slot := w.Weapons.VacantEntry()
	shape := w.sim.AddStaticShape(w.pickupShape(pos, pickupSize), collisionTypePickup, physics.WeaponEntity(slot.Key()))
	return commit(slot, Weapon{Shape: shape, Damage: damage, Cooldown: cooldown}, shape)
}

// SpawnChest places a closed chest standing on pos.
func (w *WorldView) SpawnChest(pos cp.Vector, loot ItemKind) (arena.Key, bool) {
	slot := w.Chests.VacantEntry()

	bb := cp.NewBBForExtents(cp.Vector{X: pos.X, Y: pos.Y - chestSize/2}, chestSize/2, chestSize/2)
	shape := cp.NewBox2(w.sim.Space().StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetFilter(filterSolid)
	rs := w.sim.AddStaticShape(shape, collisionTypeChest, physics.ChestEntity(slot.Key()))
	return commit(slot, Chest{Shape: rs, Loot: loot}, rs)
}

// SpawnGenerator places an enemy generator.
func (w *WorldView) SpawnGenerator(pos cp.Vector, period, limit int) (arena.Key, bool) {
	slot := w.Generators.VacantEntry()

	shape := cp.NewCircle(w.sim.Space().StaticBody, 12, pos)
	shape.SetSensor(true)
	shape.SetFilter(filterMarker)
	rs := w.sim.AddStaticShape(shape, collisionTypeGenerator, physics.GeneratorEntity(slot.Key()))
	return commit(slot, Generator{Shape: rs, Pos: pos, Period: period, Limit: limit}, rs)
}

// Move sets the player's horizontal speed; dir is -1, 0 or 1.
func (w *WorldView) Move(key arena.Key, dir float64) {
	p := w.Players.GetPtr(key)
	if p == nil {
		return
	}
	if dir != 0 {
		p.Facing = math.Copysign(1, dir)
	}
	body := p.Body.Handle()
	body.SetVelocity(dir*moveSpeed, body.Velocity().Y)
}

// Jump pushes the player up when it stands on something.
func (w *WorldView) Jump(key arena.Key) bool {
	p := w.Players.GetPtr(key)
	if p == nil || !w.Grounded(key) {
		return false
	}
	body := p.Body.Handle()
	body.SetVelocity(body.Velocity().X, -jumpImpulse)
	return true
}
