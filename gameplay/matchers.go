package gameplay

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/physics"
	"go.uber.org/zap"
)

var solids = physics.Is(physics.KindGround, physics.KindPlatform, physics.KindWall, physics.KindChest)

// InstallMatchers registers the game's collision rules on sim. Handlers look
// every object up by key, so an object that went away earlier in the same
// step is skipped.
func InstallMatchers(sim *Simulation) {
	sim.AddContactMatcher(physics.ContactMatcher[*WorldView]{
		Name:   "bullet_hits_enemy",
		First:  physics.Is(physics.KindBullet),
		Second: physics.Is(physics.KindEnemy),
		Phases: physics.OnStart,
		Handle: bulletHitsEnemy,
	})
	sim.AddContactMatcher(physics.ContactMatcher[*WorldView]{
		Name:   "bullet_hits_solid",
		First:  physics.Is(physics.KindBullet),
		Second: solids,
		Phases: physics.OnStart,
		Handle: func(ev physics.ContactEvent, w *WorldView) {
			w.DespawnBullet(ev.A.Key)
		},
	})
	sim.AddContactMatcher(physics.ContactMatcher[*WorldView]{
		Name:   "enemy_hits_player",
		First:  physics.Is(physics.KindEnemy),
		Second: physics.Is(physics.KindPlayer),
		Phases: physics.OnStart,
		Handle: enemyHitsPlayer,
	})
	sim.AddContactMatcher(physics.ContactMatcher[*WorldView]{
		Name:   "player_opens_chest",
		First:  physics.Is(physics.KindPlayer),
		Second: physics.Is(physics.KindChest),
		Phases: physics.OnStart,
		Handle: playerOpensChest,
	})

	sim.AddProximityMatcher(physics.ProximityMatcher[*WorldView]{
		Name:   "player_footing",
		First:  physics.Is(physics.KindPlayer),
		Second: solids,
		Handle: playerFooting,
	})
	sim.AddProximityMatcher(physics.ProximityMatcher[*WorldView]{
		Name:   "player_collects_item",
		First:  physics.Is(physics.KindPlayer),
		Second: physics.Is(physics.KindItem),
		Phases: physics.OnStart,
		Handle: playerCollectsItem,
	})
	sim.AddProximityMatcher(physics.ProximityMatcher[*WorldView]{
		Name:   "player_takes_buff",
		First:  physics.Is(physics.KindPlayer),
		Second: physics.Is(physics.KindBuffBox),
		Phases: physics.OnStart,
		Handle: playerTakesBuff,
	})
	sim.AddProximityMatcher(physics.ProximityMatcher[*WorldView]{
		Name:   "player_equips_weapon",
		First:  physics.Is(physics.KindPlayer),
		Second: physics.Is(physics.KindWeapon),
		Phases: physics.OnStart,
		Handle: playerEquipsWeapon,
	})
}

func (w *WorldView) damage(in DamageInput) int {
	amount, err := w.rules.Damage(in)
	if err != nil {
		w.log.Warn("damage rules failed, using base damage",
			zap.String("rules", w.rules.Name()),
			zap.String("attacker", in.Attacker),
			zap.Error(err),
		)
		return in.Base
	}
	return amount
}

func bulletHitsEnemy(ev physics.ContactEvent, w *WorldView) {
	bullet, ok := w.Bullets.Get(ev.A.Key)
	if !ok {
		return
	}
	enemy := w.Enemies.GetPtr(ev.B.Key)
	if enemy == nil {
		return
	}
	w.DespawnBullet(ev.A.Key)

	multiplier := 1.0
	if owner, ok := w.Players.Get(bullet.Owner); ok {
		multiplier = owner.Multiplier
	}
	amount := w.damage(DamageInput{
		Attacker:     "bullet",
		Base:         bullet.Damage,
		Multiplier:   multiplier,
		TargetHealth: enemy.Health,
	})
	enemy.Health -= amount
	w.emit(EventHit, ev.B, amount)
	if enemy.Health > 0 {
		return
	}

	pos := enemy.Body.Handle().Position()
	w.DespawnEnemy(ev.B.Key)
	w.emit(EventKill, ev.B, 0)
	if owner := w.Players.GetPtr(bullet.Owner); owner != nil {
		owner.Score++
	}
	w.SpawnItem(ItemCoin, 1, pos)
}

func enemyHitsPlayer(ev physics.ContactEvent, w *WorldView) {
	if !w.Enemies.Contains(ev.A.Key) {
		return
	}
	p := w.Players.GetPtr(ev.B.Key)
	if p == nil {
		return
	}
	amount := w.damage(DamageInput{
		Attacker:     "enemy",
		Base:         1,
		Multiplier:   1,
		TargetHealth: p.Health,
	})
	p.Health -= amount
	w.emit(EventHurt, ev.B, amount)
	if p.Health > 0 {
		return
	}
	p.Deaths++
	w.RedeployPlayer(ev.B.Key, p.Spawn)
}

func playerOpensChest(ev physics.ContactEvent, w *WorldView) {
	chest := w.Chests.GetPtr(ev.B.Key)
	if chest == nil || chest.Opened || !w.Players.Contains(ev.A.Key) {
		return
	}
	chest.Opened = true
	w.emit(EventChestOpened, ev.B, 0)

	bb := chest.Shape.Handle().BB()
	value := 5
	if chest.Loot == ItemHealth {
		value = 2
	}
	w.SpawnItem(chest.Loot, value, cp.Vector{X: (bb.L + bb.R) / 2, Y: bb.B - pickupSize})
}

// playerFooting counts solids under the foot sensor. The hull is not a sensor,
// so only the feet produce proximity events against solids.
func playerFooting(ev physics.ProximityEvent, w *WorldView) {
	p := w.Players.GetPtr(ev.A.Key)
	if p == nil || ev.ShapeA != p.Feet.Handle() {
		return
	}
	key := ev.A.Key.Pack()
	n, _ := w.footing.Get(key)
	switch ev.State {
	case physics.Intersecting:
		if n == 0 {
			w.emit(EventLanded, ev.A, 0)
		}
		w.footing.Put(key, n+1)
	case physics.Disjoint:
		if n <= 1 {
			w.footing.Del(key)
			return
		}
		w.footing.Put(key, n-1)
	}
}

func playerCollectsItem(ev physics.ProximityEvent, w *WorldView) {
	p := w.Players.GetPtr(ev.A.Key)
	item, ok := w.Items.Get(ev.B.Key)
	if p == nil || !ok {
		return
	}
	switch item.Kind {
	case ItemCoin:
		p.Score += item.Value
	case ItemHealth:
		p.Health = min(p.Health+item.Value, playerHealth)
	}
	w.DespawnItem(ev.B.Key)
	w.emit(EventPickup, ev.A, item.Value)
}

func playerTakesBuff(ev physics.ProximityEvent, w *WorldView) {
	p := w.Players.GetPtr(ev.A.Key)
	box, ok := w.BuffBoxes.Remove(ev.B.Key)
	if !ok {
		return
	}
	box.Shape.Destroy()
	if p == nil {
		return
	}
	p.Multiplier = box.Multiplier
	p.BuffFrames = box.Frames
	w.emit(EventBuff, ev.A, box.Frames)
}

func playerEquipsWeapon(ev physics.ProximityEvent, w *WorldView) {
	p := w.Players.GetPtr(ev.A.Key)
	weapon := w.Weapons.GetPtr(ev.B.Key)
	if p == nil || weapon == nil || weapon.Held {
		return
	}
	if p.HasWeapon {
		// the previous weapon is dropped for good
		w.Weapons.Remove(p.Weapon)
	}
	weapon.Shape.Destroy()
	weapon.Held = true
	weapon.Owner = ev.A.Key
	p.Weapon = ev.B.Key
	p.HasWeapon = true
	w.emit(EventEquip, ev.A, weapon.Damage)
}
