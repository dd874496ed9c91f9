package gameplay

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlink/arena"
	"github.com/milk9111/physlink/physics"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypePlayer
	collisionTypeFeet
	collisionTypeEnemy
	collisionTypeBullet
	collisionTypePickup
	collisionTypeChest
	collisionTypeGenerator
)

// Shape filter categories. Feet only see solids so a foot sensor brushing an
// item never counts as the player touching it.
const (
	categorySolid uint = 1 << iota
	categoryPlayer
	categoryFeet
	categoryEnemy
	categoryBullet
	categoryPickup
)

var (
	filterSolid  = cp.NewShapeFilter(cp.NO_GROUP, categorySolid, categoryPlayer|categoryFeet|categoryEnemy|categoryBullet)
	filterPlayer = cp.NewShapeFilter(cp.NO_GROUP, categoryPlayer, categorySolid|categoryEnemy|categoryPickup)
	filterFeet   = cp.NewShapeFilter(cp.NO_GROUP, categoryFeet, categorySolid)
	filterEnemy  = cp.NewShapeFilter(cp.NO_GROUP, categoryEnemy, categorySolid|categoryPlayer|categoryBullet)
	filterBullet = cp.NewShapeFilter(cp.NO_GROUP, categoryBullet, categorySolid|categoryEnemy)
	filterPickup = cp.NewShapeFilter(cp.NO_GROUP, categoryPickup, categoryPlayer)
	// generators are markers; nothing collides with them
	filterMarker = cp.NewShapeFilter(cp.NO_GROUP, 0, 0)
)

const (
	playerWidth   = 24.0
	playerHeight  = 32.0
	playerHealth  = 5
	enemySize     = 28.0
	enemyHealth   = 3
	enemySpeed    = 60.0
	bulletRadius  = 4.0
	bulletTTL     = 90
	pickupSize    = 16.0
	chestSize     = 32.0
	jumpImpulse   = 420.0
	moveSpeed     = 220.0
	fireCooldown  = 12
	defaultDamage = 1
)

type Player struct {
	Body *physics.RegisteredBody
	Hull *physics.RegisteredShape
	Feet *physics.RegisteredShape

	Spawn      cp.Vector
	Health     int
	Score      int
	Deaths     int
	Facing     float64
	Weapon     arena.Key
	HasWeapon  bool
	Multiplier float64
	BuffFrames int
	Redeploys  int
	cooldown   int
}

type Enemy struct {
	Body         *physics.RegisteredBody
	Shape        *physics.RegisteredShape
	Health       int
	Generator    arena.Key
	HasGenerator bool
}

type Bullet struct {
	Body   *physics.RegisteredBody
	Shape  *physics.RegisteredShape
	Owner  arena.Key
	Damage int
	TTL    int
}

type ItemKind uint8

const (
	ItemCoin ItemKind = iota
	ItemHealth
)

func (k ItemKind) String() string {
	switch k {
	case ItemCoin:
		return "coin"
	case ItemHealth:
		return "health"
	default:
		return "unknown"
	}
}

type Item struct {
	Shape *physics.RegisteredShape
	Kind  ItemKind
	Value int
}

// Generator spawns enemies every Period frames while fewer than Limit of its
// enemies are alive.
type Generator struct {
	Shape  *physics.RegisteredShape
	Pos    cp.Vector
	Period int
	Limit  int
	Alive  int
	timer  int
}

type Chest struct {
	Shape  *physics.RegisteredShape
	Opened bool
	Loot   ItemKind
}

// BuffBox multiplies the collecting player's damage for Frames frames.
type BuffBox struct {
	Shape      *physics.RegisteredShape
	Multiplier float64
	Frames     int
}

type Weapon struct {
	Shape    *physics.RegisteredShape
	Damage   int
	Cooldown int
	Owner    arena.Key
	Held     bool
}
