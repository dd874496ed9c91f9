package physics

import (
	"fmt"

	"github.com/milk9111/physlink/arena"
)

// Kind identifies which gameplay collection an Entity points into.
type Kind uint8

const (
	KindNone Kind = iota
	KindPlayer
	KindEnemy
	KindGenerator
	KindBullet
	KindBuffBox
	KindPlatform
	KindGround
	KindWall
	KindWeapon
	KindChest
	KindItem
)

var kindNames = [...]string{
	KindNone:      "none",
	KindPlayer:    "player",
	KindEnemy:     "enemy",
	KindGenerator: "generator",
	KindBullet:    "bullet",
	KindBuffBox:   "buff_box",
	KindPlatform:  "platform",
	KindGround:    "ground",
	KindWall:      "wall",
	KindWeapon:    "weapon",
	KindChest:     "chest",
	KindItem:      "item",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Entity is a non-owning, typed back-reference from a physics handle to the
// game object it currently represents. The zero Entity means "no tag".
type Entity struct {
	Kind Kind
	// Key locates the object in the arena owned by its subsystem.
	Key arena.Key
	// Owner is the player that fired a bullet.
	Owner arena.Key
	// Index addresses objects that live in plain slices, like map platforms.
	Index int
}

func PlayerEntity(key arena.Key) Entity    { return Entity{Kind: KindPlayer, Key: key} }
func EnemyEntity(key arena.Key) Entity     { return Entity{Kind: KindEnemy, Key: key} }
func GeneratorEntity(key arena.Key) Entity { return Entity{Kind: KindGenerator, Key: key} }
func BuffBoxEntity(key arena.Key) Entity   { return Entity{Kind: KindBuffBox, Key: key} }
func ChestEntity(key arena.Key) Entity     { return Entity{Kind: KindChest, Key: key} }
func ItemEntity(key arena.Key) Entity      { return Entity{Kind: KindItem, Key: key} }
func PlatformEntity(index int) Entity      { return Entity{Kind: KindPlatform, Index: index} }
func GroundEntity() Entity                 { return Entity{Kind: KindGround} }
func WallEntity(index int) Entity          { return Entity{Kind: KindWall, Index: index} }

// BulletEntity tags a bullet fired by the player owner.
func BulletEntity(key, owner arena.Key) Entity {
	return Entity{Kind: KindBullet, Key: key, Owner: owner}
}

// WeaponEntity tags a weapon lying in the world.
func WeaponEntity(key arena.Key) Entity {
	return Entity{Kind: KindWeapon, Key: key}
}

// IsZero reports whether e carries no tag.
func (e Entity) IsZero() bool {
	return e.Kind == KindNone
}

func (e Entity) String() string {
	switch e.Kind {
	case KindNone:
		return "none"
	case KindGround:
		return "ground"
	case KindPlatform, KindWall:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
	case KindBullet:
		return fmt.Sprintf("%s(%s owner=%s)", e.Kind, e.Key, e.Owner)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
	}
}
