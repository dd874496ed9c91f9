package physics

import "github.com/milk9111/physlink/arena"

// Tag is the word a registrar writes into a body or shape UserData slot.
//
// Layout: bit 63 marks the word as a registrar tag, bits 32..62 hold the low
// 31 bits of the slot generation, bits 0..31 hold the slot index. Engine
// objects nobody registered carry nil or a zero word, which never has the
// marker set.
type Tag uint64

const (
	tagMarker  Tag    = 1 << 63
	tagGenBits        = 31
	tagGenMask uint32 = 1<<tagGenBits - 1
)

func makeTag(key arena.Key) Tag {
	return tagMarker | Tag(key.Generation&tagGenMask)<<32 | Tag(key.Index)
}

// Valid reports whether the marker bit is set.
func (t Tag) Valid() bool {
	return t&tagMarker != 0
}

func (t Tag) index() uint32 {
	return uint32(t)
}

func (t Tag) generation() uint32 {
	return uint32(t>>32) & tagGenMask
}

// matches reports whether t was minted for key. Only the low generation bits
// are stored, so a slot that is reused 2^31 times aliases; the registrar never
// holds a slot that long in practice.
func (t Tag) matches(key arena.Key) bool {
	return t.Valid() && t.index() == key.Index && t.generation() == key.Generation&tagGenMask
}

// tagFromData decodes a raw UserData value. Anything that is not a tag word
// decodes to the zero Tag.
func tagFromData(data any) Tag {
	switch v := data.(type) {
	case Tag:
		return v
	case uint64:
		return Tag(v)
	case uintptr:
		return Tag(v)
	default:
		return 0
	}
}
