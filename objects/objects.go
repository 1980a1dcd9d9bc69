// Package objects classifies the scene-graph entities an ObjectUpdate
// stream describes: the asset/inventory object type byte and the
// wearable-slot type byte. Both enumerations and their byte mappings are
// grounded on
// original_source/crates/messages/src/utils/object_types.rs.
package objects

// Type is an asset/inventory object type. The numeric values match the
// wire/asset-server convention the original parser encodes, not a
// sequential Go iota — gaps in the sequence are where the original
// protocol itself has gaps.
type Type uint8

const (
	TypeTexture        Type = 0
	TypeSound          Type = 1
	TypeCallingCard    Type = 2
	TypeLandmark       Type = 3
	TypeClothing       Type = 5
	TypeObject         Type = 6
	TypeNotecard       Type = 7
	TypePrim           Type = 9
	TypeScript         Type = 10
	TypeBodypart       Type = 13
	TypeTrash          Type = 14
	TypePhotoAlbum     Type = 15
	TypeLostAndFound   Type = 16
	TypeAnimation      Type = 20
	TypeGesture        Type = 21
	TypeFavorite       Type = 23
	TypeCurrentOutfit  Type = 46
	TypeAvatar         Type = 47
	TypeMyOutfit       Type = 48
	TypeReceivedItem   Type = 50
	TypeSetting        Type = 56
	TypeMaterial       Type = 57
	TypeGrass          Type = 95
	TypeNewTree        Type = 111
	TypeParticleSystem Type = 143
	TypeTree           Type = 255
	TypeUnknown        Type = 99
)

// TypeFromByte maps a wire byte to its Type, falling back to TypeUnknown
// for any value the protocol hasn't assigned (or TypeUnknown's own 99,
// which round-trips as itself).
func TypeFromByte(b uint8) Type {
	switch Type(b) {
	case TypeTexture, TypeSound, TypeCallingCard, TypeLandmark, TypeClothing,
		TypeObject, TypeNotecard, TypePrim, TypeScript, TypeBodypart, TypeTrash,
		TypePhotoAlbum, TypeLostAndFound, TypeAnimation, TypeGesture, TypeFavorite,
		TypeCurrentOutfit, TypeAvatar, TypeMyOutfit, TypeReceivedItem, TypeSetting,
		TypeMaterial, TypeGrass, TypeNewTree, TypeParticleSystem, TypeTree:
		return Type(b)
	default:
		return TypeUnknown
	}
}

func (t Type) Byte() uint8 { return uint8(t) }

// String renders the capability-endpoint string form of a Type (e.g.
// "calling_card"), matching the original's to_string mapping.
func (t Type) String() string {
	switch t {
	case TypeTexture:
		return "texture"
	case TypeSound:
		return "sound"
	case TypeCallingCard:
		return "calling_card"
	case TypeLandmark:
		return "landmark"
	case TypeClothing:
		return "clothing"
	case TypeObject:
		return "object"
	case TypeNotecard:
		return "notecard"
	case TypePrim:
		return "prim"
	case TypeScript:
		return "script"
	case TypeBodypart:
		return "bodypart"
	case TypeTrash:
		return "trash"
	case TypePhotoAlbum:
		return "photo_album"
	case TypeLostAndFound:
		return "lost_and_found"
	case TypeAnimation:
		return "animation"
	case TypeGesture:
		return "gesture"
	case TypeFavorite:
		return "favorite"
	case TypeCurrentOutfit:
		return "current_outfit"
	case TypeAvatar:
		return "avatar"
	case TypeMyOutfit:
		return "my_outfit"
	case TypeReceivedItem:
		return "received_item"
	case TypeSetting:
		return "setting"
	case TypeMaterial:
		return "material"
	case TypeGrass:
		return "grass"
	case TypeNewTree:
		return "new_tree"
	case TypeParticleSystem:
		return "particle_system"
	case TypeTree:
		return "tree"
	default:
		return "unknown"
	}
}

// WearableType is an outfit slot: which article of clothing or body part
// a wearable asset fills.
type WearableType uint8

const (
	WearableShape      WearableType = 0
	WearableSkin       WearableType = 1
	WearableEyes       WearableType = 3
	WearableShirt      WearableType = 4
	WearablePants      WearableType = 5
	WearableShoes      WearableType = 6
	WearableSocks      WearableType = 7
	WearableJacket     WearableType = 8
	WearableGloves     WearableType = 9
	WearableUndershirt WearableType = 10
	WearableUnderpants WearableType = 11
	WearableSkirt      WearableType = 12
	WearableUnknown    WearableType = 99
)

func WearableFromByte(b uint8) WearableType {
	switch WearableType(b) {
	case WearableShape, WearableSkin, WearableEyes, WearableShirt, WearablePants,
		WearableShoes, WearableSocks, WearableJacket, WearableGloves,
		WearableUndershirt, WearableUnderpants, WearableSkirt:
		return WearableType(b)
	default:
		return WearableUnknown
	}
}

func (w WearableType) Byte() uint8 { return uint8(w) }

// Category returns which broad object Type a wearable slot falls under:
// body parts (shape/skin/eyes) vs. clothing (everything else), matching
// the original's category() mapping.
func (w WearableType) Category() Type {
	switch w {
	case WearableShape, WearableSkin, WearableEyes:
		return TypeBodypart
	case WearableShirt, WearablePants, WearableShoes, WearableSocks,
		WearableJacket, WearableGloves, WearableUndershirt, WearableUnderpants,
		WearableSkirt:
		return TypeClothing
	default:
		return TypeUnknown
	}
}
