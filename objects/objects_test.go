package objects

import "testing"

func TestTypeRoundTrip(t *testing.T) {
	cases := []Type{TypeTexture, TypeCallingCard, TypePrim, TypeAvatar, TypeTree}
	for _, want := range cases {
		got := TypeFromByte(want.Byte())
		if got != want {
			t.Fatalf("byte %d: got %v, want %v", want.Byte(), got, want)
		}
	}
}

func TestTypeUnknownFallback(t *testing.T) {
	if got := TypeFromByte(200); got != TypeUnknown {
		t.Fatalf("got %v, want TypeUnknown", got)
	}
}

func TestTypeString(t *testing.T) {
	if TypeCallingCard.String() != "calling_card" {
		t.Fatalf("got %q", TypeCallingCard.String())
	}
}

func TestWearableCategory(t *testing.T) {
	if WearableShape.Category() != TypeBodypart {
		t.Fatalf("shape should be bodypart")
	}
	if WearableShirt.Category() != TypeClothing {
		t.Fatalf("shirt should be clothing")
	}
	if WearableUnknown.Category() != TypeUnknown {
		t.Fatalf("unknown should be unknown")
	}
}

func TestWearableFromByteFallback(t *testing.T) {
	if got := WearableFromByte(2); got != WearableUnknown {
		t.Fatalf("got %v, want WearableUnknown", got)
	}
}
