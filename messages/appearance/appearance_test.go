package appearance

import (
	"testing"

	"github.com/google/uuid"
)

func TestAvatarAppearanceRoundTrip(t *testing.T) {
	want := AvatarAppearance{
		Sender:            uuid.New(),
		IsTrial:           false,
		TextureEntry:      []byte{1, 2, 3, 4},
		VisualParams:      []uint8{10, 20, 30},
		AppearanceVersion: 1,
		COFVersion:        5,
	}
	got, err := DecodeAvatarAppearance(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got.Sender != want.Sender || got.AppearanceVersion != want.AppearanceVersion || got.COFVersion != want.COFVersion {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if string(got.TextureEntry) != string(want.TextureEntry) {
		t.Fatalf("texture entry mismatch")
	}
}
