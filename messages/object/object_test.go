package object

import (
	"testing"

	"github.com/google/uuid"
)

func TestObjectUpdateRoundTrip(t *testing.T) {
	want := ObjectUpdate{
		RegionHandle: 123456,
		TimeDilation: 65535,
		Objects: []ObjectData{
			{
				LocalID:      7,
				PCode:        9,
				FullID:       uuid.New(),
				ParentID:     0,
				Position:     [3]float32{1, 2, 3},
				Rotation:     [4]float32{0, 0, 0, 1},
				Scale:        [3]float32{1, 1, 1},
				TextureEntry: []byte{1, 2, 3},
				ExtraParams:  []byte{},
			},
		},
	}
	got, err := DecodeObjectUpdate(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got.RegionHandle != want.RegionHandle || len(got.Objects) != len(want.Objects) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.Objects[0].FullID != want.Objects[0].FullID || got.Objects[0].PCode != want.Objects[0].PCode {
		t.Fatalf("object mismatch: got %+v want %+v", got.Objects[0], want.Objects[0])
	}
}

func TestDisableSimulatorRoundTrip(t *testing.T) {
	got, err := DecodeDisableSimulator(DisableSimulator{}.Encode())
	if err != nil {
		t.Fatal(err)
	}
	_ = got
}
