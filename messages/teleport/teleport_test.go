package teleport

import (
	"testing"

	"github.com/google/uuid"
)

func TestTeleportStartRoundTrip(t *testing.T) {
	want := TeleportStart{AgentID: uuid.New(), Flags: 0x4}
	got, err := DecodeTeleportStart(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTeleportProgressRoundTrip(t *testing.T) {
	want := TeleportProgress{AgentID: uuid.New(), Message: "confirming", Flags: 1}
	got, err := DecodeTeleportProgress(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTeleportFinishRoundTrip(t *testing.T) {
	want := TeleportFinish{
		AgentID:        uuid.New(),
		RegionHandle:   999,
		SimIP:          [4]byte{127, 0, 0, 1},
		SimPort:        9000,
		SeedCapability: "https://sim.example.com/cap/abc",
		Position:       [3]float32{128, 128, 30},
		LookAt:         [3]float32{1, 0, 0},
		Flags:          0,
	}
	got, err := DecodeTeleportFinish(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
