package chat

import (
	"testing"

	"github.com/google/uuid"
)

func TestChatFromViewerRoundTrip(t *testing.T) {
	want := ChatFromViewer{
		AgentID:   uuid.New(),
		SessionID: uuid.New(),
		Message:   "hello region",
		Type:      ChatTypeNormal,
		Channel:   0,
	}
	got, err := DecodeChatFromViewer(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestChatFromSimulatorRoundTrip(t *testing.T) {
	want := ChatFromSimulator{
		FromName:   "Some Avatar",
		SourceID:   uuid.New(),
		OwnerID:    uuid.New(),
		SourceType: SourceAgent,
		ChatType:   ChatTypeShout,
		Position:   [3]float32{128, 128, 24},
		Message:    "look out!",
	}
	got, err := DecodeChatFromSimulator(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
