package uiproto

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{PacketNumber: 7, ChunkIndex: 1, ChunkCount: 3, Kind: KindChat, Payload: []byte("hello")}
	got, err := DecodeFrame(EncodeFrame(f))
	if err != nil {
		t.Fatal(err)
	}
	if got.PacketNumber != f.PacketNumber || got.ChunkIndex != f.ChunkIndex ||
		got.ChunkCount != f.ChunkCount || got.Kind != f.Kind || !bytes.Equal(got.Payload, f.Payload) {
		t.Fatalf("got %+v, want %+v", got, f)
	}
}

func TestEncodeSplitsOversizedPayload(t *testing.T) {
	big := strings.Repeat("x", MaxChunkPayload*2+100)
	frames, err := Encode(1, KindChat, ChatEvent{Message: big})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(frames))
	}
	for i, f := range frames {
		if int(f.ChunkIndex) != i || int(f.ChunkCount) != len(frames) || f.PacketNumber != 1 {
			t.Fatalf("frame %d header mismatch: %+v", i, f)
		}
		if len(f.Payload) > MaxChunkPayload {
			t.Fatalf("frame %d payload exceeds MaxChunkPayload: %d", i, len(f.Payload))
		}
	}
}

func TestReassemblerOutOfOrder(t *testing.T) {
	frames, err := Encode(42, KindMeshUpdate, MeshUpdateEvent{CoordX: 1, CoordY: 2, Indices: []uint32{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 1 {
		t.Fatalf("expected a single frame for a small payload, got %d", len(frames))
	}

	big := strings.Repeat("y", MaxChunkPayload*3)
	frames, err = Encode(99, KindLandUpdate, LandUpdateEvent{RegionName: big})
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(frames))
	}

	r := NewReassembler()
	// feed in reverse order
	var kind Kind
	var payload []byte
	var ok bool
	for i := len(frames) - 1; i >= 0; i-- {
		kind, payload, ok = r.Add(frames[i])
		if i > 0 && ok {
			t.Fatalf("reassembly completed early at reverse index %d", i)
		}
	}
	if !ok {
		t.Fatal("expected reassembly to complete after the final chunk")
	}
	if kind != KindLandUpdate {
		t.Fatalf("kind = %v, want KindLandUpdate", kind)
	}
	var evt LandUpdateEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		t.Fatal(err)
	}
	if evt.RegionName != big {
		t.Fatal("reassembled payload does not match original event")
	}
}
