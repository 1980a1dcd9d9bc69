package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestUseCircuitCodeRoundTrip(t *testing.T) {
	want := UseCircuitCode{
		Code:      12345,
		SessionID: uuid.New(),
		AgentID:   uuid.New(),
	}
	got, err := DecodeUseCircuitCode(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRegionHandshakeRoundTrip(t *testing.T) {
	want := RegionHandshake{
		RegionFlags:     0x01,
		SimAccess:       13,
		SimName:         "Test Region",
		SimOwner:        uuid.New(),
		IsEstateManager: true,
		WaterHeight:     20.5,
		BillableFactor:  1,
		CacheID:         uuid.New(),
	}
	for i := range want.TerrainBase {
		want.TerrainBase[i] = uuid.New()
		want.TerrainDetail[i] = uuid.New()
		want.TerrainStartHeight[i] = float32(i) * 10
		want.TerrainHeightRange[i] = float32(i) * 5
	}
	got, err := DecodeRegionHandshake(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestAgentThrottleRoundTrip(t *testing.T) {
	want := AgentThrottle{
		AgentID:    uuid.New(),
		SessionID:  uuid.New(),
		GenCounter: 1,
		Throttles:  [7]float32{1, 2, 3, 4, 5, 6, 7},
	}
	got, err := DecodeAgentThrottle(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestPacketAckRoundTrip(t *testing.T) {
	want := PacketAck{IDs: []uint32{1, 2, 3}}
	got, err := DecodePacketAck(want.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.IDs) != len(want.IDs) {
		t.Fatalf("got %v, want %v", got.IDs, want.IDs)
	}
	for i := range got.IDs {
		if got.IDs[i] != want.IDs[i] {
			t.Fatalf("got %v, want %v", got.IDs, want.IDs)
		}
	}
}

func TestPingPairRoundTrip(t *testing.T) {
	start := StartPingCheck{PingID: 7, OldestUnacked: 42}
	gotStart, err := DecodeStartPingCheck(start.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if gotStart != start {
		t.Fatalf("got %+v, want %+v", gotStart, start)
	}

	complete := CompletePingCheck{PingID: 7}
	gotComplete, err := DecodeCompletePingCheck(complete.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if gotComplete != complete {
		t.Fatalf("got %+v, want %+v", gotComplete, complete)
	}
}
