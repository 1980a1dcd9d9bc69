package codec

import (
	"bytes"
	"testing"
)

func TestPrefixRoundTrip(t *testing.T) {
	p := Prefix{Flags: FlagReliable, Seq: 0xDEADBEEF, Extra: 0}
	buf := EncodePrefix(p)
	got, rest, err := DecodePrefix(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got != p {
		t.Fatalf("got %+v want %+v", got, p)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no remainder, got %d bytes", len(rest))
	}
}

func TestFrequencyIDRoundTrip(t *testing.T) {
	cases := []struct {
		fr Frequency
		id uint32
	}{
		{High, 1},
		{High, 254},
		{Medium, 42},
		{Low, 300},
		{Fixed, 17},
	}
	for _, c := range cases {
		buf := EncodeFrequencyID(c.fr, c.id)
		fr, id, n, err := DecodeFrequencyID(buf)
		if err != nil {
			t.Fatal(err)
		}
		if fr != c.fr || id != c.id || n != len(buf) {
			t.Fatalf("got (%v,%d,%d) want (%v,%d,%d)", fr, id, n, c.fr, c.id, len(buf))
		}
	}
}

func TestDecodeRawZerocodedRoundTrip(t *testing.T) {
	body := append([]byte{1, 2, 0, 0, 0, 0, 0, 3}, bytes.Repeat([]byte{0}, 10)...)
	p := RawPacket{
		Prefix:    Prefix{Flags: FlagZerocoded | FlagReliable, Seq: 7},
		Frequency: High,
		ID:        5,
		Body:      body,
	}
	wire := EncodeRaw(p)
	got, err := DecodeRaw(wire)
	if err != nil {
		t.Fatal(err)
	}
	if got.Prefix != p.Prefix || got.Frequency != p.Frequency || got.ID != p.ID {
		t.Fatalf("header mismatch: %+v", got)
	}
	if !bytes.Equal(got.Body, p.Body) {
		t.Fatalf("body mismatch: got %v want %v", got.Body, p.Body)
	}
}

func TestDecodeRawWithAcks(t *testing.T) {
	p := RawPacket{
		Prefix:    Prefix{Flags: FlagAppendedAcks, Seq: 1},
		Frequency: Medium,
		ID:        9,
		Body:      []byte{0xAA, 0xBB},
		Acks:      []uint32{1, 2, 3},
	}
	wire := EncodeRaw(p)
	got, err := DecodeRaw(wire)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Body, p.Body) {
		t.Fatalf("body mismatch: got %v want %v", got.Body, p.Body)
	}
	if len(got.Acks) != 3 || got.Acks[0] != 1 || got.Acks[2] != 3 {
		t.Fatalf("acks mismatch: %v", got.Acks)
	}
}

func TestDecodeRawMalformedNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		{1, 2, 3},
		bytes.Repeat([]byte{0xFF}, 6),
		{0x80, 0, 0, 0, 1, 0, 0xFF},
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panic decoding %v: %v", in, r)
				}
			}()
			DecodeRaw(in)
		}()
	}
}
