package codec

import (
	"bytes"
	"testing"
)

func TestZeroRoundTrip(t *testing.T) {
	cases := [][]byte{
		{0, 0},
		{1, 2, 3},
		{0, 1, 0, 0, 0, 5},
		bytes.Repeat([]byte{0}, 500),
		bytes.Repeat([]byte{0}, 255),
		bytes.Repeat([]byte{0}, 256),
	}
	for i, c := range cases {
		enc := ZeroEncode(c)
		dec, err := ZeroDecode(enc)
		if err != nil {
			t.Fatalf("case %d: decode error: %v", i, err)
		}
		if !bytes.Equal(dec, c) {
			t.Fatalf("case %d: round trip mismatch: got %v want %v", i, dec, c)
		}
	}
}

// TestZeroEncode500Zeros matches spec §8 S2: 500 contiguous zero bytes
// encode to 0x00 0xFF 0x00 0xF5 (255 then 245).
func TestZeroEncode500Zeros(t *testing.T) {
	body := bytes.Repeat([]byte{0}, 500)
	enc := ZeroEncode(body)
	want := []byte{0x00, 0xFF, 0x00, 0xF5}
	if !bytes.Equal(enc, want) {
		t.Fatalf("got %x want %x", enc, want)
	}
}

func TestZeroDecodeTruncatedCount(t *testing.T) {
	if _, err := ZeroDecode([]byte{0x01, 0x00}); err != ErrMalformedBody {
		t.Fatalf("expected ErrMalformedBody, got %v", err)
	}
}

func TestZeroDecodeNeverPanics(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		{0x00},
		{0xFF, 0x00, 0x00},
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("panic decoding %v: %v", in, r)
				}
			}()
			ZeroDecode(in)
		}()
	}
}
