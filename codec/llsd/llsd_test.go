package llsd

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func sample() Value {
	return Map(map[string]Value{
		"name":   String("hello"),
		"count":  Integer(42),
		"scale":  Real(1.5),
		"ok":     Boolean(true),
		"id":     UUIDValue(uuid.MustParse("45b5a67d-7c59-4e7a-9f1e-000000000001")),
		"blob":   Binary([]byte{1, 2, 3, 4}),
		"when":   Date(time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)),
		"where":  URI("http://example.com/cap"),
		"empty":  Undef(),
		"nested": Array(Integer(1), Integer(2), String("three")),
	})
}

func TestXMLRoundTrip(t *testing.T) {
	v := sample()
	enc := EncodeXML(v)
	got, err := DecodeXML(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(v) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, v)
	}
}

func TestNotationRoundTrip(t *testing.T) {
	v := sample()
	enc := EncodeNotation(v)
	got, err := Decode([]byte(enc))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(v) {
		t.Fatalf("round trip mismatch:\n got  %+v\n want %+v", got, v)
	}
}

func TestAutoDetectDialect(t *testing.T) {
	xmlDoc := EncodeXML(String("hi"))
	v, err := Decode(xmlDoc)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != KindString || v.Str != "hi" {
		t.Fatalf("got %+v", v)
	}

	notation := []byte(`s'hi'`)
	v2, err := Decode(notation)
	if err != nil {
		t.Fatal(err)
	}
	if v2.Kind != KindString || v2.Str != "hi" {
		t.Fatalf("got %+v", v2)
	}
}
