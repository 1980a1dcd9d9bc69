// Package llsd implements the schema-less typed-value format used at
// protocol boundaries: capability request/response bodies (XML dialect)
// and legacy item bodies (auto-detected dialect). See spec §4.1 "LLSD".
package llsd

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the typed-value union. Deliberately a closed set —
// no open polymorphism, per spec §9 "Dynamic dispatch".
type Kind int

const (
	KindUndef Kind = iota
	KindMap
	KindArray
	KindString
	KindInteger
	KindReal
	KindBoolean
	KindUUID
	KindBinary
	KindDate
	KindURI
)

var ErrUnsupportedKind = errors.New("llsd: unsupported kind")

// Value is a recursive typed value. Only the field matching Kind is
// meaningful; the rest are zero.
type Value struct {
	Kind    Kind
	Str     string
	Int     int64
	Real    float64
	Bool    bool
	UUID    uuid.UUID
	Binary  []byte
	Date    time.Time
	URI     string
	Map     map[string]Value
	Array   []Value
}

func Undef() Value                 { return Value{Kind: KindUndef} }
func String(s string) Value        { return Value{Kind: KindString, Str: s} }
func Integer(i int64) Value        { return Value{Kind: KindInteger, Int: i} }
func Real(r float64) Value         { return Value{Kind: KindReal, Real: r} }
func Boolean(b bool) Value         { return Value{Kind: KindBoolean, Bool: b} }
func UUIDValue(u uuid.UUID) Value  { return Value{Kind: KindUUID, UUID: u} }
func Binary(b []byte) Value        { return Value{Kind: KindBinary, Binary: b} }
func Date(t time.Time) Value       { return Value{Kind: KindDate, Date: t} }
func URI(u string) Value           { return Value{Kind: KindURI, URI: u} }
func Array(vs ...Value) Value      { return Value{Kind: KindArray, Array: vs} }
func Map(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// Equal performs a semantic comparison, used by the round-trip property
// test (spec §4.1 "Round-trip requirement").
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindUndef:
		return true
	case KindString:
		return v.Str == o.Str
	case KindInteger:
		return v.Int == o.Int
	case KindReal:
		return v.Real == o.Real
	case KindBoolean:
		return v.Bool == o.Bool
	case KindUUID:
		return v.UUID == o.UUID
	case KindBinary:
		return string(v.Binary) == string(o.Binary)
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindURI:
		return v.URI == o.URI
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Map) != len(o.Map) {
			return false
		}
		for k, vv := range v.Map {
			ov, ok := o.Map[k]
			if !ok || !vv.Equal(ov) {
				return false
			}
		}
		return true
	}
	return false
}

// Get is a convenience accessor for map values, returning Undef if absent
// or v is not a map.
func (v Value) Get(key string) Value {
	if v.Kind != KindMap || v.Map == nil {
		return Undef()
	}
	if got, ok := v.Map[key]; ok {
		return got
	}
	return Undef()
}
