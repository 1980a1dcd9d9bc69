// Package object implements the object-update stream: the per-frame
// ObjectUpdate message that populates the scene graph, and
// DisableSimulator, the teardown signal a region sends before dropping a
// circuit. Object-type (pcode) classification lives in the objects
// package, which consumes these decoded updates rather than duplicating
// their wire layout.
package object

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const (
	IDObjectUpdate     = 12
	IDDisableSimulator = 152
)

// ObjectData is one entry in an ObjectUpdate batch: the common fields
// every prim/avatar update carries, followed by the raw, pcode-dependent
// tails (texture entry, extra params) left undecoded here.
type ObjectData struct {
	LocalID      uint32
	PCode        uint8
	FullID       uuid.UUID
	ParentID     uint32
	Position     [3]float32
	Rotation     [4]float32
	Scale        [3]float32
	TextureEntry []byte
	ExtraParams  []byte
}

type ObjectUpdate struct {
	RegionHandle uint64
	TimeDilation uint16
	Objects      []ObjectData
}

func (ObjectUpdate) Frequency() codec.Frequency { return codec.Low }
func (ObjectUpdate) MessageID() uint32           { return IDObjectUpdate }

func (m ObjectUpdate) Encode() []byte {
	w := wire.NewWriter()
	w.U64(m.RegionHandle)
	w.U16(m.TimeDilation)
	w.U8(uint8(len(m.Objects)))
	for _, o := range m.Objects {
		w.U32(o.LocalID)
		w.U8(o.PCode)
		w.UUID(o.FullID)
		w.U32(o.ParentID)
		for _, v := range o.Position {
			w.F32(v)
		}
		for _, v := range o.Rotation {
			w.F32(v)
		}
		for _, v := range o.Scale {
			w.F32(v)
		}
		w.Var2(o.TextureEntry)
		w.Var2(o.ExtraParams)
	}
	return w.Bytes()
}

func DecodeObjectUpdate(b []byte) (ObjectUpdate, error) {
	r := wire.NewReader(b)
	var m ObjectUpdate
	var err error
	if m.RegionHandle, err = r.U64(); err != nil {
		return m, err
	}
	if m.TimeDilation, err = r.U16(); err != nil {
		return m, err
	}
	n, err := r.U8()
	if err != nil {
		return m, err
	}
	m.Objects = make([]ObjectData, n)
	for i := range m.Objects {
		o := &m.Objects[i]
		if o.LocalID, err = r.U32(); err != nil {
			return m, err
		}
		if o.PCode, err = r.U8(); err != nil {
			return m, err
		}
		if o.FullID, err = r.UUID(); err != nil {
			return m, err
		}
		if o.ParentID, err = r.U32(); err != nil {
			return m, err
		}
		for j := range o.Position {
			if o.Position[j], err = r.F32(); err != nil {
				return m, err
			}
		}
		for j := range o.Rotation {
			if o.Rotation[j], err = r.F32(); err != nil {
				return m, err
			}
		}
		for j := range o.Scale {
			if o.Scale[j], err = r.F32(); err != nil {
				return m, err
			}
		}
		if o.TextureEntry, err = r.Var2(); err != nil {
			return m, err
		}
		if o.ExtraParams, err = r.Var2(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// DisableSimulator carries no body: its arrival alone tells the session
// actor to tear the circuit down (spec §4.5 teardown).
type DisableSimulator struct{}

func (DisableSimulator) Frequency() codec.Frequency { return codec.Low }
func (DisableSimulator) MessageID() uint32           { return IDDisableSimulator }
func (DisableSimulator) Encode() []byte              { return nil }

func DecodeDisableSimulator(_ []byte) (DisableSimulator, error) {
	return DisableSimulator{}, nil
}
