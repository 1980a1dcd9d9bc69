// Package agent implements the frequent per-frame agent state messages:
// movement/camera updates, coarse minimap positions, and the wearables
// (outfit) manifest that feeds the avatar appearance pipeline.
package agent

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const (
	IDAgentUpdate           = 4
	IDCoarseLocationUpdate  = 6
	IDAgentWearablesUpdate  = 129
)

// AgentUpdate is sent by the viewer roughly every frame while moving or
// looking around: body/head rotation quaternions, control flags, and the
// camera basis vectors the simulator needs for interest-list culling.
type AgentUpdate struct {
	AgentID     uuid.UUID
	SessionID   uuid.UUID
	BodyRotation [4]float32
	HeadRotation [4]float32
	State       uint8
	CameraCenter [3]float32
	CameraAtAxis [3]float32
	CameraLeftAxis [3]float32
	CameraUpAxis [3]float32
	Far         float32
	ControlFlags uint32
	Flags       uint8
}

func (AgentUpdate) Frequency() codec.Frequency { return codec.Medium }
func (AgentUpdate) MessageID() uint32           { return IDAgentUpdate }

func (m AgentUpdate) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	for _, v := range m.BodyRotation {
		w.F32(v)
	}
	for _, v := range m.HeadRotation {
		w.F32(v)
	}
	w.U8(m.State)
	for _, v := range m.CameraCenter {
		w.F32(v)
	}
	for _, v := range m.CameraAtAxis {
		w.F32(v)
	}
	for _, v := range m.CameraLeftAxis {
		w.F32(v)
	}
	for _, v := range m.CameraUpAxis {
		w.F32(v)
	}
	w.F32(m.Far)
	w.U32(m.ControlFlags)
	w.U8(m.Flags)
	return w.Bytes()
}

func DecodeAgentUpdate(b []byte) (AgentUpdate, error) {
	r := wire.NewReader(b)
	var m AgentUpdate
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	for i := range m.BodyRotation {
		if m.BodyRotation[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.HeadRotation {
		if m.HeadRotation[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	if m.State, err = r.U8(); err != nil {
		return m, err
	}
	for i := range m.CameraCenter {
		if m.CameraCenter[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.CameraAtAxis {
		if m.CameraAtAxis[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.CameraLeftAxis {
		if m.CameraLeftAxis[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.CameraUpAxis {
		if m.CameraUpAxis[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	if m.Far, err = r.F32(); err != nil {
		return m, err
	}
	if m.ControlFlags, err = r.U32(); err != nil {
		return m, err
	}
	if m.Flags, err = r.U8(); err != nil {
		return m, err
	}
	return m, nil
}

// CoarseLocationEntry is one avatar's position on the minimap grid: X/Y/Z
// are each quantized to a region-relative byte (spec's coarse precision is
// 1m in X/Y, 4m in Z).
type CoarseLocationEntry struct {
	X, Y, Z uint8
}

// CoarseLocationUpdate carries the minimap snapshot for every avatar the
// simulator currently tracks, plus which index in the list is "you" and
// which is your current focus/prey target (-1 if none).
type CoarseLocationUpdate struct {
	Locations []CoarseLocationEntry
	You       int16
	Prey      int16
}

func (CoarseLocationUpdate) Frequency() codec.Frequency { return codec.Medium }
func (CoarseLocationUpdate) MessageID() uint32           { return IDCoarseLocationUpdate }

func (m CoarseLocationUpdate) Encode() []byte {
	w := wire.NewWriter()
	block := wire.NewWriter()
	for _, l := range m.Locations {
		block.U8(l.X)
		block.U8(l.Y)
		block.U8(l.Z)
	}
	w.Var1(block.Bytes())
	w.I32(int32(m.You))
	w.I32(int32(m.Prey))
	return w.Bytes()
}

func DecodeCoarseLocationUpdate(b []byte) (CoarseLocationUpdate, error) {
	r := wire.NewReader(b)
	var m CoarseLocationUpdate
	block, err := r.Var1()
	if err != nil {
		return m, err
	}
	br := wire.NewReader(block)
	for br.Remaining() >= 3 {
		var e CoarseLocationEntry
		if e.X, err = br.U8(); err != nil {
			return m, err
		}
		if e.Y, err = br.U8(); err != nil {
			return m, err
		}
		if e.Z, err = br.U8(); err != nil {
			return m, err
		}
		m.Locations = append(m.Locations, e)
	}
	you, err := r.I32()
	if err != nil {
		return m, err
	}
	m.You = int16(you)
	prey, err := r.I32()
	if err != nil {
		return m, err
	}
	m.Prey = int16(prey)
	return m, nil
}

// WearableEntry ties a wearable-type slot to the inventory item and asset
// backing it (spec §4.7, avatar appearance composition input).
type WearableEntry struct {
	ItemID  uuid.UUID
	AssetID uuid.UUID
}

type AgentWearablesUpdate struct {
	AgentID    uuid.UUID
	SessionID  uuid.UUID
	SerialNum  uint32
	Wearables  []WearableEntry
}

func (AgentWearablesUpdate) Frequency() codec.Frequency { return codec.Low }
func (AgentWearablesUpdate) MessageID() uint32           { return IDAgentWearablesUpdate }

func (m AgentWearablesUpdate) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	w.U32(m.SerialNum)
	block := wire.NewWriter()
	for _, we := range m.Wearables {
		block.UUID(we.ItemID)
		block.UUID(we.AssetID)
	}
	w.Var1(block.Bytes())
	return w.Bytes()
}

func DecodeAgentWearablesUpdate(b []byte) (AgentWearablesUpdate, error) {
	r := wire.NewReader(b)
	var m AgentWearablesUpdate
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SerialNum, err = r.U32(); err != nil {
		return m, err
	}
	block, err := r.Var1()
	if err != nil {
		return m, err
	}
	br := wire.NewReader(block)
	for br.Remaining() >= 32 {
		var we WearableEntry
		if we.ItemID, err = br.UUID(); err != nil {
			return m, err
		}
		if we.AssetID, err = br.UUID(); err != nil {
			return m, err
		}
		m.Wearables = append(m.Wearables, we)
	}
	return m, nil
}
