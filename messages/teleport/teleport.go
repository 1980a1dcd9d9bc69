// Package teleport implements the three-message teleport lifecycle: the
// simulator announces the attempt starting, streams progress text, and
// finally hands over the destination region's connection details.
package teleport

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const (
	IDTeleportStart    = 150
	IDTeleportProgress = 151
	IDTeleportFinish   = 153
)

type TeleportStart struct {
	AgentID uuid.UUID
	Flags   uint32
}

func (TeleportStart) Frequency() codec.Frequency { return codec.Low }
func (TeleportStart) MessageID() uint32           { return IDTeleportStart }

func (m TeleportStart) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.U32(m.Flags)
	return w.Bytes()
}

func DecodeTeleportStart(b []byte) (TeleportStart, error) {
	r := wire.NewReader(b)
	var m TeleportStart
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.Flags, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}

type TeleportProgress struct {
	AgentID uuid.UUID
	Message string
	Flags   uint32
}

func (TeleportProgress) Frequency() codec.Frequency { return codec.Low }
func (TeleportProgress) MessageID() uint32           { return IDTeleportProgress }

func (m TeleportProgress) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.CString(m.Message)
	w.U32(m.Flags)
	return w.Bytes()
}

func DecodeTeleportProgress(b []byte) (TeleportProgress, error) {
	r := wire.NewReader(b)
	var m TeleportProgress
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.Message, err = r.CString(); err != nil {
		return m, err
	}
	if m.Flags, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}

// TeleportFinish hands over the new circuit's connection details: the
// region handle, simulator address/port, seed capability, and the
// location within the destination region.
type TeleportFinish struct {
	AgentID      uuid.UUID
	RegionHandle uint64
	SimIP        [4]byte
	SimPort      uint16
	SeedCapability string
	Position     [3]float32
	LookAt       [3]float32
	Flags        uint32
}

func (TeleportFinish) Frequency() codec.Frequency { return codec.Low }
func (TeleportFinish) MessageID() uint32           { return IDTeleportFinish }

func (m TeleportFinish) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.U64(m.RegionHandle)
	w.Raw(m.SimIP[:])
	w.U16(m.SimPort)
	w.Var2([]byte(m.SeedCapability))
	for _, v := range m.Position {
		w.F32(v)
	}
	for _, v := range m.LookAt {
		w.F32(v)
	}
	w.U32(m.Flags)
	return w.Bytes()
}

func DecodeTeleportFinish(b []byte) (TeleportFinish, error) {
	r := wire.NewReader(b)
	var m TeleportFinish
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.RegionHandle, err = r.U64(); err != nil {
		return m, err
	}
	ip, err := r.Bytes(4)
	if err != nil {
		return m, err
	}
	copy(m.SimIP[:], ip)
	if m.SimPort, err = r.U16(); err != nil {
		return m, err
	}
	cap, err := r.Var2()
	if err != nil {
		return m, err
	}
	m.SeedCapability = string(cap)
	for i := range m.Position {
		if m.Position[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.LookAt {
		if m.LookAt[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	if m.Flags, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}
