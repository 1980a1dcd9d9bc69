// Package core implements the session-setup and keep-alive message bodies:
// circuit establishment, agent movement completion, throttle negotiation,
// region handshake, and the ping/ack pair that keeps a circuit alive.
// Field layouts are grounded on the wire descriptions in spec §4.4/§4.5.
package core

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const (
	IDUseCircuitCode       = 3
	IDCompleteAgentMovement = 249
	IDAgentThrottle         = 81
	IDRegionHandshake       = 148
	IDRegionHandshakeReply  = 149
	IDStartPingCheck        = 1
	IDCompletePingCheck     = 2
	IDPacketAck             = 251
)

// UseCircuitCode is the first reliable message sent to a region: it proves
// the client holds the circuit code handed out by login.
type UseCircuitCode struct {
	Code      uint32
	SessionID uuid.UUID
	AgentID   uuid.UUID
}

func (UseCircuitCode) Frequency() codec.Frequency { return codec.Low }
func (UseCircuitCode) MessageID() uint32           { return IDUseCircuitCode }

func (m UseCircuitCode) Encode() []byte {
	w := wire.NewWriter()
	w.U32(m.Code)
	w.UUID(m.SessionID)
	w.UUID(m.AgentID)
	return w.Bytes()
}

func DecodeUseCircuitCode(b []byte) (UseCircuitCode, error) {
	r := wire.NewReader(b)
	var m UseCircuitCode
	var err error
	if m.Code, err = r.U32(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	return m, nil
}

// CompleteAgentMovement tells the simulator the viewer has finished
// establishing the circuit and is ready to be placed in the scene.
type CompleteAgentMovement struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
	CircuitCode uint32
}

func (CompleteAgentMovement) Frequency() codec.Frequency { return codec.Low }
func (CompleteAgentMovement) MessageID() uint32           { return IDCompleteAgentMovement }

func (m CompleteAgentMovement) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	w.U32(m.CircuitCode)
	return w.Bytes()
}

func DecodeCompleteAgentMovement(b []byte) (CompleteAgentMovement, error) {
	r := wire.NewReader(b)
	var m CompleteAgentMovement
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.CircuitCode, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}

// AgentThrottle negotiates the per-category bandwidth allotment (resend,
// land, wind, cloud, task, texture, asset) as packed little-endian floats,
// bytes/sec, in that fixed order.
type AgentThrottle struct {
	AgentID     uuid.UUID
	SessionID   uuid.UUID
	GenCounter  uint32
	Throttles   [7]float32
}

func (AgentThrottle) Frequency() codec.Frequency { return codec.Low }
func (AgentThrottle) MessageID() uint32           { return IDAgentThrottle }

func (m AgentThrottle) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	w.U32(m.GenCounter)
	buf := wire.NewWriter()
	for _, v := range m.Throttles {
		buf.F32(v)
	}
	w.Var1(buf.Bytes())
	return w.Bytes()
}

func DecodeAgentThrottle(b []byte) (AgentThrottle, error) {
	r := wire.NewReader(b)
	var m AgentThrottle
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.GenCounter, err = r.U32(); err != nil {
		return m, err
	}
	block, err := r.Var1()
	if err != nil {
		return m, err
	}
	br := wire.NewReader(block)
	for i := range m.Throttles {
		if m.Throttles[i], err = br.F32(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// RegionHandshake is the simulator's introduction of itself: name, a
// bitfield of region flags (spec SPEC_FULL.md supplement #3), sim access
// level, and the owner/estate identifiers needed before terrain starts
// streaming.
type RegionHandshake struct {
	RegionFlags  uint32
	SimAccess    uint8
	SimName      string
	SimOwner     uuid.UUID
	IsEstateManager bool
	WaterHeight  float32
	BillableFactor float32
	CacheID      uuid.UUID
	TerrainBase  [4]uuid.UUID
	TerrainDetail [4]uuid.UUID
	TerrainStartHeight [4]float32
	TerrainHeightRange [4]float32
}

func (RegionHandshake) Frequency() codec.Frequency { return codec.Low }
func (RegionHandshake) MessageID() uint32           { return IDRegionHandshake }

func (m RegionHandshake) Encode() []byte {
	w := wire.NewWriter()
	w.U32(m.RegionFlags)
	w.U8(m.SimAccess)
	w.CString(m.SimName)
	w.UUID(m.SimOwner)
	w.Bool(m.IsEstateManager)
	w.F32(m.WaterHeight)
	w.F32(m.BillableFactor)
	w.UUID(m.CacheID)
	for _, id := range m.TerrainBase {
		w.UUID(id)
	}
	for _, id := range m.TerrainDetail {
		w.UUID(id)
	}
	for _, h := range m.TerrainStartHeight {
		w.F32(h)
	}
	for _, h := range m.TerrainHeightRange {
		w.F32(h)
	}
	return w.Bytes()
}

func DecodeRegionHandshake(b []byte) (RegionHandshake, error) {
	r := wire.NewReader(b)
	var m RegionHandshake
	var err error
	if m.RegionFlags, err = r.U32(); err != nil {
		return m, err
	}
	if m.SimAccess, err = r.U8(); err != nil {
		return m, err
	}
	if m.SimName, err = r.CString(); err != nil {
		return m, err
	}
	if m.SimOwner, err = r.UUID(); err != nil {
		return m, err
	}
	if m.IsEstateManager, err = r.Bool(); err != nil {
		return m, err
	}
	if m.WaterHeight, err = r.F32(); err != nil {
		return m, err
	}
	if m.BillableFactor, err = r.F32(); err != nil {
		return m, err
	}
	if m.CacheID, err = r.UUID(); err != nil {
		return m, err
	}
	for i := range m.TerrainBase {
		if m.TerrainBase[i], err = r.UUID(); err != nil {
			return m, err
		}
	}
	for i := range m.TerrainDetail {
		if m.TerrainDetail[i], err = r.UUID(); err != nil {
			return m, err
		}
	}
	for i := range m.TerrainStartHeight {
		if m.TerrainStartHeight[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	for i := range m.TerrainHeightRange {
		if m.TerrainHeightRange[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	return m, nil
}

// RegionHandshakeReply acknowledges RegionHandshake and advertises the
// client's feature flags back to the simulator.
type RegionHandshakeReply struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
	Flags     uint32
}

func (RegionHandshakeReply) Frequency() codec.Frequency { return codec.Low }
func (RegionHandshakeReply) MessageID() uint32           { return IDRegionHandshakeReply }

func (m RegionHandshakeReply) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	w.U32(m.Flags)
	return w.Bytes()
}

func DecodeRegionHandshakeReply(b []byte) (RegionHandshakeReply, error) {
	r := wire.NewReader(b)
	var m RegionHandshakeReply
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.Flags, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}

// StartPingCheck and CompletePingCheck are the keep-alive pair: the
// simulator (or client) sends a monotonically increasing ping id, the peer
// echoes it back unchanged.
type StartPingCheck struct {
	PingID       uint8
	OldestUnacked uint32
}

func (StartPingCheck) Frequency() codec.Frequency { return codec.High }
func (StartPingCheck) MessageID() uint32           { return IDStartPingCheck }

func (m StartPingCheck) Encode() []byte {
	w := wire.NewWriter()
	w.U8(m.PingID)
	w.U32(m.OldestUnacked)
	return w.Bytes()
}

func DecodeStartPingCheck(b []byte) (StartPingCheck, error) {
	r := wire.NewReader(b)
	var m StartPingCheck
	var err error
	if m.PingID, err = r.U8(); err != nil {
		return m, err
	}
	if m.OldestUnacked, err = r.U32(); err != nil {
		return m, err
	}
	return m, nil
}

type CompletePingCheck struct {
	PingID uint8
}

func (CompletePingCheck) Frequency() codec.Frequency { return codec.High }
func (CompletePingCheck) MessageID() uint32           { return IDCompletePingCheck }

func (m CompletePingCheck) Encode() []byte {
	w := wire.NewWriter()
	w.U8(m.PingID)
	return w.Bytes()
}

func DecodeCompletePingCheck(b []byte) (CompletePingCheck, error) {
	r := wire.NewReader(b)
	var m CompletePingCheck
	var err error
	if m.PingID, err = r.U8(); err != nil {
		return m, err
	}
	return m, nil
}

// PacketAck carries one or more explicit acks outside of the header's
// appended-ack mechanism — used when there is no outbound packet handy to
// piggyback acks on.
type PacketAck struct {
	IDs []uint32
}

func (PacketAck) Frequency() codec.Frequency { return codec.High }
func (PacketAck) MessageID() uint32           { return IDPacketAck }

func (m PacketAck) Encode() []byte {
	w := wire.NewWriter()
	w.U8(uint8(len(m.IDs)))
	for _, id := range m.IDs {
		w.U32(id)
	}
	return w.Bytes()
}

func DecodePacketAck(b []byte) (PacketAck, error) {
	r := wire.NewReader(b)
	n, err := r.U8()
	if err != nil {
		return PacketAck{}, err
	}
	ids := make([]uint32, n)
	for i := range ids {
		if ids[i], err = r.U32(); err != nil {
			return PacketAck{}, err
		}
	}
	return PacketAck{IDs: ids}, nil
}
