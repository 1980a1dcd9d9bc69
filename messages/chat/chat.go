// Package chat implements the local-chat message pair: what the viewer
// sends and what the simulator relays back to every listener in range.
package chat

import (
	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/wire"
)

const (
	IDChatFromViewer    = 80
	IDChatFromSimulator = 139
)

// ChatType mirrors the classic whisper/say/shout/type-start/type-stop enum.
type ChatType uint8

const (
	ChatTypeWhisper ChatType = iota
	ChatTypeNormal
	ChatTypeShout
	ChatTypeStartTyping
	ChatTypeStopTyping
)

// SourceType distinguishes system, agent, and object chat sources so the
// client can decide how to attribute and render a line.
type SourceType uint8

const (
	SourceSystem SourceType = iota
	SourceAgent
	SourceObject
)

type ChatFromViewer struct {
	AgentID   uuid.UUID
	SessionID uuid.UUID
	Message   string
	Type      ChatType
	Channel   int32
}

func (ChatFromViewer) Frequency() codec.Frequency { return codec.Low }
func (ChatFromViewer) MessageID() uint32           { return IDChatFromViewer }

func (m ChatFromViewer) Encode() []byte {
	w := wire.NewWriter()
	w.UUID(m.AgentID)
	w.UUID(m.SessionID)
	w.Var2([]byte(m.Message))
	w.U8(uint8(m.Type))
	w.I32(m.Channel)
	return w.Bytes()
}

func DecodeChatFromViewer(b []byte) (ChatFromViewer, error) {
	r := wire.NewReader(b)
	var m ChatFromViewer
	var err error
	if m.AgentID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.SessionID, err = r.UUID(); err != nil {
		return m, err
	}
	msg, err := r.Var2()
	if err != nil {
		return m, err
	}
	m.Message = string(msg)
	typ, err := r.U8()
	if err != nil {
		return m, err
	}
	m.Type = ChatType(typ)
	if m.Channel, err = r.I32(); err != nil {
		return m, err
	}
	return m, nil
}

type ChatFromSimulator struct {
	FromName  string
	SourceID  uuid.UUID
	OwnerID   uuid.UUID
	SourceType SourceType
	ChatType  ChatType
	Position  [3]float32
	Message   string
}

func (ChatFromSimulator) Frequency() codec.Frequency { return codec.Low }
func (ChatFromSimulator) MessageID() uint32           { return IDChatFromSimulator }

func (m ChatFromSimulator) Encode() []byte {
	w := wire.NewWriter()
	w.Var1([]byte(m.FromName))
	w.UUID(m.SourceID)
	w.UUID(m.OwnerID)
	w.U8(uint8(m.SourceType))
	w.U8(uint8(m.ChatType))
	for _, v := range m.Position {
		w.F32(v)
	}
	w.Var2([]byte(m.Message))
	return w.Bytes()
}

func DecodeChatFromSimulator(b []byte) (ChatFromSimulator, error) {
	r := wire.NewReader(b)
	var m ChatFromSimulator
	name, err := r.Var1()
	if err != nil {
		return m, err
	}
	m.FromName = string(name)
	if m.SourceID, err = r.UUID(); err != nil {
		return m, err
	}
	if m.OwnerID, err = r.UUID(); err != nil {
		return m, err
	}
	st, err := r.U8()
	if err != nil {
		return m, err
	}
	m.SourceType = SourceType(st)
	ct, err := r.U8()
	if err != nil {
		return m, err
	}
	m.ChatType = ChatType(ct)
	for i := range m.Position {
		if m.Position[i], err = r.F32(); err != nil {
			return m, err
		}
	}
	msg, err := r.Var2()
	if err != nil {
		return m, err
	}
	m.Message = string(msg)
	return m, nil
}
