// Package uiproto implements the wire contract between the core runtime
// and the external UI/renderer process: a pair of loopback datagram
// sockets, with every event fragmented into <=1022-byte chunks tagged
// with (packet_number, chunk_index, chunk_count, kind) and reassembled by
// packet_number on the receiving side (spec §6 "Core <-> UI").
//
// Event payloads themselves are JSON, the same choice the example pack
// makes wherever a process boundary needs a schema-evolvable envelope
// without a shared IDL (gravwell's processors package speaks JSON at its
// external boundaries for the same reason); the chunk header is a small
// fixed binary prefix ahead of that payload, grounded on this module's
// own codec package's habit of a minimal fixed-width binary prefix ahead
// of a variable body.
package uiproto

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxChunkPayload is the largest payload a single frame carries, per spec
// §6 ("fragmented into <= 1022-byte chunks").
const MaxChunkPayload = 1022

// frameHeaderSize is PacketNumber(4) + ChunkIndex(2) + ChunkCount(2) + Kind(1).
const frameHeaderSize = 9

// Kind discriminates the event types the core publishes to the UI (spec
// §6: "chat, mesh updates, land updates, login response, session errors").
type Kind uint8

const (
	KindChat Kind = iota
	KindMeshUpdate
	KindLandUpdate
	KindLoginResponse
	KindSessionError
)

func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindMeshUpdate:
		return "mesh_update"
	case KindLandUpdate:
		return "land_update"
	case KindLoginResponse:
		return "login_response"
	case KindSessionError:
		return "session_error"
	}
	return "unknown"
}

var ErrMalformedFrame = errors.New("uiproto: malformed frame")

// Frame is one on-wire chunk.
type Frame struct {
	PacketNumber uint32
	ChunkIndex   uint16
	ChunkCount   uint16
	Kind         Kind
	Payload      []byte
}

// EncodeFrame serializes one frame to its wire form.
func EncodeFrame(f Frame) []byte {
	buf := make([]byte, frameHeaderSize+len(f.Payload))
	binary.BigEndian.PutUint32(buf[0:4], f.PacketNumber)
	binary.BigEndian.PutUint16(buf[4:6], f.ChunkIndex)
	binary.BigEndian.PutUint16(buf[6:8], f.ChunkCount)
	buf[8] = byte(f.Kind)
	copy(buf[frameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < frameHeaderSize {
		return Frame{}, fmt.Errorf("%w: short frame (%d bytes)", ErrMalformedFrame, len(b))
	}
	f := Frame{
		PacketNumber: binary.BigEndian.Uint32(b[0:4]),
		ChunkIndex:   binary.BigEndian.Uint16(b[4:6]),
		ChunkCount:   binary.BigEndian.Uint16(b[6:8]),
		Kind:         Kind(b[8]),
	}
	f.Payload = append([]byte(nil), b[frameHeaderSize:]...)
	return f, nil
}

// Encode marshals an event to JSON and splits it into frames under one
// packetNumber, ready to be written one at a time to the loopback socket.
func Encode(packetNumber uint32, kind Kind, event interface{}) ([]Frame, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("uiproto: marshaling %s event: %w", kind, err)
	}
	if len(payload) == 0 {
		return []Frame{{PacketNumber: packetNumber, ChunkIndex: 0, ChunkCount: 1, Kind: kind}}, nil
	}
	count := (len(payload) + MaxChunkPayload - 1) / MaxChunkPayload
	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		start := i * MaxChunkPayload
		end := start + MaxChunkPayload
		if end > len(payload) {
			end = len(payload)
		}
		frames = append(frames, Frame{
			PacketNumber: packetNumber,
			ChunkIndex:   uint16(i),
			ChunkCount:   uint16(count),
			Kind:         kind,
			Payload:      payload[start:end],
		})
	}
	return frames, nil
}

// Reassembler accumulates chunks keyed by packet number until a packet's
// full chunk count has arrived, matching the UI side's contract (spec
// §6: "The UI reassembles by packet_number and dispatches on kind").
type Reassembler struct {
	pending map[uint32]*partial
}

type partial struct {
	kind   Kind
	chunks [][]byte
	seen   int
}

func NewReassembler() *Reassembler {
	return &Reassembler{pending: make(map[uint32]*partial)}
}

// Add feeds one frame in. It returns the reassembled payload and true
// once every chunk for that packet number has arrived; otherwise ok is
// false and the frame is held pending more chunks.
func (r *Reassembler) Add(f Frame) (kind Kind, payload []byte, ok bool) {
	p, exists := r.pending[f.PacketNumber]
	if !exists {
		p = &partial{kind: f.Kind, chunks: make([][]byte, f.ChunkCount)}
		r.pending[f.PacketNumber] = p
	}
	if int(f.ChunkIndex) >= len(p.chunks) {
		return 0, nil, false
	}
	if p.chunks[f.ChunkIndex] == nil {
		p.seen++
	}
	p.chunks[f.ChunkIndex] = f.Payload

	if p.seen < len(p.chunks) {
		return 0, nil, false
	}
	delete(r.pending, f.PacketNumber)

	total := 0
	for _, c := range p.chunks {
		total += len(c)
	}
	full := make([]byte, 0, total)
	for _, c := range p.chunks {
		full = append(full, c...)
	}
	return p.kind, full, true
}

// Events carried as JSON payloads (spec §6's named kinds).

// ChatEvent mirrors an inbound ChatFromSimulator for display.
type ChatEvent struct {
	FromName   string `json:"from_name"`
	Message    string `json:"message"`
	SourceType uint8  `json:"source_type"`
	ChatType   uint8  `json:"chat_type"`
}

// MeshUpdateEvent mirrors a terrain.MeshUpdate for the renderer.
type MeshUpdateEvent struct {
	CoordX   int32     `json:"coord_x"`
	CoordY   int32     `json:"coord_y"`
	Vertices []float32 `json:"vertices"` // flattened x,y,z triples
	Indices  []uint32  `json:"indices"`
}

// LandUpdateEvent mirrors a decoded region-flags handshake for the UI's
// minimap/land overlay.
type LandUpdateEvent struct {
	RegionX    uint32          `json:"region_x"`
	RegionY    uint32          `json:"region_y"`
	RegionName string          `json:"region_name"`
	Flags      map[string]bool `json:"flags"`
}

// LoginResponseEvent reports the outcome of a login attempt.
type LoginResponseEvent struct {
	Success   bool   `json:"success"`
	AgentID   string `json:"agent_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

// SessionErrorEvent reports a fatal or recoverable session-level failure.
type SessionErrorEvent struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Fatal   bool   `json:"fatal"`
}
