// Package codec implements the wire framing shared by every datagram
// message: the 6-byte prefix, zero-coding, and frequency-encoded message
// ids (spec §4.1). It is deliberately narrow — message-body encode/decode
// lives in the messages package, which imports codec, not the other way
// around, so there is no cycle between framing and the closed message set.
package codec

import (
	"encoding/binary"
	"errors"
)

// ErrMalformedBody is returned for any decode failure: truncated input,
// an invalid zero-coding run, or a frequency/id combination with not
// enough bytes remaining. Decoding never panics.
var ErrMalformedBody = errors.New("codec: malformed body")

// PrefixSize is the uncompressed header prefix: 1 flags byte, 4 bytes of
// big-endian sequence number, 1 byte for an appended-extra-header count
// (the wire's "extra" field, always 0 in practice but still present).
const PrefixSize = 6

// Flag bit values match the wire protocol this client speaks.
type Flags uint8

const (
	FlagZerocoded    Flags = 0x80
	FlagReliable     Flags = 0x40
	FlagResent       Flags = 0x20
	FlagAppendedAcks Flags = 0x10
)

func (f Flags) Zerocoded() bool    { return f&FlagZerocoded != 0 }
func (f Flags) Reliable() bool     { return f&FlagReliable != 0 }
func (f Flags) Resent() bool       { return f&FlagResent != 0 }
func (f Flags) AppendedAcks() bool { return f&FlagAppendedAcks != 0 }

// Frequency classifies how many bytes a message id occupies on the wire.
type Frequency uint8

const (
	High Frequency = iota
	Medium
	Low
	Fixed
)

func (fr Frequency) String() string {
	switch fr {
	case High:
		return "High"
	case Medium:
		return "Medium"
	case Low:
		return "Low"
	case Fixed:
		return "Fixed"
	}
	return "Unknown"
}

// Prefix is the decoded 6-byte, never zero-coded, packet prefix.
type Prefix struct {
	Flags Flags
	Seq   uint32
	Extra uint8
}

// DecodePrefix parses the fixed 6-byte prefix from the front of buf and
// returns it along with the remaining bytes (still zero-coded if the
// Zerocoded flag is set — the caller is responsible for calling ZeroDecode
// before parsing the frequency/id field).
func DecodePrefix(buf []byte) (Prefix, []byte, error) {
	if len(buf) < PrefixSize {
		return Prefix{}, nil, ErrMalformedBody
	}
	p := Prefix{
		Flags: Flags(buf[0]),
		Seq:   binary.BigEndian.Uint32(buf[1:5]),
		Extra: buf[5],
	}
	return p, buf[PrefixSize:], nil
}

// EncodePrefix is the inverse of DecodePrefix. The prefix itself is never
// zero-coded (spec §4.1: "the 6-byte prefix is left uncompressed").
func EncodePrefix(p Prefix) []byte {
	buf := make([]byte, PrefixSize)
	buf[0] = byte(p.Flags)
	binary.BigEndian.PutUint32(buf[1:5], p.Seq)
	buf[5] = p.Extra
	return buf
}

// DecodeFrequencyID inspects leading 0xFF bytes to determine the
// frequency class and id width, per spec §3 "Frequency encoding". It
// returns the frequency, the numeric id, and how many bytes were
// consumed. Because the caller has already zero-decoded the buffer before
// calling this, a Low-frequency id whose low byte happens to be zero is
// already a literal zero byte here — there is no double-consumption
// hazard from zero-coding's own 0x00/count pairs (spec §4.1 step 2).
func DecodeFrequencyID(buf []byte) (Frequency, uint32, int, error) {
	if len(buf) < 1 {
		return 0, 0, 0, ErrMalformedBody
	}
	if buf[0] != 0xFF {
		return High, uint32(buf[0]), 1, nil
	}
	if len(buf) < 2 {
		return 0, 0, 0, ErrMalformedBody
	}
	if buf[1] != 0xFF {
		return Medium, uint32(buf[1]), 2, nil
	}
	if len(buf) < 4 {
		return 0, 0, 0, ErrMalformedBody
	}
	if buf[2] != 0xFF {
		return Low, uint32(binary.BigEndian.Uint16(buf[2:4])), 4, nil
	}
	return Fixed, uint32(buf[3]), 4, nil
}

// EncodeFrequencyID is the inverse of DecodeFrequencyID.
func EncodeFrequencyID(fr Frequency, id uint32) []byte {
	switch fr {
	case High:
		return []byte{byte(id)}
	case Medium:
		return []byte{0xFF, byte(id)}
	case Low:
		buf := make([]byte, 4)
		buf[0], buf[1] = 0xFF, 0xFF
		binary.BigEndian.PutUint16(buf[2:4], uint16(id))
		return buf
	case Fixed:
		return []byte{0xFF, 0xFF, 0xFF, byte(id)}
	}
	return nil
}

// DecodeAckList parses an appended ack list from the tail of a decoded buffer:
// a trailing count byte preceded by that many big-endian uint32 sequence
// numbers. It returns the ids and the buffer with the ack list stripped.
func DecodeAckList(buf []byte) ([]uint32, []byte, error) {
	if len(buf) < 1 {
		return nil, nil, ErrMalformedBody
	}
	n := int(buf[len(buf)-1])
	need := 1 + n*4
	if len(buf) < need {
		return nil, nil, ErrMalformedBody
	}
	body := buf[:len(buf)-need]
	ackBytes := buf[len(buf)-need : len(buf)-1]
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		ids[i] = binary.BigEndian.Uint32(ackBytes[i*4 : i*4+4])
	}
	return ids, body, nil
}

// EncodeAckList appends an ack list in the same layout DecodeAckList reads.
func EncodeAckList(body []byte, ids []uint32) []byte {
	out := make([]byte, 0, len(body)+len(ids)*4+1)
	out = append(out, body...)
	for _, id := range ids {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], id)
		out = append(out, b[:]...)
	}
	out = append(out, byte(len(ids)))
	return out
}
