package codec

// RawPacket is the framing-level view of a datagram: prefix, frequency
// class, numeric message id, the message body still as bytes, and any
// appended acks. The messages package turns Body into a concrete message
// struct; codec never inspects message semantics.
type RawPacket struct {
	Prefix    Prefix
	Frequency Frequency
	ID        uint32
	Body      []byte
	Acks      []uint32
}

// DecodeRaw implements spec §4.1's decode order: parse the prefix,
// zero-decode the remainder if requested, split any appended ack list off
// the tail, then split off the frequency/id.
func DecodeRaw(buf []byte) (RawPacket, error) {
	prefix, rest, err := DecodePrefix(buf)
	if err != nil {
		return RawPacket{}, err
	}
	if prefix.Flags.Zerocoded() {
		rest, err = ZeroDecode(rest)
		if err != nil {
			return RawPacket{}, err
		}
	}
	if prefix.Flags.AppendedAcks() {
		var acks []uint32
		acks, rest, err = DecodeAckList(rest)
		if err != nil {
			return RawPacket{}, err
		}
		fr, id, n, err := DecodeFrequencyID(rest)
		if err != nil {
			return RawPacket{}, err
		}
		return RawPacket{Prefix: prefix, Frequency: fr, ID: id, Body: rest[n:], Acks: acks}, nil
	}
	fr, id, n, err := DecodeFrequencyID(rest)
	if err != nil {
		return RawPacket{}, err
	}
	return RawPacket{Prefix: prefix, Frequency: fr, ID: id, Body: rest[n:]}, nil
}

// EncodeRaw is the inverse of DecodeRaw. The prefix's flags must already
// reflect whether zero-coding and appended acks are in use; EncodeRaw
// trusts them rather than inferring from p.Acks being non-nil, so a caller
// can explicitly send an empty ack list if it ever needs to.
func EncodeRaw(p RawPacket) []byte {
	rest := append(EncodeFrequencyID(p.Frequency, p.ID), p.Body...)
	if p.Prefix.Flags.AppendedAcks() {
		rest = EncodeAckList(rest, p.Acks)
	}
	if p.Prefix.Flags.Zerocoded() {
		rest = ZeroEncode(rest)
	}
	return append(EncodePrefix(p.Prefix), rest...)
}
