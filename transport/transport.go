// Package transport owns the UDP socket for one circuit and the
// reliability state machine layered on top of it: sequence number
// assignment, ack tracking with piggyback coalescing, and retry-with-
// backoff for reliable sends. It moves codec.RawPacket values in and
// out and knows about exactly one message body, core.PacketAck, which
// it emits itself on its own ack-flush timer; every other body is the
// session package's concern, the same separation the teacher keeps
// between its wire-framing layer (entryWriter/entryReader) and its
// connection-identity layer (ingestConnection).
package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/log"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/netutil"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/core"
)

// ackFlushThreshold is the size-based trigger for the ack-coalescing
// timer described in spec §4.2: a standalone PacketAck goes out as soon
// as this many sequence numbers are queued, rather than waiting for the
// timer if the simulator is particularly chatty.
const ackFlushThreshold = 32

// Config bounds the resend behavior, mirroring the timeout/attempt knobs
// the teacher exposes on EntryReaderWriterConfig.
type Config struct {
	ResendInterval time.Duration
	MaxResends     int
	AckCoalesce    time.Duration
}

func DefaultConfig() Config {
	return Config{
		ResendInterval: 1 * time.Second,
		MaxResends:     3,
		AckCoalesce:    100 * time.Millisecond,
	}
}

// pending is one reliable packet awaiting an ack.
type pending struct {
	raw      codec.RawPacket
	sentAt   time.Time
	attempts int
}

// Socket is the UDP circuit to a single simulator. All of its mutable
// bookkeeping (sequence counter, pending acks, coalesced ack queue) is
// guarded by one mutex — the teacher's EntryWriter does the same rather
// than splitting lock scope per field, because every field changes
// together on send/ack.
type Socket struct {
	conn   *net.UDPConn
	remote *net.UDPAddr
	cfg    Config
	logger *log.Logger

	mu       sync.Mutex
	nextSeq  uint32
	pending  map[uint32]*pending
	toAck    []uint32

	closed chan struct{}
}

// Dial opens the UDP socket used for one circuit and tunes its buffers
// via internal/netutil, mirroring the teacher's habit of tuning
// connection-level socket options right after dial.
func Dial(ctx context.Context, remoteAddr string, cfg Config, logger *log.Logger) (*Socket, error) {
	raddr, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, err
	}
	lc := net.ListenConfig{Control: netutil.Control}
	pc, err := lc.ListenPacket(ctx, "udp", ":0")
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)
	if err := netutil.TuneSessionSocket(conn); err != nil {
		logger.Warnf("socket tuning failed: %v", err)
	}
	s := &Socket{
		conn:    conn,
		remote:  raddr,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[uint32]*pending),
		closed:  make(chan struct{}),
	}
	return s, nil
}

func (s *Socket) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return s.conn.Close()
}

func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// nextSequence assigns the next outbound sequence number. The wire
// sequence space wraps at 32 bits; at 100 packets per second that takes
// about 16 months, so wraparound is not handled here.
func (s *Socket) nextSequence() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// Send transmits a packet. If reliable is true, the send is tracked for
// retry until an ack for its sequence number arrives or MaxResends is
// exhausted, at which point RetryLoop passes its sequence number to the
// onGiveUp callback (transport only tracks, session decides what "gone"
// means).
func (s *Socket) Send(body []byte, fr codec.Frequency, id uint32, reliable bool) (uint32, error) {
	return s.send(body, fr, id, reliable, false)
}

// SendZC behaves like Send but requests zero-coding on the wire, for bodies
// expected to compress well (AgentThrottle's mostly-zero float padding is
// the spec's motivating case in §4.4).
func (s *Socket) SendZC(body []byte, fr codec.Frequency, id uint32, reliable bool) (uint32, error) {
	return s.send(body, fr, id, reliable, true)
}

func (s *Socket) send(body []byte, fr codec.Frequency, id uint32, reliable, zerocoded bool) (uint32, error) {
	seq := s.nextSequence()
	var flags codec.Flags
	if reliable {
		flags |= codec.FlagReliable
	}
	if zerocoded {
		flags |= codec.FlagZerocoded
	}

	s.mu.Lock()
	acks := s.toAck
	s.toAck = nil
	s.mu.Unlock()

	if len(acks) > 0 {
		flags |= codec.FlagAppendedAcks
	}

	raw := codec.RawPacket{
		Prefix:    codec.Prefix{Flags: flags, Seq: seq},
		Frequency: fr,
		ID:        id,
		Body:      body,
		Acks:      acks,
	}
	buf := codec.EncodeRaw(raw)
	if _, err := s.conn.WriteToUDP(buf, s.remote); err != nil {
		return 0, err
	}
	if reliable {
		s.mu.Lock()
		s.pending[seq] = &pending{raw: raw, sentAt: time.Now(), attempts: 1}
		s.mu.Unlock()
	}
	return seq, nil
}

// QueueAck schedules a sequence number to ride out on the next outbound
// packet's appended-ack list rather than forcing an immediate standalone
// ack, the same coalescing the teacher's EntryWriter.serviceAcks does. If
// the queue crosses ackFlushThreshold it is flushed immediately as a
// standalone PacketAck rather than waiting for AckFlushLoop's timer.
func (s *Socket) QueueAck(seq uint32) {
	s.mu.Lock()
	s.toAck = append(s.toAck, seq)
	trigger := len(s.toAck) >= ackFlushThreshold
	s.mu.Unlock()
	if trigger {
		s.flushAcks()
	}
}

// AckFlushLoop periodically drains any acks that haven't already ridden
// out piggybacked on an outbound packet, emitting them as a standalone
// PacketAck. This is one of the three mandatory long-lived per-session
// tasks (spec §5): without it, a client that receives reliable traffic
// while sending nothing of its own never acks, forcing the simulator to
// exhaust its own resends.
func (s *Socket) AckFlushLoop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.AckCoalesce)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			s.flushAcks()
		}
	}
}

func (s *Socket) flushAcks() {
	s.mu.Lock()
	if len(s.toAck) == 0 {
		s.mu.Unlock()
		return
	}
	ids := s.toAck
	s.toAck = nil
	s.mu.Unlock()

	ack := core.PacketAck{IDs: ids}
	seq := s.nextSequence()
	raw := codec.RawPacket{
		Prefix:    codec.Prefix{Flags: 0, Seq: seq},
		Frequency: ack.Frequency(),
		ID:        ack.MessageID(),
		Body:      ack.Encode(),
	}
	buf := codec.EncodeRaw(raw)
	if _, err := s.conn.WriteToUDP(buf, s.remote); err != nil {
		s.logger.Warnf("ack flush failed: %v", err)
	}
}

// HandleAck clears a pending reliable send once its ack arrives.
func (s *Socket) HandleAck(seq uint32) {
	s.mu.Lock()
	delete(s.pending, seq)
	s.mu.Unlock()
}

// Recv blocks for the next datagram and decodes its frame.
func (s *Socket) Recv(buf []byte) (codec.RawPacket, int, error) {
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return codec.RawPacket{}, 0, err
	}
	raw, err := codec.DecodeRaw(buf[:n])
	if err != nil {
		return codec.RawPacket{}, n, err
	}
	return raw, n, nil
}

// RetryLoop resends due reliable packets and reports each one that has
// used up MaxResends to onGiveUp. The owning session runs it on its own
// goroutine so resends never block a Recv call.
func (s *Socket) RetryLoop(ctx context.Context, onGiveUp func(seq uint32)) {
	ticker := time.NewTicker(s.cfg.ResendInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		case <-ticker.C:
			s.resendDue(onGiveUp)
		}
	}
}

func (s *Socket) resendDue(onGiveUp func(seq uint32)) {
	now := time.Now()
	var due []*pending
	var gone []uint32

	s.mu.Lock()
	for seq, p := range s.pending {
		if now.Sub(p.sentAt) < s.cfg.ResendInterval {
			continue
		}
		if p.attempts >= s.cfg.MaxResends {
			gone = append(gone, seq)
			delete(s.pending, seq)
			continue
		}
		p.attempts++
		p.sentAt = now
		p.raw.Prefix.Flags |= codec.FlagResent
		due = append(due, p)
	}
	s.mu.Unlock()

	for _, p := range due {
		buf := codec.EncodeRaw(p.raw)
		if _, err := s.conn.WriteToUDP(buf, s.remote); err != nil {
			s.logger.Warnf("resend failed for seq %d: %v", p.raw.Prefix.Seq, err)
		}
	}
	for _, seq := range gone {
		onGiveUp(seq)
	}
}
