// Package session implements the per-circuit mailbox actor: a single
// goroutine (readLoop) is the only reader of the socket and dispatches
// every inbound frame, the same single-reader discipline the teacher's
// IngestMuxer uses for its destination connections. The state, the
// subscriber list and the UI packet counter are mutex-guarded, so Send,
// SendUI and Stop run on the caller's goroutine. State progresses
// Starting -> Running -> Stopping -> Stopped and never runs backwards,
// mirroring the teacher's empty/running/closed muxState.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/benthic-mmo/metaverse-client-sub001/codec"
	"github.com/benthic-mmo/metaverse-client-sub001/internal/log"
	"github.com/benthic-mmo/metaverse-client-sub001/messages"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/core"
	"github.com/benthic-mmo/metaverse-client-sub001/messages/object"
	"github.com/benthic-mmo/metaverse-client-sub001/transport"
	"github.com/benthic-mmo/metaverse-client-sub001/uiproto"
)

type State int

const (
	Starting State = iota
	Running
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

var ErrNotRunning = errors.New("session: not running")


// Identity is the negotiated circuit identity handed out by login.
type Identity struct {
	AgentID     uuid.UUID
	SessionID   uuid.UUID
	CircuitCode uint32
}

// Session is one live circuit to a simulator.
type Session struct {
	logger *log.Logger
	sock   *transport.Socket
	id     Identity

	mu    sync.Mutex
	state State

	subMu sync.Mutex
	subs  []chan messages.Body

	uiOut chan uiproto.Frame

	uiSeq uint32

	cancel context.CancelFunc
	done   chan struct{}
}

// New wires a Session around an already-dialed transport socket. The
// caller is responsible for having completed the UDP dial with
// transport.Dial; Session only owns what happens after that.
func New(sock *transport.Socket, id Identity, logger *log.Logger) *Session {
	return &Session{
		logger: logger,
		sock:   sock,
		id:     id,
		state:  Starting,
		uiOut:  make(chan uiproto.Frame, 256),
		done:   make(chan struct{}),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Subscribe registers a new fan-out channel that receives every decoded
// message body arriving from the simulator, in arrival order. Dispatch
// stays centralized in the mailbox (spec §4.3): the socket has exactly
// one reader (readLoop), and every interested consumer (region's
// handshake/keepalive loop, the relay loop routing terrain/appearance/
// chat/object traffic) gets its own independent channel here rather than
// competing with the others over a single shared one, where a Go channel
// receive would silently hand any given body to only one consumer.
func (s *Session) Subscribe() <-chan messages.Body {
	ch := make(chan messages.Body, 256)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Session) publish(body messages.Body) {
	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- body:
		default:
			s.logger.Warnf("inbound subscriber queue full, dropping %T", body)
		}
	}
}

// UIOut exposes fragmented frames queued for the local UI/companion
// process via SendUI, ready to be written to the loopback socket one at
// a time.
func (s *Session) UIOut() <-chan uiproto.Frame { return s.uiOut }

// Start launches the read, retry and ack-flush loops and transitions to
// Running. It returns once all three goroutines have been launched; it does not block
// for the session's lifetime.
func (s *Session) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.setState(Running)

	go s.sock.RetryLoop(runCtx, func(seq uint32) {
		s.logger.Warnf("reliable send seq %d exhausted retries", seq)
	})
	go s.sock.AckFlushLoop(runCtx)
	go s.readLoop(runCtx)
}

func (s *Session) readLoop(ctx context.Context) {
	defer close(s.done)
	buf := make([]byte, 8192)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		raw, _, err := s.sock.Recv(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.logger.Warnf("recv error: %v", err)
			continue
		}
		s.handleInbound(raw)
	}
}

// handleInbound dispatches one decoded frame: reliable packets get their
// seq queued for the next outbound ack, any appended acks clear pending
// sends, a standalone PacketAck body clears pending sends for every id it
// carries (spec §4.2's primary bulk-ack path, distinct from the header's
// appended-ack list), DisableSimulator begins graceful teardown, and
// everything else is decoded to a Body and published to every subscriber.
func (s *Session) handleInbound(raw codec.RawPacket) {
	if raw.Prefix.Flags.Reliable() {
		s.sock.QueueAck(raw.Prefix.Seq)
	}
	for _, ackSeq := range raw.Acks {
		s.sock.HandleAck(ackSeq)
	}

	body, err := messages.Decode(raw.Frequency, raw.ID, raw.Body)
	if err != nil {
		if !errors.Is(err, messages.ErrUnknownMessage) {
			s.logger.Warnf("malformed message (freq=%s id=%d): %v", raw.Frequency, raw.ID, err)
		}
		return
	}

	switch m := body.(type) {
	case object.DisableSimulator:
		s.beginStop()
	case core.PacketAck:
		for _, id := range m.IDs {
			s.sock.HandleAck(id)
		}
	}

	s.publish(body)
}

// Send encodes and transmits a message body.
func (s *Session) Send(b messages.Body, reliable bool) error {
	if s.State() != Running {
		return ErrNotRunning
	}
	_, err := s.sock.Send(b.Encode(), b.Frequency(), b.MessageID(), reliable)
	return err
}

// SendZC behaves like Send but requests zero-coding, for bodies expected
// to compress well on the wire (spec §4.4's AgentThrottle being the
// motivating case: seven packed floats with long runs of zero bytes).
func (s *Session) SendZC(b messages.Body, reliable bool) error {
	if s.State() != Running {
		return ErrNotRunning
	}
	_, err := s.sock.SendZC(b.Encode(), b.Frequency(), b.MessageID(), reliable)
	return err
}

// SendUI marshals an event to JSON, fragments it per uiproto's chunking
// contract (spec §6), and queues every resulting frame on the UI channel
// under one freshly allocated packet number.
func (s *Session) SendUI(kind uiproto.Kind, event interface{}) error {
	s.mu.Lock()
	s.uiSeq++
	seq := s.uiSeq
	s.mu.Unlock()

	frames, err := uiproto.Encode(seq, kind, event)
	if err != nil {
		s.logger.Warnf("ui event encode failed: %v", err)
		return err
	}
	for _, f := range frames {
		select {
		case s.uiOut <- f:
		default:
			s.logger.Warnf("ui outbound queue full, dropping frame %d/%d of packet %d", f.ChunkIndex, f.ChunkCount, f.PacketNumber)
		}
	}
	return nil
}

// Ping issues a StartPingCheck with the given id. The matching
// CompletePingCheck is published like any other body; tracking the
// round trip is the region package's job since it owns keep-alive policy.
func (s *Session) Ping(pingID uint8, oldestUnacked uint32) error {
	return s.Send(core.StartPingCheck{PingID: pingID, OldestUnacked: oldestUnacked}, false)
}

func (s *Session) beginStop() {
	s.mu.Lock()
	if s.state == Stopping || s.state == Stopped {
		s.mu.Unlock()
		return
	}
	s.state = Stopping
	s.mu.Unlock()
	go s.Stop()
}

// Stop transitions Running -> Stopping -> Stopped, cancels the read and
// retry loops, and closes the underlying socket. It blocks until the
// read loop has exited or a short grace period elapses, never hanging
// indefinitely on a socket that refuses to unblock.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return nil
	}
	s.state = Stopping
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	err := s.sock.Close()

	select {
	case <-s.done:
	case <-time.After(2 * time.Second):
	}

	s.setState(Stopped)
	return err
}
