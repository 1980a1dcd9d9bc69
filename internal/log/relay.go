package log

import (
	"errors"
	"net"
	"time"
)

// udpRelay forwards every formatted log line the logger emits to a UDP
// listener, adapted from the teacher's NewUdpRelay. It takes effect once
// attached with Logger.AddRelay; nothing in this module attaches one.
type udpRelay struct {
	conn net.PacketConn
	addr *net.UDPAddr
}

func (r *udpRelay) WriteLog(_ time.Time, b []byte) error {
	if len(b) == 1 && b[0] == '\n' {
		return nil
	}
	_, err := r.conn.WriteTo(b, r.addr)
	return err
}

func (r *udpRelay) Close() error {
	if r == nil || r.conn == nil {
		return errors.New("not open")
	}
	return r.conn.Close()
}

func NewUDPRelay(tgt string) (*udpRelay, error) {
	addr, err := net.ResolveUDPAddr("udp", tgt)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenPacket("udp", ":0")
	if err != nil {
		return nil, err
	}
	return &udpRelay{conn: conn, addr: addr}, nil
}
