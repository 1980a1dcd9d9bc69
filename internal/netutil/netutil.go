// Package netutil tunes the kernel socket buffers backing the per-session
// datagram socket. A region sends terrain and object updates in bursts; an
// undersized receive buffer drops packets before the reader task ever gets
// a chance to decode them.
package netutil

import (
	"net"
)

// RecvBufferBytes and SendBufferBytes are generous relative to MTU-sized
// datagrams so a scheduling hiccup on the reader task doesn't cause kernel
// drops during a terrain or object-update burst.
const (
	RecvBufferBytes = 4 * 1024 * 1024
	SendBufferBytes = 1 * 1024 * 1024
)

// TuneSessionSocket raises the portable SO_RCVBUF/SO_SNDBUF sizes through
// the stdlib accessors available on every *net.UDPConn. It does not apply
// the platform Control function; that is passed to net.ListenConfig when
// the socket is bound.
func TuneSessionSocket(conn *net.UDPConn) error {
	if err := conn.SetReadBuffer(RecvBufferBytes); err != nil {
		return err
	}
	return conn.SetWriteBuffer(SendBufferBytes)
}
