//go:build linux

package netutil

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// setSocketOptions raises SO_RCVBUF/SO_SNDBUF ahead of bind, since the
// portable net.UDPConn setters only take effect after the socket already
// exists and may be capped by net.core.rmem_max on a freshly created fd.
func setSocketOptions(fd uintptr) error {
	if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, RecvBufferBytes); err != nil {
		return err
	}
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, SendBufferBytes)
}

// Control is passed to net.ListenConfig.Control when binding the session
// datagram socket.
func Control(_, _ string, c syscall.RawConn) error {
	var sockoptErr error
	if err := c.Control(func(fd uintptr) {
		sockoptErr = setSocketOptions(fd)
	}); err != nil {
		return err
	}
	return sockoptErr
}
