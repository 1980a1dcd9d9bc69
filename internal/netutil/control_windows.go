//go:build windows

package netutil

import "syscall"

// Control is a no-op on Windows; the portable SetReadBuffer/SetWriteBuffer
// calls in TuneSessionSocket are sufficient there.
func Control(_, _ string, _ syscall.RawConn) error {
	return nil
}
