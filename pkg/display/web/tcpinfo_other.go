//go:build !linux

package web

import (
	"net"
	"time"
)

// roundTrip is not available outside of linux.
func roundTrip(net.Conn) (time.Duration, bool) {
	return 0, false
}
