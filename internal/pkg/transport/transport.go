// Package transport provides the low level byte-pipe abstraction that
// sessions and sessionless commands are built on top of: something that can
// send a packet and receive the next one back, regardless of whether the
// bytes on the wire are RMCP+ over UDP or an ioctl() against a local
// /dev/ipmi0 character device.
package transport

import (
	"fmt"
	"net"
	"strings"

	"github.com/ironbmc/bmc/internal/pkg/transport/file"
	"github.com/ironbmc/bmc/internal/pkg/transport/rmcp"
)

// Transport is the minimal contract a session needs from whatever is
// actually moving bytes: send one datagram, receive the next one, and allow
// prompt shutdown. Implementations are not required to be safe for
// concurrent use by multiple goroutines; session-level code serialises
// access.
type Transport interface {
	// Send transmits a single, already-framed datagram.
	Send(data []byte) error

	// Recv blocks until the next datagram arrives, returning its raw bytes.
	Recv() ([]byte, error)

	// RemoteAddr returns a human readable description of the remote end of
	// the transport, e.g. "10.0.0.1:623" or "/dev/ipmi0".
	RemoteAddr() string

	// Close releases any underlying resources (sockets, file descriptors).
	Close() error
}

// New dials addr and returns a Transport suitable for exchanging IPMI
// packets with it. addr of the form "/dev/ipmiN" (or any path beginning
// with '/') selects the local OpenIPMI character device transport;
// everything else is treated as a UDP host:port for RMCP.
func New(addr string) (Transport, error) {
	if strings.HasPrefix(addr, "/") {
		return file.Open(addr)
	}
	return rmcp.Dial(addr)
}

// NewUDP is a convenience wrapper for callers that already have a resolved
// net.UDPAddr, primarily used by BMC discovery code that has already sent
// an ASF Presence Ping to a broadcast address and wants to reuse the
// specific address that answered.
func NewUDP(raddr *net.UDPAddr) (Transport, error) {
	if raddr == nil {
		return nil, fmt.Errorf("transport: nil UDP address")
	}
	return rmcp.DialUDP(raddr)
}
