package rmcp

import (
	"fmt"
	"net"
)

// maxDatagramSize is comfortably larger than any IPMI LAN packet we expect
// to send or receive; UDP datagrams arrive whole or not at all so a single
// ReadFromUDP call is sufficient.
const maxDatagramSize = 8192

// UDPTransport exchanges RMCP-framed datagrams with a single BMC over UDP.
// It knows nothing about IPMI sessions, RAKP, or encryption; it is the
// "dumb pipe" that internal/pkg/transport.Transport describes, with the
// RMCP header itself the only framing it adds or removes.
type UDPTransport struct {
	conn *net.UDPConn
	addr string
	seq  uint8
}

// Dial resolves addr (host:port) and opens a UDP socket to it.
func Dial(addr string) (*UDPTransport, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("rmcp: resolving %q: %w", addr, err)
	}
	return DialUDP(raddr)
}

// DialUDP opens a UDP socket to an already-resolved address.
func DialUDP(raddr *net.UDPAddr) (*UDPTransport, error) {
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("rmcp: dialing %v: %w", raddr, err)
	}
	return &UDPTransport{conn: conn, addr: raddr.String()}, nil
}

// Send wraps data (a complete RMCP+ session header + payload + trailer, or
// an ASF payload) in the 4-byte RMCP header and writes it as one datagram.
func (t *UDPTransport) Send(data []byte) error {
	t.seq++
	h := defaultHeader()
	h.SequenceNumber = noRMCPAckSeq // we never request RMCP-layer ACKs
	_, err := t.conn.Write(h.Marshal(data))
	return err
}

// Recv reads the next datagram and strips its RMCP header.
func (t *UDPTransport) Recv() ([]byte, error) {
	buf := make([]byte, maxDatagramSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	_, payload, err := Unmarshal(buf[:n])
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// RemoteAddr returns the BMC's UDP address.
func (t *UDPTransport) RemoteAddr() string { return t.addr }

// Close closes the underlying UDP socket.
func (t *UDPTransport) Close() error { return t.conn.Close() }
